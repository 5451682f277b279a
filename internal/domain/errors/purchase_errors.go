package errors

import (
	"errors"
	"fmt"

	"github.com/bivex/webpay-client/internal/domain/entity"
)

// Kind classifies a purchase failure. The set is closed; callers branch on
// it to decide whether a retry affordance makes sense.
type Kind string

const (
	KindConfiguration          Kind = "ConfigurationError"
	KindPurchaseTimeout        Kind = "PurchaseTimeout"
	KindPayPlatform            Kind = "PayPlatformError"
	KindPayPlatformUnavailable Kind = "PayPlatformUnavailable"
	KindAddReceipt             Kind = "AddReceiptError"
	KindInvalidApp             Kind = "InvalidApp"
	KindInvalidAppOrigin       Kind = "InvalidAppOrigin"
)

// Well-known error codes
const (
	CodeDialogClosedByUser      = "DIALOG_CLOSED_BY_USER"
	CodeAddReceiptError         = "ADD_RECEIPT_ERROR"
	CodePurchaseTimeout         = "PURCHASE_TIMEOUT"
	CodeInvalidTransactionState = "INVALID_TRANSACTION_STATE"
	CodeInvalidSettings         = "INVALID_SETTINGS"
	CodePayPlatformUnavailable  = "PAY_PLATFORM_UNAVAILABLE"
	CodePayPlatformError        = "PAY_PLATFORM_ERROR"
	CodeTransactionFailed       = "TRANSACTION_FAILED"
	CodeInvalidApp              = "INVALID_APP"
	CodeInvalidAppOrigin        = "INVALID_APP_ORIGIN"
)

// PurchaseError is the typed failure delivered for every purchase attempt
// that does not resolve. ProductInfo is attached whenever enough context
// exists to identify which purchase failed; it is read-only for the caller.
type PurchaseError struct {
	Kind        Kind
	Code        string
	Message     string
	ProductInfo *entity.ProductInfo
	Err         error
}

func (e *PurchaseError) Error() string {
	if e.ProductInfo != nil && e.ProductInfo.ProductID != "" {
		return fmt.Sprintf("%s [%s] product=%s: %s", e.Kind, e.Code, e.ProductInfo.ProductID, e.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Code, e.Message)
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}

// New creates a purchase error of the given kind
func New(kind Kind, code, message string) *PurchaseError {
	return &PurchaseError{Kind: kind, Code: code, Message: message}
}

// Wrap creates a purchase error preserving the underlying cause
func Wrap(kind Kind, code, message string, err error) *PurchaseError {
	return &PurchaseError{Kind: kind, Code: code, Message: message, Err: err}
}

// WithProduct attaches product context and returns the same error
func (e *PurchaseError) WithProduct(info *entity.ProductInfo) *PurchaseError {
	e.ProductInfo = info
	return e
}

// AsPurchaseError extracts a *PurchaseError from an error chain
func AsPurchaseError(err error) (*PurchaseError, bool) {
	var pe *PurchaseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a purchase error of the given kind
func IsKind(err error, kind Kind) bool {
	pe, ok := AsPurchaseError(err)
	return ok && pe.Kind == kind
}

// ProductOf returns the product info attached to err, if any
func ProductOf(err error) *entity.ProductInfo {
	if pe, ok := AsPurchaseError(err); ok {
		return pe.ProductInfo
	}
	return nil
}
