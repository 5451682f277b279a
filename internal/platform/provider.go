package platform

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
)

// Result is the platform payment dialog's success outcome. Status is set
// only when the platform itself settled the transaction; otherwise the
// caller polls the remote status endpoint.
type Result struct {
	Status  entity.TransactionStatus
	Receipt string
}

// Provider is the platform payment primitive. Implementations present the
// payment dialog for a signed token and call exactly one of onResult or
// onError, exactly once.
type Provider interface {
	Pay(ctx context.Context, token string, onResult func(Result), onError func(code, message string))
}

// FakeProvider settles every payment immediately, for fake-products mode
type FakeProvider struct {
	logger *zap.Logger
}

// NewFakeProvider creates the fake-products payment provider
func NewFakeProvider(logger *zap.Logger) *FakeProvider {
	return &FakeProvider{logger: logger}
}

// Pay reports a completed transaction with a generated receipt
func (p *FakeProvider) Pay(ctx context.Context, token string, onResult func(Result), onError func(code, message string)) {
	receipt := "fake-receipt-" + uuid.NewString()
	p.logger.Debug("Fake payment settled", zap.String("receipt", receipt))
	onResult(Result{
		Status:  entity.TransactionStatusCompleted,
		Receipt: receipt,
	})
}

// StoreError is the platform error reported by a device receipt store
type StoreError struct {
	Code    string
	Message string
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// DeviceReceiptStore is the device-native receipt store. It is absent on
// most platforms; presence is a capability, probed by nil-check.
type DeviceReceiptStore interface {
	AddReceipt(ctx context.Context, receipt string) error
	Receipts(ctx context.Context) ([]string, error)
}
