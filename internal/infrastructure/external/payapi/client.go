package payapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
)

const (
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	preparePath  = "/webpay/inapp/prepare/"
	productPath  = "/payments/product/"
	validatePath = "/receipts/validate/"
)

// Config represents payment API client configuration
type Config struct {
	BaseURL       string
	VersionPrefix string
	Origin        string
	Timeout       time.Duration
}

// Client is the HTTP client for the remote payment API
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new payment API client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// PreparedPayment is the outcome of a successful token request
type PreparedPayment struct {
	Token     string
	StatusURL string
	Product   *entity.ProductInfo
}

type prepareRequest struct {
	ProductID string `json:"productId"`
}

type prepareResponse struct {
	WebpayJWT        string `json:"webpayJWT"`
	ContribStatusURL string `json:"contribStatusURL"`
}

// Prepare requests a signed payment token for productID. Product metadata
// decoded from the token is attached when the token parses.
func (c *Client) Prepare(ctx context.Context, productID string) (*PreparedPayment, error) {
	var resp prepareResponse
	if err := c.post(ctx, c.url(preparePath), prepareRequest{ProductID: productID}, &resp); err != nil {
		return nil, err
	}
	if resp.WebpayJWT == "" {
		return nil, fmt.Errorf("prepare response carried no payment token")
	}

	prepared := &PreparedPayment{
		Token:     resp.WebpayJWT,
		StatusURL: c.absolute(resp.ContribStatusURL),
	}

	if info, err := ParsePayRequest(resp.WebpayJWT); err != nil {
		c.logger.Warn("Payment token claims did not parse",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	} else {
		info.ProductID = productID
		prepared.Product = info
	}

	return prepared, nil
}

type statusResponse struct {
	Status     string  `json:"status"`
	Receipt    string  `json:"receipt,omitempty"`
	PricePoint float64 `json:"pricePoint,omitempty"`
	ErrorCode  string  `json:"errorCode,omitempty"`
}

// TransactionStatus queries the transaction-status endpoint once
func (c *Client) TransactionStatus(ctx context.Context, statusURL, productID string) (*entity.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.absolute(statusURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}
	c.setHeaders(req)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	tx := entity.NewTransaction(productID, entity.TransactionStatus(resp.Status))
	tx.Receipt = resp.Receipt
	tx.PricePoint = resp.PricePoint
	tx.ErrorCode = resp.ErrorCode
	tx.Raw = json.RawMessage(body)
	return tx, nil
}

// Product fetches catalog metadata for productID
func (c *Client) Product(ctx context.Context, productID string) (*entity.ProductInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(productPath+productID+"/"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create product request: %w", err)
	}
	c.setHeaders(req)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var info entity.ProductInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	if info.ProductID == "" {
		info.ProductID = productID
	}
	return &info, nil
}

type validateRequest struct {
	Receipt string `json:"receipt"`
}

type validateResponse struct {
	Status string `json:"status"`
}

// ValidateReceipt asks the API whether a stored receipt is still valid
func (c *Client) ValidateReceipt(ctx context.Context, receipt string) (bool, error) {
	var resp validateResponse
	if err := c.post(ctx, c.url(validatePath), validateRequest{Receipt: receipt}, &resp); err != nil {
		return false, err
	}
	return resp.Status == "ok", nil
}

func (c *Client) post(ctx context.Context, url string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.config.Origin != "" {
		req.Header.Set("Origin", c.config.Origin)
	}
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			if mapped := mapAPIError(apiErr.Error); mapped != nil {
				return nil, mapped
			}
			return nil, fmt.Errorf("payment API error %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("payment API returned status %d", resp.StatusCode)
	}

	return body, nil
}

// mapAPIError re-types API error codes that belong to the purchase taxonomy
func mapAPIError(code string) error {
	switch code {
	case domainErrors.CodeInvalidApp:
		return domainErrors.New(domainErrors.KindInvalidApp, code,
			"the payment API rejected the application identity")
	case domainErrors.CodeInvalidAppOrigin:
		return domainErrors.New(domainErrors.KindInvalidAppOrigin, code,
			"the payment API rejected the application origin")
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.config.BaseURL + c.config.VersionPrefix + path
}

// absolute resolves a possibly relative API URL against the base URL
func (c *Client) absolute(u string) string {
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.config.BaseURL + u
}
