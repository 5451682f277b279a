package payapi

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
)

// fakeSigningSecret signs stub tokens; nothing verifies them
var fakeSigningSecret = []byte("webpay-client-fake-products")

// stubCatalog is the built-in product table for fake-products mode
var stubCatalog = map[string]entity.ProductInfo{
	"fake-product-1": {
		ProductID:     "fake-product-1",
		Name:          "Kiwi Warp Upgrade",
		Description:   "A pretend upgrade for local development",
		PricePoint:    1,
		SmallImageURL: "https://pay.webpay.example.com/media/fake-product-1.png",
	},
	"fake-product-2": {
		ProductID:     "fake-product-2",
		Name:          "Rocket Fuel Pack",
		Description:   "Another pretend product",
		PricePoint:    3,
		SmallImageURL: "https://pay.webpay.example.com/media/fake-product-2.png",
	},
}

// FakeClient serves stub tokens and catalog entries in fake-products mode.
// It satisfies the same operations as Client without any network traffic.
type FakeClient struct {
	logger *zap.Logger
}

// NewFakeClient creates the fake-products client
func NewFakeClient(logger *zap.Logger) *FakeClient {
	return &FakeClient{logger: logger}
}

func (c *FakeClient) stub(productID string) *entity.ProductInfo {
	if info, ok := stubCatalog[productID]; ok {
		return &info
	}
	return &entity.ProductInfo{
		ProductID:  productID,
		Name:       "Fake Product " + productID,
		PricePoint: 1,
	}
}

// Prepare signs a stub token locally; there is no status URL because the
// fake platform settles synchronously.
func (c *FakeClient) Prepare(ctx context.Context, productID string) (*PreparedPayment, error) {
	product := c.stub(productID)
	token, err := SignFakePayRequest(product, fakeSigningSecret)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Prepared fake payment token", zap.String("product_id", productID))

	return &PreparedPayment{
		Token:   token,
		Product: product,
	}, nil
}

// TransactionStatus reports immediate settlement; the fake platform never
// leaves a transaction pending.
func (c *FakeClient) TransactionStatus(ctx context.Context, statusURL, productID string) (*entity.Transaction, error) {
	tx := entity.NewTransaction(productID, entity.TransactionStatusCompleted)
	tx.Receipt = "fake-receipt-" + uuid.NewString()
	return tx, nil
}

// Product returns stub catalog metadata
func (c *FakeClient) Product(ctx context.Context, productID string) (*entity.ProductInfo, error) {
	return c.stub(productID), nil
}

// ValidateReceipt accepts every receipt in fake-products mode
func (c *FakeClient) ValidateReceipt(ctx context.Context, receipt string) (bool, error) {
	return true, nil
}
