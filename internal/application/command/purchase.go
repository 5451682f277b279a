package command

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/application/dto"
	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
	"github.com/bivex/webpay-client/internal/infrastructure/config"
	"github.com/bivex/webpay-client/internal/infrastructure/external/payapi"
	"github.com/bivex/webpay-client/internal/platform"
	"github.com/bivex/webpay-client/internal/poll"
)

// TokenSource obtains a signed payment token for a product
type TokenSource interface {
	Prepare(ctx context.Context, productID string) (*payapi.PreparedPayment, error)
}

// ProductCatalog resolves product metadata for the terminal success value
type ProductCatalog interface {
	Product(ctx context.Context, productID string) (*entity.ProductInfo, error)
}

// PaymentInvoker presents the platform payment dialog for a token
type PaymentInvoker interface {
	Invoke(ctx context.Context, token string, product *entity.ProductInfo) (*platform.Result, error)
}

// TransactionPoller waits for asynchronous transaction settlement
type TransactionPoller interface {
	Poll(ctx context.Context, statusURL string, product *entity.ProductInfo, cfg poll.Config) (*entity.Transaction, error)
}

// ReceiptStore persists proof of purchase
type ReceiptStore interface {
	StoreReceipt(ctx context.Context, receipt string, product *entity.ProductInfo) error
}

// PurchaseOptions tunes one purchase attempt. Zero values fall back to the
// configured defaults.
type PurchaseOptions struct {
	MaxTries     int
	PollInterval time.Duration
}

// PurchaseCallback is the legacy two-argument delivery convention. info is
// populated on failure too whenever product context is known.
type PurchaseCallback func(err error, info *dto.ProductInfo)

// PurchaseCommand is the purchase orchestrator: token acquisition, platform
// invocation, settlement polling, receipt persistence, and product-info
// resolution. Each Execute call is one independent attempt delivering
// exactly one terminal outcome.
type PurchaseCommand struct {
	settings *config.Settings
	tokens   TokenSource
	invoker  PaymentInvoker
	poller   TransactionPoller
	receipts ReceiptStore
	catalog  ProductCatalog
	logger   *zap.Logger
}

// NewPurchaseCommand creates the purchase orchestrator
func NewPurchaseCommand(
	settings *config.Settings,
	tokens TokenSource,
	invoker PaymentInvoker,
	poller TransactionPoller,
	receipts ReceiptStore,
	catalog ProductCatalog,
	logger *zap.Logger,
) *PurchaseCommand {
	return &PurchaseCommand{
		settings: settings,
		tokens:   tokens,
		invoker:  invoker,
		poller:   poller,
		receipts: receipts,
		catalog:  catalog,
		logger:   logger,
	}
}

// Execute runs one purchase attempt to its terminal state and returns the
// normalized product info. There is no cancellation mid-attempt beyond ctx.
func (c *PurchaseCommand) Execute(ctx context.Context, productID string, opts *PurchaseOptions) (*dto.ProductInfo, error) {
	logger := c.logger.With(
		zap.String("attempt_id", uuid.NewString()),
		zap.String("product_id", productID),
	)
	product := entity.NewProductInfo(productID)

	// RequestingToken. Collaborator errors propagate unchanged.
	prepared, err := c.tokens.Prepare(ctx, productID)
	if err != nil {
		logger.Warn("Payment token request failed", zap.Error(err))
		return nil, err
	}
	product = product.Merge(prepared.Product)

	// AwaitingPlatform
	result, err := c.invoker.Invoke(ctx, prepared.Token, product)
	if err != nil {
		return nil, err
	}

	// Resolving. Poll only when the platform did not settle synchronously.
	var tx *entity.Transaction
	if result.Status.IsTerminal() {
		tx = entity.NewTransaction(productID, result.Status)
		tx.Receipt = result.Receipt
		if tx.IsFailed() {
			return nil, poll.DeclinedError(tx, product)
		}
	} else {
		if prepared.StatusURL == "" {
			return nil, domainErrors.New(
				domainErrors.KindConfiguration,
				domainErrors.CodeInvalidSettings,
				"platform did not settle and no transaction status URL was provided",
			).WithProduct(product)
		}
		tx, err = c.poller.Poll(ctx, prepared.StatusURL, product, c.pollConfig(opts))
		if err != nil {
			return nil, err
		}
	}

	// StoringReceipt
	if tx.IsCompleted() && tx.HasReceipt() {
		if err := c.receipts.StoreReceipt(ctx, tx.Receipt, product); err != nil {
			return nil, err
		}
	}

	// Resolved. Catalog metadata enriches the result; the purchase itself
	// already settled, so a catalog failure degrades instead of rejecting.
	if info, err := c.catalog.Product(ctx, productID); err != nil {
		logger.Warn("Product catalog lookup failed, using token metadata", zap.Error(err))
	} else {
		product = product.Merge(info)
	}
	if product.PricePoint == 0 {
		product.PricePoint = tx.PricePoint
	}

	logger.Info("Purchase resolved", zap.String("name", product.Name))
	return dto.FromProductInfo(product), nil
}

// ExecuteAsync adapts Execute to the legacy callback convention. The
// callback fires exactly once; on failure it receives the product context
// attached to the error, when any.
func (c *PurchaseCommand) ExecuteAsync(ctx context.Context, productID string, opts *PurchaseOptions, cb PurchaseCallback) {
	go func() {
		info, err := c.Execute(ctx, productID, opts)
		if err != nil {
			if p := domainErrors.ProductOf(err); p != nil {
				info = dto.FromProductInfo(p)
			}
		}
		cb(err, info)
	}()
}

func (c *PurchaseCommand) pollConfig(opts *PurchaseOptions) poll.Config {
	cfg := poll.Config{
		MaxTries: c.settings.MaxTries,
		Interval: c.settings.PollInterval,
	}
	if opts != nil {
		if opts.MaxTries != 0 {
			cfg.MaxTries = opts.MaxTries
		}
		if opts.PollInterval != 0 {
			cfg.Interval = opts.PollInterval
		}
	}
	return cfg
}
