package poll

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
)

// StatusFetcher issues a single transaction-status query
type StatusFetcher interface {
	TransactionStatus(ctx context.Context, statusURL, productID string) (*entity.Transaction, error)
}

// Config bounds one polling run
type Config struct {
	MaxTries int
	Interval time.Duration
}

// Poller repeatedly queries a transaction-status endpoint until the
// transaction settles or the configured attempts run out. It is only engaged
// when the platform's own result carried no terminal status.
type Poller struct {
	fetcher StatusFetcher
	logger  *zap.Logger
}

// NewPoller creates a poller over the given status fetcher
func NewPoller(fetcher StatusFetcher, logger *zap.Logger) *Poller {
	return &Poller{fetcher: fetcher, logger: logger}
}

// Poll queries the status endpoint up to cfg.MaxTries times. A completed
// transaction resolves; a failed one rejects with the API-supplied code; an
// unrecognized status rejects immediately without further attempts — that
// is a contract bug, not a transient condition.
func (p *Poller) Poll(ctx context.Context, statusURL string, product *entity.ProductInfo, cfg Config) (*entity.Transaction, error) {
	if cfg.MaxTries <= 0 {
		return nil, domainErrors.New(
			domainErrors.KindConfiguration,
			domainErrors.CodeInvalidSettings,
			"maxTries must be greater than zero",
		).WithProduct(product)
	}

	for attempt := 1; attempt <= cfg.MaxTries; attempt++ {
		tx, err := p.fetcher.TransactionStatus(ctx, statusURL, product.ProductID)
		if err != nil {
			return nil, fmt.Errorf("transaction status query failed: %w", err)
		}

		switch {
		case tx.IsCompleted():
			p.logger.Debug("Transaction completed",
				zap.String("product_id", product.ProductID),
				zap.Int("attempt", attempt),
			)
			return tx, nil

		case tx.IsFailed():
			return nil, DeclinedError(tx, product)

		case !tx.Status.IsKnown():
			return nil, domainErrors.New(
				domainErrors.KindConfiguration,
				domainErrors.CodeInvalidTransactionState,
				fmt.Sprintf("unrecognized transaction status %q", tx.Status),
			).WithProduct(product)
		}

		p.logger.Debug("Transaction not settled yet",
			zap.String("product_id", product.ProductID),
			zap.String("status", string(tx.Status)),
			zap.Int("attempt", attempt),
			zap.Int("max_tries", cfg.MaxTries),
		)

		if attempt < cfg.MaxTries {
			if err := wait(ctx, cfg.Interval); err != nil {
				return nil, err
			}
		}
	}

	return nil, domainErrors.New(
		domainErrors.KindPurchaseTimeout,
		domainErrors.CodePurchaseTimeout,
		fmt.Sprintf("transaction did not settle after %d status queries", cfg.MaxTries),
	).WithProduct(product)
}

// DeclinedError maps a failed transaction into the purchase taxonomy. A
// decline is surfaced as PayPlatformError carrying the API-supplied code
// when present, TRANSACTION_FAILED otherwise.
func DeclinedError(tx *entity.Transaction, product *entity.ProductInfo) error {
	code := tx.ErrorCode
	if code == "" {
		code = domainErrors.CodeTransactionFailed
	}
	return domainErrors.New(
		domainErrors.KindPayPlatform,
		code,
		"the transaction was declined",
	).WithProduct(product)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
