package platform

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
)

// Invoker turns the provider's single-shot callback pair into one awaited
// outcome. Even against a provider that fires both callbacks, only the
// first delivery counts.
type Invoker struct {
	provider Provider
	logger   *zap.Logger
}

// NewInvoker creates an invoker over the given payment provider
func NewInvoker(provider Provider, logger *zap.Logger) *Invoker {
	return &Invoker{provider: provider, logger: logger}
}

type outcome struct {
	result Result
	err    error
}

// Invoke presents the payment dialog and waits for its outcome. A platform
// error maps verbatim into PayPlatformError.Code with product info
// attached. No retries happen at this layer.
func (i *Invoker) Invoke(ctx context.Context, token string, product *entity.ProductInfo) (*Result, error) {
	ch := make(chan outcome, 1)
	var once sync.Once

	i.provider.Pay(ctx, token,
		func(r Result) {
			once.Do(func() { ch <- outcome{result: r} })
		},
		func(code, message string) {
			once.Do(func() {
				if code == "" {
					code = domainErrors.CodePayPlatformError
				}
				if message == "" {
					message = "the payment platform reported an error"
				}
				err := domainErrors.New(domainErrors.KindPayPlatform, code, message).
					WithProduct(product)
				ch <- outcome{err: err}
			})
		},
	)

	select {
	case o := <-ch:
		if o.err != nil {
			i.logger.Warn("Payment dialog failed",
				zap.String("product_id", product.ProductID),
				zap.Error(o.err),
			)
			return nil, o.err
		}
		i.logger.Debug("Payment dialog succeeded",
			zap.String("product_id", product.ProductID),
			zap.String("status", string(o.result.Status)),
		)
		return &o.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
