package platform_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
	"github.com/bivex/webpay-client/internal/platform"
)

type succeedingProvider struct {
	result platform.Result
}

func (p *succeedingProvider) Pay(ctx context.Context, token string, onResult func(platform.Result), onError func(code, message string)) {
	onResult(p.result)
}

type erroringProvider struct {
	code string
}

func (p *erroringProvider) Pay(ctx context.Context, token string, onResult func(platform.Result), onError func(code, message string)) {
	onError(p.code, "")
}

// doubleFiringProvider violates the single-shot contract on purpose
type doubleFiringProvider struct{}

func (p *doubleFiringProvider) Pay(ctx context.Context, token string, onResult func(platform.Result), onError func(code, message string)) {
	onResult(platform.Result{Status: entity.TransactionStatusCompleted, Receipt: "r1"})
	onError("DIALOG_CLOSED_BY_USER", "too late")
	onResult(platform.Result{Receipt: "r2"})
}

func TestInvoker(t *testing.T) {
	ctx := context.Background()
	product := entity.NewProductInfo("p1")

	t.Run("success outcome passes through", func(t *testing.T) {
		invoker := platform.NewInvoker(&succeedingProvider{
			result: platform.Result{Status: entity.TransactionStatusCompleted, Receipt: "r1"},
		}, zap.NewNop())

		result, err := invoker.Invoke(ctx, "token", product)
		require.NoError(t, err)
		assert.Equal(t, entity.TransactionStatusCompleted, result.Status)
		assert.Equal(t, "r1", result.Receipt)
	})

	t.Run("platform error name becomes the error code", func(t *testing.T) {
		invoker := platform.NewInvoker(&erroringProvider{code: "DIALOG_CLOSED_BY_USER"}, zap.NewNop())

		_, err := invoker.Invoke(ctx, "token", product)
		require.Error(t, err)

		pe, ok := domainErrors.AsPurchaseError(err)
		require.True(t, ok)
		assert.Equal(t, domainErrors.KindPayPlatform, pe.Kind)
		assert.Equal(t, "DIALOG_CLOSED_BY_USER", pe.Code)
		assert.Equal(t, "p1", pe.ProductInfo.ProductID)
	})

	t.Run("empty platform code gets a generic code", func(t *testing.T) {
		invoker := platform.NewInvoker(&erroringProvider{}, zap.NewNop())

		_, err := invoker.Invoke(ctx, "token", product)
		pe, ok := domainErrors.AsPurchaseError(err)
		require.True(t, ok)
		assert.Equal(t, domainErrors.CodePayPlatformError, pe.Code)
	})

	t.Run("only the first delivery counts", func(t *testing.T) {
		invoker := platform.NewInvoker(&doubleFiringProvider{}, zap.NewNop())

		result, err := invoker.Invoke(ctx, "token", product)
		require.NoError(t, err)
		assert.Equal(t, "r1", result.Receipt)
	})

	t.Run("cancelled context unblocks the wait", func(t *testing.T) {
		// provider that never calls back
		silent := providerFunc(func(ctx context.Context, token string, onResult func(platform.Result), onError func(code, message string)) {
		})
		invoker := platform.NewInvoker(silent, zap.NewNop())

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := invoker.Invoke(cancelled, "token", product)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type providerFunc func(ctx context.Context, token string, onResult func(platform.Result), onError func(code, message string))

func (f providerFunc) Pay(ctx context.Context, token string, onResult func(platform.Result), onError func(code, message string)) {
	f(ctx, token, onResult, onError)
}

func TestFakeProvider(t *testing.T) {
	invoker := platform.NewInvoker(platform.NewFakeProvider(zap.NewNop()), zap.NewNop())

	result, err := invoker.Invoke(context.Background(), "token", entity.NewProductInfo("p1"))
	require.NoError(t, err)
	assert.True(t, result.Status.IsTerminal())
	assert.NotEmpty(t, result.Receipt)
}
