package platform_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/domain/entity"
	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
	"github.com/bivex/webpay-client/internal/platform"
)

func postback(t *testing.T, url, body string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestWebDialog(t *testing.T) {
	t.Run("success postback resolves the dialog", func(t *testing.T) {
		dialog := platform.NewWebDialog("https://pay.test/dialog/pay", "", zap.NewNop())
		dialog.OnOpen = func(dialogURL, postbackURL string) {
			assert.Contains(t, dialogURL, "req=tok")
			go postback(t, postbackURL, `{"status":"completed","receipt":"r1"}`)
		}

		invoker := platform.NewInvoker(dialog, zap.NewNop())
		result, err := invoker.Invoke(context.Background(), "tok", entity.NewProductInfo("p1"))
		require.NoError(t, err)
		assert.Equal(t, entity.TransactionStatusCompleted, result.Status)
		assert.Equal(t, "r1", result.Receipt)
	})

	t.Run("error postback maps to a platform error", func(t *testing.T) {
		dialog := platform.NewWebDialog("https://pay.test/dialog/pay", "", zap.NewNop())
		dialog.OnOpen = func(dialogURL, postbackURL string) {
			go postback(t, postbackURL, `{"errorCode":"DIALOG_CLOSED_BY_USER"}`)
		}

		invoker := platform.NewInvoker(dialog, zap.NewNop())
		_, err := invoker.Invoke(context.Background(), "tok", entity.NewProductInfo("p1"))
		require.Error(t, err)

		pe, ok := domainErrors.AsPurchaseError(err)
		require.True(t, ok)
		assert.Equal(t, "DIALOG_CLOSED_BY_USER", pe.Code)
	})

	t.Run("postback without status leaves polling to the caller", func(t *testing.T) {
		dialog := platform.NewWebDialog("https://pay.test/dialog/pay", "", zap.NewNop())
		dialog.OnOpen = func(dialogURL, postbackURL string) {
			go postback(t, postbackURL, `{}`)
		}

		invoker := platform.NewInvoker(dialog, zap.NewNop())
		result, err := invoker.Invoke(context.Background(), "tok", entity.NewProductInfo("p1"))
		require.NoError(t, err)
		assert.False(t, result.Status.IsTerminal())
	})

	t.Run("abandoned dialog errors on cancellation", func(t *testing.T) {
		dialog := platform.NewWebDialog("https://pay.test/dialog/pay", "", zap.NewNop())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		invoker := platform.NewInvoker(dialog, zap.NewNop())
		_, err := invoker.Invoke(ctx, "tok", entity.NewProductInfo("p1"))
		assert.Error(t, err)
	})
}
