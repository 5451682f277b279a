package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/bivex/webpay-client/internal/domain/errors"
	"github.com/bivex/webpay-client/internal/infrastructure/config"
)

func TestNewSettings(t *testing.T) {
	t.Run("no overrides yields defaults", func(t *testing.T) {
		cfg, err := config.New(nil)
		require.NoError(t, err)

		d := config.Defaults()
		assert.Equal(t, d.APIURLBase, cfg.APIURLBase)
		assert.Equal(t, d.MaxTries, cfg.MaxTries)
		assert.True(t, cfg.LocalStorageEnabled)
	})

	t.Run("overrides merge over defaults", func(t *testing.T) {
		cfg, err := config.New(map[string]any{
			"apiUrlBase":     "https://pay.test",
			"fakeProducts":   true,
			"maxTries":       3,
			"pollIntervalMs": 250,
		})
		require.NoError(t, err)

		assert.Equal(t, "https://pay.test", cfg.APIURLBase)
		assert.True(t, cfg.FakeProducts)
		assert.Equal(t, 3, cfg.MaxTries)
		assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
		// untouched defaults survive
		assert.Equal(t, config.Defaults().APIVersionPrefix, cfg.APIVersionPrefix)
	})

	t.Run("unrecognized key is a caller error", func(t *testing.T) {
		_, err := config.New(map[string]any{"apiUrlbase": "https://pay.test"})
		require.Error(t, err)
		assert.True(t, domainErrors.IsKind(err, domainErrors.KindConfiguration))
	})

	t.Run("localStorage nil disables the fallback store", func(t *testing.T) {
		cfg, err := config.New(map[string]any{"localStorage": nil})
		require.NoError(t, err)
		assert.False(t, cfg.LocalStorageEnabled)
	})

	t.Run("localStorage string relocates the fallback store", func(t *testing.T) {
		cfg, err := config.New(map[string]any{"localStorage": "/tmp/receipts.json"})
		require.NoError(t, err)
		assert.True(t, cfg.LocalStorageEnabled)
		assert.Equal(t, "/tmp/receipts.json", cfg.ReceiptStorePath)
	})

	t.Run("zero maxTries is rejected", func(t *testing.T) {
		_, err := config.New(map[string]any{"maxTries": 0})
		require.Error(t, err)
		assert.True(t, domainErrors.IsKind(err, domainErrors.KindConfiguration))
	})

	t.Run("relative apiUrlBase is rejected", func(t *testing.T) {
		_, err := config.New(map[string]any{"apiUrlBase": "pay.test/api"})
		require.Error(t, err)
	})

	t.Run("malformed appOrigin is an origin error", func(t *testing.T) {
		_, err := config.New(map[string]any{"appOrigin": "not an origin"})
		require.Error(t, err)
		assert.True(t, domainErrors.IsKind(err, domainErrors.KindInvalidAppOrigin))
	})
}
