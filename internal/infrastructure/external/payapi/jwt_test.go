package payapi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bivex/webpay-client/internal/domain/entity"
	"github.com/bivex/webpay-client/internal/infrastructure/external/payapi"
)

func TestParsePayRequest(t *testing.T) {
	t.Run("decodes product metadata from the request claim", func(t *testing.T) {
		token, err := payapi.SignFakePayRequest(&entity.ProductInfo{
			ProductID:     "p1",
			Name:          "Magic Sword",
			Description:   "Sharp",
			PricePoint:    2,
			SmallImageURL: "https://img.example.com/p1.png",
		}, []byte("secret"))
		require.NoError(t, err)

		info, err := payapi.ParsePayRequest(token)
		require.NoError(t, err)
		assert.Equal(t, "p1", info.ProductID)
		assert.Equal(t, "Magic Sword", info.Name)
		assert.Equal(t, "Sharp", info.Description)
		assert.Equal(t, float64(2), info.PricePoint)
		assert.Equal(t, "https://img.example.com/p1.png", info.SmallImageURL)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := payapi.ParsePayRequest("not-a-jwt")
		assert.Error(t, err)
	})
}
