package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bivex/webpay-client/internal/domain/entity"
)

func TestTransactionStatus(t *testing.T) {
	t.Run("completed and failed are terminal", func(t *testing.T) {
		assert.True(t, entity.TransactionStatusCompleted.IsTerminal())
		assert.True(t, entity.TransactionStatusFailed.IsTerminal())
	})

	t.Run("pending and incomplete are not terminal", func(t *testing.T) {
		assert.False(t, entity.TransactionStatusPending.IsTerminal())
		assert.False(t, entity.TransactionStatusIncomplete.IsTerminal())
	})

	t.Run("contract statuses are known", func(t *testing.T) {
		for _, s := range []entity.TransactionStatus{
			entity.TransactionStatusPending,
			entity.TransactionStatusIncomplete,
			entity.TransactionStatusCompleted,
			entity.TransactionStatusFailed,
		} {
			assert.True(t, s.IsKnown(), string(s))
		}
	})

	t.Run("anything else is unknown", func(t *testing.T) {
		assert.False(t, entity.TransactionStatus("settling").IsKnown())
		assert.False(t, entity.TransactionStatus("").IsKnown())
	})
}

func TestTransaction(t *testing.T) {
	t.Run("NewTransaction records product and status", func(t *testing.T) {
		tx := entity.NewTransaction("product-1", entity.TransactionStatusPending)

		assert.Equal(t, "product-1", tx.ProductID)
		assert.Equal(t, entity.TransactionStatusPending, tx.Status)
		assert.False(t, tx.ObservedAt.IsZero())
		assert.False(t, tx.HasReceipt())
	})

	t.Run("completed transaction with receipt", func(t *testing.T) {
		tx := entity.NewTransaction("product-1", entity.TransactionStatusCompleted)
		tx.Receipt = "r1"

		assert.True(t, tx.IsCompleted())
		assert.False(t, tx.IsFailed())
		assert.True(t, tx.HasReceipt())
	})
}

func TestProductInfoMerge(t *testing.T) {
	t.Run("fills only missing fields", func(t *testing.T) {
		base := &entity.ProductInfo{ProductID: "p1", Name: "From Token"}
		catalog := &entity.ProductInfo{
			ProductID:     "other-id",
			Name:          "From Catalog",
			SmallImageURL: "https://img.example.com/p1.png",
			PricePoint:    3,
		}

		merged := base.Merge(catalog)

		assert.Equal(t, "p1", merged.ProductID)
		assert.Equal(t, "From Token", merged.Name)
		assert.Equal(t, "https://img.example.com/p1.png", merged.SmallImageURL)
		assert.Equal(t, float64(3), merged.PricePoint)
	})

	t.Run("nil other is a copy", func(t *testing.T) {
		base := entity.NewProductInfo("p1")
		merged := base.Merge(nil)

		assert.Equal(t, base.ProductID, merged.ProductID)
		assert.NotSame(t, base, merged)
	})
}
