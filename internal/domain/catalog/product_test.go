package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawProduct(externalID string) RawProduct {
	return RawProduct{
		ExternalID: externalID,
		CreatedAt:  "2024-01-10T10:00:00.000Z",
		UpdatedAt:  "2024-01-11T10:00:00.000Z",
		Fields: RawFields{
			SKU:      "ZIM0SRVC",
			Name:     "Apple Mi Watch",
			Brand:    "Apple",
			Model:    "Mi Watch",
			Category: "Smartwatch",
			Color:    "Rose Gold",
			Price:    "1410.29",
			Currency: "USD",
			Stock:    "7",
		},
	}
}

func TestMergeSourceRecord(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new record gets a fresh id and is not deleted", func(t *testing.T) {
		p, err := MergeSourceRecord(rawProduct("4HnCb2b6"), nil, now)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "4HnCb2b6", p.ExternalID)
		assert.False(t, p.Deleted)
		assert.Equal(t, "ZIM0SRVC", p.SKU)
		assert.True(t, p.Price.Valid())
		assert.True(t, p.Price.Amount.Equal(decimal.RequireFromString("1410.29")))
		assert.Equal(t, int64(7), p.Stock.Quantity)
		assert.Equal(t, "2024-01-10T10:00:00.000Z", p.CreatedAt)
		assert.Equal(t, now, p.SyncedAt)
	})

	t.Run("existing record keeps id and deletion flag", func(t *testing.T) {
		existing := &Product{ID: uuid.New(), ExternalID: "4HnCb2b6", Name: "Old name", Deleted: true}

		raw := rawProduct("4HnCb2b6")
		raw.Fields.Name = "New name"
		p, err := MergeSourceRecord(raw, existing, now)
		require.NoError(t, err)

		assert.Equal(t, existing.ID, p.ID)
		assert.True(t, p.Deleted)
		assert.Equal(t, "New name", p.Name)
	})

	t.Run("existing non-deleted record stays non-deleted", func(t *testing.T) {
		existing := &Product{ID: uuid.New(), ExternalID: "4HnCb2b6"}
		p, err := MergeSourceRecord(rawProduct("4HnCb2b6"), existing, now)
		require.NoError(t, err)
		assert.False(t, p.Deleted)
	})

	t.Run("unparseable numerics are tagged, not rejected", func(t *testing.T) {
		raw := rawProduct("x1")
		raw.Fields.Price = "n/a"
		raw.Fields.Stock = "lots"
		p, err := MergeSourceRecord(raw, nil, now)
		require.NoError(t, err)

		assert.Equal(t, MeasureUnparsed, p.Price.Status)
		assert.Equal(t, "n/a", p.Price.Raw)
		assert.Equal(t, MeasureUnparsed, p.Stock.Status)
		assert.Equal(t, "lots", p.Stock.Raw)
		assert.True(t, p.HasUnparsedMeasure())
	})

	t.Run("missing external id is malformed", func(t *testing.T) {
		_, err := MergeSourceRecord(rawProduct("  "), nil, now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSourceMalformed))
	})
}

func TestCarriedDeletionFlag(t *testing.T) {
	assert.False(t, CarriedDeletionFlag(nil))
	assert.False(t, CarriedDeletionFlag(&Product{}))
	assert.True(t, CarriedDeletionFlag(&Product{Deleted: true}))
}

func TestProduct_MarkDeleted(t *testing.T) {
	p := &Product{ID: uuid.New()}
	p.MarkDeleted()
	assert.True(t, p.Deleted)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, PageOffset(1))
	assert.Equal(t, 5, PageOffset(2))
	assert.Equal(t, 45, PageOffset(10))
}
