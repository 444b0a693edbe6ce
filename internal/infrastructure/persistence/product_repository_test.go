package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(externalID, createdAt string) *catalog.Product {
	return &catalog.Product{
		ID:         uuid.New(),
		ExternalID: externalID,
		SKU:        "SKU-" + externalID,
		Name:       "Watch",
		Brand:      "Apple",
		Model:      "Mi Watch",
		Category:   "Smartwatch",
		Color:      "Rose Gold",
		Price:      catalog.NewPrice(decimal.RequireFromString("10.5")),
		Currency:   "USD",
		Stock:      catalog.NewStock(20),
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
		SyncedAt:   time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func seedProducts(t *testing.T, repo *GormProductRepository, n int) []*catalog.Product {
	t.Helper()
	out := make([]*catalog.Product, 0, n)
	for i := 0; i < n; i++ {
		p := newTestProduct(fmt.Sprintf("ext-%02d", i), fmt.Sprintf("2024-01-%02dT10:00:00.000Z", i+1))
		require.NoError(t, repo.Upsert(context.Background(), p))
		out = append(out, p)
	}
	return out
}

func TestGormProductRepository_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts a new product", func(t *testing.T) {
		repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
		p := newTestProduct("4HnCb2b6", "2024-01-10T10:00:00.000Z")

		require.NoError(t, repo.Upsert(ctx, p))

		found, err := repo.FindByExternalID(ctx, "4HnCb2b6")
		require.NoError(t, err)
		assert.Equal(t, p.ID, found.ID)
		assert.Equal(t, "Watch", found.Name)
		assert.True(t, found.Price.Amount.Equal(decimal.RequireFromString("10.5")))
		assert.Equal(t, int64(20), found.Stock.Quantity)
		assert.Equal(t, "2024-01-10T10:00:00.000Z", found.CreatedAt)
		assert.False(t, found.Deleted)
	})

	t.Run("overwrites the row sharing the external id and keeps its id", func(t *testing.T) {
		repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
		first := newTestProduct("4HnCb2b6", "2024-01-10T10:00:00.000Z")
		require.NoError(t, repo.Upsert(ctx, first))

		second := newTestProduct("4HnCb2b6", "2024-01-10T10:00:00.000Z")
		second.Name = "Renamed"
		require.NoError(t, repo.Upsert(ctx, second))

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, first.ID, all[0].ID)
		assert.Equal(t, "Renamed", all[0].Name)
	})

	t.Run("never changes the deletion flag of an existing row", func(t *testing.T) {
		repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
		deleted := newTestProduct("gone", "2024-01-10T10:00:00.000Z")
		kept := newTestProduct("kept", "2024-01-10T10:00:00.000Z")
		require.NoError(t, repo.Upsert(ctx, deleted))
		require.NoError(t, repo.Upsert(ctx, kept))
		_, err := repo.MarkDeleted(ctx, deleted.ID)
		require.NoError(t, err)

		// stale copies read before the delete
		staleDeleted := newTestProduct("gone", "2024-01-10T10:00:00.000Z")
		staleKept := newTestProduct("kept", "2024-01-10T10:00:00.000Z")
		staleKept.Deleted = true
		require.NoError(t, repo.Upsert(ctx, staleDeleted))
		require.NoError(t, repo.Upsert(ctx, staleKept))

		found, err := repo.FindByID(ctx, deleted.ID)
		require.NoError(t, err)
		assert.True(t, found.Deleted)

		found, err = repo.FindByID(ctx, kept.ID)
		require.NoError(t, err)
		assert.False(t, found.Deleted)
	})

	t.Run("inserts a new row with the given flag", func(t *testing.T) {
		repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
		p := newTestProduct("fresh", "2024-01-10T10:00:00.000Z")
		p.Deleted = true
		require.NoError(t, repo.Upsert(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, found.Deleted)
	})

	t.Run("stores unparsed measures with their raw text", func(t *testing.T) {
		repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
		p := newTestProduct("raw-1", "2024-01-10T10:00:00.000Z")
		p.Price = catalog.ParsePrice("free")
		p.Stock = catalog.ParseStock("")

		require.NoError(t, repo.Upsert(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, catalog.MeasureUnparsed, found.Price.Status)
		assert.Equal(t, "free", found.Price.Raw)
		assert.Equal(t, catalog.MeasureAbsent, found.Stock.Status)
	})
}

func TestGormProductRepository_Upsert_SQL(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	repo := NewGormProductRepository(mockDB.DB)

	assert.NotContains(t, productUpsertColumns, "deleted")
	assert.NotContains(t, productUpsertColumns, "id")

	mockDB.Mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT \("external_id"\) DO UPDATE SET .*"updated_at"="excluded"."updated_at","synced_at"="excluded"."synced_at"$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), newTestProduct("4HnCb2b6", "2024-01-10T10:00:00.000Z"))
	require.NoError(t, err)
}

func TestGormProductRepository_FindByID(t *testing.T) {
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_FindPaginated(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
	seeded := seedProducts(t, repo, 7)

	t.Run("pages hold at most five products", func(t *testing.T) {
		page1, err := repo.FindPaginated(ctx, catalog.ProductFilter{}, catalog.PageOffset(1), catalog.PageSize)
		require.NoError(t, err)
		assert.Len(t, page1, 5)
		assert.Equal(t, "ext-00", page1[0].ExternalID)

		page2, err := repo.FindPaginated(ctx, catalog.ProductFilter{}, catalog.PageOffset(2), catalog.PageSize)
		require.NoError(t, err)
		assert.Len(t, page2, 2)

		page3, err := repo.FindPaginated(ctx, catalog.ProductFilter{}, catalog.PageOffset(3), catalog.PageSize)
		require.NoError(t, err)
		assert.Empty(t, page3)
	})

	t.Run("deleted products are never listed", func(t *testing.T) {
		_, err := repo.MarkDeleted(ctx, seeded[0].ID)
		require.NoError(t, err)

		page1, err := repo.FindPaginated(ctx, catalog.ProductFilter{}, 0, catalog.PageSize)
		require.NoError(t, err)
		for _, p := range page1 {
			assert.NotEqual(t, seeded[0].ID, p.ID)
		}
	})

	t.Run("filters by exact value", func(t *testing.T) {
		sku := "SKU-ext-03"
		got, err := repo.FindPaginated(ctx, catalog.ProductFilter{SKU: &sku}, 0, catalog.PageSize)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ext-03", got[0].ExternalID)

		lower := "watch"
		got, err = repo.FindPaginated(ctx, catalog.ProductFilter{Name: &lower}, 0, catalog.PageSize)
		require.NoError(t, err)
		assert.Empty(t, got)

		stock := int64(20)
		price := decimal.RequireFromString("10.50")
		got, err = repo.FindPaginated(ctx, catalog.ProductFilter{Stock: &stock, Price: &price}, 0, catalog.PageSize)
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})
}

func TestGormProductRepository_FindByCriterion(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
	seeded := seedProducts(t, repo, 3)

	special := newTestProduct("stock-56", "2024-03-01T10:00:00.000Z")
	special.Stock = catalog.NewStock(56)
	require.NoError(t, repo.Upsert(ctx, special))
	_, err := repo.MarkDeleted(ctx, special.ID)
	require.NoError(t, err)

	t.Run("numeric criterion includes deleted products", func(t *testing.T) {
		got, err := repo.FindByCriterion(ctx, catalog.NewCriterionMatch(catalog.CriterionStock, "56"))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, special.ID, got[0].ID)
		assert.True(t, got[0].Deleted)
	})

	t.Run("text criterion", func(t *testing.T) {
		got, err := repo.FindByCriterion(ctx, catalog.NewCriterionMatch(catalog.CriterionSKU, seeded[1].SKU))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, seeded[1].ID, got[0].ID)
	})

	t.Run("price compares numerically", func(t *testing.T) {
		got, err := repo.FindByCriterion(ctx, catalog.NewCriterionMatch(catalog.CriterionPrice, "10.50"))
		require.NoError(t, err)
		assert.Len(t, got, 4)
	})

	t.Run("unsatisfiable value returns nothing", func(t *testing.T) {
		got, err := repo.FindByCriterion(ctx, catalog.NewCriterionMatch(catalog.CriterionStock, "abc"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown criterion is rejected", func(t *testing.T) {
		_, err := repo.FindByCriterion(ctx, catalog.NewCriterionMatch(catalog.Criterion("deleted"), "true"))
		assert.ErrorIs(t, err, catalog.ErrInvalidCriteria)
	})
}

func TestGormProductRepository_Count(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
	seeded := seedProducts(t, repo, 4)

	noPrice := newTestProduct("no-price", "2024-02-15T10:00:00.000Z")
	noPrice.Price = catalog.ParsePrice("")
	require.NoError(t, repo.Upsert(ctx, noPrice))
	_, err := repo.MarkDeleted(ctx, seeded[0].ID)
	require.NoError(t, err)

	yes, no := true, false

	total, err := repo.Count(ctx, catalog.CountFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	deleted, err := repo.Count(ctx, catalog.CountFilter{Deleted: &yes})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	priced, err := repo.Count(ctx, catalog.CountFilter{Deleted: &no, WithPrice: &yes})
	require.NoError(t, err)
	assert.Equal(t, int64(3), priced)

	unpriced, err := repo.Count(ctx, catalog.CountFilter{WithPrice: &no})
	require.NoError(t, err)
	assert.Equal(t, int64(1), unpriced)

	inRange, err := repo.Count(ctx, catalog.CountFilter{
		CreatedBetween: &catalog.DateRange{Start: "2024-01-02T00:00:00.000Z", End: "2024-01-03T23:59:59.999Z"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inRange)
}

func TestGormProductRepository_MarkDeleted(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))
	seeded := seedProducts(t, repo, 1)

	p, err := repo.MarkDeleted(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.True(t, p.Deleted)
	assert.Equal(t, seeded[0].ExternalID, p.ExternalID)

	// idempotent
	p, err = repo.MarkDeleted(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.True(t, p.Deleted)

	_, err = repo.MarkDeleted(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_ClearAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(testutil.NewSQLiteDB(t))

	err := repo.ClearAll(ctx)
	assert.ErrorIs(t, err, catalog.ErrEmptyStore)

	seedProducts(t, repo, 3)
	require.NoError(t, repo.ClearAll(ctx))

	total, err := repo.Count(ctx, catalog.CountFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormSyncRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSyncRunRepository(testutil.NewSQLiteDB(t))

	_, err := repo.FindLatest(ctx)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	older := catalog.NewSyncRun(catalog.SyncTriggerScheduled)
	older.StartedAt = time.Now().Add(-time.Hour)
	older.Complete(catalog.SyncStats{Fetched: 2, Inserted: 2})
	require.NoError(t, repo.Save(ctx, older))

	latest := catalog.NewSyncRun(catalog.SyncTriggerHTTP)
	require.NoError(t, repo.Save(ctx, latest))

	found, err := repo.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, found.ID)
	assert.Equal(t, catalog.SyncRunRunning, found.Status)

	latest.Fail(catalog.SyncStats{Fetched: 1}, assert.AnError)
	require.NoError(t, repo.Save(ctx, latest))

	found, err = repo.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, catalog.SyncRunFailed, found.Status)
	assert.Equal(t, assert.AnError.Error(), found.Error)
	assert.NotNil(t, found.FinishedAt)
}
