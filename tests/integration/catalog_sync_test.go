package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	reportapp "github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/cache"
	"github.com/catalogsync/backend/internal/infrastructure/contentful"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeContentful serves a mutable set of entries through the delivery API shape
type fakeContentful struct {
	mu      sync.Mutex
	entries []map[string]any
	failing bool
}

func (f *fakeContentful) set(entries ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = entries
}

func (f *fakeContentful) fail(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *fakeContentful) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items := []map[string]any{}
	if skip < len(f.entries) {
		items = f.entries[skip:min(skip+limit, len(f.entries))]
	}

	w.Header().Set("Content-Type", "application/vnd.contentful.delivery.v1+json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"sys":   map[string]any{"type": "Array"},
		"total": len(f.entries),
		"skip":  skip,
		"limit": limit,
		"items": items,
	})
}

func entry(id, brand string, price any, createdAt string) map[string]any {
	return map[string]any{
		"sys": map[string]any{
			"id":        id,
			"type":      "Entry",
			"createdAt": createdAt,
			"updatedAt": createdAt,
		},
		"fields": map[string]any{
			"sku":      "SKU-" + id,
			"name":     brand + " Watch",
			"brand":    brand,
			"model":    "Model " + id,
			"category": "Smartwatch",
			"color":    "Silver",
			"price":    price,
			"currency": "USD",
			"stock":    5,
		},
	}
}

// TestCatalogSync_Integration runs sweeps from a fake delivery API into
// PostgreSQL and reads the results back through the report service.
func TestCatalogSync_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	upstream := &fakeContentful{}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	adapter, err := contentful.NewAdapter(&contentful.Config{
		BaseURL:     srv.URL,
		SpaceID:     "space-1",
		AccessToken: "token",
		ContentType: "product",
		PageSize:    2,
		Timeout:     5 * time.Second,
	}, contentful.WithLogger(log))
	require.NoError(t, err)

	reportCache := cache.NewInMemoryReportCache()
	t.Cleanup(func() { _ = reportCache.Close() })

	products := persistence.NewGormProductRepository(testDB.DB)
	runs := persistence.NewGormSyncRunRepository(testDB.DB)
	syncService := catalogapp.NewSyncService(adapter, products, "product", log,
		catalogapp.WithSyncRunRepository(runs),
		catalogapp.WithCacheInvalidator(reportCache))
	productService := catalogapp.NewProductService(products, reportCache, log)
	reportService := reportapp.NewReportService(products, reportCache, time.Minute, log)

	upstream.set(
		entry("e1", "Apple", 499.0, "2024-01-05T08:00:00.000Z"),
		entry("e2", "Apple", nil, "2024-01-20T08:00:00.000Z"),
		entry("e3", "Samsung", 299.99, "2024-02-15T08:00:00.000Z"),
	)

	t.Run("first sweep inserts every entry", func(t *testing.T) {
		result, err := syncService.Run(ctx, catalog.SyncTriggerManual)
		require.NoError(t, err)
		assert.Equal(t, catalog.SyncStats{Fetched: 3, Inserted: 3}, result.Stats)

		page, err := productService.List(ctx, 1, catalog.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, "e1", page[0].ExternalID)
		assert.Nil(t, page[1].Price)
	})

	t.Run("deletion survives the next sweep", func(t *testing.T) {
		e1, err := products.FindByExternalID(ctx, "e1")
		require.NoError(t, err)
		_, err = productService.Delete(ctx, e1.ID.String())
		require.NoError(t, err)

		pct, err := reportService.DeletedPercentage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "33.33", pct.Value.Round(2).String())

		upstream.set(
			entry("e1", "Apple", 459.0, "2024-01-05T08:00:00.000Z"),
			entry("e2", "Apple", nil, "2024-01-20T08:00:00.000Z"),
			entry("e3", "Samsung", 299.99, "2024-02-15T08:00:00.000Z"),
			entry("e4", "Garmin", 199, "2024-03-01T08:00:00.000Z"),
		)
		result, err := syncService.Run(ctx, catalog.SyncTriggerScheduled)
		require.NoError(t, err)
		assert.Equal(t, catalog.SyncStats{Fetched: 4, Inserted: 1, Updated: 3}, result.Stats)

		reloaded, err := products.FindByExternalID(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, e1.ID, reloaded.ID)
		assert.True(t, reloaded.Deleted)
		assert.Equal(t, "459", reloaded.Price.Amount.String())

		// the sweep invalidated the cached percentage
		pct, err = reportService.DeletedPercentage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "25%", pct.Display)
	})

	t.Run("non-deleted percentage with price and date range", func(t *testing.T) {
		withPrice := true
		start, end := "2024-01-01", "2024-02-28"
		pct, err := reportService.NonDeletedPercentage(ctx, reportapp.NonDeletedFilter{
			WithPrice: &withPrice,
			StartDate: &start,
			EndDate:   &end,
		})
		require.NoError(t, err)
		assert.Equal(t, "25%", pct.Display)
	})

	t.Run("custom report includes deleted products", func(t *testing.T) {
		rep, err := reportService.CustomReport(ctx, "brand", "Apple")
		require.NoError(t, err)
		assert.Equal(t, 2, rep.Count)
		assert.True(t, rep.Products[0].Deleted)
	})

	t.Run("failed sweep is recorded and leaves the store untouched", func(t *testing.T) {
		upstream.fail(true)
		defer upstream.fail(false)

		_, err := syncService.Run(ctx, catalog.SyncTriggerManual)
		require.Error(t, err)
		assert.ErrorIs(t, err, catalog.ErrSourceUnavailable)

		latest, err := syncService.LatestRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, catalog.SyncRunFailed, latest.Status)

		all, err := products.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}
