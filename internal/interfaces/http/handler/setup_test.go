package handler

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	catalogapp "github.com/catalogsync/backend/internal/application/catalog"
	reportapp "github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/internal/interfaces/http/middleware"
	"github.com/catalogsync/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testContentType = "product"

// stubSource serves a fixed snapshot or a fixed error
type stubSource struct {
	mu      sync.Mutex
	records []catalog.RawProduct
	err     error
}

func (s *stubSource) Fetch(context.Context, string) ([]catalog.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]catalog.RawProduct, len(s.records))
	copy(out, s.records)
	return out, nil
}

func rawRecord(externalID, brand, price, stock, createdAt string) catalog.RawProduct {
	return catalog.RawProduct{
		ExternalID: externalID,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
		Fields: catalog.RawFields{
			SKU:      "SKU-" + externalID,
			Name:     "Watch " + externalID,
			Brand:    brand,
			Model:    "Series 9",
			Category: "Smartwatch",
			Color:    "Black",
			Price:    price,
			Currency: "USD",
			Stock:    stock,
		},
	}
}

// testEnv wires real services over an in-memory sqlite store
type testEnv struct {
	t        *testing.T
	source   *stubSource
	products *persistence.GormProductRepository
	runs     *persistence.GormSyncRunRepository

	productService *catalogapp.ProductService
	syncService    *catalogapp.SyncService
	reportService  *reportapp.ReportService
}

func newTestEnv(t *testing.T, records ...catalog.RawProduct) *testEnv {
	t.Helper()
	middleware.SetupValidator()

	db := testutil.NewSQLiteDB(t)

	log := zaptest.NewLogger(t)
	env := &testEnv{
		t:        t,
		source:   &stubSource{records: records},
		products: persistence.NewGormProductRepository(db),
		runs:     persistence.NewGormSyncRunRepository(db),
	}
	env.productService = catalogapp.NewProductService(env.products, nil, log)
	env.syncService = catalogapp.NewSyncService(env.source, env.products, testContentType, log,
		catalogapp.WithSyncRunRepository(env.runs))
	env.reportService = reportapp.NewReportService(env.products, nil, 0, log)
	return env
}

// sync runs one sweep so the store holds the stub snapshot
func (e *testEnv) sync() *catalogapp.SyncResult {
	e.t.Helper()
	result, err := e.syncService.Run(context.Background(), catalog.SyncTriggerManual)
	require.NoError(e.t, err)
	return result
}

func serve(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func newHandlerRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	return router
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}
