package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/infrastructure/persistence"
	"github.com/catalogsync/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindPaginated(ctx context.Context, filter catalog.ProductFilter, skip, take int) ([]catalog.Product, error) {
	args := m.Called(ctx, filter, skip, take)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCriterion(ctx context.Context, match catalog.CriterionMatch) ([]catalog.Product, error) {
	args := m.Called(ctx, match)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter catalog.CountFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) MarkDeleted(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCatalogSource is a mock implementation of CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Fetch(ctx context.Context, contentType string) ([]catalog.RawProduct, error) {
	args := m.Called(ctx, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.RawProduct), args.Error(1)
}

// MockSyncRunRepository is a mock implementation of SyncRunRepository
type MockSyncRunRepository struct {
	mock.Mock
}

func (m *MockSyncRunRepository) Save(ctx context.Context, run *catalog.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSyncRunRepository) FindLatest(ctx context.Context) (*catalog.SyncRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.SyncRun), args.Error(1)
}

// MockCacheInvalidator is a mock implementation of CacheInvalidator
type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// stubSource serves a fixed snapshot that tests can replace between sweeps
type stubSource struct {
	mu      sync.Mutex
	records []catalog.RawProduct
}

func (s *stubSource) set(records ...catalog.RawProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

func (s *stubSource) Fetch(context.Context, string) ([]catalog.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.RawProduct, len(s.records))
	copy(out, s.records)
	return out, nil
}

type archivedSnapshot struct {
	key     string
	records []catalog.RawProduct
}

type fakeArchive struct {
	err       error
	snapshots []archivedSnapshot
}

func (a *fakeArchive) Archive(_ context.Context, key string, records []catalog.RawProduct) error {
	a.snapshots = append(a.snapshots, archivedSnapshot{key: key, records: records})
	return a.err
}

type recordedSync struct {
	trigger  catalog.SyncTrigger
	status   catalog.SyncRunStatus
	stats    catalog.SyncStats
	duration time.Duration
}

type fakeMetrics struct {
	recorded []recordedSync
}

func (f *fakeMetrics) RecordSync(_ context.Context, trigger catalog.SyncTrigger, status catalog.SyncRunStatus, stats catalog.SyncStats, duration time.Duration) {
	f.recorded = append(f.recorded, recordedSync{trigger: trigger, status: status, stats: stats, duration: duration})
}

func rawRecord(externalID, name, price, stock string) catalog.RawProduct {
	return catalog.RawProduct{
		ExternalID: externalID,
		CreatedAt:  "2024-01-10T10:00:00.000Z",
		UpdatedAt:  "2024-01-11T10:00:00.000Z",
		Fields: catalog.RawFields{
			SKU:      "SKU-" + externalID,
			Name:     name,
			Brand:    "Apple",
			Model:    "Mi Watch",
			Category: "Smartwatch",
			Color:    "Rose Gold",
			Price:    price,
			Currency: "USD",
			Stock:    stock,
		},
	}
}

// setupStore returns sqlite-backed repositories sharing one in-memory database
func setupStore(t *testing.T) (*persistence.GormProductRepository, *persistence.GormSyncRunRepository) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return persistence.NewGormProductRepository(db), persistence.NewGormSyncRunRepository(db)
}

// deleteOnReadRepo marks a product deleted right after a sweep has read it,
// as a concurrent DELETE request would
type deleteOnReadRepo struct {
	*persistence.GormProductRepository
	target string
	done   bool
}

func (r *deleteOnReadRepo) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	p, err := r.GormProductRepository.FindByExternalID(ctx, externalID)
	if err == nil && externalID == r.target && !r.done {
		r.done = true
		if _, err := r.MarkDeleted(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return p, err
}
