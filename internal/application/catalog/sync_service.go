package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/logger"
	"github.com/catalogsync/backend/internal/infrastructure/scheduler"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SnapshotArchive stores the raw upstream snapshot of a sweep
type SnapshotArchive interface {
	Archive(ctx context.Context, key string, records []catalog.RawProduct) error
}

// SyncMetricsRecorder records the outcome of a sweep
type SyncMetricsRecorder interface {
	RecordSync(ctx context.Context, trigger catalog.SyncTrigger, status catalog.SyncRunStatus, stats catalog.SyncStats, duration time.Duration)
}

// CacheInvalidator drops derived data after the store changes
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SyncService reconciles the product store against the upstream catalog
type SyncService struct {
	source      catalog.CatalogSource
	productRepo catalog.ProductRepository
	runRepo     catalog.SyncRunRepository
	contentType string
	logger      *zap.Logger

	archive SnapshotArchive
	metrics SyncMetricsRecorder
	cache   CacheInvalidator
	now     func() time.Time
}

// SyncServiceOption configures optional collaborators of SyncService
type SyncServiceOption func(*SyncService)

// WithSyncRunRepository records every sweep in run history
func WithSyncRunRepository(repo catalog.SyncRunRepository) SyncServiceOption {
	return func(s *SyncService) { s.runRepo = repo }
}

// WithSnapshotArchive archives each fetched snapshot
func WithSnapshotArchive(archive SnapshotArchive) SyncServiceOption {
	return func(s *SyncService) { s.archive = archive }
}

// WithSyncMetrics records sweep metrics
func WithSyncMetrics(metrics SyncMetricsRecorder) SyncServiceOption {
	return func(s *SyncService) { s.metrics = metrics }
}

// WithCacheInvalidator invalidates cached reports after each sweep
func WithCacheInvalidator(cache CacheInvalidator) SyncServiceOption {
	return func(s *SyncService) { s.cache = cache }
}

// NewSyncService creates a new SyncService
func NewSyncService(
	source catalog.CatalogSource,
	productRepo catalog.ProductRepository,
	contentType string,
	log *zap.Logger,
	opts ...SyncServiceOption,
) *SyncService {
	s := &SyncService{
		source:      source,
		productRepo: productRepo,
		contentType: contentType,
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile runs an on-demand sweep and returns every stored product
func (s *SyncService) Reconcile(ctx context.Context) (*SyncResult, error) {
	return s.Run(ctx, catalog.SyncTriggerHTTP)
}

// Run performs one sweep: fetch the upstream snapshot, then upsert each record
// while carrying its local deletion flag forward. A fetch failure leaves the
// store untouched. The first store failure aborts the sweep; records already
// written stay written.
func (s *SyncService) Run(ctx context.Context, trigger catalog.SyncTrigger) (*SyncResult, error) {
	run := catalog.NewSyncRun(trigger)
	ctx, log := logger.WithSyncRunID(ctx, s.logger, run.ID.String())

	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "run",
		telemetry.WithAttribute(telemetry.SpanAttrRunID, run.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrTrigger, string(trigger)),
		telemetry.WithAttribute(telemetry.SpanAttrContentType, s.contentType),
	)
	defer span.End()

	log.Info("Catalog sync started", zap.String("trigger", string(trigger)))
	s.saveRun(ctx, log, run)

	var (
		stats catalog.SyncStats
		err   error
	)
	telemetry.WithProfileLabels(ctx, func(ctx context.Context) {
		stats, err = s.sweep(ctx, log, run)
	}, telemetry.ProfileLabelOperation, "catalog_sync", telemetry.ProfileLabelTrigger, string(trigger))
	if err != nil {
		run.Fail(stats, err)
	} else {
		run.Complete(stats)
	}
	s.saveRun(ctx, log, run)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrFetched, stats.Fetched,
		telemetry.SpanAttrInserted, stats.Inserted,
		telemetry.SpanAttrUpdated, stats.Updated,
		telemetry.SpanAttrUnparsed, stats.Unparsed,
	)

	if s.metrics != nil {
		s.metrics.RecordSync(ctx, trigger, run.Status, stats, run.Duration())
	}
	if stats.Inserted+stats.Updated > 0 {
		s.invalidateCache(ctx, log)
	}

	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Catalog sync failed",
			zap.Int("fetched", stats.Fetched),
			zap.Int("inserted", stats.Inserted),
			zap.Int("updated", stats.Updated),
			zap.Error(err),
		)
		return nil, err
	}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, syncFailed("reading the store", err)
	}

	log.Info("Catalog sync completed",
		zap.Int("fetched", stats.Fetched),
		zap.Int("inserted", stats.Inserted),
		zap.Int("updated", stats.Updated),
		zap.Int("unparsed", stats.Unparsed),
		zap.Int("stored", len(products)),
		zap.Duration("duration", run.Duration()),
	)

	return &SyncResult{
		RunID:      run.ID,
		Products:   products,
		Stats:      stats,
		StartedAt:  run.StartedAt,
		FinishedAt: *run.FinishedAt,
	}, nil
}

func (s *SyncService) sweep(ctx context.Context, log *zap.Logger, run *catalog.SyncRun) (catalog.SyncStats, error) {
	var stats catalog.SyncStats

	records, err := s.source.Fetch(ctx, s.contentType)
	if err != nil {
		return stats, syncFailed("fetching the upstream catalog", err)
	}
	stats.Fetched = len(records)

	s.archiveSnapshot(ctx, log, run, records)

	syncedAt := s.now()
	for _, raw := range records {
		existing, err := s.productRepo.FindByExternalID(ctx, raw.ExternalID)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return stats, syncFailed("reading product "+raw.ExternalID, err)
			}
			existing = nil
		}

		product, err := catalog.MergeSourceRecord(raw, existing, syncedAt)
		if err != nil {
			return stats, syncFailed("merging an upstream record", err)
		}

		if err := s.productRepo.Upsert(ctx, product); err != nil {
			return stats, syncFailed("storing product "+product.ExternalID, err)
		}

		if existing == nil {
			stats.Inserted++
		} else {
			stats.Updated++
		}
		if product.HasUnparsedMeasure() {
			stats.Unparsed++
			log.Warn("Upstream record has unparseable numeric fields",
				zap.String("external_id", product.ExternalID),
				zap.String("price_raw", product.Price.Raw),
				zap.String("stock_raw", product.Stock.Raw),
			)
		}
	}

	return stats, nil
}

func (s *SyncService) archiveSnapshot(ctx context.Context, log *zap.Logger, run *catalog.SyncRun, records []catalog.RawProduct) {
	if s.archive == nil {
		return
	}
	key := run.StartedAt.UTC().Format(time.RFC3339) + ".json"
	if err := s.archive.Archive(ctx, key, records); err != nil {
		log.Warn("Failed to archive catalog snapshot", zap.String("key", key), zap.Error(err))
	}
}

func (s *SyncService) saveRun(ctx context.Context, log *zap.Logger, run *catalog.SyncRun) {
	if s.runRepo == nil {
		return
	}
	if err := s.runRepo.Save(ctx, run); err != nil {
		log.Warn("Failed to record sync run", zap.String("status", string(run.Status)), zap.Error(err))
	}
}

func (s *SyncService) invalidateCache(ctx context.Context, log *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn("Failed to invalidate report cache", zap.Error(err))
	}
}

// Execute implements scheduler.JobExecutor
func (s *SyncService) Execute(ctx context.Context, job *scheduler.Job) error {
	if job.Type != scheduler.JobTypeCatalogSync {
		return fmt.Errorf("%w: %s", scheduler.ErrUnsupportedJobType, job.Type)
	}

	trigger := catalog.SyncTriggerScheduled
	if job.Trigger == scheduler.JobTriggerManual {
		trigger = catalog.SyncTriggerManual
	}

	_, err := s.Run(ctx, trigger)
	return err
}

// LatestRun returns the most recent sweep
func (s *SyncService) LatestRun(ctx context.Context) (*catalog.SyncRun, error) {
	if s.runRepo == nil {
		return nil, shared.ErrNotFound.WithMessage("sync history is not recorded")
	}
	return s.runRepo.FindLatest(ctx)
}

// syncFailed wraps cause so that both ErrSyncFailed and the cause match errors.Is
func syncFailed(stage string, cause error) error {
	return fmt.Errorf("%w: %w", shared.ErrSyncFailed.WithMessage("Catalog synchronization failed while "+stage), cause)
}
