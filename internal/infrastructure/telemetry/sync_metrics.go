package telemetry

import (
	"context"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"go.opentelemetry.io/otel/metric"
)

// SyncMeterName is the instrumentation scope of reconciliation metrics
const SyncMeterName = "catalog-sync/reconciler"

// record outcomes counted by catalog_sync_records_total
const (
	OutcomeFetched  = "fetched"
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
	OutcomeUnparsed = "unparsed"
)

// SyncMetrics records reconciliation runs. It satisfies the sync service's
// metrics recorder.
type SyncMetrics struct {
	runs     *Counter
	records  *Counter
	duration *Histogram
}

// NewSyncMetrics registers the sync instruments on meter
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	runs, err := NewCounter(meter, "catalog_sync_runs_total", "Reconciliation runs by trigger and final status", "{run}")
	if err != nil {
		return nil, err
	}
	records, err := NewCounter(meter, "catalog_sync_records_total", "Upstream records processed by outcome", "{record}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "catalog_sync_duration_seconds", "Wall time of a reconciliation run", "s", SyncDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return &SyncMetrics{runs: runs, records: records, duration: duration}, nil
}

// RecordSync records one finished run
func (m *SyncMetrics) RecordSync(ctx context.Context, trigger catalog.SyncTrigger, status catalog.SyncRunStatus, stats catalog.SyncStats, duration time.Duration) {
	m.runs.Inc(ctx, AttrSyncTrigger.String(string(trigger)), AttrSyncStatus.String(string(status)))

	for outcome, n := range map[string]int{
		OutcomeFetched:  stats.Fetched,
		OutcomeInserted: stats.Inserted,
		OutcomeUpdated:  stats.Updated,
		OutcomeUnparsed: stats.Unparsed,
	} {
		if n > 0 {
			m.records.Add(ctx, int64(n), AttrSyncOutcome.String(outcome))
		}
	}

	m.duration.RecordDuration(ctx, duration, AttrSyncStatus.String(string(status)))
}
