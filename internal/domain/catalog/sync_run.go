package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SyncTrigger records what started a reconciliation sweep
type SyncTrigger string

const (
	SyncTriggerScheduled SyncTrigger = "scheduled"
	SyncTriggerManual    SyncTrigger = "manual"
	SyncTriggerHTTP      SyncTrigger = "http"
)

// SyncRunStatus is the lifecycle state of a sweep
type SyncRunStatus string

const (
	SyncRunRunning   SyncRunStatus = "running"
	SyncRunCompleted SyncRunStatus = "completed"
	SyncRunFailed    SyncRunStatus = "failed"
)

// SyncStats summarises one sweep
type SyncStats struct {
	Fetched  int
	Inserted int
	Updated  int
	Unparsed int
}

// SyncRun is the history entry of one reconciliation sweep
type SyncRun struct {
	ID         uuid.UUID
	Trigger    SyncTrigger
	Status     SyncRunStatus
	StartedAt  time.Time
	FinishedAt *time.Time
	Stats      SyncStats
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSyncRun starts a run
func NewSyncRun(trigger SyncTrigger) *SyncRun {
	now := time.Now()
	return &SyncRun{
		ID:        uuid.New(),
		Trigger:   trigger,
		Status:    SyncRunRunning,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete marks the run as completed
func (r *SyncRun) Complete(stats SyncStats) {
	now := time.Now()
	r.Status = SyncRunCompleted
	r.Stats = stats
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// Fail marks the run as failed
func (r *SyncRun) Fail(stats SyncStats, err error) {
	now := time.Now()
	r.Status = SyncRunFailed
	r.Stats = stats
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// Duration returns how long the run took, or zero while running
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SyncRunRepository persists sweep history
type SyncRunRepository interface {
	// Save creates or updates a run
	Save(ctx context.Context, run *SyncRun) error

	// FindLatest returns the most recently started run
	FindLatest(ctx context.Context) (*SyncRun, error)
}
