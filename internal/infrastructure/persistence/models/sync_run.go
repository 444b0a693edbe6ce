package models

import (
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// SyncRunModel is the persistence model for reconciliation history
type SyncRunModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Trigger    string    `gorm:"type:varchar(20);not null"`
	Status     string    `gorm:"type:varchar(20);not null;index"`
	StartedAt  time.Time `gorm:"not null;index"`
	FinishedAt *time.Time
	Fetched    int       `gorm:"not null"`
	Inserted   int       `gorm:"not null"`
	Updated    int       `gorm:"not null"`
	Unparsed   int       `gorm:"not null"`
	Error      string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

// ToDomain converts the persistence model to a domain SyncRun
func (m *SyncRunModel) ToDomain() *catalog.SyncRun {
	return &catalog.SyncRun{
		ID:         m.ID,
		Trigger:    catalog.SyncTrigger(m.Trigger),
		Status:     catalog.SyncRunStatus(m.Status),
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Stats: catalog.SyncStats{
			Fetched:  m.Fetched,
			Inserted: m.Inserted,
			Updated:  m.Updated,
			Unparsed: m.Unparsed,
		},
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SyncRunModelFromDomain creates a new persistence model from a domain SyncRun
func SyncRunModelFromDomain(r *catalog.SyncRun) *SyncRunModel {
	return &SyncRunModel{
		ID:         r.ID,
		Trigger:    string(r.Trigger),
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Fetched:    r.Stats.Fetched,
		Inserted:   r.Stats.Inserted,
		Updated:    r.Stats.Updated,
		Unparsed:   r.Stats.Unparsed,
		Error:      r.Error,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
