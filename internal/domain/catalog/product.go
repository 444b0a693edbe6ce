package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry mirrored from the upstream content source.
// Every field except ID, Deleted and SyncedAt is owned by upstream and is
// overwritten on each reconciliation sighting.
type Product struct {
	ID         uuid.UUID
	ExternalID string
	SKU        string
	Name       string
	Brand      string
	Model      string
	Category   string
	Color      string
	Price      Price
	Currency   string
	Stock      Stock
	// CreatedAt and UpdatedAt are the upstream timestamps in their original string form
	CreatedAt string
	UpdatedAt string
	// Deleted is local-only state, never supplied by upstream
	Deleted  bool
	SyncedAt time.Time
}

// MergeSourceRecord builds the record to upsert for one upstream sighting.
// The local ID and deletion flag are carried forward from existing when it is
// non-nil; otherwise a new ID is assigned and the flag starts false.
func MergeSourceRecord(raw RawProduct, existing *Product, syncedAt time.Time) (*Product, error) {
	externalID := strings.TrimSpace(raw.ExternalID)
	if externalID == "" {
		return nil, ErrSourceMalformed.WithMessage("upstream record has no external id")
	}

	p := &Product{
		ID:         uuid.New(),
		ExternalID: externalID,
		SKU:        raw.Fields.SKU,
		Name:       raw.Fields.Name,
		Brand:      raw.Fields.Brand,
		Model:      raw.Fields.Model,
		Category:   raw.Fields.Category,
		Color:      raw.Fields.Color,
		Price:      ParsePrice(raw.Fields.Price),
		Currency:   raw.Fields.Currency,
		Stock:      ParseStock(raw.Fields.Stock),
		CreatedAt:  raw.CreatedAt,
		UpdatedAt:  raw.UpdatedAt,
		Deleted:    CarriedDeletionFlag(existing),
		SyncedAt:   syncedAt,
	}
	if existing != nil {
		p.ID = existing.ID
	}
	return p, nil
}

// CarriedDeletionFlag returns the deletion flag a reconciled record must keep
func CarriedDeletionFlag(existing *Product) bool {
	if existing == nil {
		return false
	}
	return existing.Deleted
}

// MarkDeleted soft-deletes the product
func (p *Product) MarkDeleted() {
	p.Deleted = true
}

// HasUnparsedMeasure reports whether price or stock could not be read from upstream
func (p *Product) HasUnparsedMeasure() bool {
	return p.Price.Status == MeasureUnparsed || p.Stock.Status == MeasureUnparsed
}
