package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListProductsRequest is the query of a product listing.
// Every filter is an exact, case-sensitive match.
type ListProductsRequest struct {
	Page     int     `form:"page" binding:"omitempty,min=1"`
	SKU      *string `form:"sku"`
	Name     *string `form:"name"`
	Brand    *string `form:"brand"`
	Model    *string `form:"model"`
	Category *string `form:"category"`
	Color    *string `form:"color"`
	Price    *string `form:"price"`
	Currency *string `form:"currency"`
	Stock    *string `form:"stock"`
}

// PageOrDefault returns the requested page, 1 when none was given
func (r ListProductsRequest) PageOrDefault() int {
	if r.Page == 0 {
		return 1
	}
	return r.Page
}

// ToFilter converts the request into a store filter
func (r ListProductsRequest) ToFilter() (catalog.ProductFilter, error) {
	filter := catalog.ProductFilter{
		SKU:      r.SKU,
		Name:     r.Name,
		Brand:    r.Brand,
		Model:    r.Model,
		Category: r.Category,
		Color:    r.Color,
		Currency: r.Currency,
	}

	if r.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*r.Price))
		if err != nil {
			return catalog.ProductFilter{}, shared.ErrInvalidInput.WithMessage("price must be a number")
		}
		filter.Price = &price
	}

	if r.Stock != nil {
		stock, err := strconv.ParseInt(strings.TrimSpace(*r.Stock), 10, 64)
		if err != nil {
			return catalog.ProductFilter{}, shared.ErrInvalidInput.WithMessage("stock must be an integer")
		}
		filter.Stock = &stock
	}

	return filter, nil
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID         uuid.UUID        `json:"id"`
	ExternalID string           `json:"external_id"`
	SKU        string           `json:"sku"`
	Name       string           `json:"name"`
	Brand      string           `json:"brand"`
	Model      string           `json:"model"`
	Category   string           `json:"category"`
	Color      string           `json:"color"`
	Price      *decimal.Decimal `json:"price"`
	PriceRaw   string           `json:"price_raw,omitempty"`
	Currency   string           `json:"currency"`
	Stock      *int64           `json:"stock"`
	StockRaw   string           `json:"stock_raw,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
	Deleted    bool             `json:"deleted"`
	SyncedAt   time.Time        `json:"synced_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		SKU:        p.SKU,
		Name:       p.Name,
		Brand:      p.Brand,
		Model:      p.Model,
		Category:   p.Category,
		Color:      p.Color,
		Currency:   p.Currency,
		Stock:      p.Stock.Ptr(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
		Deleted:    p.Deleted,
		SyncedAt:   p.SyncedAt,
	}
	if p.Price.Valid() {
		amount := p.Price.Amount
		resp.Price = &amount
	}
	if p.Price.Status == catalog.MeasureUnparsed {
		resp.PriceRaw = p.Price.Raw
	}
	if p.Stock.Status == catalog.MeasureUnparsed {
		resp.StockRaw = p.Stock.Raw
	}
	return resp
}

// ToProductResponses converts a slice of domain Products to ProductResponses
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ProductListResponse is one page of products
type ProductListResponse struct {
	Page     int               `json:"page"`
	Products []ProductResponse `json:"products"`
}

// SyncResult is the outcome of one reconciliation sweep
type SyncResult struct {
	RunID      uuid.UUID
	Products   []catalog.Product
	Stats      catalog.SyncStats
	StartedAt  time.Time
	FinishedAt time.Time
}

// SyncSummaryResponse summarises a sweep in API responses
type SyncSummaryResponse struct {
	RunID      uuid.UUID `json:"run_id"`
	Fetched    int       `json:"fetched"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Unparsed   int       `json:"unparsed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ToSyncSummaryResponse converts a SyncResult to its summary
func ToSyncSummaryResponse(r *SyncResult) SyncSummaryResponse {
	return SyncSummaryResponse{
		RunID:      r.RunID,
		Fetched:    r.Stats.Fetched,
		Inserted:   r.Stats.Inserted,
		Updated:    r.Stats.Updated,
		Unparsed:   r.Stats.Unparsed,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// SyncRunResponse represents a sync run in API responses
type SyncRunResponse struct {
	ID         uuid.UUID  `json:"id"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	Fetched    int        `json:"fetched"`
	Inserted   int        `json:"inserted"`
	Updated    int        `json:"updated"`
	Unparsed   int        `json:"unparsed"`
	Error      string     `json:"error,omitempty"`
}

// ToSyncRunResponse converts a domain SyncRun to SyncRunResponse
func ToSyncRunResponse(r *catalog.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:         r.ID,
		Trigger:    string(r.Trigger),
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMs: r.Duration().Milliseconds(),
		Fetched:    r.Stats.Fetched,
		Inserted:   r.Stats.Inserted,
		Updated:    r.Stats.Updated,
		Unparsed:   r.Stats.Unparsed,
		Error:      r.Error,
	}
}
