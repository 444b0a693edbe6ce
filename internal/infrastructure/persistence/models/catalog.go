package models

import (
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the mirrored catalog.
// Source timestamps are kept verbatim as strings under created_at/updated_at;
// they are upstream data, not row bookkeeping.
type ProductModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primary_key"`
	ExternalID      string              `gorm:"column:external_id;type:varchar(64);not null;uniqueIndex"`
	SKU             string              `gorm:"column:sku;type:varchar(255)"`
	Name            string              `gorm:"type:varchar(255)"`
	Brand           string              `gorm:"type:varchar(255)"`
	Model           string              `gorm:"type:varchar(255)"`
	Category        string              `gorm:"type:varchar(255)"`
	Color           string              `gorm:"type:varchar(100)"`
	Price           decimal.NullDecimal `gorm:"type:numeric"`
	PriceRaw        *string             `gorm:"column:price_raw;type:varchar(255)"`
	Currency        string              `gorm:"type:varchar(10)"`
	Stock           *int64              `gorm:"type:bigint"`
	StockRaw        *string             `gorm:"column:stock_raw;type:varchar(255)"`
	SourceCreatedAt string              `gorm:"column:created_at;type:varchar(64);index"`
	SourceUpdatedAt string              `gorm:"column:updated_at;type:varchar(64)"`
	Deleted         bool                `gorm:"not null;index"`
	SyncedAt        time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		SKU:        m.SKU,
		Name:       m.Name,
		Brand:      m.Brand,
		Model:      m.Model,
		Category:   m.Category,
		Color:      m.Color,
		Price:      priceFromColumns(m.Price, m.PriceRaw),
		Currency:   m.Currency,
		Stock:      stockFromColumns(m.Stock, m.StockRaw),
		CreatedAt:  m.SourceCreatedAt,
		UpdatedAt:  m.SourceUpdatedAt,
		Deleted:    m.Deleted,
		SyncedAt:   m.SyncedAt,
	}
}

// FromDomain populates the persistence model from a domain Product entity
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.ExternalID = p.ExternalID
	m.SKU = p.SKU
	m.Name = p.Name
	m.Brand = p.Brand
	m.Model = p.Model
	m.Category = p.Category
	m.Color = p.Color
	m.Price = p.Price.NullDecimal()
	m.PriceRaw = rawColumn(p.Price.Status, p.Price.Raw)
	m.Currency = p.Currency
	m.Stock = p.Stock.Ptr()
	m.StockRaw = rawColumn(p.Stock.Status, p.Stock.Raw)
	m.SourceCreatedAt = p.CreatedAt
	m.SourceUpdatedAt = p.UpdatedAt
	m.Deleted = p.Deleted
	m.SyncedAt = p.SyncedAt
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

func rawColumn(status catalog.MeasureStatus, raw string) *string {
	if status != catalog.MeasureUnparsed {
		return nil
	}
	return &raw
}

func priceFromColumns(amount decimal.NullDecimal, raw *string) catalog.Price {
	switch {
	case amount.Valid:
		return catalog.NewPrice(amount.Decimal)
	case raw != nil:
		return catalog.Price{Status: catalog.MeasureUnparsed, Raw: *raw}
	default:
		return catalog.Price{Status: catalog.MeasureAbsent}
	}
}

func stockFromColumns(qty *int64, raw *string) catalog.Stock {
	switch {
	case qty != nil:
		return catalog.NewStock(*qty)
	case raw != nil:
		return catalog.Stock{Status: catalog.MeasureUnparsed, Raw: *raw}
	default:
		return catalog.Stock{Status: catalog.MeasureAbsent}
	}
}
