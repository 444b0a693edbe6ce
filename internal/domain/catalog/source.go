package catalog

import "context"

// RawFields holds the upstream field values in string form.
// Missing or null upstream values are empty strings.
type RawFields struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Stock    string `json:"stock"`
}

// RawProduct is one record of an upstream snapshot
type RawProduct struct {
	ExternalID string    `json:"external_id"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
	Fields     RawFields `json:"fields"`
}

// CatalogSource fetches a full snapshot of upstream product records.
// Implementations fail with ErrSourceUnavailable on transport or auth errors
// and ErrSourceMalformed when records cannot be decoded. They do not retry.
type CatalogSource interface {
	Fetch(ctx context.Context, contentType string) ([]RawProduct, error)
}
