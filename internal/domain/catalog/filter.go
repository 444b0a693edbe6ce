package catalog

import "github.com/shopspring/decimal"

// PageSize is the fixed number of products per listing page
const PageSize = 5

// PageOffset returns the row offset of a 1-based page number
func PageOffset(page int) int {
	return (page - 1) * PageSize
}

// ProductFilter is an exact, case-sensitive equality filter.
// Nil fields are not constrained.
type ProductFilter struct {
	SKU      *string
	Name     *string
	Brand    *string
	Model    *string
	Category *string
	Color    *string
	Price    *decimal.Decimal
	Currency *string
	Stock    *int64
}

// DateRange is an inclusive range over the upstream creation timestamp
type DateRange struct {
	Start string
	End   string
}

// CountFilter narrows Count. Nil fields are not constrained.
type CountFilter struct {
	Deleted *bool
	// WithPrice true counts rows with a price, false rows without one
	WithPrice      *bool
	CreatedBetween *DateRange
}
