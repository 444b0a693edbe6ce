package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the product store. It exclusively owns all product records.
type ProductRepository interface {
	// FindByID finds a product by its local ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByExternalID finds a product by its upstream identifier
	FindByExternalID(ctx context.Context, externalID string) (*Product, error)

	// FindAll returns every product, deleted or not
	FindAll(ctx context.Context) ([]Product, error)

	// FindPaginated returns non-deleted products matching filter
	FindPaginated(ctx context.Context, filter ProductFilter, skip, take int) ([]Product, error)

	// FindByCriterion returns all products, deleted or not, matching the predicate
	FindByCriterion(ctx context.Context, match CriterionMatch) ([]Product, error)

	// Count counts products matching filter
	Count(ctx context.Context, filter CountFilter) (int64, error)

	// Upsert inserts the product or overwrites the record sharing its external
	// ID. An existing record keeps its ID and its deletion flag; a new record
	// is stored with the flag as given. Each call is atomic on its own.
	Upsert(ctx context.Context, product *Product) error

	// MarkDeleted sets the deletion flag and returns the updated product
	MarkDeleted(ctx context.Context, id uuid.UUID) (*Product, error)

	// ClearAll physically removes every product; ErrEmptyStore when there is none
	ClearAll(ctx context.Context) error
}
