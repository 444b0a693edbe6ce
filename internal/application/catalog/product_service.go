package catalog

import (
	"context"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product queries and local deletions
type ProductService struct {
	productRepo catalog.ProductRepository
	cache       CacheInvalidator
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. cache may be nil.
func NewProductService(productRepo catalog.ProductRepository, cache CacheInvalidator, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cache:       cache,
		logger:      logger,
	}
}

// List returns one page of non-deleted products matching filter
func (s *ProductService) List(ctx context.Context, page int, filter catalog.ProductFilter) ([]ProductResponse, error) {
	if page < 1 {
		return nil, shared.ErrInvalidInput.WithMessage("page must be greater than or equal to 1")
	}

	products, err := s.productRepo.FindPaginated(ctx, filter, catalog.PageOffset(page), catalog.PageSize)
	if err != nil {
		return nil, err
	}

	return ToProductResponses(products), nil
}

// Delete soft-deletes a product by its local ID and returns the updated record
func (s *ProductService) Delete(ctx context.Context, id string) (*ProductResponse, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage("invalid UUID: " + id)
	}

	product, err := s.productRepo.MarkDeleted(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.logger.Info("Product marked as deleted", zap.String("product_id", productID.String()))

	resp := ToProductResponse(product)
	return &resp, nil
}

// DeleteAll physically removes every product
func (s *ProductService) DeleteAll(ctx context.Context) error {
	if err := s.productRepo.ClearAll(ctx); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.logger.Info("All products have been deleted")
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate report cache", zap.Error(err))
	}
}
