package persistence

import (
	"context"
	"errors"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productUpsertColumns are overwritten when an upstream record is seen again.
// id and deleted are never among them: only MarkDeleted changes the flag of
// an existing row, even when it lands between a sweep's read and its write.
var productUpsertColumns = []string{
	"sku", "name", "brand", "model", "category", "color",
	"price", "price_raw", "currency", "stock", "stock_raw",
	"created_at", "updated_at", "synced_at",
}

// criterionColumns maps report criteria to product columns
var criterionColumns = map[catalog.Criterion]string{
	catalog.CriterionSKU:       "sku",
	catalog.CriterionName:      "name",
	catalog.CriterionBrand:     "brand",
	catalog.CriterionModel:     "model",
	catalog.CriterionCategory:  "category",
	catalog.CriterionColor:     "color",
	catalog.CriterionPrice:     "price",
	catalog.CriterionCurrency:  "currency",
	catalog.CriterionStock:     "stock",
	catalog.CriterionCreatedAt: "created_at",
	catalog.CriterionUpdatedAt: "updated_at",
}

// productListOrder keeps pagination stable across requests
const productListOrder = "created_at ASC, external_id ASC"

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a product by its upstream identifier
func (r *GormProductRepository) FindByExternalID(ctx context.Context, externalID string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every product, deleted or not
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order(productListOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(rows), nil
}

// FindPaginated returns one page of non-deleted products matching filter
func (r *GormProductRepository) FindPaginated(ctx context.Context, filter catalog.ProductFilter, skip, take int) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("deleted = ?", false)
	query = applyProductFilter(query, filter)

	var rows []models.ProductModel
	if err := query.Order(productListOrder).Offset(skip).Limit(take).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(rows), nil
}

// FindByCriterion returns all products, deleted or not, where the criterion column equals the value
func (r *GormProductRepository) FindByCriterion(ctx context.Context, match catalog.CriterionMatch) ([]catalog.Product, error) {
	column, ok := criterionColumns[match.Criterion]
	if !ok {
		return nil, catalog.ErrInvalidCriteria.WithMessage("Invalid criteria: " + match.Criterion.String())
	}
	if match.Unsatisfiable() {
		return []catalog.Product{}, nil
	}

	var value any = match.Text
	switch match.Criterion {
	case catalog.CriterionPrice:
		value = match.Number
	case catalog.CriterionStock:
		value = match.Number.IntPart()
	}

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order(productListOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainProducts(rows), nil
}

// Count counts products matching filter
func (r *GormProductRepository) Count(ctx context.Context, filter catalog.CountFilter) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.Deleted != nil {
		query = query.Where("deleted = ?", *filter.Deleted)
	}
	if filter.WithPrice != nil {
		if *filter.WithPrice {
			query = query.Where("price IS NOT NULL")
		} else {
			query = query.Where("price IS NULL")
		}
	}
	if filter.CreatedBetween != nil {
		query = query.Where("created_at BETWEEN ? AND ?", filter.CreatedBetween.Start, filter.CreatedBetween.End)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Upsert inserts the product or overwrites the row sharing its external id.
// The row keeps its id and its deletion flag; the single statement is atomic.
func (r *GormProductRepository) Upsert(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns(productUpsertColumns),
		}).
		Create(model).Error
}

// MarkDeleted sets the deletion flag and returns the updated product
func (r *GormProductRepository) MarkDeleted(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ?", id).
		Update("deleted", true).Error; err != nil {
		return nil, err
	}

	product := model.ToDomain()
	product.MarkDeleted()
	return product, nil
}

// ClearAll physically removes every product
func (r *GormProductRepository) ClearAll(ctx context.Context) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return catalog.ErrEmptyStore
	}

	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.ProductModel{}).Error
}

// applyProductFilter adds an equality condition for every set filter field
func applyProductFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	text := []struct {
		column string
		value  *string
	}{
		{"sku", filter.SKU},
		{"name", filter.Name},
		{"brand", filter.Brand},
		{"model", filter.Model},
		{"category", filter.Category},
		{"color", filter.Color},
		{"currency", filter.Currency},
	}
	for _, f := range text {
		if f.value != nil {
			query = query.Where(clause.Eq{Column: clause.Column{Name: f.column}, Value: *f.value})
		}
	}
	if filter.Price != nil {
		query = query.Where("price = ?", *filter.Price)
	}
	if filter.Stock != nil {
		query = query.Where("stock = ?", *filter.Stock)
	}
	return query
}

func toDomainProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
