package mysqlstore

import (
	"context"
	"fmt"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/catalog"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recs []productRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	products := make([]catalog.Product, 0, len(recs))
	for i := range recs {
		products = append(products, recs[i].toDomain())
	}
	return products, nil
}

// DecrementStock subtracts qty in one conditional UPDATE so concurrent checkouts cannot
// drive stock below zero.
func (r *CatalogRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return catalog.ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if count == 0 {
		return catalog.ErrNotFound
	}
	return catalog.ErrInsufficientStock
}

// Upsert writes a product row. Used to seed local databases.
func (r *CatalogRepository) Upsert(ctx context.Context, p catalog.Product) error {
	rec := &productRecord{
		ID:            p.ID,
		Title:         p.Title,
		Price:         p.Price,
		DiscountPrice: p.DiscountPrice,
		Stock:         p.Stock,
		IsActive:      p.IsActive,
	}
	if err := r.db.WithContext(ctx).Save(rec).Error; err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}
