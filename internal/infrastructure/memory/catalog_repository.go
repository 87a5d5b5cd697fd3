package memory

import (
	"context"
	"sync"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/catalog"
)

type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

func NewCatalogRepository(seed ...catalog.Product) *CatalogRepository {
	r := &CatalogRepository{products: make(map[string]catalog.Product, len(seed))}
	for _, p := range seed {
		r.products[p.ID] = cloneProduct(p)
	}
	return r
}

// Put inserts or replaces a product.
func (r *CatalogRepository) Put(p catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = cloneProduct(p)
}

func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]catalog.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

// DecrementStock checks and subtracts under one lock, so concurrent checkouts cannot
// oversell.
func (r *CatalogRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	_ = ctx
	if qty <= 0 {
		return catalog.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return catalog.ErrNotFound
	}
	if p.Stock < qty {
		return catalog.ErrInsufficientStock
	}
	p.Stock -= qty
	r.products[productID] = p
	return nil
}

func cloneProduct(p catalog.Product) catalog.Product {
	if p.DiscountPrice != nil {
		v := *p.DiscountPrice
		p.DiscountPrice = &v
	}
	return p
}
