package catalog

import (
	"context"
	"errors"
	"math"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// Product is the catalog's authoritative view of a sellable item. Prices come straight from
// the store and may be malformed; callers validate before trusting them.
type Product struct {
	ID            string
	Title         string
	Price         float64
	DiscountPrice *float64
	Stock         int
	IsActive      bool
}

// UnitPrice prefers the discount price whenever one is present and finite.
func (p Product) UnitPrice() float64 {
	if p.DiscountPrice != nil && isFinite(*p.DiscountPrice) {
		return *p.DiscountPrice
	}
	return p.Price
}

// ValidPrice reports whether v can be charged.
func ValidPrice(v float64) bool {
	return isFinite(v) && v >= 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Repository is the product catalog store.
type Repository interface {
	// GetByIDs returns the products that exist among ids; missing ids are simply absent.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// DecrementStock atomically subtracts qty, failing with ErrInsufficientStock when stock < qty.
	DecrementStock(ctx context.Context, productID string, qty int) error
}
