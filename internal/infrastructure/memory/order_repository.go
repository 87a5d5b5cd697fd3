package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
)

// OrderRepository keeps orders and their lines in process memory. Every value crossing the
// boundary is cloned so callers can never mutate stored state.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order
	byNumber map[string]string
	items    map[string][]*domain.Item
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:   make(map[string]*domain.Order),
		byNumber: make(map[string]string),
		items:    make(map[string][]*domain.Item),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" || order.OrderNumber == "" {
		return fmt.Errorf("order repository: id and order number are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.ErrConflict
	}
	if _, exists := r.byNumber[order.OrderNumber]; exists {
		return domain.ErrConflict
	}

	r.orders[order.ID] = order.Clone()
	r.byNumber[order.OrderNumber] = order.ID
	return nil
}

func (r *OrderRepository) InsertItems(ctx context.Context, items []*domain.Item) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		if it == nil || it.OrderID == "" {
			return fmt.Errorf("order repository: item order id is required")
		}
		if _, ok := r.orders[it.OrderID]; !ok {
			return domain.ErrNotFound
		}
	}
	for _, it := range items {
		r.items[it.OrderID] = append(r.items[it.OrderID], it.Clone())
	}
	return nil
}

// Delete is idempotent: removing an absent order succeeds.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.orders[orderID]; ok {
		delete(r.byNumber, o.OrderNumber)
		delete(r.orders, orderID)
	}
	return nil
}

func (r *OrderRepository) DeleteItems(ctx context.Context, orderID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, orderID)
	return nil
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.orders[id].Clone(), nil
}

// FindByGatewayOrderID scans meta. When several orders share an id the most recently
// updated one wins, matching the SQL store's ordering.
func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	_ = ctx
	if gatewayOrderID == "" {
		return nil, domain.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *domain.Order
	for _, o := range r.orders {
		if o.Meta.GatewayOrderID != gatewayOrderID {
			continue
		}
		if found == nil || o.UpdatedAt.After(found.UpdatedAt) {
			found = o
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found.Clone(), nil
}

func (r *OrderRepository) Items(ctx context.Context, orderID string) ([]*domain.Item, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.items[orderID]
	out := make([]*domain.Item, 0, len(stored))
	for _, it := range stored {
		out = append(out, it.Clone())
	}
	return out, nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.orders[order.ID]
	if !exists {
		return domain.ErrNotFound
	}

	next := current.Clone()
	next.Status = order.Status
	next.PaymentStatus = order.PaymentStatus
	next.Meta = order.Meta.Clone()
	next.UpdatedAt = order.UpdatedAt
	if order.PlacedAt != nil {
		t := *order.PlacedAt
		next.PlacedAt = &t
	}
	r.orders[order.ID] = next
	return nil
}
