package order

import "context"

// Repository is the order data API. It offers single-row operations only; callers that need
// several writes to succeed together compose them with compensations.
type Repository interface {
	Insert(ctx context.Context, order *Order) error
	InsertItems(ctx context.Context, items []*Item) error
	Delete(ctx context.Context, orderID string) error
	DeleteItems(ctx context.Context, orderID string) error

	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error)
	Items(ctx context.Context, orderID string) ([]*Item, error)

	// Update writes status, payment_status, meta, placed_at and updated_at of an existing order.
	Update(ctx context.Context, order *Order) error
}
