package payment

import (
	"context"
	"errors"
)

var (
	ErrGatewayOrderNotFound = errors.New("payment: gateway order not found")
	ErrGatewayUnavailable   = errors.New("payment: gateway unavailable")
)

// CreateOrderRequest opens a gateway order. Amount is in minor currency units.
type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder is the provider's own transaction record.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// Gateway is the payment provider client.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*GatewayOrder, error)
	FetchOrder(ctx context.Context, id string) (*GatewayOrder, error)
}
