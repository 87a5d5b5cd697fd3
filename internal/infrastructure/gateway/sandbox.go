package gateway

import (
	"context"
	"strings"
	"sync"

	dompay "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/payment"

	"github.com/google/uuid"
)

// Sandbox is an in-process gateway for local runs and tests. Orders live until restart.
type Sandbox struct {
	mu     sync.RWMutex
	orders map[string]dompay.GatewayOrder
}

func NewSandbox() *Sandbox {
	return &Sandbox{orders: make(map[string]dompay.GatewayOrder)}
}

func (s *Sandbox) CreateOrder(ctx context.Context, req dompay.CreateOrderRequest) (*dompay.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := dompay.GatewayOrder{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}

	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
	return &o, nil
}

func (s *Sandbox) FetchOrder(ctx context.Context, id string) (*dompay.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return nil, dompay.ErrGatewayOrderNotFound
	}
	return &o, nil
}
