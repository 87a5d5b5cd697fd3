package payment

import (
	"context"
	"time"
)

// WebhookLedger remembers webhook event ids that have already been applied.
type WebhookLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

// Timeouts bound the outbound gateway calls.
type Timeouts struct {
	Fetch  time.Duration
	Create time.Duration
}

const (
	defaultFetchTimeout  = 5 * time.Second
	defaultCreateTimeout = 10 * time.Second
)

func (t Timeouts) withDefaults() Timeouts {
	if t.Fetch <= 0 {
		t.Fetch = defaultFetchTimeout
	}
	if t.Create <= 0 {
		t.Create = defaultCreateTimeout
	}
	return t
}

const (
	paymentService = "payment-service"
	peerGateway    = "payment_gateway"
	peerOrderStore = "order_store"
)
