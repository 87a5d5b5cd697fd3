package order

import "time"

// CreatedEvent is emitted after checkout commits an order and its stock decrements.
type CreatedEvent struct {
	OrderID     string
	OrderNumber string
	Total       string
	Currency    string
	ItemCount   int
	OccurredAt  time.Time
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order, itemCount int) CreatedEvent {
	return CreatedEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Total:       o.Total.StringFixed(2),
		Currency:    o.Currency,
		ItemCount:   itemCount,
		OccurredAt:  time.Now().UTC(),
	}
}

// GatewayOpenedEvent is emitted when an order is bound to a gateway order (new or reused).
type GatewayOpenedEvent struct {
	OrderID        string
	OrderNumber    string
	GatewayOrderID string
	Amount         int64
	Reused         bool
	OccurredAt     time.Time
}

func (GatewayOpenedEvent) EventName() string { return "order.gateway_opened" }

// PaymentVerifiedEvent is emitted for every client verification attempt, matched or not.
type PaymentVerifiedEvent struct {
	OrderID       string
	OrderNumber   string
	PaymentID     string
	Matched       bool
	Status        Status
	PaymentStatus PaymentStatus
	OccurredAt    time.Time
}

func (PaymentVerifiedEvent) EventName() string { return "order.payment_verified" }

// WebhookAppliedEvent is emitted after a signed webhook has been written to an order.
type WebhookAppliedEvent struct {
	OrderID       string
	OrderNumber   string
	Event         string
	WebhookID     string
	Status        Status
	PaymentStatus PaymentStatus
	OccurredAt    time.Time
}

func (WebhookAppliedEvent) EventName() string { return "order.webhook_applied" }

// NewPaymentVerifiedEvent snapshots the order's post-write state for the verify path.
func NewPaymentVerifiedEvent(o *Order, paymentID string, matched bool) PaymentVerifiedEvent {
	return PaymentVerifiedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		PaymentID:     paymentID,
		Matched:       matched,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		OccurredAt:    time.Now().UTC(),
	}
}

func NewWebhookAppliedEvent(o *Order, event, webhookID string) WebhookAppliedEvent {
	return WebhookAppliedEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Event:         event,
		WebhookID:     webhookID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e CreatedEvent) AggregateKey() string         { return e.OrderNumber }
func (e GatewayOpenedEvent) AggregateKey() string   { return e.OrderNumber }
func (e PaymentVerifiedEvent) AggregateKey() string { return e.OrderNumber }
func (e WebhookAppliedEvent) AggregateKey() string  { return e.OrderNumber }
