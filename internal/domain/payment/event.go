package payment

import (
	"encoding/json"
	"fmt"
)

// EventKind is the state-relevant meaning of a gateway webhook event.
type EventKind int

const (
	EventUnmapped EventKind = iota
	EventCaptured
	EventFailed
	EventRefunded
)

func (k EventKind) String() string {
	switch k {
	case EventCaptured:
		return "captured"
	case EventFailed:
		return "failed"
	case EventRefunded:
		return "refunded"
	default:
		return "unmapped"
	}
}

// eventKinds is the complete routing table. Names not listed here change no state.
var eventKinds = map[string]EventKind{
	"payment.captured": EventCaptured,
	"order.paid":       EventCaptured,
	"payment.failed":   EventFailed,
	"refund.created":   EventRefunded,
	"refund.processed": EventRefunded,
}

// KindOf maps a gateway event name to its kind.
func KindOf(name string) EventKind {
	if k, ok := eventKinds[name]; ok {
		return k
	}
	return EventUnmapped
}

// WebhookEvent is the subset of the gateway webhook body the service reads.
type WebhookEvent struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// ParseWebhookEvent decodes an already signature-checked body.
func ParseWebhookEvent(raw []byte) (*WebhookEvent, error) {
	var evt WebhookEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, fmt.Errorf("payment: decode webhook: %w", err)
	}
	return &evt, nil
}

// GatewayOrderID prefers the payment entity's order id and falls back to the order entity.
func (e *WebhookEvent) GatewayOrderID() string {
	if e.Payload.Payment != nil && e.Payload.Payment.Entity.OrderID != "" {
		return e.Payload.Payment.Entity.OrderID
	}
	if e.Payload.Order != nil {
		return e.Payload.Order.Entity.ID
	}
	return ""
}

func (e *WebhookEvent) PaymentID() string {
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.ID
	}
	return ""
}

func (e *WebhookEvent) Kind() EventKind {
	return KindOf(e.Event)
}
