package audit

import (
	"context"
	"fmt"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	domaudit "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"
	domorder "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	workerpresentation "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/presentation/worker"

	"go.opentelemetry.io/otel/attribute"
)

const (
	auditWorker    = "audit-worker"
	useCaseAppend  = "audit.append"
	peerAuditStore = "audit_store"
)

// Worker appends every order domain event to the audit trail.
type Worker struct {
	repo       domaudit.Repository
	subscriber domoutbox.Subscriber
	in         application.Instruments
}

func NewWorker(repo domaudit.Repository, subscriber domoutbox.Subscriber, tel observability.Observability) *Worker {
	return &Worker{
		repo:       repo,
		subscriber: subscriber,
		in:         application.NewInstruments(tel, auditWorker),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.repo == nil {
		return
	}
	for _, name := range []string{
		domorder.CreatedEvent{}.EventName(),
		domorder.GatewayOpenedEvent{}.EventName(),
		domorder.PaymentVerifiedEvent{}.EventName(),
		domorder.WebhookAppliedEvent{}.EventName(),
	} {
		w.subscriber.Subscribe(name, w.handle)
	}
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) (err error) {
	ctx, _ = workerpresentation.WithEventContext(ctx, w.in.Logger(), e)
	ctx, run := w.in.Begin(ctx, useCaseAppend, "AuditAppend",
		attribute.String("event", e.EventName()),
	)
	defer func() { run.End(err) }()

	entry, ok := EntryFor(e)
	if !ok {
		run.Status("IGNORED")
		return nil
	}

	err = w.in.External(ctx, peerAuditStore, "append", func(ctx context.Context) error {
		return w.repo.Append(ctx, entry)
	})
	if err != nil {
		run.Fail("AUDIT_APPEND_FAILED")
		return fmt.Errorf("audit: append %s: %w", e.EventName(), err)
	}
	return nil
}

// EntryFor converts a known order event into an audit entry.
func EntryFor(e domoutbox.Event) (*domaudit.Entry, bool) {
	switch evt := e.(type) {
	case domorder.CreatedEvent:
		return &domaudit.Entry{
			Action:      evt.EventName(),
			OrderID:     evt.OrderID,
			OrderNumber: evt.OrderNumber,
			CreatedAt:   evt.OccurredAt,
			Data: map[string]any{
				"total":      evt.Total,
				"currency":   evt.Currency,
				"item_count": evt.ItemCount,
			},
		}, true
	case domorder.GatewayOpenedEvent:
		return &domaudit.Entry{
			Action:      evt.EventName(),
			OrderID:     evt.OrderID,
			OrderNumber: evt.OrderNumber,
			CreatedAt:   evt.OccurredAt,
			Data: map[string]any{
				"gateway_order_id": evt.GatewayOrderID,
				"amount":           evt.Amount,
				"reused":           evt.Reused,
			},
		}, true
	case domorder.PaymentVerifiedEvent:
		return &domaudit.Entry{
			Action:      evt.EventName(),
			OrderID:     evt.OrderID,
			OrderNumber: evt.OrderNumber,
			CreatedAt:   evt.OccurredAt,
			Data: map[string]any{
				"payment_id":     evt.PaymentID,
				"matched":        evt.Matched,
				"status":         string(evt.Status),
				"payment_status": string(evt.PaymentStatus),
			},
		}, true
	case domorder.WebhookAppliedEvent:
		return &domaudit.Entry{
			Action:      evt.EventName(),
			OrderID:     evt.OrderID,
			OrderNumber: evt.OrderNumber,
			CreatedAt:   evt.OccurredAt,
			Data: map[string]any{
				"event":          evt.Event,
				"webhook_id":     evt.WebhookID,
				"status":         string(evt.Status),
				"payment_status": string(evt.PaymentStatus),
			},
		}, true
	default:
		return nil, false
	}
}
