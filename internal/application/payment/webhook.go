package payment

import (
	"context"
	"errors"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	dompay "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/payment"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/pkg/signature"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseHandleWebhook = "payment.webhook"
	peerLedger           = "webhook_ledger"
)

// WebhookResult says what happened to an authenticated delivery. It is never an error:
// the gateway is acknowledged for all of them.
type WebhookResult string

const (
	WebhookApplied      WebhookResult = "applied"
	WebhookDuplicate    WebhookResult = "duplicate"
	WebhookMalformed    WebhookResult = "malformed"
	WebhookNoReference  WebhookResult = "no_reference"
	WebhookUnknownOrder WebhookResult = "unknown_order"
	WebhookApplyFailed  WebhookResult = "apply_failed"
	webhookRejected     WebhookResult = "invalid_signature"
)

type HandleWebhookInput struct {
	Body      []byte
	Signature string
	// EventID comes from the delivery header; the body id is used when it is empty.
	EventID string
}

type HandleWebhookOutput struct {
	Result      WebhookResult
	Event       string
	OrderNumber string
}

// HandleWebhookUseCase applies signed gateway notifications to orders.
type HandleWebhookUseCase struct {
	orders    domain.Repository
	ledger    WebhookLedger
	publisher domoutbox.Publisher
	secret    string
	now       func() time.Time

	in     application.Instruments
	events observability.Counter // webhook_events_total{event,result}
}

var _ application.UseCase[HandleWebhookInput, *HandleWebhookOutput] = (*HandleWebhookUseCase)(nil)

func NewHandleWebhookUseCase(
	orders domain.Repository,
	ledger WebhookLedger,
	publisher domoutbox.Publisher,
	webhookSecret string,
	tel observability.Observability,
) *HandleWebhookUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	return &HandleWebhookUseCase{
		orders:    orders,
		ledger:    ledger,
		publisher: publisher,
		secret:    webhookSecret,
		now:       func() time.Time { return time.Now().UTC() },
		in:        application.NewInstruments(tel, paymentService),
		events:    tel.Metrics().Counter(observability.MWebhookEvents),
	}
}

// Execute fails only with ErrInvalidSignature. Everything past the signature check is
// acknowledged, with failures logged instead of returned.
func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookInput) (_ *HandleWebhookOutput, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseHandleWebhook, "HandleWebhook",
		attribute.Int("webhook.body_bytes", len(cmd.Body)),
	)
	out := &HandleWebhookOutput{}
	defer func() {
		uc.events.Add(1,
			observability.L("event", eventLabel(out.Event)),
			observability.L("result", string(out.Result)),
		)
		run.Annotate(observability.F("result", string(out.Result)))
		if out.Event != "" {
			run.Annotate(observability.F("event", out.Event))
		}
		run.End(err)
	}()

	if cmd.Signature == "" || !signature.Verify(uc.secret, cmd.Body, cmd.Signature) {
		out.Result = webhookRejected
		run.Fail("INVALID_SIGNATURE")
		return nil, ErrInvalidSignature
	}

	evt, perr := dompay.ParseWebhookEvent(cmd.Body)
	if perr != nil {
		out.Result = WebhookMalformed
		run.Status("MALFORMED")
		run.Log.Warn("webhook_malformed", observability.Err(perr))
		return out, nil
	}
	out.Event = evt.Event
	eventID := cmd.EventID
	if eventID == "" {
		eventID = evt.ID
	}
	run.Span().SetAttributes(
		attribute.String("webhook.event", evt.Event),
		attribute.String("webhook.kind", evt.Kind().String()),
	)

	if uc.seen(ctx, run, eventID) {
		out.Result = WebhookDuplicate
		run.Status("DUPLICATE")
		return out, nil
	}

	gatewayOrderID := evt.GatewayOrderID()
	if gatewayOrderID == "" {
		out.Result = WebhookNoReference
		run.Status("NO_REFERENCE")
		return out, nil
	}

	var entity *domain.Order
	ferr := uc.in.External(ctx, peerOrderStore, "find_by_gateway_order_id", func(ctx context.Context) error {
		var findErr error
		entity, findErr = uc.orders.FindByGatewayOrderID(ctx, gatewayOrderID)
		return findErr
	})
	switch {
	case errors.Is(ferr, domain.ErrNotFound):
		out.Result = WebhookUnknownOrder
		run.Status("UNKNOWN_ORDER")
		run.Log.Info("webhook_unknown_order", observability.F("gateway_order_id", gatewayOrderID))
		return out, nil
	case ferr != nil:
		out.Result = WebhookApplyFailed
		run.Status("ORDER_LOOKUP_FAILED")
		run.Log.Error("webhook_apply_failed",
			observability.F("gateway_order_id", gatewayOrderID),
			observability.Err(ferr),
		)
		return out, nil
	}
	out.OrderNumber = entity.OrderNumber
	run.Annotate(observability.F("order_number", entity.OrderNumber))

	now := uc.now()
	if terr := applyEvent(entity, evt.Kind(), now); terr != nil {
		run.Log.Info("payment_transition_skipped",
			observability.F("kind", evt.Kind().String()),
			observability.F("payment_status", string(entity.PaymentStatus)),
			observability.Err(terr),
		)
	}
	entity.Meta = entity.Meta.Merge(domain.Meta{
		WebhookEvent:         evt.Event,
		LastWebhookAt:        &now,
		LastWebhookID:        eventID,
		LastWebhookPaymentID: evt.PaymentID(),
	})

	uerr := uc.in.External(ctx, peerOrderStore, "update", func(ctx context.Context) error {
		return uc.orders.Update(ctx, entity)
	})
	if uerr != nil {
		out.Result = WebhookApplyFailed
		run.Status("ORDER_UPDATE_FAILED")
		run.Log.Error("webhook_apply_failed",
			observability.F("order_number", entity.OrderNumber),
			observability.Err(uerr),
		)
		return out, nil
	}
	out.Result = WebhookApplied

	uc.remember(ctx, run, eventID)
	uc.in.Publish(ctx, run, uc.publisher, domain.NewWebhookAppliedEvent(entity, evt.Event, eventID))
	return out, nil
}

// applyEvent moves the order according to the event table. Unmapped kinds change nothing.
func applyEvent(o *domain.Order, kind dompay.EventKind, at time.Time) error {
	switch kind {
	case dompay.EventCaptured:
		return o.PaymentCaptured(at)
	case dompay.EventFailed:
		return o.PaymentFailed()
	case dompay.EventRefunded:
		return o.PaymentRefunded()
	default:
		return nil
	}
}

// seen consults the ledger. An unreachable ledger never blocks a delivery.
func (uc *HandleWebhookUseCase) seen(ctx context.Context, run *application.Run, eventID string) bool {
	if uc.ledger == nil || eventID == "" {
		return false
	}
	var dup bool
	err := uc.in.External(ctx, peerLedger, "seen", func(ctx context.Context) error {
		var seenErr error
		dup, seenErr = uc.ledger.Seen(ctx, eventID)
		return seenErr
	})
	if err != nil {
		run.Log.Warn("webhook_ledger_unavailable", observability.Err(err))
		return false
	}
	return dup
}

func (uc *HandleWebhookUseCase) remember(ctx context.Context, run *application.Run, eventID string) {
	if uc.ledger == nil || eventID == "" {
		return
	}
	err := uc.in.External(ctx, peerLedger, "remember", func(ctx context.Context) error {
		return uc.ledger.Remember(ctx, eventID)
	})
	if err != nil {
		run.Log.Warn("webhook_ledger_unavailable", observability.Err(err))
	}
}

// eventLabel keeps the metric label set bounded to names the table knows.
func eventLabel(name string) string {
	if name == "" {
		return "none"
	}
	if dompay.KindOf(name) == dompay.EventUnmapped {
		return "other"
	}
	return name
}
