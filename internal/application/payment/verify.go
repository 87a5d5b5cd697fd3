package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/pkg/signature"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseVerifyPayment = "payment.verify"

type VerifyPaymentInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

type VerifyPaymentResult struct {
	OrderNumber   string
	Matched       bool
	Status        domain.Status
	PaymentStatus domain.PaymentStatus
}

// VerifyPaymentUseCase applies the client's post-payment callback. Every attempt is recorded
// in meta; only a matching signature can mark the order paid.
type VerifyPaymentUseCase struct {
	orders    domain.Repository
	publisher domoutbox.Publisher
	secret    string
	now       func() time.Time

	in application.Instruments
}

var _ application.UseCase[VerifyPaymentInput, *VerifyPaymentResult] = (*VerifyPaymentUseCase)(nil)

func NewVerifyPaymentUseCase(
	orders domain.Repository,
	publisher domoutbox.Publisher,
	keySecret string,
	tel observability.Observability,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		orders:    orders,
		publisher: publisher,
		secret:    keySecret,
		now:       func() time.Time { return time.Now().UTC() },
		in:        application.NewInstruments(tel, paymentService),
	}
}

// Execute returns ErrSignatureMismatch together with a result when the attempt was recorded
// but did not verify.
func (uc *VerifyPaymentUseCase) Execute(ctx context.Context, cmd VerifyPaymentInput) (_ *VerifyPaymentResult, err error) {
	cmd.GatewayOrderID = strings.TrimSpace(cmd.GatewayOrderID)
	cmd.PaymentID = strings.TrimSpace(cmd.PaymentID)
	cmd.Signature = strings.TrimSpace(cmd.Signature)

	ctx, run := uc.in.Begin(ctx, useCaseVerifyPayment, "VerifyPayment",
		attribute.String("payment.gateway_order_id", cmd.GatewayOrderID),
	)
	defer func() { run.End(err) }()

	if cmd.GatewayOrderID == "" || cmd.PaymentID == "" || cmd.Signature == "" {
		run.Fail("MISSING_FIELDS")
		return nil, ErrMissingFields
	}

	// The comparison runs before any lookup so every path costs the same HMAC.
	matched := signature.Verify(uc.secret, signature.PaymentPayload(cmd.GatewayOrderID, cmd.PaymentID), cmd.Signature)
	run.Span().SetAttributes(attribute.Bool("payment.signature_ok", matched))

	var entity *domain.Order
	err = uc.in.External(ctx, peerOrderStore, "find_by_gateway_order_id", func(ctx context.Context) error {
		var findErr error
		entity, findErr = uc.orders.FindByGatewayOrderID(ctx, cmd.GatewayOrderID)
		return findErr
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		run.Fail("ORDER_NOT_FOUND")
		return nil, ErrOrderNotFound
	case err != nil:
		run.Fail("ORDER_LOOKUP_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrOrderLookupFailed, err)
	}
	run.Annotate(observability.F("order_number", entity.OrderNumber))

	entity.Meta = entity.Meta.Merge(domain.Meta{
		GatewayPaymentID: cmd.PaymentID,
		GatewaySignature: cmd.Signature,
		VerifyOK:         domain.Bool(matched),
	})
	if matched {
		err = entity.PaymentCaptured(uc.now())
	} else {
		err = entity.PaymentFailed()
	}
	if err != nil {
		// Refused transitions still persist the audit fields.
		run.Log.Info("payment_transition_skipped",
			observability.F("payment_status", string(entity.PaymentStatus)),
			observability.Err(err),
		)
		err = nil
	}

	err = uc.in.External(ctx, peerOrderStore, "update", func(ctx context.Context) error {
		return uc.orders.Update(ctx, entity)
	})
	if err != nil {
		run.Fail("ORDER_UPDATE_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrOrderUpdateFailed, err)
	}

	uc.in.Publish(ctx, run, uc.publisher, domain.NewPaymentVerifiedEvent(entity, cmd.PaymentID, matched))

	res := &VerifyPaymentResult{
		OrderNumber:   entity.OrderNumber,
		Matched:       matched,
		Status:        entity.Status,
		PaymentStatus: entity.PaymentStatus,
	}
	if !matched {
		run.Fail("SIGNATURE_MISMATCH")
		return res, ErrSignatureMismatch
	}
	return res, nil
}
