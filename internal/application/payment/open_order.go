package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	dompay "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/payment"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const useCaseOpenGatewayOrder = "payment.open_gateway_order"

type OpenGatewayOrderInput struct {
	OrderNumber string
}

type OpenGatewayOrderResult struct {
	Key            string
	OrderNumber    string
	GatewayOrderID string
	Amount         int64
	Currency       string
	Reused         bool
}

// OpenGatewayOrderUseCase binds an order to a gateway order, reusing the stored one while
// the gateway still knows it so repeated checkout attempts cannot double charge.
type OpenGatewayOrderUseCase struct {
	orders    domain.Repository
	gateway   dompay.Gateway
	publisher domoutbox.Publisher
	keyID     string
	timeouts  Timeouts

	in application.Instruments
}

var _ application.UseCase[OpenGatewayOrderInput, *OpenGatewayOrderResult] = (*OpenGatewayOrderUseCase)(nil)

func NewOpenGatewayOrderUseCase(
	orders domain.Repository,
	gateway dompay.Gateway,
	publisher domoutbox.Publisher,
	keyID string,
	timeouts Timeouts,
	tel observability.Observability,
) *OpenGatewayOrderUseCase {
	return &OpenGatewayOrderUseCase{
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		keyID:     keyID,
		timeouts:  timeouts.withDefaults(),
		in:        application.NewInstruments(tel, paymentService),
	}
}

func (uc *OpenGatewayOrderUseCase) Execute(ctx context.Context, cmd OpenGatewayOrderInput) (_ *OpenGatewayOrderResult, err error) {
	number := strings.TrimSpace(cmd.OrderNumber)
	ctx, run := uc.in.Begin(ctx, useCaseOpenGatewayOrder, "OpenGatewayOrder",
		attribute.String("order.number", number),
	)
	defer func() { run.End(err) }()

	if number == "" {
		run.Fail("MISSING_ORDER_NUMBER")
		return nil, ErrMissingOrderNumber
	}

	entity, err := uc.findByNumber(ctx, number)
	if err != nil {
		run.Fail("ORDER_LOOKUP_FAILED")
		return nil, err
	}
	if entity.IsSettled() {
		run.Fail("ALREADY_PAID")
		return nil, ErrAlreadyPaid
	}

	gw, reused := uc.reuse(ctx, run, entity.Meta.GatewayOrderID)
	if gw == nil {
		amount := entity.MinorUnits()
		if amount <= 0 {
			run.Fail("INVALID_AMOUNT")
			return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, entity.Total.String())
		}

		createCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Create)
		err = uc.in.External(createCtx, peerGateway, "create_order", func(ctx context.Context) error {
			var createErr error
			gw, createErr = uc.gateway.CreateOrder(ctx, dompay.CreateOrderRequest{
				Amount:   amount,
				Currency: entity.Currency,
				Receipt:  entity.OrderNumber,
				Notes:    map[string]string{"order_number": entity.OrderNumber},
			})
			return createErr
		})
		cancel()
		if err != nil {
			run.Fail("GATEWAY_CREATE_FAILED")
			return nil, fmt.Errorf("%w: %w", ErrGatewayCreateFailed, err)
		}
	}
	run.Span().SetAttributes(
		attribute.String("payment.gateway_order_id", gw.ID),
		attribute.Bool("payment.reused", reused),
	)
	run.Annotate(
		observability.F("gateway_order_id", gw.ID),
		observability.F("reused", reused),
	)

	// Read again so meta written by concurrent callers since the first read is kept.
	fresh, err := uc.findByNumber(ctx, number)
	if err != nil {
		run.Fail("ORDER_RELOAD_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrFailedToSaveGatewayOrder, err)
	}
	fresh.Meta = fresh.Meta.Merge(domain.Meta{
		GatewayOrderID:  gw.ID,
		GatewayAmount:   gw.Amount,
		GatewayCurrency: gw.Currency,
	})
	if err = fresh.GatewayOpened(); err != nil {
		run.Fail("ALREADY_PAID")
		return nil, fmt.Errorf("%w: %w", ErrAlreadyPaid, err)
	}
	err = uc.in.External(ctx, peerOrderStore, "update", func(ctx context.Context) error {
		return uc.orders.Update(ctx, fresh)
	})
	if err != nil {
		run.Fail("ORDER_UPDATE_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrFailedToSaveGatewayOrder, err)
	}

	uc.in.Publish(ctx, run, uc.publisher, domain.GatewayOpenedEvent{
		OrderID:        fresh.ID,
		OrderNumber:    fresh.OrderNumber,
		GatewayOrderID: gw.ID,
		Amount:         gw.Amount,
		Reused:         reused,
		OccurredAt:     fresh.UpdatedAt,
	})

	return &OpenGatewayOrderResult{
		Key:            uc.keyID,
		OrderNumber:    fresh.OrderNumber,
		GatewayOrderID: gw.ID,
		Amount:         gw.Amount,
		Currency:       gw.Currency,
		Reused:         reused,
	}, nil
}

// reuse fetches the stored gateway order under a bounded timeout. Any failure falls through
// to creating a new one.
func (uc *OpenGatewayOrderUseCase) reuse(ctx context.Context, run *application.Run, gatewayOrderID string) (*dompay.GatewayOrder, bool) {
	if gatewayOrderID == "" {
		return nil, false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Fetch)
	defer cancel()

	var gw *dompay.GatewayOrder
	err := uc.in.External(fetchCtx, peerGateway, "fetch_order", func(ctx context.Context) error {
		var fetchErr error
		gw, fetchErr = uc.gateway.FetchOrder(ctx, gatewayOrderID)
		return fetchErr
	})
	if err != nil || gw == nil || gw.ID == "" {
		run.Log.Warn("gateway_order_reuse_failed",
			observability.F("gateway_order_id", gatewayOrderID),
			observability.Err(err),
		)
		return nil, false
	}
	return gw, true
}

func (uc *OpenGatewayOrderUseCase) findByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var entity *domain.Order
	err := uc.in.External(ctx, peerOrderStore, "find_by_number", func(ctx context.Context) error {
		var findErr error
		entity, findErr = uc.orders.FindByNumber(ctx, number)
		return findErr
	})
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil, ErrOrderNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrOrderLookupFailed, err)
	}
	return entity, nil
}
