package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	orderService   = "order-service"
	useCaseGet     = "order.get"
	peerOrderStore = "order_store"
)

var (
	ErrMissingOrderNumber = errors.New("missing_order_number")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrOrderLookupFailed  = errors.New("order_lookup_failed")
)

type GetOrderInput struct {
	OrderNumber string
}

type GetOrderResult struct {
	Order *domain.Order
	Items []*domain.Item
}

// GetOrderUseCase loads an order and its lines by order number.
type GetOrderUseCase struct {
	repo domain.Repository
	in   application.Instruments
}

var _ application.UseCase[GetOrderInput, *GetOrderResult] = (*GetOrderUseCase)(nil)

func NewGetOrderUseCase(repo domain.Repository, tel observability.Observability) *GetOrderUseCase {
	return &GetOrderUseCase{repo: repo, in: application.NewInstruments(tel, orderService)}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, cmd GetOrderInput) (_ *GetOrderResult, err error) {
	number := strings.TrimSpace(cmd.OrderNumber)
	ctx, run := uc.in.Begin(ctx, useCaseGet, "GetOrder", attribute.String("order.number", number))
	defer func() { run.End(err) }()

	if number == "" {
		run.Fail("MISSING_ORDER_NUMBER")
		return nil, ErrMissingOrderNumber
	}

	var entity *domain.Order
	err = uc.in.External(ctx, peerOrderStore, "find_by_number", func(ctx context.Context) error {
		var findErr error
		entity, findErr = uc.repo.FindByNumber(ctx, number)
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

	var items []*domain.Item
	err = uc.in.External(ctx, peerOrderStore, "items", func(ctx context.Context) error {
		var itemsErr error
		items, itemsErr = uc.repo.Items(ctx, entity.ID)
		return itemsErr
	})
	if err != nil {
		run.Fail("ITEMS_LOOKUP_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrOrderLookupFailed, err)
	}

	run.Span().SetAttributes(attribute.String("order.payment_status", string(entity.PaymentStatus)))
	return &GetOrderResult{Order: entity, Items: items}, nil
}
