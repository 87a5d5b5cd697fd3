package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/application"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/catalog"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/pkg/saga"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	checkoutService      = "checkout-service"
	useCaseCreateOrder   = "checkout.create_order"
	peerCatalog          = "catalog"
	peerOrderStore       = "order_store"
	stepDeleteOrder      = "delete_order"
	stepDeleteOrderItems = "delete_order_items"
	defaultOrderCurrency = "INR"
)

// Line is one requested cart line. Client-supplied prices are never read.
type Line struct {
	ProductID    string          `json:"product_id"`
	Qty          int             `json:"qty"`
	ProductTitle string          `json:"product_title,omitempty"`
	Meta         json.RawMessage `json:"meta,omitempty"`
}

type CreateOrderInput struct {
	Customer      domain.Customer
	Currency      string
	Items         []Line
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	PaymentMethod string
	// Cart is the raw client cart, kept on the order for audit and replay.
	Cart       json.RawMessage
	ClientMeta json.RawMessage
}

type CreateOrderResult struct {
	OrderID     string
	OrderNumber string
	Total       decimal.Decimal
}

// CreateOrderUseCase prices a cart against the catalog and persists it as an order, undoing
// its own writes when a later step fails.
type CreateOrderUseCase struct {
	orders    domain.Repository
	products  catalog.Repository
	ids       IDGenerator
	publisher domoutbox.Publisher
	currency  string

	in           application.Instruments
	compensation observability.Counter // saga_compensations_total{step,outcome}
}

var _ application.UseCase[CreateOrderInput, *CreateOrderResult] = (*CreateOrderUseCase)(nil)

func NewCreateOrderUseCase(
	orders domain.Repository,
	products catalog.Repository,
	ids IDGenerator,
	publisher domoutbox.Publisher,
	defaultCurrency string,
	tel observability.Observability,
) *CreateOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	if defaultCurrency == "" {
		defaultCurrency = defaultOrderCurrency
	}
	return &CreateOrderUseCase{
		orders:       orders,
		products:     products,
		ids:          ids,
		publisher:    publisher,
		currency:     defaultCurrency,
		in:           application.NewInstruments(tel, checkoutService),
		compensation: tel.Metrics().Counter(observability.MSagaCompensations),
	}
}

type pricedLine struct {
	product catalog.Product
	title   string
	qty     int
	unit    decimal.Decimal
	total   decimal.Decimal
	meta    json.RawMessage
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderInput) (_ *CreateOrderResult, err error) {
	ctx, run := uc.in.Begin(ctx, useCaseCreateOrder, "CreateOrder",
		attribute.Int("order.line_count", len(cmd.Items)),
	)
	defer func() { run.End(err) }()

	if strings.TrimSpace(cmd.Customer.Name) == "" || strings.TrimSpace(cmd.Customer.Email) == "" {
		run.Fail("MISSING_CUSTOMER")
		return nil, ErrMissingCustomer
	}
	if len(cmd.Items) == 0 {
		run.Fail("NO_ITEMS")
		return nil, ErrNoItems
	}
	requested := append([]Line(nil), cmd.Items...)
	ids := make([]string, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for i := range requested {
		id := strings.TrimSpace(requested[i].ProductID)
		if id == "" {
			run.Fail("MISSING_PRODUCT_ID")
			return nil, ErrMissingProductID
		}
		requested[i].ProductID = id
		if requested[i].Qty < 1 {
			requested[i].Qty = 1
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	var products []catalog.Product
	err = uc.in.External(ctx, peerCatalog, "get_by_ids", func(ctx context.Context) error {
		var lookupErr error
		products, lookupErr = uc.products.GetByIDs(ctx, ids)
		return lookupErr
	})
	if err != nil {
		run.Fail("CATALOG_LOOKUP_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrCatalogLookupFailed, err)
	}
	if len(products) != len(ids) {
		run.Fail("SOME_PRODUCTS_NOT_FOUND")
		run.Annotate(observability.F("requested", len(ids)), observability.F("found", len(products)))
		return nil, ErrSomeProductsNotFound
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines, subtotal, err := priceLines(requested, byID)
	if err != nil {
		run.Fail(statusFor(err))
		return nil, err
	}

	totals := domain.ComputeTotals(subtotal, cmd.DiscountTotal, cmd.TaxTotal, cmd.ShippingTotal)
	currency := strings.ToUpper(strings.TrimSpace(cmd.Currency))
	if currency == "" {
		currency = uc.currency
	}
	cart := cmd.Cart
	if len(cart) == 0 {
		if cart, err = json.Marshal(requested); err != nil {
			run.Fail("CART_ENCODE_FAILED")
			return nil, fmt.Errorf("checkout: encode cart: %w", err)
		}
	}

	now := time.Now().UTC()
	entity := domain.New(
		uc.ids.NewID(),
		uc.ids.NewOrderNumber(now),
		currency,
		cmd.Customer,
		totals,
		cmd.PaymentMethod,
		domain.Meta{Cart: cart, Client: cmd.ClientMeta},
	)
	run.Span().SetAttributes(
		attribute.String("order.id", entity.ID),
		attribute.String("order.number", entity.OrderNumber),
	)
	run.Annotate(observability.F("order_number", entity.OrderNumber))

	tx := saga.New(useCaseCreateOrder, run.Log,
		saga.WithCounter(uc.compensation),
	)

	if err = uc.orderStore(ctx, "insert_order", func(ctx context.Context) error {
		return uc.orders.Insert(ctx, entity)
	}); err != nil {
		run.Fail("ORDER_INSERT_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrOrderInsertFailed, err)
	}
	tx.Done(stepDeleteOrder, func(ctx context.Context) error {
		return uc.orders.Delete(ctx, entity.ID)
	})

	items := make([]*domain.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, &domain.Item{
			ID:           uc.ids.NewID(),
			OrderID:      entity.ID,
			ProductID:    l.product.ID,
			ProductTitle: l.title,
			UnitPrice:    l.unit,
			Qty:          l.qty,
			LineTotal:    l.total,
			Meta:         l.meta,
		})
	}
	if err = uc.orderStore(ctx, "insert_items", func(ctx context.Context) error {
		return uc.orders.InsertItems(ctx, items)
	}); err != nil {
		run.Fail("ITEMS_INSERT_FAILED")
		uc.rollback(ctx, tx, err)
		return nil, fmt.Errorf("%w: %w", ErrItemsInsertFailed, err)
	}
	tx.Done(stepDeleteOrderItems, func(ctx context.Context) error {
		return uc.orders.DeleteItems(ctx, entity.ID)
	})

	// Decrements are not compensated: stock taken for earlier lines stays taken.
	for i, l := range lines {
		err = uc.in.External(ctx, peerCatalog, "decrement_stock", func(ctx context.Context) error {
			return uc.products.DecrementStock(ctx, l.product.ID, l.qty)
		})
		if err == nil {
			continue
		}
		run.Annotate(
			observability.F("failed_product_id", l.product.ID),
			observability.F("decremented_lines", i),
		)
		uc.rollback(ctx, tx, err)
		if errors.Is(err, catalog.ErrInsufficientStock) {
			run.Fail("INSUFFICIENT_STOCK")
			return nil, fmt.Errorf("%w: %w", ErrInsufficientStock, err)
		}
		run.Fail("STOCK_DECREMENT_FAILED")
		return nil, fmt.Errorf("%w: %w", ErrStockDecrementFailed, err)
	}

	uc.in.Publish(ctx, run, uc.publisher, domain.NewCreatedEvent(entity, len(items)))

	run.Span().AddEvent("order.created",
		trace.WithAttributes(attribute.String("order.total", entity.Total.StringFixed(2))),
	)
	return &CreateOrderResult{
		OrderID:     entity.ID,
		OrderNumber: entity.OrderNumber,
		Total:       entity.Total,
	}, nil
}

func (uc *CreateOrderUseCase) orderStore(ctx context.Context, endpoint string, call func(ctx context.Context) error) error {
	return uc.in.External(ctx, peerOrderStore, endpoint, call)
}

func (uc *CreateOrderUseCase) rollback(ctx context.Context, tx *saga.Saga, cause error) {
	// Failures are already logged and counted by the saga; the caller reports the cause.
	_ = tx.Rollback(ctx, cause)
}

// priceLines validates each line against the catalog snapshot and prices it from
// server-side data only.
func priceLines(items []Line, byID map[string]catalog.Product) ([]pricedLine, decimal.Decimal, error) {
	lines := make([]pricedLine, 0, len(items))
	subtotal := decimal.Zero

	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if !p.IsActive {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrProductInactive, p.ID)
		}
		if p.Stock < it.Qty {
			return nil, decimal.Zero, fmt.Errorf("%w: %s has %d, want %d", ErrInsufficientStock, p.ID, p.Stock, it.Qty)
		}
		price := p.UnitPrice()
		if !catalog.ValidPrice(price) {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidPrice, p.ID)
		}

		unit := decimal.NewFromFloat(price)
		total := unit.Mul(decimal.NewFromInt(int64(it.Qty)))
		subtotal = subtotal.Add(total)

		title := p.Title
		if title == "" {
			title = it.ProductTitle
		}
		lines = append(lines, pricedLine{
			product: p,
			title:   title,
			qty:     it.Qty,
			unit:    unit,
			total:   total,
			meta:    it.Meta,
		})
	}
	return lines, subtotal, nil
}

func statusFor(err error) string {
	switch {
	case errors.Is(err, ErrProductNotFound):
		return "PRODUCT_NOT_FOUND"
	case errors.Is(err, ErrProductInactive):
		return "PRODUCT_INACTIVE"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrInvalidPrice):
		return "INVALID_PRICE"
	default:
		return "PRICING_FAILED"
	}
}
