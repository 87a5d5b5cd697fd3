package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/catalog"
	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"

	"github.com/shopspring/decimal"
)

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	items  map[string][]*domain.Item
	calls  []string

	InsertItemsFunc func(ctx context.Context, items []*domain.Item) error
	DeleteFunc      func(ctx context.Context, orderID string) error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: map[string]*domain.Order{},
		items:  map[string][]*domain.Item{},
	}
}

func (f *fakeOrders) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeOrders) Insert(_ context.Context, o *domain.Order) error {
	f.record("insert")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o.Clone()
	return nil
}

func (f *fakeOrders) InsertItems(ctx context.Context, items []*domain.Item) error {
	f.record("insert_items")
	if f.InsertItemsFunc != nil {
		return f.InsertItemsFunc(ctx, items)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.items[it.OrderID] = append(f.items[it.OrderID], it.Clone())
	}
	return nil
}

func (f *fakeOrders) Delete(ctx context.Context, orderID string) error {
	f.record("delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, orderID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, orderID)
	return nil
}

func (f *fakeOrders) DeleteItems(_ context.Context, orderID string) error {
	f.record("delete_items")
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, orderID)
	return nil
}

func (f *fakeOrders) FindByNumber(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) FindByGatewayOrderID(context.Context, string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) Items(_ context.Context, orderID string) ([]*domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[orderID], nil
}

func (f *fakeOrders) Update(context.Context, *domain.Order) error { return nil }

type fakeCatalog struct {
	products   map[string]catalog.Product
	decrements []string

	DecrementStockFunc func(ctx context.Context, id string, qty int) error
}

func (f *fakeCatalog) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, id string, qty int) error {
	f.decrements = append(f.decrements, id)
	if f.DecrementStockFunc != nil {
		return f.DecrementStockFunc(ctx, id, qty)
	}
	p := f.products[id]
	if p.Stock < qty {
		return catalog.ErrInsufficientStock
	}
	p.Stock -= qty
	f.products[id] = p
	return nil
}

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func (s *seqIDs) NewOrderNumber(time.Time) string { return "SM260101-0000ABCD" }

type capturePublisher struct {
	events []domoutbox.Event
}

func (c *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	c.events = append(c.events, e)
	return nil
}

func ptr(v float64) *float64 { return &v }

func customer() domain.Customer {
	return domain.Customer{Name: "Asha", Email: "asha@example.com"}
}

func newUseCase(orders *fakeOrders, products *fakeCatalog, pub domoutbox.Publisher) *CreateOrderUseCase {
	return NewCreateOrderUseCase(orders, products, &seqIDs{}, pub, "INR", nil)
}

func TestCreateOrderScenarioA(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Title: "Saree", Price: 100, DiscountPrice: ptr(80), Stock: 5, IsActive: true},
		"p2": {ID: "p2", Title: "Stole", Price: 50, Stock: 5, IsActive: true},
	}}
	orders := newFakeOrders()
	pub := &capturePublisher{}
	uc := newUseCase(orders, products, pub)

	res, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items: []Line{
			{ProductID: "p1", Qty: 2, ProductTitle: "client title"},
			{ProductID: "p2", Qty: 1},
		},
		TaxTotal: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Total.Equal(decimal.NewFromInt(220)) {
		t.Errorf("Total = %s, want 220", res.Total)
	}

	stored := orders.orders[res.OrderID]
	if stored == nil {
		t.Fatal("order not stored")
	}
	if !stored.Subtotal.Equal(decimal.NewFromInt(210)) {
		t.Errorf("Subtotal = %s, want 210", stored.Subtotal)
	}
	if stored.Status != domain.StatusPending || stored.PaymentStatus != domain.PaymentPending {
		t.Errorf("status = %s/%s, want pending/pending", stored.Status, stored.PaymentStatus)
	}
	if stored.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", stored.Currency)
	}
	if len(stored.Meta.Cart) == 0 {
		t.Error("cart snapshot missing from meta")
	}

	items := orders.items[res.OrderID]
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if !items[0].UnitPrice.Equal(decimal.NewFromInt(80)) || items[0].ProductTitle != "Saree" {
		t.Errorf("first item = %+v, want discount price 80 and catalog title", items[0])
	}
	if got := products.products["p1"].Stock; got != 3 {
		t.Errorf("p1 stock = %d, want 3", got)
	}
	if len(pub.events) != 1 || pub.events[0].EventName() != "order.created" {
		t.Errorf("events = %v, want one order.created", pub.events)
	}
}

func TestCreateOrderScenarioBRollsBack(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Price: 100, Stock: 5, IsActive: true},
		"p2": {ID: "p2", Price: 50, Stock: 5, IsActive: true},
	}}
	// Stock is reported available at read time but gone at decrement time.
	products.DecrementStockFunc = func(_ context.Context, id string, _ int) error {
		if id == "p2" {
			return catalog.ErrInsufficientStock
		}
		return nil
	}
	orders := newFakeOrders()
	uc := newUseCase(orders, products, nil)

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items:    []Line{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 1}},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Execute() error = %v, want ErrInsufficientStock", err)
	}
	if len(orders.orders) != 0 || len(orders.items) != 0 {
		t.Errorf("rows left behind: orders=%d items=%d", len(orders.orders), len(orders.items))
	}
	want := []string{"insert", "insert_items", "delete_items", "delete"}
	if !reflect.DeepEqual(orders.calls, want) {
		t.Errorf("calls = %v, want %v", orders.calls, want)
	}
}

func TestCreateOrderStockZeroRejectedBeforeWrites(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Price: 100, Stock: 5, IsActive: true},
		"p2": {ID: "p2", Price: 50, Stock: 0, IsActive: true},
	}}
	orders := newFakeOrders()
	uc := newUseCase(orders, products, nil)

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items:    []Line{{ProductID: "p1"}, {ProductID: "p2"}},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Execute() error = %v, want ErrInsufficientStock", err)
	}
	if len(orders.calls) != 0 || len(products.decrements) != 0 {
		t.Errorf("side effects: calls=%v decrements=%v", orders.calls, products.decrements)
	}
}

func TestCreateOrderDecrementStopsAtFirstFailure(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Price: 1, Stock: 5, IsActive: true},
		"p2": {ID: "p2", Price: 1, Stock: 5, IsActive: true},
		"p3": {ID: "p3", Price: 1, Stock: 5, IsActive: true},
	}}
	products.DecrementStockFunc = func(_ context.Context, id string, _ int) error {
		if id == "p2" {
			return errors.New("connection reset")
		}
		return nil
	}
	uc := newUseCase(newFakeOrders(), products, nil)

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items:    []Line{{ProductID: "p1"}, {ProductID: "p2"}, {ProductID: "p3"}},
	})
	if !errors.Is(err, ErrStockDecrementFailed) {
		t.Fatalf("Execute() error = %v, want ErrStockDecrementFailed", err)
	}
	if want := []string{"p1", "p2"}; !reflect.DeepEqual(products.decrements, want) {
		t.Errorf("decrements = %v, want %v", products.decrements, want)
	}
}

func TestCreateOrderItemsInsertFailureDeletesOrder(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Price: 10, Stock: 5, IsActive: true},
	}}
	orders := newFakeOrders()
	orders.InsertItemsFunc = func(context.Context, []*domain.Item) error { return errors.New("timeout") }
	uc := newUseCase(orders, products, nil)

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items:    []Line{{ProductID: "p1"}},
	})
	if !errors.Is(err, ErrItemsInsertFailed) {
		t.Fatalf("Execute() error = %v, want ErrItemsInsertFailed", err)
	}
	if want := []string{"insert", "insert_items", "delete"}; !reflect.DeepEqual(orders.calls, want) {
		t.Errorf("calls = %v, want %v", orders.calls, want)
	}
	if len(products.decrements) != 0 {
		t.Errorf("decrements = %v, want none", products.decrements)
	}
}

func TestCreateOrderFailedCompensationStillReportsCause(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Price: 10, Stock: 5, IsActive: true},
	}}
	products.DecrementStockFunc = func(context.Context, string, int) error { return catalog.ErrInsufficientStock }
	orders := newFakeOrders()
	orders.DeleteFunc = func(context.Context, string) error { return errors.New("store down") }
	uc := newUseCase(orders, products, nil)

	_, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items:    []Line{{ProductID: "p1"}},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("Execute() error = %v, want ErrInsufficientStock", err)
	}
	if want := []string{"insert", "insert_items", "delete_items", "delete"}; !reflect.DeepEqual(orders.calls, want) {
		t.Errorf("calls = %v, want %v", orders.calls, want)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"active":   {ID: "active", Price: 10, Stock: 5, IsActive: true},
		"inactive": {ID: "inactive", Price: 10, Stock: 5, IsActive: false},
		"nan":      {ID: "nan", Price: math.NaN(), Stock: 5, IsActive: true},
		"negative": {ID: "negative", Price: -1, Stock: 5, IsActive: true},
	}}

	tests := []struct {
		name string
		in   CreateOrderInput
		want error
	}{
		{"missing customer name", CreateOrderInput{Customer: domain.Customer{Email: "a@x"}, Items: []Line{{ProductID: "active"}}}, ErrMissingCustomer},
		{"missing customer email", CreateOrderInput{Customer: domain.Customer{Name: "A"}, Items: []Line{{ProductID: "active"}}}, ErrMissingCustomer},
		{"no items", CreateOrderInput{Customer: customer()}, ErrNoItems},
		{"blank product id", CreateOrderInput{Customer: customer(), Items: []Line{{ProductID: "  "}}}, ErrMissingProductID},
		{"unknown product", CreateOrderInput{Customer: customer(), Items: []Line{{ProductID: "active"}, {ProductID: "ghost"}}}, ErrSomeProductsNotFound},
		{"inactive", CreateOrderInput{Customer: customer(), Items: []Line{{ProductID: "inactive"}}}, ErrProductInactive},
		{"non-finite price", CreateOrderInput{Customer: customer(), Items: []Line{{ProductID: "nan"}}}, ErrInvalidPrice},
		{"negative price", CreateOrderInput{Customer: customer(), Items: []Line{{ProductID: "negative"}}}, ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := newFakeOrders()
			uc := newUseCase(orders, products, nil)

			_, err := uc.Execute(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.want)
			}
			if len(orders.calls) != 0 {
				t.Errorf("store touched: %v", orders.calls)
			}
		})
	}
}

func TestCreateOrderDiscountPriceFallback(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"inf":  {ID: "inf", Price: 40, DiscountPrice: ptr(math.Inf(1)), Stock: 5, IsActive: true},
		"zero": {ID: "zero", Price: 40, DiscountPrice: ptr(0), Stock: 5, IsActive: true},
	}}
	orders := newFakeOrders()
	uc := newUseCase(orders, products, nil)

	res, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer: customer(),
		Items:    []Line{{ProductID: "inf", Qty: 0}, {ProductID: "zero", Qty: 3}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// inf falls back to price with qty coerced to 1; a zero discount price is still preferred.
	if !res.Total.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Total = %s, want 40", res.Total)
	}
	items := orders.items[res.OrderID]
	if items[0].Qty != 1 {
		t.Errorf("qty = %d, want coerced to 1", items[0].Qty)
	}
}

func TestCreateOrderTotalsIgnoreClientPrices(t *testing.T) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"p1": {ID: "p1", Price: 100, Stock: 5, IsActive: true},
	}}
	orders := newFakeOrders()
	uc := newUseCase(orders, products, nil)

	res, err := uc.Execute(context.Background(), CreateOrderInput{
		Customer:      customer(),
		Currency:      "usd",
		Items:         []Line{{ProductID: "p1", Qty: 2}},
		Cart:          []byte(`[{"product_id":"p1","qty":2,"price":1}]`),
		DiscountTotal: decimal.NewFromInt(20),
		ShippingTotal: decimal.RequireFromString("9.5"),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Total.Equal(decimal.RequireFromString("189.5")) {
		t.Errorf("Total = %s, want 189.5", res.Total)
	}
	stored := orders.orders[res.OrderID]
	if stored.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", stored.Currency)
	}
	if string(stored.Meta.Cart) != `[{"product_id":"p1","qty":2,"price":1}]` {
		t.Errorf("cart = %s, want raw client cart", stored.Meta.Cart)
	}
}
