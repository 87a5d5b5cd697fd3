package payment

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	dompay "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// fakeOrders is a map-backed order store that counts every call.
type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	calls  int

	UpdateFunc func(ctx context.Context, o *domain.Order) error
}

func newFakeOrders(orders ...*domain.Order) *fakeOrders {
	f := &fakeOrders{orders: map[string]*domain.Order{}}
	for _, o := range orders {
		f.orders[o.ID] = o.Clone()
	}
	return f
}

func (f *fakeOrders) touch() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeOrders) Insert(_ context.Context, o *domain.Order) error {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o.Clone()
	return nil
}

func (f *fakeOrders) InsertItems(context.Context, []*domain.Item) error { f.touch(); return nil }
func (f *fakeOrders) Delete(context.Context, string) error             { f.touch(); return nil }
func (f *fakeOrders) DeleteItems(context.Context, string) error        { f.touch(); return nil }

func (f *fakeOrders) FindByNumber(_ context.Context, number string) (*domain.Order, error) {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.OrderNumber == number {
			return o.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) FindByGatewayOrderID(_ context.Context, id string) (*domain.Order, error) {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.Meta.GatewayOrderID == id {
			return o.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) Items(context.Context, string) ([]*domain.Item, error) {
	f.touch()
	return nil, nil
}

func (f *fakeOrders) Update(ctx context.Context, o *domain.Order) error {
	f.touch()
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, o)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	f.orders[o.ID] = o.Clone()
	return nil
}

func (f *fakeOrders) get(id string) *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id].Clone()
}

func (f *fakeOrders) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGateway struct {
	mu      sync.Mutex
	orders  map[string]*dompay.GatewayOrder
	created int
	fetched int

	CreateOrderFunc func(ctx context.Context, req dompay.CreateOrderRequest) (*dompay.GatewayOrder, error)
	FetchOrderFunc  func(ctx context.Context, id string) (*dompay.GatewayOrder, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[string]*dompay.GatewayOrder{}}
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req dompay.CreateOrderRequest) (*dompay.GatewayOrder, error) {
	g.mu.Lock()
	g.created++
	n := g.created
	g.mu.Unlock()
	if g.CreateOrderFunc != nil {
		return g.CreateOrderFunc(ctx, req)
	}
	o := &dompay.GatewayOrder{
		ID:       fmt.Sprintf("order_%d", n),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}
	g.mu.Lock()
	g.orders[o.ID] = o
	g.mu.Unlock()
	return o, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, id string) (*dompay.GatewayOrder, error) {
	g.mu.Lock()
	g.fetched++
	g.mu.Unlock()
	if g.FetchOrderFunc != nil {
		return g.FetchOrderFunc(ctx, id)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	if !ok {
		return nil, dompay.ErrGatewayOrderNotFound
	}
	c := *o
	return &c, nil
}

type fakeLedger struct {
	mu   sync.Mutex
	seen map[string]bool

	SeenFunc func(ctx context.Context, id string) (bool, error)
}

func newFakeLedger() *fakeLedger { return &fakeLedger{seen: map[string]bool{}} }

func (l *fakeLedger) Seen(ctx context.Context, id string) (bool, error) {
	if l.SeenFunc != nil {
		return l.SeenFunc(ctx, id)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[id], nil
}

func (l *fakeLedger) Remember(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = true
	return nil
}

func pendingOrder(id, number string, total int64) *domain.Order {
	totals := domain.ComputeTotals(decimal.NewFromInt(total), decimal.Zero, decimal.Zero, decimal.Zero)
	return domain.New(id, number, "INR", domain.Customer{Name: "A", Email: "a@x"}, totals, "", domain.Meta{})
}
