package order

import (
	"context"
	"errors"
	"testing"

	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
)

type fakeRepo struct {
	domain.Repository

	FindByNumberFunc func(ctx context.Context, number string) (*domain.Order, error)
	ItemsFunc        func(ctx context.Context, orderID string) ([]*domain.Item, error)
}

func (f *fakeRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return f.FindByNumberFunc(ctx, number)
}

func (f *fakeRepo) Items(ctx context.Context, orderID string) ([]*domain.Item, error) {
	if f.ItemsFunc == nil {
		return nil, nil
	}
	return f.ItemsFunc(ctx, orderID)
}

func TestGetOrderReturnsOrderAndItems(t *testing.T) {
	var gotNumber, gotOrderID string
	repo := &fakeRepo{
		FindByNumberFunc: func(_ context.Context, number string) (*domain.Order, error) {
			gotNumber = number
			return &domain.Order{ID: "o-1", OrderNumber: number, PaymentStatus: domain.PaymentUnpaid}, nil
		},
		ItemsFunc: func(_ context.Context, orderID string) ([]*domain.Item, error) {
			gotOrderID = orderID
			return []*domain.Item{{ID: "i-1", OrderID: orderID, ProductID: "p1", Qty: 2}}, nil
		},
	}

	res, err := NewGetOrderUseCase(repo, nil).Execute(context.Background(), GetOrderInput{OrderNumber: "  SM260101-ABCDEF01 "})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotNumber != "SM260101-ABCDEF01" {
		t.Errorf("looked up %q, want trimmed order number", gotNumber)
	}
	if gotOrderID != "o-1" {
		t.Errorf("items looked up for %q, want o-1", gotOrderID)
	}
	if res.Order.ID != "o-1" || len(res.Items) != 1 || res.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGetOrderErrors(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name   string
		number string
		find   func(context.Context, string) (*domain.Order, error)
		items  func(context.Context, string) ([]*domain.Item, error)
		want   error
	}{
		{
			name:   "blank number",
			number: "   ",
			want:   ErrMissingOrderNumber,
		},
		{
			name:   "unknown order",
			number: "SM1",
			find: func(context.Context, string) (*domain.Order, error) {
				return nil, domain.ErrNotFound
			},
			want: ErrOrderNotFound,
		},
		{
			name:   "store failure",
			number: "SM1",
			find: func(context.Context, string) (*domain.Order, error) {
				return nil, boom
			},
			want: ErrOrderLookupFailed,
		},
		{
			name:   "items failure",
			number: "SM1",
			find: func(context.Context, string) (*domain.Order, error) {
				return &domain.Order{ID: "o-1", OrderNumber: "SM1"}, nil
			},
			items: func(context.Context, string) ([]*domain.Item, error) {
				return nil, boom
			},
			want: ErrOrderLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{
				FindByNumberFunc: func(context.Context, string) (*domain.Order, error) {
					t.Fatal("FindByNumber should not be called")
					return nil, nil
				},
				ItemsFunc: tt.items,
			}
			if tt.find != nil {
				repo.FindByNumberFunc = tt.find
			}

			_, err := NewGetOrderUseCase(repo, nil).Execute(context.Background(), GetOrderInput{OrderNumber: tt.number})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.want)
			}
		})
	}
}
