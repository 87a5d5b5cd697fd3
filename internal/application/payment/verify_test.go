package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/pkg/signature"
)

const testKeySecret = "key_secret"

func unpaidOrder(id, number, gatewayOrderID string) *domain.Order {
	o := pendingOrder(id, number, 100)
	o.PaymentStatus = domain.PaymentUnpaid
	o.Meta.GatewayOrderID = gatewayOrderID
	return o
}

func sign(orderID, paymentID string) string {
	return signature.Compute(testKeySecret, signature.PaymentPayload(orderID, paymentID))
}

func newVerifyUseCase(orders *fakeOrders, clock ...time.Time) *VerifyPaymentUseCase {
	uc := NewVerifyPaymentUseCase(orders, nil, testKeySecret, nil)
	if len(clock) > 0 {
		i := 0
		uc.now = func() time.Time {
			t := clock[i%len(clock)]
			i++
			return t
		}
	}
	return uc
}

func TestVerifyScenarioEStampsPlacedAtOnce(t *testing.T) {
	orders := newFakeOrders(unpaidOrder("o1", "SM1", "order_1"))
	first := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	uc := newVerifyUseCase(orders, first, first.Add(time.Hour))

	in := VerifyPaymentInput{GatewayOrderID: "order_1", PaymentID: "pay_1", Signature: sign("order_1", "pay_1")}
	res, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.OrderNumber != "SM1" || !res.Matched {
		t.Errorf("result = %+v", res)
	}

	stored := orders.get("o1")
	if stored.Status != domain.StatusPaid || stored.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("status = %s/%s, want paid/paid", stored.Status, stored.PaymentStatus)
	}
	if stored.PlacedAt == nil || !stored.PlacedAt.Equal(first) {
		t.Fatalf("PlacedAt = %v, want %v", stored.PlacedAt, first)
	}
	if stored.Meta.GatewayPaymentID != "pay_1" || stored.Meta.VerifyOK == nil || !*stored.Meta.VerifyOK {
		t.Errorf("meta = %+v", stored.Meta)
	}

	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("replayed Execute() error = %v", err)
	}
	if got := orders.get("o1").PlacedAt; !got.Equal(first) {
		t.Errorf("PlacedAt moved to %v on replay", got)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	orders := newFakeOrders(unpaidOrder("o1", "SM1", "order_1"))
	uc := newVerifyUseCase(orders)

	res, err := uc.Execute(context.Background(), VerifyPaymentInput{
		GatewayOrderID: "order_1",
		PaymentID:      "pay_1",
		Signature:      sign("order_1", "pay_2"),
	})
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("Execute() error = %v, want ErrSignatureMismatch", err)
	}
	if res == nil || res.Matched {
		t.Fatalf("result = %+v, want recorded mismatch", res)
	}

	stored := orders.get("o1")
	if stored.Status != domain.StatusPending || stored.PaymentStatus != domain.PaymentUnpaid {
		t.Errorf("status = %s/%s, want pending/unpaid", stored.Status, stored.PaymentStatus)
	}
	if stored.PlacedAt != nil {
		t.Error("PlacedAt stamped on mismatch")
	}
	if stored.Meta.VerifyOK == nil || *stored.Meta.VerifyOK {
		t.Errorf("verify_ok = %v, want false", stored.Meta.VerifyOK)
	}
	if stored.Meta.GatewaySignature == "" || stored.Meta.GatewayPaymentID != "pay_1" {
		t.Errorf("attempt not recorded: %+v", stored.Meta)
	}
}

func TestVerifyMismatchNeverDowngradesPaid(t *testing.T) {
	o := unpaidOrder("o1", "SM1", "order_1")
	o.Status, o.PaymentStatus = domain.StatusPaid, domain.PaymentPaid
	orders := newFakeOrders(o)
	uc := newVerifyUseCase(orders)

	_, err := uc.Execute(context.Background(), VerifyPaymentInput{
		GatewayOrderID: "order_1",
		PaymentID:      "pay_1",
		Signature:      "deadbeef",
	})
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("Execute() error = %v, want ErrSignatureMismatch", err)
	}
	stored := orders.get("o1")
	if stored.Status != domain.StatusPaid || stored.PaymentStatus != domain.PaymentPaid {
		t.Errorf("status = %s/%s, want paid/paid", stored.Status, stored.PaymentStatus)
	}
	if stored.Meta.VerifyOK == nil || *stored.Meta.VerifyOK {
		t.Errorf("verify_ok = %v, want false recorded", stored.Meta.VerifyOK)
	}
}

func TestVerifyErrors(t *testing.T) {
	tests := []struct {
		name string
		in   VerifyPaymentInput
		want error
	}{
		{"missing order id", VerifyPaymentInput{PaymentID: "p", Signature: "s"}, ErrMissingFields},
		{"missing payment id", VerifyPaymentInput{GatewayOrderID: "o", Signature: "s"}, ErrMissingFields},
		{"missing signature", VerifyPaymentInput{GatewayOrderID: "o", PaymentID: "p"}, ErrMissingFields},
		{"unknown order", VerifyPaymentInput{GatewayOrderID: "order_x", PaymentID: "p", Signature: sign("order_x", "p")}, ErrOrderNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newVerifyUseCase(newFakeOrders(unpaidOrder("o1", "SM1", "order_1")))
			if _, err := uc.Execute(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestVerifyUpdateFailure(t *testing.T) {
	orders := newFakeOrders(unpaidOrder("o1", "SM1", "order_1"))
	orders.UpdateFunc = func(context.Context, *domain.Order) error { return errors.New("store down") }
	uc := newVerifyUseCase(orders)

	_, err := uc.Execute(context.Background(), VerifyPaymentInput{
		GatewayOrderID: "order_1", PaymentID: "pay_1", Signature: sign("order_1", "pay_1"),
	})
	if !errors.Is(err, ErrOrderUpdateFailed) {
		t.Fatalf("Execute() error = %v, want ErrOrderUpdateFailed", err)
	}
}
