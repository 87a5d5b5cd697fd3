package order

import (
	"errors"
	"testing"
	"time"
)

func newOrder(ps PaymentStatus, s Status) *Order {
	o := New("id", "SM1", "INR", Customer{}, Totals{}, "", Meta{})
	o.PaymentStatus = ps
	o.Status = s
	return o
}

func TestGatewayOpened(t *testing.T) {
	for _, ps := range []PaymentStatus{PaymentPending, PaymentUnpaid} {
		o := newOrder(ps, StatusPending)
		if err := o.GatewayOpened(); err != nil {
			t.Fatalf("GatewayOpened() from %s error = %v", ps, err)
		}
		if o.Status != StatusPending || o.PaymentStatus != PaymentUnpaid {
			t.Errorf("from %s got %s/%s, want pending/unpaid", ps, o.Status, o.PaymentStatus)
		}
	}

	for _, ps := range []PaymentStatus{PaymentPaid, PaymentRefunded} {
		o := newOrder(ps, StatusPaid)
		if err := o.GatewayOpened(); !errors.Is(err, ErrAlreadyPaid) {
			t.Errorf("GatewayOpened() from %s error = %v, want ErrAlreadyPaid", ps, err)
		}
	}
}

func TestCapturedStampsPlacedAtOnce(t *testing.T) {
	o := newOrder(PaymentUnpaid, StatusPending)
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := o.PaymentCaptured(first); err != nil {
		t.Fatalf("PaymentCaptured() error = %v", err)
	}
	if o.Status != StatusPaid || o.PaymentStatus != PaymentPaid {
		t.Fatalf("got %s/%s, want paid/paid", o.Status, o.PaymentStatus)
	}
	if o.PlacedAt == nil || !o.PlacedAt.Equal(first) {
		t.Fatalf("PlacedAt = %v, want %v", o.PlacedAt, first)
	}

	if err := o.PaymentCaptured(first.Add(time.Hour)); err != nil {
		t.Fatalf("second PaymentCaptured() error = %v", err)
	}
	if !o.PlacedAt.Equal(first) {
		t.Errorf("PlacedAt moved to %v on replay", o.PlacedAt)
	}
}

func TestFailedNeverDowngradesPaid(t *testing.T) {
	o := newOrder(PaymentPaid, StatusPaid)
	if err := o.PaymentFailed(); err != nil {
		t.Fatalf("PaymentFailed() error = %v", err)
	}
	if o.Status != StatusPaid || o.PaymentStatus != PaymentPaid {
		t.Errorf("got %s/%s, want paid/paid", o.Status, o.PaymentStatus)
	}
}

func TestFailedFromPendingGoesUnpaid(t *testing.T) {
	o := newOrder(PaymentPending, StatusPending)
	if err := o.PaymentFailed(); err != nil {
		t.Fatalf("PaymentFailed() error = %v", err)
	}
	if o.Status != StatusPending || o.PaymentStatus != PaymentUnpaid {
		t.Errorf("got %s/%s, want pending/unpaid", o.Status, o.PaymentStatus)
	}
}

func TestRefundOnlyFromPaid(t *testing.T) {
	o := newOrder(PaymentUnpaid, StatusPending)
	if err := o.PaymentRefunded(); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("PaymentRefunded() from unpaid error = %v, want ErrInvalidStateTransition", err)
	}
	if o.PaymentStatus != PaymentUnpaid {
		t.Errorf("payment status changed to %s", o.PaymentStatus)
	}

	o = newOrder(PaymentPaid, StatusPaid)
	if err := o.PaymentRefunded(); err != nil {
		t.Fatalf("PaymentRefunded() from paid error = %v", err)
	}
	if o.Status != StatusPaid || o.PaymentStatus != PaymentRefunded {
		t.Errorf("got %s/%s, want paid/refunded", o.Status, o.PaymentStatus)
	}
}

func TestRefundedIsTerminal(t *testing.T) {
	o := newOrder(PaymentRefunded, StatusPaid)
	_ = o.PaymentCaptured(time.Now())
	_ = o.PaymentFailed()
	_ = o.PaymentRefunded()

	if o.Status != StatusPaid || o.PaymentStatus != PaymentRefunded {
		t.Errorf("got %s/%s, want paid/refunded", o.Status, o.PaymentStatus)
	}
}
