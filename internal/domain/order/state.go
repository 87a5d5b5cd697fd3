package order

import "time"

// PaymentState implements the state pattern for payment lifecycle transitions.
// Each transition returns the next state; a state may return itself for idempotent replays.
type PaymentState interface {
	PaymentStatus() PaymentStatus
	OnGatewayOpened(o *Order) (PaymentState, error)
	OnCaptured(o *Order, at time.Time) (PaymentState, error)
	OnFailed(o *Order) (PaymentState, error)
	OnRefunded(o *Order) (PaymentState, error)
}

// StateOf resolves the state object for the order's current payment_status.
func StateOf(o *Order) PaymentState {
	switch o.PaymentStatus {
	case PaymentPaid:
		return paidState{}
	case PaymentRefunded:
		return refundedState{}
	case PaymentUnpaid:
		return unpaidState{}
	default:
		return pendingState{}
	}
}

// openState covers pending and unpaid, which behave identically: retries move freely between them.
type openState struct{}

func (openState) OnGatewayOpened(o *Order) (PaymentState, error) {
	o.Status = StatusPending
	o.PaymentStatus = PaymentUnpaid
	return unpaidState{}, nil
}

func (openState) OnCaptured(o *Order, at time.Time) (PaymentState, error) {
	o.Status = StatusPaid
	o.PaymentStatus = PaymentPaid
	if o.PlacedAt == nil {
		t := at.UTC()
		o.PlacedAt = &t
	}
	return paidState{}, nil
}

func (openState) OnFailed(o *Order) (PaymentState, error) {
	o.Status = StatusPending
	o.PaymentStatus = PaymentUnpaid
	return unpaidState{}, nil
}

func (openState) OnRefunded(*Order) (PaymentState, error) {
	return nil, ErrInvalidStateTransition
}

type pendingState struct{ openState }

func (pendingState) PaymentStatus() PaymentStatus { return PaymentPending }

type unpaidState struct{ openState }

func (unpaidState) PaymentStatus() PaymentStatus { return PaymentUnpaid }

type paidState struct{}

func (paidState) PaymentStatus() PaymentStatus { return PaymentPaid }

func (paidState) OnGatewayOpened(*Order) (PaymentState, error) {
	return nil, ErrAlreadyPaid
}

func (paidState) OnCaptured(*Order, time.Time) (PaymentState, error) {
	return paidState{}, nil
}

// OnFailed never downgrades a paid order; a late failure signal is recorded in meta only.
func (paidState) OnFailed(*Order) (PaymentState, error) {
	return paidState{}, nil
}

func (paidState) OnRefunded(o *Order) (PaymentState, error) {
	o.Status = StatusPaid
	o.PaymentStatus = PaymentRefunded
	return refundedState{}, nil
}

type refundedState struct{}

func (refundedState) PaymentStatus() PaymentStatus { return PaymentRefunded }

func (refundedState) OnGatewayOpened(*Order) (PaymentState, error) {
	return nil, ErrAlreadyPaid
}

func (refundedState) OnCaptured(*Order, time.Time) (PaymentState, error) {
	return refundedState{}, nil
}

func (refundedState) OnFailed(*Order) (PaymentState, error) {
	return refundedState{}, nil
}

func (refundedState) OnRefunded(*Order) (PaymentState, error) {
	return refundedState{}, nil
}

// GatewayOpened moves a pending order to pending/unpaid once a gateway order exists.
func (o *Order) GatewayOpened() error {
	_, err := StateOf(o).OnGatewayOpened(o)
	if err == nil {
		o.touch()
	}
	return err
}

// PaymentCaptured marks the order paid and stamps PlacedAt on the first capture only.
func (o *Order) PaymentCaptured(at time.Time) error {
	_, err := StateOf(o).OnCaptured(o, at)
	if err == nil {
		o.touch()
	}
	return err
}

func (o *Order) PaymentFailed() error {
	_, err := StateOf(o).OnFailed(o)
	if err == nil {
		o.touch()
	}
	return err
}

func (o *Order) PaymentRefunded() error {
	_, err := StateOf(o).OnRefunded(o)
	if err == nil {
		o.touch()
	}
	return err
}

// IsSettled reports whether money has moved for this order (paid or refunded).
func (o *Order) IsSettled() bool {
	return o.PaymentStatus == PaymentPaid || o.PaymentStatus == PaymentRefunded
}
