package order

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrConflict               = errors.New("order: conflict")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
	ErrAlreadyPaid            = errors.New("order: already paid")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Customer is the buyer snapshot captured at checkout.
type Customer struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Address json.RawMessage `json:"address,omitempty"`
}

// Totals are always computed server-side from catalog prices.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeTotals applies total = subtotal - discount + tax + shipping.
func ComputeTotals(subtotal, discount, tax, shipping decimal.Decimal) Totals {
	return Totals{
		Subtotal:      subtotal,
		DiscountTotal: discount,
		TaxTotal:      tax,
		ShippingTotal: shipping,
		Total:         subtotal.Sub(discount).Add(tax).Add(shipping),
	}
}

// MinorUnits converts the total to integer minor units (paise), rounding half away from zero.
func (t Totals) MinorUnits() int64 {
	return t.Total.Shift(2).Round(0).IntPart()
}

type Order struct {
	ID            string
	OrderNumber   string
	Status        Status
	PaymentStatus PaymentStatus
	Currency      string
	Totals
	Customer      Customer
	PaymentMethod string
	Meta          Meta
	PlacedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New builds a freshly checked-out order in pending/pending.
func New(id, number, currency string, customer Customer, totals Totals, paymentMethod string, meta Meta) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:            id,
		OrderNumber:   number,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Currency:      currency,
		Totals:        totals,
		Customer:      customer,
		PaymentMethod: paymentMethod,
		Meta:          meta,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy safe to hand across repository boundaries.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Customer.Address = cloneRaw(o.Customer.Address)
	c.Meta = o.Meta.Clone()
	if o.PlacedAt != nil {
		t := *o.PlacedAt
		c.PlacedAt = &t
	}
	return &c
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}

// Item is an immutable order line snapshot.
type Item struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	ProductID    string          `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Qty          int             `json:"qty"`
	LineTotal    decimal.Decimal `json:"line_total"`
	Meta         json.RawMessage `json:"meta,omitempty"`
}

func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.Meta = cloneRaw(i.Meta)
	return &c
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}
