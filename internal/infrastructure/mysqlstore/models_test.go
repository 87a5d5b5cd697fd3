package mysqlstore

import (
	"encoding/json"
	"testing"
	"time"

	domain "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/order"

	"github.com/shopspring/decimal"
)

func TestOrderRecordDenormalizesGatewayOrderID(t *testing.T) {
	o := domain.New("o1", "SM1", "INR", domain.Customer{Name: "A", Email: "a@x"},
		domain.ComputeTotals(decimal.NewFromInt(210), decimal.Zero, decimal.Zero, decimal.NewFromInt(10)), "razorpay",
		domain.Meta{GatewayOrderID: "order_1"})

	rec, err := newOrderRecord(o)
	if err != nil {
		t.Fatalf("newOrderRecord() error = %v", err)
	}
	if rec.GatewayOrderID != "order_1" {
		t.Errorf("GatewayOrderID = %q, want order_1", rec.GatewayOrderID)
	}
	if !rec.Total.Equal(decimal.NewFromInt(220)) {
		t.Errorf("Total = %s, want 220", rec.Total)
	}
}

func TestOrderRecordKeepsUnknownMetaKeys(t *testing.T) {
	placed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := &orderRecord{
		ID:              "o1",
		OrderNumber:     "SM1",
		Status:          "paid",
		PaymentStatus:   "paid",
		Currency:        "INR",
		Total:           decimal.RequireFromString("220.00"),
		CustomerAddress: `{"city":"Mumbai"}`,
		Meta:            `{"gateway_order_id":"order_1","verify_ok":true,"utm_source":"ig"}`,
		PlacedAt:        &placed,
	}

	o, err := rec.toDomain()
	if err != nil {
		t.Fatalf("toDomain() error = %v", err)
	}
	if o.Status != domain.StatusPaid || o.PaymentStatus != domain.PaymentPaid {
		t.Errorf("status = %s/%s", o.Status, o.PaymentStatus)
	}
	if o.Meta.VerifyOK == nil || !*o.Meta.VerifyOK || o.Meta.GatewayOrderID != "order_1" {
		t.Errorf("meta = %+v", o.Meta)
	}
	if string(o.Meta.Extra["utm_source"]) != `"ig"` {
		t.Errorf("extra = %v", o.Meta.Extra)
	}

	back, err := newOrderRecord(o)
	if err != nil {
		t.Fatalf("newOrderRecord() error = %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(back.Meta), &doc); err != nil {
		t.Fatalf("meta is not JSON: %v", err)
	}
	if string(doc["utm_source"]) != `"ig"` {
		t.Errorf("utm_source lost on write: %s", back.Meta)
	}
}

func TestOrderRecordRejectsCorruptMeta(t *testing.T) {
	rec := &orderRecord{ID: "o1", Meta: `{broken`}
	if _, err := rec.toDomain(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestOrderItemRecordMeta(t *testing.T) {
	it := &domain.Item{ID: "i1", OrderID: "o1", ProductID: "p1", Qty: 2}
	if rec := newOrderItemRecord(it, 0); rec.Meta != nil {
		t.Errorf("Meta = %q, want NULL for an item without meta", *rec.Meta)
	}

	it.Meta = json.RawMessage(`{"size":"M"}`)
	rec := newOrderItemRecord(it, 3)
	if rec.Position != 3 || rec.Meta == nil || *rec.Meta != `{"size":"M"}` {
		t.Errorf("record = %+v", rec)
	}
	if got := rec.toDomain(); string(got.Meta) != `{"size":"M"}` {
		t.Errorf("Meta = %s", got.Meta)
	}
}
