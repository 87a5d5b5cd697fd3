package mongoaudit

import (
	"testing"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"
)

func TestToDocumentFillsIdentity(t *testing.T) {
	doc := toDocument(&audit.Entry{Action: "order.created", OrderNumber: "SM1"})
	if doc.ID == "" {
		t.Error("ID not assigned")
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
	if doc.Data != nil {
		t.Errorf("Data = %v, want omitted", doc.Data)
	}
}

func TestDocumentRoundTripKeepsFields(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	in := &audit.Entry{
		ID:          "a1",
		Action:      "order.webhook_applied",
		OrderID:     "o1",
		OrderNumber: "SM1",
		Data:        map[string]any{"event": "payment.captured"},
		CreatedAt:   at,
	}

	doc := toDocument(in)
	out := doc.toEntry()
	if out.ID != "a1" || out.Action != in.Action || out.OrderNumber != "SM1" || !out.CreatedAt.Equal(at) {
		t.Errorf("entry = %+v", out)
	}
	if out.Data["event"] != "payment.captured" {
		t.Errorf("data = %v", out.Data)
	}
}
