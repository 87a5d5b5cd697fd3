package prometrics

import (
	"testing"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

func TestInstrumentsRegistersEveryDefinition(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := Instruments(New(reg, "", ""))

	for _, d := range observability.Definitions() {
		switch d.Kind {
		case observability.KindCounter:
			if counters[d.Key] == nil {
				t.Errorf("counter %s not registered", d.Key)
			}
		case observability.KindHistogram:
			if histograms[d.Key] == nil {
				t.Errorf("histogram %s not registered", d.Key)
			}
		}
	}
}

func TestCounterFillsMissingLabelsAndDropsUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, _ := Instruments(New(reg, "shop", ""))

	c := counters[observability.MWebhookEvents]
	c.Add(1, observability.L("event", "payment.captured"), observability.L("bogus", "x"))
	c.Add(2, observability.L("event", "payment.captured"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() != "shop_webhook_events_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("series = %d, want 1", len(mf.GetMetric()))
		}
		m := mf.GetMetric()[0]
		if got := m.GetCounter().GetValue(); got != 3 {
			t.Errorf("value = %v, want 3", got)
		}
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["event"] != "payment.captured" || labels["result"] != "" || len(labels) != 2 {
			t.Errorf("labels = %v", labels)
		}
	}
	if !found {
		t.Fatal("shop_webhook_events_total not gathered")
	}
}

func TestRegistryReusesCollectors(t *testing.T) {
	r := New(prometheus.NewRegistry(), "", "")
	a := r.Counter("dup_total", "help", "k")
	b := r.Counter("dup_total", "help", "k")
	a.Add(1, observability.L("k", "v"))
	b.Add(1, observability.L("k", "v"))
}
