package redisledger

import (
	"context"
	"testing"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/config"
)

func TestLedgerKeyUsesPrefix(t *testing.T) {
	l := NewWebhookLedger(nil, "checkout:webhook:", time.Hour)
	if got := l.key("evt_1"); got != "checkout:webhook:evt_1" {
		t.Errorf("key = %q", got)
	}
}

func TestLedgerReportsUnreachableRedis(t *testing.T) {
	client := NewClient(config.RedisConfig{Addr: "127.0.0.1:1", PoolSize: 1})
	l := NewWebhookLedger(client, "t:", time.Minute)
	defer l.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := l.Seen(ctx, "evt_1"); err == nil {
		t.Fatal("Seen() on an unreachable server returned nil error")
	}
	if err := l.Remember(ctx, "evt_1"); err == nil {
		t.Fatal("Remember() on an unreachable server returned nil error")
	}
}
