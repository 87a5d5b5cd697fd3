package memory

import (
	"context"
	"sync"
	"time"
)

// WebhookLedger remembers applied webhook event ids until their TTL passes.
type WebhookLedger struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

func NewWebhookLedger(ttl time.Duration) *WebhookLedger {
	return &WebhookLedger{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[string]time.Time),
	}
}

func (l *WebhookLedger) Seen(ctx context.Context, eventID string) (bool, error) {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.seen[eventID]
	if !ok {
		return false, nil
	}
	if l.ttl > 0 && !l.now().Before(exp) {
		delete(l.seen, eventID)
		return false, nil
	}
	return true, nil
}

func (l *WebhookLedger) Remember(ctx context.Context, eventID string) error {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.seen[eventID] = now.Add(l.ttl)
	if len(l.seen)%256 == 0 {
		l.sweep(now)
	}
	return nil
}

func (l *WebhookLedger) sweep(now time.Time) {
	if l.ttl <= 0 {
		return
	}
	for id, exp := range l.seen {
		if !now.Before(exp) {
			delete(l.seen, id)
		}
	}
}
