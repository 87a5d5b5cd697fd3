package memory

import (
	"context"
	"sync"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/audit"

	"github.com/google/uuid"
)

type AuditRepository struct {
	mu      sync.RWMutex
	entries []*audit.Entry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	_ = ctx
	if entry == nil {
		return nil
	}
	c := cloneEntry(entry)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, c)
	return nil
}

func (r *AuditRepository) List(ctx context.Context, orderNumber string, limit int64) ([]*audit.Entry, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*audit.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if r.entries[i].OrderNumber == orderNumber {
			out = append(out, cloneEntry(r.entries[i]))
		}
	}
	return out, nil
}

func cloneEntry(e *audit.Entry) *audit.Entry {
	c := *e
	if e.Data != nil {
		c.Data = make(map[string]any, len(e.Data))
		for k, v := range e.Data {
			c.Data[k] = v
		}
	}
	return &c
}
