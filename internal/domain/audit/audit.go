package audit

import (
	"context"
	"time"
)

// Entry is one line of an order's audit trail.
type Entry struct {
	ID          string
	Action      string
	OrderID     string
	OrderNumber string
	Data        map[string]any
	CreatedAt   time.Time
}

type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	// List returns entries for an order number, newest first, at most limit of them.
	List(ctx context.Context, orderNumber string, limit int64) ([]*Entry, error)
}
