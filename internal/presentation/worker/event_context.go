package workerpresentation

import (
	"context"

	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Keyed is implemented by events that name the order they describe.
type Keyed interface {
	AggregateKey() string
}

// WithEventContext binds a logger for one background event delivery onto ctx.
// Fields: delivery_id (fresh per delivery), event, order_number when the event carries one,
// and trace_id/span_id when the context holds a valid span.
func WithEventContext(ctx context.Context, base observability.Logger, e domoutbox.Event) (context.Context, observability.Logger) {
	if base == nil {
		base = observability.NopLogger()
	}

	fields := make([]observability.Field, 0, 5)
	fields = append(fields, observability.F("delivery_id", uuid.NewString()))
	if e != nil {
		fields = append(fields, observability.F("event", e.EventName()))
		if k, ok := e.(Keyed); ok && k.AggregateKey() != "" {
			fields = append(fields, observability.F("order_number", k.AggregateKey()))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}

	logger := base.With(fields...)
	return logctx.With(ctx, logger), logger
}
