package application

import (
	"context"
	"time"

	domoutbox "github.com/The4Loops/ShahuMumbai-Project-sub000/internal/domain/outbox"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const (
	SpanPrefix = "UC."

	OutcomeSuccess = "success"
	OutcomeError   = "error"
	StatusOK       = "OK"
)

// Instruments holds the RED metrics and base logger a use case is built with.
// Metrics are resolved once at construction, never inside Execute.
type Instruments struct {
	tracer observability.Tracer
	log    observability.Logger

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstruments(tel observability.Observability, service string) Instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return Instruments{
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   m.Counter(observability.MUsecaseRequests),
		durHistogram: m.Histogram(observability.MUsecaseDuration),
		extCounter:   m.Counter(observability.MExternalRequests),
		extHistogram: m.Histogram(observability.MExternalRequestDuration),
	}
}

func (in Instruments) Logger() observability.Logger { return in.log }

// Run tracks a single use case execution until End.
type Run struct {
	ctx     context.Context
	span    trace.Span
	start   time.Time
	useCase string
	in      Instruments

	Log     observability.Logger
	outcome string
	status  string
	fields  []observability.Field
}

// Begin opens the use case span and binds a logger tagged with use_case onto the context.
func (in Instruments) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append(attrs, attribute.String("use_case", useCase))
	ctx, span := in.tracer.Start(ctx, SpanPrefix+spanName, attrs...)

	logger := logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))
	ctx = logctx.With(ctx, logger)

	return ctx, &Run{
		ctx:     ctx,
		span:    span,
		start:   time.Now(),
		useCase: useCase,
		in:      in,
		Log:     logger,
		outcome: OutcomeSuccess,
		status:  StatusOK,
	}
}

func (r *Run) Span() trace.Span { return r.span }

// Fail marks the run as failed with a stable status text.
func (r *Run) Fail(status string) {
	r.outcome, r.status = OutcomeError, status
}

// Status overrides the status text without changing the outcome.
func (r *Run) Status(status string) {
	r.status = status
}

// Annotate adds fields to the final use_case_done line.
func (r *Run) Annotate(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

// End closes the span, records RED metrics and writes exactly one use_case_done line.
func (r *Run) End(err error) {
	lat := time.Since(r.start).Seconds()
	if err != nil && r.outcome == OutcomeSuccess {
		r.outcome = OutcomeError
	}

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	r.in.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", r.outcome),
	)
	r.in.durHistogram.Observe(lat, observability.L("use_case", r.useCase))

	fields := []observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(r.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, r.fields...)
	if err != nil {
		fields = append(fields, observability.Err(err))
	}
	r.Log.Info("use_case_done", fields...)
}

// External times one outbound call and records it against external_requests_total.
func (in Instruments) External(ctx context.Context, peer, endpoint string, call func(ctx context.Context) error) error {
	start := time.Now()
	err := call(ctx)

	outcome := OutcomeSuccess
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = "canceled"
	case err != nil:
		outcome = OutcomeError
	}
	in.extCounter.Add(1,
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peer),
		observability.L("endpoint", endpoint),
	)
	return err
}

const (
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

// Publish hands e to the bus under a short timeout. Failures are logged on the run and
// never change its outcome: the write the event describes has already happened.
func (in Instruments) Publish(ctx context.Context, run *Run, pub domoutbox.Publisher, e domoutbox.Event) {
	if pub == nil || e == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := in.External(pubCtx, publishPeer, e.EventName(), func(ctx context.Context) error {
		return pub.Publish(ctx, e)
	})
	if err != nil {
		run.span.RecordError(err)
		run.Annotate(observability.F("event_publish_error", err.Error()))
		run.Log.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.Err(err),
		)
	}
}
