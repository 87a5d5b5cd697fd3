package httppresentation

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability/logctx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerRequestID = "X-Request-ID"
	tracerName      = "checkout.http"
	unmatchedRoute  = "unmatched"
)

// route returns the registered template, never the raw path, so labels stay low-cardinality.
func route(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return unmatchedRoute
}

// withTrace opens a server span per request, continuing any W3C trace context from headers.
func withTrace() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		r := c.Request
		parent := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := tracer.Start(parent, r.Method+" "+route(c),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route(c)),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		c.Request = r.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// withRequestLogger binds a request-scoped logger carrying request_id and the trace ids.
// An inbound X-Request-ID is reused; otherwise one is generated. Either way it is echoed.
func withRequestLogger(base observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		ctx := logctx.With(c.Request.Context(), base.With(fields...))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// withMetrics records http_requests_total and http_request_duration_seconds.
// Instruments are resolved once here, never per request.
func withMetrics(tel observability.Observability) gin.HandlerFunc {
	requests := tel.Metrics().Counter(observability.MHTTPRequests)
	duration := tel.Metrics().Histogram(observability.MHTTPRequestDuration)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		labels := []observability.Label{
			observability.L("method", c.Request.Method),
			observability.L("route", route(c)),
			observability.L("status", strconv.Itoa(c.Writer.Status())),
		}
		requests.Add(1, labels...)
		duration.Observe(time.Since(start).Seconds(), labels...)
	}
}

// withAccessLog writes one line per request after the handler completes.
func withAccessLog(fallback observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger := logctx.FromOr(c.Request.Context(), fallback)
		fields := []observability.Field{
			observability.F("method", c.Request.Method),
			observability.F("route", route(c)),
			observability.F("path", c.Request.URL.Path),
			observability.F("status", c.Writer.Status()),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, observability.F("error", c.Errors.Last().Error()))
		}
		logger.Info("http_access", fields...)
	}
}

// withRecovery turns a handler panic into 500 internal_error and an error log.
func withRecovery(fallback observability.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logctx.FromOr(c.Request.Context(), fallback).Error("http_panic",
			observability.F("panic", recovered),
			observability.F("route", route(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": codeInternal})
	})
}
