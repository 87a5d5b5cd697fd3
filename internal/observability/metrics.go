package observability

type MetricKey string

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MSagaCompensations       MetricKey = "saga_compensations_total"
	MWebhookEvents           MetricKey = "webhook_events_total"
)

type MetricKind int

const (
	KindCounter MetricKind = iota
	KindHistogram
)

// MetricDef describes one instrument. Labels passed at record time must be a subset of Labels;
// missing ones are recorded as empty strings.
type MetricDef struct {
	Key    MetricKey
	Kind   MetricKind
	Help   string
	Labels []string
}

// Definitions lists every instrument the service records, in registration order.
func Definitions() []MetricDef {
	return []MetricDef{
		{MUsecaseRequests, KindCounter, "Total number of use case invocations.", []string{"use_case", "outcome"}},
		{MUsecaseDuration, KindHistogram, "Duration of use case execution in seconds.", []string{"use_case"}},
		{MHTTPRequests, KindCounter, "Total number of HTTP requests.", []string{"method", "route", "status"}},
		{MHTTPRequestDuration, KindHistogram, "HTTP request latency in seconds.", []string{"method", "route", "status"}},
		{MExternalRequests, KindCounter, "Calls to order store, catalog, gateway, ledger and bus.", []string{"peer", "endpoint", "outcome"}},
		{MExternalRequestDuration, KindHistogram, "Latency of external collaborator calls in seconds.", []string{"peer", "endpoint"}},
		{MSagaCompensations, KindCounter, "Compensating actions executed during checkout rollback.", []string{"step", "outcome"}},
		{MWebhookEvents, KindCounter, "Gateway webhook deliveries by event and handling result.", []string{"event", "result"}},
	}
}
