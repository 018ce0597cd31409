package observability

// Metric names shared by the Prometheus registry and its callers. Label sets
// are fixed per name; see prometrics for the registered definitions.
const (
	// Cart use cases, labelled by use_case and outcome.
	MUsecaseRequests MetricKey = "usecase_requests_total"
	MUsecaseDuration MetricKey = "usecase_duration_seconds"

	// Calls to the inventory service and the event bus, labelled by peer and endpoint.
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"

	// Cart HTTP API, labelled by method, route and status.
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"

	// Counted by the notification worker from bus events.
	MCartNotifications MetricKey = "cart_notifications_total" // kind
	MCartCommits       MetricKey = "cart_commits_total"       // operation
)
