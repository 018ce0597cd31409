package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Observability is what the cart manager, the notification worker and the
// HTTP layer receive instead of concrete zap, Prometheus or otel types.
type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

// Logger writes structured events such as use_case_done or http_access.
// With returns a child carrying fields on every later entry.
type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a single structured log attribute.
type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// MetricKey names a registered metric. Unknown keys yield no-op instruments.
type MetricKey string

type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
}

// Label values must come from a small closed set such as route patterns or
// notification kinds. Never product ids.
type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

type Counter interface {
	Add(delta float64, labels ...Label)
	// Bind fixes labels up front for hot paths such as per-request counters.
	Bind(labels ...Label) BoundCounter
}

type BoundCounter interface {
	Add(delta float64)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
	Bind(labels ...Label) BoundHistogram
}

type BoundHistogram interface {
	Observe(value float64)
}
