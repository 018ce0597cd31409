package workerpresentation

import (
	"context"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext puts a logger scoped to one delivered event on ctx. A nil
// base falls back to the logger already on ctx.
// attrs must stay low-cardinality (event name, component); event_id is
// generated when absent and trace ids are added when ctx carries a valid span.
func WithEventContext(ctx context.Context, base observability.Logger, attrs map[string]string) (context.Context, observability.Logger) {
	if base == nil {
		base = logctx.FromOr(ctx, nil)
	}

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields := []observability.Field{observability.F("event_id", evtID)}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	logger := base.With(fields...)
	return logctx.With(ctx, logger), logger
}
