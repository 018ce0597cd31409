package httppresentation

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "minishop-cart.http"

// ObservabilityMiddleware injects a request-scoped logger carrying the request
// id and, when the request is traced, trace_id/span_id. The request id is taken
// from requestID or generated, and echoed in X-Request-ID.
func ObservabilityMiddleware(base observability.Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	if base == nil {
		base = observability.NopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rid := ""
			if requestID != nil {
				rid = requestID(r)
			}
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(headerRequestID, rid)

			fields := []observability.Field{observability.F("request_id", rid)}
			if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
				fields = append(fields,
					observability.F("trace_id", sc.TraceID().String()),
					observability.F("span_id", sc.SpanID().String()),
				)
			}
			ctx = logctx.With(ctx, base.With(fields...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// withTrace starts a server span, continuing a W3C trace from the request headers.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		spanName := route
		if spanName == "unknown" {
			spanName = r.Method + " " + r.URL.Path
		}
		template := route
		if idx := strings.Index(template, " "); idx >= 0 {
			template = template[idx+1:]
		}
		if template == "unknown" || template == "" {
			template = r.URL.Path
		}

		ctx, span := h.tracer.Start(parentCtx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", template),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", lrw.status))
		if lrw.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(lrw.status))
		}
	})
}

// withAccessLog writes one access log entry after the handler completes.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withHTTPMetrics records request count and latency with the route template as label.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		labels := []observability.Label{
			observability.L("method", r.Method),
			observability.L("route", routeFromContext(r.Context())),
			observability.L("status", strconv.Itoa(lrw.status)),
		}
		h.requests.Add(1, labels...)
		h.latency.Observe(time.Since(start).Seconds(), labels...)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

type routeKey struct{}

// contextWithRoute stores the route pattern so labels stay low-cardinality.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
