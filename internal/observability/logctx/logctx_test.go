package logctx

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

type recordingLogger struct {
	observability.Logger
	fields []observability.Field
}

func (r *recordingLogger) With(fields ...observability.Field) observability.Logger {
	return &recordingLogger{Logger: r.Logger, fields: append(append([]observability.Field(nil), r.fields...), fields...)}
}

func TestFromOrFallsBack(t *testing.T) {
	fallback := &recordingLogger{Logger: observability.NopLogger()}
	if got := FromOr(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger, got %v", got)
	}
	if got := FromOr(context.Background(), nil); got == nil {
		t.Fatalf("expected nop logger when fallback is nil")
	}
}

func TestEnrichStoresLogger(t *testing.T) {
	base := &recordingLogger{Logger: observability.NopLogger()}
	ctx, logger := Enrich(context.Background(), base, observability.F("request_id", "r-1"))

	if From(ctx) != logger {
		t.Fatalf("enriched logger not stored on context")
	}
	rec, ok := logger.(*recordingLogger)
	if !ok || len(rec.fields) != 1 || rec.fields[0].Key != "request_id" {
		t.Fatalf("unexpected fields: %+v", logger)
	}

	_, nested := Enrich(ctx, nil, observability.F("use_case", "cart.add_product"))
	if got := len(nested.(*recordingLogger).fields); got != 2 {
		t.Fatalf("expected 2 fields on nested logger, got %d", got)
	}
}
