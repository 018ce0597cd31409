package prometrics

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounterRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "", "")

	r.Counter(observability.MCartCommits).Add(1, observability.L("operation", "add_product"))
	r.Counter(observability.MCartCommits).Add(2, observability.L("operation", "add_product"))
	r.Counter(observability.MCartCommits).Bind(observability.L("operation", "remove_product")).Add(1)

	count, err := testutil.GatherAndCount(reg, "cart_commits_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 series, got %d", count)
	}

	cv := r.counters[observability.MCartCommits]
	if got := testutil.ToFloat64(cv.WithLabelValues("add_product")); got != 3 {
		t.Fatalf("expected 3 adds, got %v", got)
	}
}

func TestHistogramNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "minishop", "cart")

	r.Histogram(observability.MUsecaseDuration).Observe(0.2, observability.L("use_case", "cart.add_product"))

	count, err := testutil.GatherAndCount(reg, "minishop_cart_usecase_duration_seconds")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 series, got %d", count)
	}
}

func TestUnknownKeyIsNop(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "", "")

	r.Counter("not_declared").Add(1)
	r.Histogram("not_declared").Observe(1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 0 {
		t.Fatalf("expected nothing registered, got %d families", len(families))
	}
}
