package prometrics

import (
	"sync"

	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type instrumentDef struct {
	help    string
	labels  []string
	buckets []float64
}

var counterDefs = map[observability.MetricKey]instrumentDef{
	observability.MUsecaseRequests:   {help: "Total number of use case invocations.", labels: []string{"use_case", "outcome"}},
	observability.MHTTPRequests:      {help: "Total number of HTTP requests.", labels: []string{"method", "route", "status"}},
	observability.MExternalRequests:  {help: "Total number of calls to external peers.", labels: []string{"peer", "endpoint", "outcome"}},
	observability.MCartNotifications: {help: "Notifications raised by cart operations.", labels: []string{"kind"}},
	observability.MCartCommits:       {help: "Committed cart mutations.", labels: []string{"operation"}},
}

var histogramDefs = map[observability.MetricKey]instrumentDef{
	observability.MUsecaseDuration:         {help: "Duration of use case execution in seconds.", labels: []string{"use_case"}, buckets: prometheus.DefBuckets},
	observability.MHTTPRequestDuration:     {help: "Duration of HTTP requests in seconds.", labels: []string{"method", "route", "status"}, buckets: prometheus.DefBuckets},
	observability.MExternalRequestDuration: {help: "Duration of calls to external peers in seconds.", labels: []string{"peer", "endpoint"}, buckets: prometheus.DefBuckets},
}

// Registry hands out Prometheus-backed instruments for the known metric keys.
// Instruments are registered on first use; unknown keys yield no-op instruments.
type Registry struct {
	reg        prometheus.Registerer
	namespace  string
	subsystem  string
	mu         sync.Mutex
	counters   map[observability.MetricKey]*prometheus.CounterVec
	histograms map[observability.MetricKey]*prometheus.HistogramVec
}

var _ observability.Metrics = (*Registry)(nil)

// New creates a registry. A nil Registerer means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace, subsystem string) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Registry{
		reg:        reg,
		namespace:  namespace,
		subsystem:  subsystem,
		counters:   make(map[observability.MetricKey]*prometheus.CounterVec),
		histograms: make(map[observability.MetricKey]*prometheus.HistogramVec),
	}
}

func (r *Registry) Counter(name observability.MetricKey) observability.Counter {
	s, ok := counterDefs[name]
	if !ok {
		return observability.NopCounter()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.counters[name]; ok {
		return &counter{v: v}
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: string(name), Help: s.help,
	}, s.labels)
	r.reg.MustRegister(cv)
	r.counters[name] = cv
	return &counter{v: cv}
}

func (r *Registry) Histogram(name observability.MetricKey) observability.Histogram {
	s, ok := histogramDefs[name]
	if !ok {
		return observability.NopHistogram()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.histograms[name]; ok {
		return &histogram{v: v}
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Subsystem: r.subsystem, Name: string(name), Help: s.help, Buckets: s.buckets,
	}, s.labels)
	r.reg.MustRegister(hv)
	r.histograms[name] = hv
	return &histogram{v: hv}
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelMap(labels)).Add(d)
}

func (c *counter) Bind(labels ...observability.Label) observability.BoundCounter {
	return &boundCounter{c: c.v.With(labelMap(labels))}
}

type boundCounter struct{ c prometheus.Counter }

func (b *boundCounter) Add(d float64) { b.c.Add(d) }

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.With(labelMap(labels)).Observe(v)
}

func (h *histogram) Bind(labels ...observability.Label) observability.BoundHistogram {
	return &boundHistogram{o: h.v.With(labelMap(labels))}
}

type boundHistogram struct{ o prometheus.Observer }

func (b *boundHistogram) Observe(v float64) { b.o.Observe(v) }

// labelMap converts labels for With, which panics unless they match the
// declared label names exactly.
func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}
