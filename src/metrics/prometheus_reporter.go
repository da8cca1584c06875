package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricReporter is the prometheus/client_golang-backed
// alternative to StatsMetricReporter, selected by
// settings.Settings.StatsBackend == "prometheus". IngestionReporter calls
// NewCounter/NewTimer afresh on every Ingest/Query call, and a test or a
// long-running caller may repeat a call for the same name against the
// same registry; rather than let
// registry.MustRegister panic on the resulting duplicate, this reporter
// caches and returns the existing collector for a name it has already
// registered.
type PrometheusMetricReporter struct {
	registry *prometheus.Registry
	ns       string

	mu       sync.Mutex
	counters map[string]prometheusCounter
	timers   map[string]prometheusTimer
}

// NewPrometheusMetricReporter returns a PrometheusMetricReporter that
// registers every metric under the given namespace against registry.
func NewPrometheusMetricReporter(registry *prometheus.Registry, namespace string) *PrometheusMetricReporter {
	return &PrometheusMetricReporter{
		registry: registry,
		ns:       namespace,
		counters: make(map[string]prometheusCounter),
		timers:   make(map[string]prometheusTimer),
	}
}

// Registry exposes the underlying registry so callers can expose it over
// an HTTP /metrics endpoint via promhttp.
func (p *PrometheusMetricReporter) Registry() *prometheus.Registry { return p.registry }

func (p *PrometheusMetricReporter) NewCounter(name string) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return c
	}
	raw := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: p.ns,
		Name:      sanitizeMetricName(name),
		Help:      name,
	})
	p.registry.MustRegister(raw)
	c := prometheusCounter{raw}
	p.counters[name] = c
	return c
}

func (p *PrometheusMetricReporter) NewTimer(name string) Timer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.timers[name]; ok {
		return t
	}
	raw := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: p.ns,
		Name:      sanitizeMetricName(name) + "_ms",
		Help:      name,
		Buckets:   prometheus.DefBuckets,
	})
	p.registry.MustRegister(raw)
	t := prometheusTimer{raw}
	p.timers[name] = t
	return t
}

type prometheusCounter struct {
	c prometheus.Counter
}

func (p prometheusCounter) Add(v uint64) { p.c.Add(float64(v)) }

type prometheusTimer struct {
	h prometheus.Histogram
}

func (p prometheusTimer) AddValue(v float64) { p.h.Observe(v) }

// sanitizeMetricName replaces the '.'-separated scoping the stats backend
// uses (e.g. "countmin.records_processed") with Prometheus's '_' convention.
func sanitizeMetricName(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '.' || c == '-' {
			out[i] = '_'
		} else {
			out[i] = c
		}
	}
	return string(out)
}
