// Package metrics holds the client-side Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Collectors groups every bookhub collector on its own registry.
type Collectors struct {
	Registry        *prometheus.Registry
	APIRequests     *prometheus.CounterVec
	APIDuration     *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	BreakerState    prometheus.Gauge
	BreakerRejected prometheus.Counter
}

// New registers a fresh set of collectors.
func New() *Collectors {
	c := &Collectors{
		Registry: prometheus.NewRegistry(),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookhub_api_requests_total",
			Help: "Remote API requests by method and response status.",
		}, []string{"method", "status"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookhub_api_request_duration_seconds",
			Help:    "Remote API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookhub_cache_lookups_total",
			Help: "Session cache lookups by cache and result (hit, miss).",
		}, []string{"cache", "result"}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookhub_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open).",
		}),
		BreakerRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookhub_circuit_breaker_rejected_total",
			Help: "Requests rejected while the breaker was open.",
		}),
	}
	c.Registry.MustRegister(c.APIRequests, c.APIDuration, c.CacheLookups, c.BreakerState, c.BreakerRejected)
	return c
}

// CacheHit records a lookup result; nil receivers are ignored.
func (c *Collectors) CacheHit(cache string, hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(cache, result).Inc()
}

// WriteSummary prints counters and gauges as "name{labels} value" lines.
func (c *Collectors) WriteSummary(w io.Writer) error {
	families, err := c.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			default:
				continue
			}
			lines = append(lines, fmt.Sprintf("%s%s %g", mf.GetName(), labels(m.GetLabel()), value))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
