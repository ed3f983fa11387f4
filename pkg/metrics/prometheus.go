// Package metrics records request metrics with Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets are latency buckets in seconds, tuned for fragment responses
// that are usually well under a millisecond.
var DefaultBuckets = []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1}

// Config configures a PrometheusRecorder.
type Config struct {
	Namespace string    // Metric name prefix, e.g. "hxdemo"
	Subsystem string    // Optional second prefix, e.g. "http"
	Buckets   []float64 // Histogram buckets; DefaultBuckets when empty

	// IncludeRuntime registers the Go runtime and process collectors.
	IncludeRuntime bool
}

// PrometheusRecorder counts requests and observes their durations, labelled
// by method and status. Each recorder owns its registry, so several can live
// in one process (tests, for example) without colliding.
type PrometheusRecorder struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder and registers its collectors.
func NewPrometheusRecorder(config Config) (*PrometheusRecorder, error) {
	buckets := config.Buckets
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}

	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of handled requests.",
		}, []string{"method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Time spent in the request pipeline.",
			Buckets:   buckets,
		}, []string{"method", "status"}),
	}

	cs := []prometheus.Collector{r.requests, r.durations}
	if config.IncludeRuntime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// ObserveRequest records one handled request.
func (r *PrometheusRecorder) ObserveRequest(method string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	r.requests.WithLabelValues(method, code).Inc()
	r.durations.WithLabelValues(method, code).Observe(duration.Seconds())
}

// Registry returns the recorder's registry.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an http.Handler exposing the recorder's metrics in the
// Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
