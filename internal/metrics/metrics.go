// Package metrics provides Prometheus metrics for the proxy.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tempmail_proxy"

// latencyBuckets top out at the default upstream timeout.
var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

var (
	inboundLabels  = []string{"method", "status_code", "path_prefix"}
	upstreamLabels = []string{"method"}
)

// Metrics holds the collectors for inbound traffic ("http" subsystem) and
// calls to the TempMail API ("upstream" subsystem).
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	UpstreamDuration  *prometheus.HistogramVec
	UpstreamResponses *prometheus.CounterVec
	UpstreamErrors    *prometheus.CounterVec
}

// New creates a Metrics instance on its own registry, so nothing else in the
// process leaks into the scrape output besides the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestsTotal:    counter("http", "requests_total", "Total inbound HTTP requests.", inboundLabels),
		RequestDuration:  histogram("http", "request_duration_seconds", "Inbound HTTP request latency in seconds.", inboundLabels),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed.",
		}),

		UpstreamDuration:  histogram("upstream", "request_duration_seconds", "TempMail API call latency in seconds.", upstreamLabels),
		UpstreamResponses: counter("upstream", "responses_total", "TempMail API responses by method and status code.", []string{"method", "status_code"}),
		UpstreamErrors:    counter("upstream", "errors_total", "TempMail API calls that failed without an HTTP response.", upstreamLabels),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.UpstreamDuration,
		m.UpstreamResponses,
		m.UpstreamErrors,
	)
	return m
}

func counter(subsystem, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogram(subsystem, name, help string, labels []string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   latencyBuckets,
	}, labels)
}

// NormalizeMethod maps anything outside the methods the proxy routes to "other".
func NormalizeMethod(method string) string {
	switch method {
	case "GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS":
		return method
	}
	return "other"
}

// routePrefixes are the path_prefix label values besides "other", which
// covers every static file.
var routePrefixes = []string{"/api", "/healthz", "/proxy/status", "/metrics"}

// NormalizePath returns the route prefix path belongs to.
func NormalizePath(path string) string {
	for _, prefix := range routePrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || strings.HasPrefix(path, prefix+"?") {
			return prefix
		}
	}
	return "other"
}
