// Package metrics provides Prometheus instrumentation for the proxy.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors the proxy exposes on /metrics.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	EngineCallsTotal  *prometheus.CounterVec
	OwnershipChecks   *prometheus.CounterVec
	ValidationRejects *prometheus.CounterVec
}

// New builds and registers the proxy's metrics against the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry builds and registers the proxy's metrics against registerer.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmgate_http_requests_total",
			Help: "Total number of HTTP requests handled by the proxy.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swarmgate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swarmgate_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		}),
		EngineCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmgate_engine_calls_total",
			Help: "Total calls made to the engine socket, by kind and outcome.",
		}, []string{"kind", "operation", "outcome"}),
		OwnershipChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmgate_ownership_checks_total",
			Help: "Total ownership checks performed, by kind and result.",
		}, []string{"kind", "owned"}),
		ValidationRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmgate_validation_rejections_total",
			Help: "Total spec validation rejections, by kind and reason.",
		}, []string{"kind", "reason"}),
	}

	for _, c := range []prometheus.Collector{
		m.RequestsTotal, m.RequestDuration, m.RequestsInFlight,
		m.EngineCallsTotal, m.OwnershipChecks, m.ValidationRejects,
	} {
		_ = registerer.Register(c)
	}

	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

// Middleware records per-request metrics, keyed on the matched route template
// so that path-variable routes don't create unbounded label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rt := mux.CurrentRoute(r); rt != nil {
			if tmpl, err := rt.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.status = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// Flush passes through to the underlying writer when it can flush, so
// streamed responses are not held back by the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
