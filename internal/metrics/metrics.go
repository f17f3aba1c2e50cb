// Package metrics holds the Prometheus collectors for the board service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a registry and the collectors registered on it.
// A nil *Recorder is valid and records nothing.
//
// Metrics:
//   - eisenboard_http_requests_total{method,route,status}
//   - eisenboard_http_request_duration_seconds{method,route}
//   - eisenboard_task_mutations_total{operation}
//   - eisenboard_overwhelm_alerts_total{type,severity}
//   - eisenboard_assist_requests_total{operation,outcome}
//   - eisenboard_jobs_total{type,status}
type Recorder struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	taskMutations *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	assist        *prometheus.CounterVec
	jobs          *prometheus.CounterVec
}

// New creates a Recorder with its own registry, including the Go runtime
// and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eisenboard_http_requests_total",
				Help: "Total number of HTTP requests handled",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eisenboard_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
			},
			[]string{"method", "route"},
		),
		taskMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eisenboard_task_mutations_total",
				Help: "Total number of board mutations by operation",
			},
			[]string{"operation"},
		),
		alerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eisenboard_overwhelm_alerts_total",
				Help: "Total number of overwhelm alerts raised",
			},
			[]string{"type", "severity"},
		),
		assist: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eisenboard_assist_requests_total",
				Help: "Total number of assistant requests by outcome",
			},
			[]string{"operation", "outcome"},
		),
		jobs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eisenboard_jobs_total",
				Help: "Total number of background jobs by final status",
			},
			[]string{"type", "status"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// TaskMutation counts one board mutation.
func (r *Recorder) TaskMutation(operation string) {
	if r == nil {
		return
	}
	r.taskMutations.WithLabelValues(operation).Inc()
}

// Alert counts one overwhelm alert.
func (r *Recorder) Alert(alertType, severity string) {
	if r == nil {
		return
	}
	r.alerts.WithLabelValues(alertType, severity).Inc()
}

// AssistRequest counts one assistant call; outcome is success, fallback or error.
func (r *Recorder) AssistRequest(operation, outcome string) {
	if r == nil {
		return
	}
	r.assist.WithLabelValues(operation, outcome).Inc()
}

// JobFinished counts one job reaching a terminal status.
func (r *Recorder) JobFinished(jobType, status string) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(jobType, status).Inc()
}

// Middleware records request counts and latency per chi route pattern.
// Unmatched requests are labelled "unmatched" to keep cardinality bounded.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}
