// Package observability exposes Prometheus collectors for the HTTP layer and
// background jobs, plus the /metrics scrape endpoint.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application registry and its collectors.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	entriesPosted   prometheus.Counter
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	unbalanced      prometheus.Counter
}

// NewMetrics initialises the registry and the base collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_http_requests_total",
		Help: "HTTP requests partitioned by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meridian_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	posted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meridian_ledger_entries_posted_total",
		Help: "Accounting entries transitioned to posted.",
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_jobs_total",
		Help: "Background job executions partitioned by task and status.",
	}, []string{"task", "status"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meridian_job_duration_seconds",
		Help:    "Background job duration per task.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
	unbalanced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meridian_ledger_unbalanced_entries_total",
		Help: "Posted entries found unbalanced by the integrity scan.",
	})
	registry.MustRegister(requests, duration, posted, jobRuns, jobDuration, unbalanced)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		entriesPosted:   posted,
		jobRuns:         jobRuns,
		jobDuration:     jobDuration,
		unbalanced:      unbalanced,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and duration for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// EntryPosted counts one successful posting. Nil-safe.
func (m *Metrics) EntryPosted() {
	if m == nil {
		return
	}
	m.entriesPosted.Inc()
}

// ObserveJob records one background job execution.
func (m *Metrics) ObserveJob(task string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.jobRuns.WithLabelValues(task, status).Inc()
	m.jobDuration.WithLabelValues(task).Observe(time.Since(start).Seconds())
}

// AddUnbalancedEntries counts integrity violations found by the nightly scan.
func (m *Metrics) AddUnbalancedEntries(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.unbalanced.Add(float64(count))
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
