package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the bot's Prometheus series on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	updatesTotal    *prometheus.CounterVec
	storeFaults     *prometheus.CounterVec
	commitsTotal    *prometheus.CounterVec
	deniedTotal     prometheus.Counter
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflowbot_updates_total",
		Help: "Telegram updates handled, by input kind.",
	}, []string{"kind"})
	faults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflowbot_store_faults_total",
		Help: "Ledger store calls that failed, by operation.",
	}, []string{"op"})
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflowbot_commits_total",
		Help: "Workflow commits, by workflow and outcome.",
	}, []string{"workflow", "outcome"})
	denied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cashflowbot_denied_total",
		Help: "Updates rejected by the permission gate.",
	})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cashflowbot_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cashflowbot_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	registry.MustRegister(updates, faults, commits, denied, requests, duration)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		updatesTotal:    updates,
		storeFaults:     faults,
		commitsTotal:    commits,
		deniedTotal:     denied,
		requestsTotal:   requests,
		requestDuration: duration,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Update(kind string) {
	if m == nil {
		return
	}
	m.updatesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) StoreFault(op string) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	m.storeFaults.WithLabelValues(op).Inc()
}

// Commit records the end of a workflow. outcome is "ok", "invalid" or "fault".
func (m *Metrics) Commit(workflow string, outcome string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(workflow, outcome).Inc()
}

func (m *Metrics) Denied() {
	if m == nil {
		return
	}
	m.deniedTotal.Inc()
}

// Middleware records request count and latency per chi route pattern.
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
