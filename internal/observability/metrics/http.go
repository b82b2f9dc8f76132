package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchRequestsTotal *prometheus.CounterVec
	searchResults       *prometheus.HistogramVec
	searchNoEvidence    *prometheus.CounterVec
	searchDuration      *prometheus.HistogramVec

	routesTotal   *prometheus.CounterVec
	routeDuration *prometheus.HistogramVec
	fallbackTotal *prometheus.CounterVec

	nuanceNotes *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lore",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lore",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total completed passage searches.",
		},
		[]string{"service", "endpoint"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lore",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of results per completed search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "endpoint"},
	)
	searchNoEvidence := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "search",
			Name:      "no_evidence_total",
			Help:      "Total searches that surfaced no citable passages.",
		},
		[]string{"service", "endpoint"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lore",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Passage search duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	routesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "router",
			Name:      "routes_total",
			Help:      "Total routed questions by intent and terminal status.",
		},
		[]string{"service", "intent", "status"},
	)
	routeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lore",
			Subsystem: "router",
			Name:      "route_duration_seconds",
			Help:      "End-to-end routing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "intent"},
	)
	fallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lore",
			Subsystem: "router",
			Name:      "fallback_total",
			Help:      "Total routes that fell back to retrieval.",
		},
		[]string{"service", "intent"},
	)
	nuanceNotes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lore",
			Subsystem: "nuance",
			Name:      "notes",
			Help:      "Distribution of nuance notes produced per comparison.",
			Buckets:   []float64{0, 1, 2, 3},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchRequestsTotal,
		searchResults,
		searchNoEvidence,
		searchDuration,
		routesTotal,
		routeDuration,
		fallbackTotal,
		nuanceNotes,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		searchRequestsTotal: searchRequestsTotal,
		searchResults:       searchResults,
		searchNoEvidence:    searchNoEvidence,
		searchDuration:      searchDuration,
		routesTotal:         routesTotal,
		routeDuration:       routeDuration,
		fallbackTotal:       fallbackTotal,
		nuanceNotes:         nuanceNotes,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/sources/"):
		return "/v1/sources/{source_id}"
	case strings.HasPrefix(path, "/v1/profile/"):
		return "/v1/profile/{key}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, endpoint string, resultCount int, noEvidence bool, duration time.Duration) {
	m.searchRequestsTotal.WithLabelValues(service, endpoint).Inc()
	m.searchResults.WithLabelValues(service, endpoint).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())
	if noEvidence {
		m.searchNoEvidence.WithLabelValues(service, endpoint).Inc()
	}
}

func (m *HTTPServerMetrics) RecordNuanceNotes(service string, count int) {
	m.nuanceNotes.WithLabelValues(service).Observe(float64(count))
}

// RouterObserver adapts HTTPServerMetrics to the router's observer hook.
type RouterObserver struct {
	metrics *HTTPServerMetrics
	service string
}

func NewRouterObserver(metrics *HTTPServerMetrics, service string) *RouterObserver {
	return &RouterObserver{metrics: metrics, service: service}
}

func (o *RouterObserver) RouteCompleted(intent domain.Intent, status string, fallbackUsed bool, duration time.Duration) {
	label := intent.String()
	if label == "" {
		label = "UNKNOWN"
	}
	if status == "" {
		status = "unknown"
	}
	o.metrics.routesTotal.WithLabelValues(o.service, label, status).Inc()
	o.metrics.routeDuration.WithLabelValues(o.service, label).Observe(duration.Seconds())
	if fallbackUsed {
		o.metrics.fallbackTotal.WithLabelValues(o.service, label).Inc()
	}
}

// statusRecorder only needs the status label; the API serves complete JSON
// responses, so no streaming interfaces are forwarded.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
