// Package httpadapter exposes the search, agent, source and profile
// operations over HTTP/JSON.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
	"github.com/kseverin/lore-assistant/internal/observability/metrics"
)

// TrafficConfig tunes the rate-limit and backpressure gates. Zero values
// disable the corresponding gate.
type TrafficConfig struct {
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	service  string
	searcher ports.PassageSearchService
	agent    ports.AgentService
	ingestor ports.SourceIngestor
	sources  ports.SourceReader
	profiles ports.ProfileStore
	metrics  *metrics.HTTPServerMetrics
	traffic  TrafficConfig
}

func NewRouter(
	service string,
	searcher ports.PassageSearchService,
	agent ports.AgentService,
	ingestor ports.SourceIngestor,
	sources ports.SourceReader,
	profiles ports.ProfileStore,
	httpMetrics *metrics.HTTPServerMetrics,
	traffic TrafficConfig,
) *Router {
	return &Router{
		service:  service,
		searcher: searcher,
		agent:    agent,
		ingestor: ingestor,
		sources:  sources,
		profiles: profiles,
		metrics:  httpMetrics,
		traffic:  traffic,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.searchPassages)
	mux.HandleFunc("/v1/agent/query", rt.agentQuery)
	mux.HandleFunc("/v1/sources", rt.uploadSource)
	mux.HandleFunc("/v1/sources/", rt.getSourceByID)
	mux.HandleFunc("/v1/profile/", rt.profileByKey)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.traffic.MaxInFlight, rt.traffic.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.traffic.RateLimitRPS, rt.traffic.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// failureMessage is the only text a non-validation failure may surface.
// The underlying detail goes to the log, keyed by request id.
const failureMessage = "the request could not be completed, please try again later"

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		writeJSON(w, status, map[string]string{"error": err.Error()})
	case domain.IsKind(err, domain.ErrNotFound):
		writeJSON(w, status, map[string]string{"error": "resource not found"})
	default:
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, status, map[string]string{"error": failureMessage})
	}
}
