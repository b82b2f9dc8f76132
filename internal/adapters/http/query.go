package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type searchRequestDTO struct {
	Query         string   `json:"query"`
	TopK          *int     `json:"top_k"`
	MinScore      *float64 `json:"min_score"`
	MaxCandidates *int     `json:"max_candidates"`
	UnitScope     []string `json:"unit_scope"`
	FocusSpeaker  string   `json:"focus_speaker"`
	CrossUnit     bool     `json:"cross_unit"`
}

func (rt *Router) searchPassages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// Absent knobs fall back to defaults; explicitly supplied zero or
	// negative values are rejected rather than silently replaced.
	req := domain.SearchRequest{
		Query:        dto.Query,
		UnitScope:    dto.UnitScope,
		FocusSpeaker: dto.FocusSpeaker,
		CrossUnit:    dto.CrossUnit,
	}
	if dto.TopK != nil {
		if *dto.TopK <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "top_k must be positive"})
			return
		}
		req.TopK = *dto.TopK
	}
	if dto.MinScore != nil {
		if *dto.MinScore < 0 || *dto.MinScore > 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_score must be within [0, 1]"})
			return
		}
		// Forwarded as a pointer so an explicit floor of 0 is not mistaken
		// for "unset" downstream.
		req.MinScore = dto.MinScore
	}
	if dto.MaxCandidates != nil {
		if *dto.MaxCandidates <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_candidates must be positive"})
			return
		}
		req.MaxCandidates = *dto.MaxCandidates
	}

	start := time.Now()
	resp, err := rt.searcher.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordSearch(rt.service, "/v1/search", resp.ResultCount, resp.Evidence.NoEvidence, time.Since(start))
	}
	writeJSON(w, http.StatusOK, resp)
}

type agentRequestDTO struct {
	Query         string `json:"query"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	MemoryContext string `json:"memory_context"`
}

func (rt *Router) agentQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var dto agentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(dto.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	result, err := rt.agent.Invoke(r.Context(), domain.AgentRequest{
		Query: dto.Query,
		Identity: domain.Identity{
			UserID:      dto.UserID,
			DisplayName: dto.DisplayName,
		},
		MemoryContext: dto.MemoryContext,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
