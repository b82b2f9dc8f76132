package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultTopK          = 20
	DefaultMinScore      = 0.5
	DefaultMaxCandidates = 3000
)

// CrossUnitGroupID labels the single merged group produced when a request
// explicitly asks for a cross-unit comparison.
const CrossUnitGroupID = "cross-unit"

// SearchDefaults are the per-deployment fallbacks applied to knobs the
// caller left unset. Zero values fall back to the package constants.
type SearchDefaults struct {
	TopK          int
	MinScore      float64
	MaxCandidates int
}

func (d SearchDefaults) normalized() SearchDefaults {
	if d.TopK <= 0 {
		d.TopK = DefaultTopK
	}
	if d.MinScore <= 0 {
		d.MinScore = DefaultMinScore
	}
	if d.MaxCandidates <= 0 {
		d.MaxCandidates = DefaultMaxCandidates
	}
	return d
}

// SearchRequest describes one similarity search over the passage store.
// Zero values for TopK and MaxCandidates mean "use the default"; MinScore is
// a pointer so an explicit floor of 0 (keep everything) survives defaulting.
// Explicit out-of-range values are rejected by Validate.
type SearchRequest struct {
	Query         string   `json:"query"`
	TopK          int      `json:"top_k"`
	MinScore      *float64 `json:"min_score,omitempty"`
	MaxCandidates int      `json:"max_candidates"`
	UnitScope     []string `json:"unit_scope,omitempty"`
	FocusSpeaker  string   `json:"focus_speaker,omitempty"`

	// CrossUnit is the explicit "compare across fragments" instruction.
	// When set, grouping collapses the ranked results into a single
	// cross-unit group; without it, unit groups stay separate.
	CrossUnit bool `json:"cross_unit,omitempty"`
}

// Normalized returns a copy with the given defaults applied to unset knobs.
func (r SearchRequest) Normalized(d SearchDefaults) SearchRequest {
	d = d.normalized()
	out := r
	if out.TopK == 0 {
		out.TopK = d.TopK
	}
	if out.MinScore == nil {
		minScore := d.MinScore
		out.MinScore = &minScore
	}
	if out.MaxCandidates == 0 {
		out.MaxCandidates = d.MaxCandidates
	}
	return out
}

// Validate rejects malformed requests before any I/O happens.
func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return WrapError(ErrInvalidInput, "validate search request", fmt.Errorf("query must not be empty"))
	}
	if r.TopK < 0 {
		return WrapError(ErrInvalidInput, "validate search request", fmt.Errorf("top_k must be positive"))
	}
	if r.MinScore != nil && (*r.MinScore < 0 || *r.MinScore > 1) {
		return WrapError(ErrInvalidInput, "validate search request", fmt.Errorf("min_score must be within [0,1]"))
	}
	if r.MaxCandidates < 0 {
		return WrapError(ErrInvalidInput, "validate search request", fmt.Errorf("max_candidates must be positive"))
	}
	return nil
}

type SearchResponse struct {
	Results     []ScoredResult `json:"results"`
	ResultCount int            `json:"result_count"`
	Query       string         `json:"query"`
	Groups      []UnitGroup    `json:"groups,omitempty"`
	Evidence    Evidence       `json:"evidence"`
}
