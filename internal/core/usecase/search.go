package usecase

import (
	"context"
	"fmt"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

// SearchUseCase runs the retrieval pipeline: embed the query, scan a bounded
// slice of the passage store, rank by cosine similarity, enforce narrative
// boundaries, group by unit and format citations. It holds no per-request
// state and is safe for concurrent use.
type SearchUseCase struct {
	embedder ports.Embedder
	passages ports.PassageSource
	units    ports.UnitRegistry
	defaults domain.SearchDefaults
}

func NewSearchUseCase(
	embedder ports.Embedder,
	passages ports.PassageSource,
	units ports.UnitRegistry,
	defaults domain.SearchDefaults,
) *SearchUseCase {
	return &SearchUseCase{
		embedder: embedder,
		passages: passages,
		units:    units,
		defaults: defaults,
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.Normalized(uc.defaults)

	queryVector, err := uc.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates := make([]domain.PassageRecord, 0, req.TopK*4)
	err = uc.passages.Scan(ctx, req.MaxCandidates, req.UnitScope, func(record domain.PassageRecord) bool {
		candidates = append(candidates, record)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan passage store: %w", err)
	}

	ranked := rankBySimilarity(queryVector, candidates, *req.MinScore, req.TopK)
	ranked = applyBoundary(ranked, req.UnitScope)
	if req.FocusSpeaker != "" {
		ranked = applySpeakerFocus(ranked, req.FocusSpeaker)
	}

	groups := groupByUnit(ranked, req.CrossUnit)
	evidence := formatCitations(groups, uc.units)

	return &domain.SearchResponse{
		Results:     ranked,
		ResultCount: len(ranked),
		Query:       req.Query,
		Groups:      groups,
		Evidence:    evidence,
	}, nil
}
