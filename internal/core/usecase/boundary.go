package usecase

import (
	"strings"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// applyBoundary drops every result whose unit is outside the requested
// scope. The store reader already pre-filters its scan; this pass is the
// invariant check on whatever survived ranking.
func applyBoundary(results []domain.ScoredResult, unitScope []string) []domain.ScoredResult {
	if len(unitScope) == 0 {
		return results
	}

	allowed := make(map[string]struct{}, len(unitScope))
	for _, unitID := range unitScope {
		allowed[unitID] = struct{}{}
	}

	out := make([]domain.ScoredResult, 0, len(results))
	for _, r := range results {
		if _, ok := allowed[r.Record.UnitID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// applySpeakerFocus retains a result if the speaker or the primary text
// contains the focus string, case-insensitively. Runs after the boundary
// filter, before grouping.
func applySpeakerFocus(results []domain.ScoredResult, focus string) []domain.ScoredResult {
	focus = strings.ToLower(strings.TrimSpace(focus))
	if focus == "" {
		return results
	}

	out := make([]domain.ScoredResult, 0, len(results))
	for _, r := range results {
		speaker := strings.ToLower(r.Record.Speaker)
		text := strings.ToLower(r.Record.TextPrimary)
		if strings.Contains(speaker, focus) || strings.Contains(text, focus) {
			out = append(out, r)
		}
	}
	return out
}

// groupByUnit splits ranked results into per-unit groups, ordered by first
// appearance, preserving ranker order within each group. A cross-unit
// request collapses everything into a single group in overall rank order.
func groupByUnit(results []domain.ScoredResult, crossUnit bool) []domain.UnitGroup {
	if len(results) == 0 {
		return nil
	}

	if crossUnit {
		return []domain.UnitGroup{{UnitID: domain.CrossUnitGroupID, Results: results}}
	}

	index := make(map[string]int, 4)
	groups := make([]domain.UnitGroup, 0, 4)
	for _, r := range results {
		pos, ok := index[r.Record.UnitID]
		if !ok {
			pos = len(groups)
			index[r.Record.UnitID] = pos
			groups = append(groups, domain.UnitGroup{UnitID: r.Record.UnitID})
		}
		groups[pos].Results = append(groups[pos].Results, r)
	}
	return groups
}
