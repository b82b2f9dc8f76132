package usecase

import (
	"log/slog"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

// formatCitations maps grouped results to complete citations. An empty
// input produces the explicit no-evidence marker, never a bare empty list.
// A record that cannot yield a complete citation is dropped and logged; it
// must not reach the caller.
func formatCitations(groups []domain.UnitGroup, units ports.UnitRegistry) domain.Evidence {
	if len(groups) == 0 {
		return domain.Evidence{NoEvidence: true}
	}

	out := make([]domain.CitationGroup, 0, len(groups))
	for _, group := range groups {
		cg := domain.CitationGroup{
			UnitID:   group.UnitID,
			UnitName: resolveUnitName(units, group.UnitID),
		}
		// Resolved per record: a merged cross-unit group spans units, and
		// each citation must still name its own.
		for _, r := range group.Results {
			citation := domain.Citation{
				UnitID:        r.Record.UnitID,
				UnitName:      resolveUnitName(units, r.Record.UnitID),
				SubUnitID:     r.Record.SubUnitID,
				SequenceID:    r.Record.SequenceID,
				Speaker:       r.Record.Speaker,
				TextPrimary:   r.Record.TextPrimary,
				TextSecondary: r.Record.TextSecondary,
			}
			if !citation.Complete() {
				slog.Warn("dropping incomplete citation",
					"unit_id", r.Record.UnitID,
					"sub_unit_id", r.Record.SubUnitID,
					"sequence_id", r.Record.SequenceID,
					"passage_id", r.Record.ID,
				)
				continue
			}
			cg.Citations = append(cg.Citations, citation)
		}
		if len(cg.Citations) > 0 {
			out = append(out, cg)
		}
	}

	if len(out) == 0 {
		return domain.Evidence{NoEvidence: true}
	}
	return domain.Evidence{Groups: out}
}

func resolveUnitName(units ports.UnitRegistry, unitID string) string {
	if units == nil {
		return unitID
	}
	name := units.UnitName(unitID)
	if name == "" {
		return unitID
	}
	return name
}
