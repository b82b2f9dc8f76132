package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kseverin/lore-assistant/internal/core/domain"
	"github.com/kseverin/lore-assistant/internal/core/ports"
)

const (
	nuanceMaxPassages = 3

	// noDifferenceMarker is the phrase the comparison prompt instructs the
	// model to return when the renderings agree; such results are discarded.
	noDifferenceMarker = "no significant difference"
)

// NuanceAnalyzer compares the primary and secondary renderings of top-hit
// passages through the completion service. Best-effort: a failed comparison
// is logged and skipped, never aborts the request. A cancelled request
// deadline cancels in-flight comparisons.
type NuanceAnalyzer struct {
	completion ports.CompletionClient
}

func NewNuanceAnalyzer(completion ports.CompletionClient) *NuanceAnalyzer {
	return &NuanceAnalyzer{completion: completion}
}

func (a *NuanceAnalyzer) Analyze(ctx context.Context, passages []domain.PassageRecord) []domain.NuanceNote {
	if a == nil || a.completion == nil {
		return nil
	}

	eligible := make([]domain.PassageRecord, 0, nuanceMaxPassages)
	for _, p := range passages {
		if !p.HasSecondary() {
			continue
		}
		eligible = append(eligible, p)
		if len(eligible) == nuanceMaxPassages {
			break
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	notes := make([]*domain.NuanceNote, len(eligible))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, passage := range eligible {
		group.Go(func() error {
			answer, err := a.completion.Complete(groupCtx, buildNuancePrompt(passage))
			if err != nil {
				slog.Warn("nuance comparison skipped",
					"unit_id", passage.UnitID,
					"sequence_id", passage.SequenceID,
					"error", err,
				)
				return nil
			}
			answer = strings.TrimSpace(answer)
			if answer == "" || strings.Contains(strings.ToLower(answer), noDifferenceMarker) {
				return nil
			}
			notes[i] = &domain.NuanceNote{
				UnitID:     passage.UnitID,
				SubUnitID:  passage.SubUnitID,
				SequenceID: passage.SequenceID,
				Note:       answer,
			}
			return nil
		})
	}
	_ = group.Wait()

	out := make([]domain.NuanceNote, 0, len(eligible))
	for _, note := range notes {
		if note != nil {
			out = append(out, *note)
		}
	}
	return out
}

func buildNuancePrompt(p domain.PassageRecord) string {
	return fmt.Sprintf(`Compare the two renderings of the same narrative passage.
Point out meaningful differences in tone, implication, or detail.
If the renderings agree, answer exactly: %s

Primary rendering:
%s

Secondary rendering:
%s
`, noDifferenceMarker, p.TextPrimary, p.TextSecondary)
}
