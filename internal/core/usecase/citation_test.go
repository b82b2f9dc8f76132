package usecase

import (
	"testing"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type registryFake struct {
	names map[string]string
}

func (f *registryFake) UnitName(unitID string) string {
	return f.names[unitID]
}

func TestFormatCitationsEmptyInputYieldsNoEvidence(t *testing.T) {
	evidence := formatCitations(nil, &registryFake{})
	if !evidence.NoEvidence {
		t.Fatalf("expected explicit no-evidence marker")
	}
	if len(evidence.Groups) != 0 {
		t.Fatalf("no-evidence result carries groups")
	}
}

func TestFormatCitationsDropsIncompleteRecords(t *testing.T) {
	groups := []domain.UnitGroup{{
		UnitID: "arc-01",
		Results: []domain.ScoredResult{
			scoredResult("ok", "arc-01", "Maren", "the gate held", 0.9),
			{Record: domain.PassageRecord{UnitID: "arc-01", SubUnitID: "", SequenceID: "0002", TextPrimary: "orphan"}},
		},
	}}

	evidence := formatCitations(groups, &registryFake{})
	if evidence.NoEvidence {
		t.Fatalf("unexpected no-evidence marker")
	}
	if len(evidence.Groups) != 1 || len(evidence.Groups[0].Citations) != 1 {
		t.Fatalf("incomplete citation was not dropped: %+v", evidence.Groups)
	}
	for _, c := range evidence.Citations() {
		if !c.Complete() {
			t.Fatalf("incomplete citation surfaced: %+v", c)
		}
	}
}

func TestFormatCitationsAllIncompleteYieldsNoEvidence(t *testing.T) {
	groups := []domain.UnitGroup{{
		UnitID: "arc-01",
		Results: []domain.ScoredResult{
			{Record: domain.PassageRecord{UnitID: "arc-01", TextPrimary: "no address"}},
		},
	}}

	evidence := formatCitations(groups, &registryFake{})
	if !evidence.NoEvidence {
		t.Fatalf("expected no-evidence marker when every citation is dropped")
	}
}

func TestFormatCitationsResolvesUnitNames(t *testing.T) {
	groups := []domain.UnitGroup{
		{UnitID: "arc-01", Results: []domain.ScoredResult{scoredResult("a", "arc-01", "", "one", 0.9)}},
		{UnitID: "arc-99", Results: []domain.ScoredResult{scoredResult("b", "arc-99", "", "two", 0.8)}},
	}

	evidence := formatCitations(groups, &registryFake{names: map[string]string{"arc-01": "The Founding"}})
	if got := evidence.Groups[0].UnitName; got != "The Founding" {
		t.Fatalf("unit name = %q, want The Founding", got)
	}
	// Unknown unit falls back to the raw id.
	if got := evidence.Groups[1].UnitName; got != "arc-99" {
		t.Fatalf("fallback unit name = %q, want arc-99", got)
	}
}
