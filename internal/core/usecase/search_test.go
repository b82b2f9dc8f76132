package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type embedderFake struct {
	vector []float32
	err    error
}

func (f *embedderFake) Embed(context.Context, []string) ([][]float32, error) { return nil, nil }

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type passageSourceFake struct {
	records       []domain.PassageRecord
	maxCandidates int
	unitScope     []string
	err           error
}

func (f *passageSourceFake) Scan(_ context.Context, maxCandidates int, unitScope []string, yield func(domain.PassageRecord) bool) error {
	f.maxCandidates = maxCandidates
	f.unitScope = unitScope
	if f.err != nil {
		return f.err
	}
	for i, record := range f.records {
		if i >= maxCandidates {
			return nil
		}
		if !yield(record) {
			return nil
		}
	}
	return nil
}

func searchPassage(id, unitID, speaker string, vector []float32) domain.PassageRecord {
	return domain.PassageRecord{
		ID:          unitID + "/ch-01/" + id,
		UnitID:      unitID,
		SubUnitID:   "ch-01",
		SequenceID:  id,
		Speaker:     speaker,
		TextPrimary: "passage " + id,
		Vector:      vector,
	}
}

func TestSearchUseCasePipeline(t *testing.T) {
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "Maren", []float32{1, 0}),
		searchPassage("0002", "arc-02", "Herald", []float32{0.9, 0.1}),
		searchPassage("0003", "arc-01", "Captain", []float32{0, 1}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, &registryFake{names: map[string]string{"arc-01": "The Founding"}}, domain.SearchDefaults{})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{Query: "the gate"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.ResultCount != 2 {
		t.Fatalf("ResultCount = %d, want 2 (orthogonal passage below min score)", resp.ResultCount)
	}
	if resp.Results[0].Record.SequenceID != "0001" {
		t.Fatalf("top result = %q", resp.Results[0].Record.SequenceID)
	}
	if len(resp.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(resp.Groups))
	}
	if resp.Evidence.NoEvidence {
		t.Fatalf("unexpected no-evidence marker")
	}
	if resp.Evidence.Groups[0].UnitName != "The Founding" {
		t.Fatalf("unit name = %q", resp.Evidence.Groups[0].UnitName)
	}
	if source.maxCandidates != domain.DefaultMaxCandidates {
		t.Fatalf("scan bound = %d, want default %d", source.maxCandidates, domain.DefaultMaxCandidates)
	}
}

func TestSearchUseCaseUnitScopePassedToScanAndEnforced(t *testing.T) {
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "", []float32{1, 0}),
		// A record outside the scope that a buggy reader might emit.
		searchPassage("0002", "arc-02", "", []float32{1, 0}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, nil, domain.SearchDefaults{})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{
		Query:     "the gate",
		UnitScope: []string{"arc-01"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(source.unitScope) != 1 || source.unitScope[0] != "arc-01" {
		t.Fatalf("scan scope = %v", source.unitScope)
	}
	for _, r := range resp.Results {
		if r.Record.UnitID != "arc-01" {
			t.Fatalf("out-of-scope record %q leaked through", r.Record.ID)
		}
	}
}

func TestSearchUseCaseFocusSpeaker(t *testing.T) {
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "Maren", []float32{1, 0}),
		searchPassage("0002", "arc-01", "Herald", []float32{1, 0}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, nil, domain.SearchDefaults{})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{
		Query:        "the gate",
		FocusSpeaker: "maren",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.ResultCount != 1 || resp.Results[0].Record.Speaker != "Maren" {
		t.Fatalf("focus filter failed: %+v", resp.Results)
	}
}

func TestSearchUseCaseNoMatchesYieldsNoEvidence(t *testing.T) {
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "", []float32{0, 1}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, nil, domain.SearchDefaults{})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{Query: "the gate"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.ResultCount != 0 {
		t.Fatalf("ResultCount = %d, want 0", resp.ResultCount)
	}
	if !resp.Evidence.NoEvidence {
		t.Fatalf("expected no-evidence marker")
	}
}

func TestSearchUseCaseRejectsInvalidRequest(t *testing.T) {
	uc := NewSearchUseCase(&embedderFake{}, &passageSourceFake{}, nil, domain.SearchDefaults{})

	_, err := uc.Search(context.Background(), domain.SearchRequest{Query: "  "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_, err = uc.Search(context.Background(), domain.SearchRequest{Query: "q", MinScore: floatPtr(1.5)})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for min score, got %v", err)
	}
}

func TestSearchUseCaseEmbedFailure(t *testing.T) {
	uc := NewSearchUseCase(&embedderFake{err: errors.New("embed down")}, &passageSourceFake{}, nil, domain.SearchDefaults{})
	if _, err := uc.Search(context.Background(), domain.SearchRequest{Query: "q"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSearchUseCaseExplicitZeroMinScoreKeepsWeakMatches(t *testing.T) {
	// Roughly 0.37 cosine similarity against the query vector: below the
	// default floor, but the caller explicitly asked for no floor at all.
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "", []float32{0.37, 0.93}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, nil, domain.SearchDefaults{})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{Query: "the gate", MinScore: floatPtr(0)})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.ResultCount != 1 {
		t.Fatalf("ResultCount = %d, want 1 (explicit zero floor must not become the default)", resp.ResultCount)
	}
}

func TestSearchUseCaseConfiguredDefaultsApplied(t *testing.T) {
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "", []float32{1, 0}),
		searchPassage("0002", "arc-01", "", []float32{0.99, 0.14}),
		searchPassage("0003", "arc-01", "", []float32{0.97, 0.24}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, nil, domain.SearchDefaults{
		TopK:          2,
		MinScore:      0.9,
		MaxCandidates: 50,
	})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{Query: "the gate"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.ResultCount != 2 {
		t.Fatalf("ResultCount = %d, want configured top-k 2", resp.ResultCount)
	}
	if source.maxCandidates != 50 {
		t.Fatalf("scan bound = %d, want configured 50", source.maxCandidates)
	}
}

func TestSearchUseCaseCrossUnitMergesGroups(t *testing.T) {
	source := &passageSourceFake{records: []domain.PassageRecord{
		searchPassage("0001", "arc-01", "", []float32{1, 0}),
		searchPassage("0002", "arc-02", "", []float32{0.9, 0.1}),
	}}
	uc := NewSearchUseCase(&embedderFake{vector: []float32{1, 0}}, source, &registryFake{names: map[string]string{
		"arc-01": "The Founding",
		"arc-02": "The Siege",
	}}, domain.SearchDefaults{})

	resp, err := uc.Search(context.Background(), domain.SearchRequest{Query: "the gate", CrossUnit: true})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Groups) != 1 || resp.Groups[0].UnitID != domain.CrossUnitGroupID {
		t.Fatalf("groups = %+v, want one merged cross-unit group", resp.Groups)
	}
	if len(resp.Evidence.Groups) != 1 {
		t.Fatalf("evidence groups = %d, want 1", len(resp.Evidence.Groups))
	}
	citations := resp.Evidence.Groups[0].Citations
	if len(citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(citations))
	}
	// Each citation still names its own unit inside the merged group.
	if citations[0].UnitID != "arc-01" || citations[0].UnitName != "The Founding" {
		t.Fatalf("citation 0 unit = %q/%q", citations[0].UnitID, citations[0].UnitName)
	}
	if citations[1].UnitID != "arc-02" || citations[1].UnitName != "The Siege" {
		t.Fatalf("citation 1 unit = %q/%q", citations[1].UnitID, citations[1].UnitName)
	}
}

func floatPtr(v float64) *float64 { return &v }
