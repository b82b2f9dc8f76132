package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

type nuanceCompletionFake struct {
	mu      sync.Mutex
	calls   int
	answers map[string]string
	failOn  string
}

func (f *nuanceCompletionFake) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return "", errors.New("completion backend down")
	}
	for marker, answer := range f.answers {
		if strings.Contains(prompt, marker) {
			return answer, nil
		}
	}
	return noDifferenceMarker, nil
}

func bilingualPassage(seq, primary, secondary string) domain.PassageRecord {
	return domain.PassageRecord{
		ID:            "arc-01/ch-01/" + seq,
		UnitID:        "arc-01",
		SubUnitID:     "ch-01",
		SequenceID:    seq,
		TextPrimary:   primary,
		TextSecondary: secondary,
	}
}

func TestNuanceAnalyzerComparesAtMostThreePassages(t *testing.T) {
	completion := &nuanceCompletionFake{answers: map[string]string{}}
	analyzer := NewNuanceAnalyzer(completion)

	passages := []domain.PassageRecord{
		bilingualPassage("0001", "a1", "b1"),
		bilingualPassage("0002", "a2", "b2"),
		bilingualPassage("0003", "a3", "b3"),
		bilingualPassage("0004", "a4", "b4"),
	}
	analyzer.Analyze(context.Background(), passages)

	if completion.calls != 3 {
		t.Fatalf("completion calls = %d, want 3", completion.calls)
	}
}

func TestNuanceAnalyzerSkipsPassagesWithoutSecondary(t *testing.T) {
	completion := &nuanceCompletionFake{}
	analyzer := NewNuanceAnalyzer(completion)

	passages := []domain.PassageRecord{
		{UnitID: "arc-01", SubUnitID: "ch-01", SequenceID: "0001", TextPrimary: "only primary"},
	}
	notes := analyzer.Analyze(context.Background(), passages)

	if completion.calls != 0 {
		t.Fatalf("completion invoked for monolingual passage")
	}
	if len(notes) != 0 {
		t.Fatalf("notes = %v, want none", notes)
	}
}

func TestNuanceAnalyzerDiscardsNoDifferenceAnswers(t *testing.T) {
	completion := &nuanceCompletionFake{answers: map[string]string{
		"a1": "the tone differs sharply",
	}}
	analyzer := NewNuanceAnalyzer(completion)

	notes := analyzer.Analyze(context.Background(), []domain.PassageRecord{
		bilingualPassage("0001", "a1", "b1"),
		bilingualPassage("0002", "a2", "b2"),
	})
	if len(notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(notes))
	}
	if notes[0].SequenceID != "0001" || notes[0].Note != "the tone differs sharply" {
		t.Fatalf("note = %+v", notes[0])
	}
}

func TestNuanceAnalyzerIsolatesPerPassageFailures(t *testing.T) {
	completion := &nuanceCompletionFake{
		failOn: "a2",
		answers: map[string]string{
			"a1": "first differs",
			"a3": "third differs",
		},
	}
	analyzer := NewNuanceAnalyzer(completion)

	notes := analyzer.Analyze(context.Background(), []domain.PassageRecord{
		bilingualPassage("0001", "a1", "b1"),
		bilingualPassage("0002", "a2", "b2"),
		bilingualPassage("0003", "a3", "b3"),
	})
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2 (failure must only drop its own passage)", len(notes))
	}
	if notes[0].SequenceID != "0001" || notes[1].SequenceID != "0003" {
		t.Fatalf("input order lost: %+v", notes)
	}
}

func TestNuanceAnalyzerNilCompletion(t *testing.T) {
	var analyzer *NuanceAnalyzer
	if notes := analyzer.Analyze(context.Background(), []domain.PassageRecord{bilingualPassage("0001", "a", "b")}); notes != nil {
		t.Fatalf("nil analyzer returned notes: %v", notes)
	}
}
