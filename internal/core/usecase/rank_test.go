package usecase

import (
	"math"
	"testing"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

func passageWithVector(id string, vector []float32) domain.PassageRecord {
	return domain.PassageRecord{
		ID:          id,
		UnitID:      "arc-01",
		SubUnitID:   "ch-01",
		SequenceID:  "0001",
		TextPrimary: "text " + id,
		Vector:      vector,
	}
}

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float32{0.3, 0.5, 0.1}
	got := cosineSimilarity(v, v)
	if math.Abs(got-1.0) > 1e-6 {
		t.Fatalf("cosineSimilarity(v, v) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityZeroNormVector(t *testing.T) {
	if got := cosineSimilarity([]float32{0, 0, 0}, []float32{0.2, 0.4, 0.1}); got != 0 {
		t.Fatalf("zero-norm vector score = %v, want 0", got)
	}
}

func TestCosineSimilarityMismatchedLengths(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Fatalf("mismatched lengths score = %v, want 0", got)
	}
	if got := cosineSimilarity(nil, nil); got != 0 {
		t.Fatalf("empty vectors score = %v, want 0", got)
	}
}

func TestRankBySimilarityFiltersAndTruncates(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.PassageRecord{
		passageWithVector("close", []float32{1, 0.05}),
		passageWithVector("far", []float32{0, 1}),
		passageWithVector("mid", []float32{1, 1}),
		passageWithVector("exact", []float32{2, 0}),
	}

	ranked := rankBySimilarity(query, candidates, 0.5, 2)
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	if ranked[0].Record.ID != "exact" {
		t.Fatalf("top result = %q, want exact", ranked[0].Record.ID)
	}
	if ranked[0].Score < ranked[1].Score {
		t.Fatalf("results not sorted descending: %v < %v", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankBySimilarityStableForEqualScores(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.PassageRecord{
		passageWithVector("first", []float32{3, 0}),
		passageWithVector("second", []float32{1, 0}),
		passageWithVector("third", []float32{2, 0}),
	}

	ranked := rankBySimilarity(query, candidates, 0, 0)
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if ranked[i].Record.ID != id {
			t.Fatalf("ranked[%d] = %q, want %q (store order for equal scores)", i, ranked[i].Record.ID, id)
		}
	}
}

func TestRankBySimilarityDropsMinScore(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.PassageRecord{
		passageWithVector("orthogonal", []float32{0, 1}),
	}

	ranked := rankBySimilarity(query, candidates, 0.1, 10)
	if len(ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d results", len(ranked))
	}
}
