package usecase

import (
	"math"
	"sort"

	"github.com/kseverin/lore-assistant/internal/core/domain"
)

// rankBySimilarity scores candidates against the query vector, drops scores
// below minScore, sorts descending and truncates to topK. The sort is
// stable: equal scores keep store order, which makes ranking reproducible
// for identical inputs.
func rankBySimilarity(queryVector []float32, candidates []domain.PassageRecord, minScore float64, topK int) []domain.ScoredResult {
	out := make([]domain.ScoredResult, 0, len(candidates))
	for _, candidate := range candidates {
		score := cosineSimilarity(queryVector, candidate.Vector)
		if score < minScore {
			continue
		}
		out = append(out, domain.ScoredResult{Record: candidate, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

// cosineSimilarity returns dot(a,b) / (|a|*|b|). Mismatched lengths and
// zero-norm vectors yield 0, never NaN.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
