package service

import "math"

// CosineSimilarity returns the cosine similarity of two vectors, in [-1, 1].
// Absent vectors, mismatched lengths (an embedding-model mismatch) and
// zero-norm vectors all score 0 rather than erroring, so a retrieval pass
// spanning a model migration degrades instead of crashing.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
