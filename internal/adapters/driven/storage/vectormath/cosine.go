// Package vectormath holds the similarity computation shared by every
// vector index implementation. Keeping it in one place guarantees the
// write and read paths can never disagree on the distance metric.
package vectormath

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Returns 0 when either vector is empty, zero-length or of different
// dimension.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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
