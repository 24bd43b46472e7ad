package correlation

import "math"

// EmbeddingMatcher decides whether a candidate embedding belongs to a person
// given that person's accumulated exemplars. The comparator is injected so the
// correlator stays recognition-engine agnostic.
type EmbeddingMatcher interface {
	Matches(known [][]float32, candidate []float32) bool
}

// CosineMatcher matches when any known exemplar's cosine similarity to the
// candidate reaches the threshold.
type CosineMatcher struct {
	Threshold float32
}

// Ensure CosineMatcher implements EmbeddingMatcher
var _ EmbeddingMatcher = CosineMatcher{}

// Matches reports whether candidate is similar to any known exemplar.
func (m CosineMatcher) Matches(known [][]float32, candidate []float32) bool {
	for _, embedding := range known {
		if cosineSimilarity(embedding, candidate) >= m.Threshold {
			return true
		}
	}
	return false
}

// cosineSimilarity calculates cosine similarity between two embedding vectors
func cosineSimilarity(embedding1, embedding2 []float32) float32 {
	if len(embedding1) != len(embedding2) || len(embedding1) == 0 {
		return 0.0
	}

	var dotProduct float32
	var norm1 float32
	var norm2 float32

	for i := 0; i < len(embedding1); i++ {
		dotProduct += embedding1[i] * embedding2[i]
		norm1 += embedding1[i] * embedding1[i]
		norm2 += embedding2[i] * embedding2[i]
	}

	if norm1 == 0 || norm2 == 0 {
		return 0.0
	}

	norm1Sqrt := float32(math.Sqrt(float64(norm1)))
	norm2Sqrt := float32(math.Sqrt(float64(norm2)))

	return dotProduct / (norm1Sqrt * norm2Sqrt)
}
