package index

import "math"

// NormalizeVector normalizes a vector to unit length, so that the dot
// product of two normalized vectors is their cosine similarity.
// Returns a new vector and false if the input is empty or has zero magnitude.
func NormalizeVector(v []float32) ([]float32, bool) {
	if len(v) == 0 {
		return nil, false
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	// Can't normalize zero vector
	if magnitude == 0 || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return nil, false
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result, true
}
