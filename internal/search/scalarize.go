package search

import (
	"math/rand"
)

// WeightVectors returns k weight vectors over m objectives, each summing to
// one. A single vector weighs all objectives equally. For two objectives
// the vectors are evenly spaced; for more, they are drawn from rng.
func WeightVectors(m, k int, rng *rand.Rand) [][]float64 {
	if m <= 0 || k <= 0 {
		return nil
	}

	vectors := make([][]float64, k)
	if k == 1 || m == 1 {
		for i := range vectors {
			vectors[i] = equalWeights(m)
		}
		return vectors
	}

	if m == 2 {
		for i := range vectors {
			w := float64(i) / float64(k-1)
			vectors[i] = []float64{w, 1 - w}
		}
		return vectors
	}

	for i := range vectors {
		w := make([]float64, m)
		var sum float64
		for j := range w {
			w[j] = rng.ExpFloat64()
			sum += w[j]
		}
		for j := range w {
			w[j] /= sum
		}
		vectors[i] = w
	}
	return vectors
}

func equalWeights(m int) []float64 {
	w := make([]float64, m)
	for i := range w {
		w[i] = 1 / float64(m)
	}
	return w
}

// Scalarize returns the weighted sum of objectives.
func Scalarize(objectives, weights []float64) float64 {
	var sum float64
	for i, v := range objectives {
		if i < len(weights) {
			sum += weights[i] * v
		}
	}
	return sum
}
