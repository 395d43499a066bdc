package search

import "context"

// Optimizer minimizes a scalar objective over a box.
type Optimizer interface {
	// Run minimizes eval over [lower, upper] in dim dimensions and returns
	// the best position and its cost.
	Run(ctx context.Context, eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64, error)
}
