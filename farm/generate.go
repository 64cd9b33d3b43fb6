// ABOUTME: Synthetic dataset generator with uniform attribute ranges
// ABOUTME: Same seed always yields the same plots

package farm

import (
	"fmt"
	"math/rand/v2"
)

// Attribute ranges for generated plots, [min, max)
const (
	minProductivity, maxProductivity = 10.0, 100.0
	minCost, maxCost                 = 1.0, 50.0
	minWater, maxWater               = 5.0, 30.0
	minFertilizer, maxFertilizer     = 2.0, 15.0
	minPrice, maxPrice               = 0.8, 2.0
	minRisk, maxRisk                 = 0.0, 10.0
)

// Generate creates n plots with attributes drawn uniformly from fixed ranges
func Generate(n int, seed uint64) (*Dataset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("plot count must be positive (got %d)", n)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	uniform := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	plots := make([]Plot, n)
	for i := range plots {
		plots[i] = Plot{
			ID:           i,
			Productivity: uniform(minProductivity, maxProductivity),
			Cost:         uniform(minCost, maxCost),
			Water:        uniform(minWater, maxWater),
			Fertilizer:   uniform(minFertilizer, maxFertilizer),
			Price:        uniform(minPrice, maxPrice),
			Risk:         uniform(minRisk, maxRisk),
			Soil:         SoilTypes[rng.IntN(len(SoilTypes))],
			Crop:         CropTypes[rng.IntN(len(CropTypes))],
		}
	}

	return &Dataset{Plots: plots, Seed: seed, HasSeed: true}, nil
}
