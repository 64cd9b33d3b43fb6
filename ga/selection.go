// ABOUTME: Parent selection operators: tournament, roulette and rank-based
// ABOUTME: Each returns a copy of the chosen individual, never a reference into the population

package ga

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// Selector picks one parent from the population given its fitness values
type Selector func(pop []Chromosome, fitness []float64, rng *rand.Rand) Chromosome

// TournamentSelect draws k indices uniformly with replacement and returns the fittest
// The earliest drawn individual wins ties.
func TournamentSelect(pop []Chromosome, fitness []float64, rng *rand.Rand, k int) Chromosome {
	if k < 1 {
		k = 1
	}

	bestIdx := rng.IntN(len(pop))
	for j := 1; j < k; j++ {
		idx := rng.IntN(len(pop))
		if fitness[idx] > fitness[bestIdx] {
			bestIdx = idx
		}
	}

	return pop[bestIdx].Clone()
}

// RouletteSelect samples an individual with probability proportional to its fitness
// Fitness values are shifted by the minimum when any is negative. A zero total
// falls back to a uniform draw.
func RouletteSelect(pop []Chromosome, fitness []float64, rng *rand.Rand) Chromosome {
	shift := 0.0
	if minFit := slices.Min(fitness); minFit < 0 {
		shift = -minFit
	}

	total := 0.0
	for _, f := range fitness {
		total += f + shift
	}

	if total <= 0 {
		return pop[rng.IntN(len(pop))].Clone()
	}

	return pop[spin(fitness, shift, total, rng)].Clone()
}

// RankSelect samples an individual with probability proportional to (n - rank)
// The fittest individual has rank 0; equal fitness keeps population order.
func RankSelect(pop []Chromosome, fitness []float64, rng *rand.Rand) Chromosome {
	n := len(pop)
	order := rankOrder(fitness)

	weights := make([]float64, n)
	for rank, idx := range order {
		weights[idx] = float64(n - rank)
	}

	total := float64(n) * float64(n+1) / 2

	return pop[spin(weights, 0, total, rng)].Clone()
}

// rankOrder returns population indices sorted from highest to lowest fitness
func rankOrder(fitness []float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(fitness[b], fitness[a])
	})

	return order
}

// spin walks the cumulative distribution of (weights[i]+shift)/total
func spin(weights []float64, shift, total float64, rng *rand.Rand) int {
	r := rng.Float64() * total
	last := 0
	cumulative := 0.0

	for i, w := range weights {
		w += shift
		if w <= 0 {
			continue
		}

		cumulative += w
		last = i

		if r < cumulative {
			return i
		}
	}

	// Floating point rounding can leave r just past the final boundary
	return last
}
