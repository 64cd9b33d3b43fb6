// ABOUTME: Crossover operators producing two children from two parents
// ABOUTME: One-point, two-point and uniform; parents are never modified

package ga

import "math/rand/v2"

// Crossover combines two equal-length parents into two new children
type Crossover func(a, b Chromosome, rng *rand.Rand) (Chromosome, Chromosome)

// OnePointCrossover cuts both parents at p in [1, L-1] and exchanges the tails
// Chromosomes shorter than 2 are returned as copies.
func OnePointCrossover(a, b Chromosome, rng *rand.Rand) (Chromosome, Chromosome) {
	n := len(a)
	if n < 2 {
		return a.Clone(), b.Clone()
	}

	p := 1 + rng.IntN(n-1)

	c1 := make(Chromosome, n)
	c2 := make(Chromosome, n)
	copy(c1, a[:p])
	copy(c1[p:], b[p:])
	copy(c2, b[:p])
	copy(c2[p:], a[p:])

	return c1, c2
}

// TwoPointCrossover swaps the segment [p1:p2) between parents, 0 < p1 < p2 < L
// Chromosomes shorter than 3 fall back to one-point crossover.
func TwoPointCrossover(a, b Chromosome, rng *rand.Rand) (Chromosome, Chromosome) {
	n := len(a)
	if n < 3 {
		return OnePointCrossover(a, b, rng)
	}

	p1 := 1 + rng.IntN(n-2)
	p2 := p1 + 1 + rng.IntN(n-p1-1)

	c1 := a.Clone()
	c2 := b.Clone()
	copy(c1[p1:p2], b[p1:p2])
	copy(c2[p1:p2], a[p1:p2])

	return c1, c2
}

// UniformCrossover swaps each position independently with probability 1/2
func UniformCrossover(a, b Chromosome, rng *rand.Rand) (Chromosome, Chromosome) {
	c1 := a.Clone()
	c2 := b.Clone()

	for i := range c1 {
		// Uint32()&1 is one fair coin per position
		if rng.Uint32()&1 == 1 {
			c1[i], c2[i] = b[i], a[i]
		}
	}

	return c1, c2
}
