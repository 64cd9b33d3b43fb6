// ABOUTME: In-place mutation operators for binary chromosomes
// ABOUTME: Bit-flip (per position) and swap (once per chromosome)

package ga

import "math/rand/v2"

// Mutator mutates a chromosome in place with the given rate
type Mutator func(c Chromosome, rate float64, rng *rand.Rand)

// BitFlipMutate flips each bit independently with probability rate
// rate 0 leaves c unchanged, rate 1 inverts every bit.
func BitFlipMutate(c Chromosome, rate float64, rng *rand.Rand) {
	for i := range c {
		if rng.Float64() < rate {
			c[i] = 1 - c[i]
		}
	}
}

// SwapMutate exchanges two distinct random positions with probability rate
func SwapMutate(c Chromosome, rate float64, rng *rand.Rand) {
	if rng.Float64() >= rate {
		return
	}

	n := len(c)
	if n < 2 {
		return
	}

	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}

	c[i], c[j] = c[j], c[i]
}
