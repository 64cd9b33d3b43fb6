// ABOUTME: Tests for selection, crossover and mutation operators
// ABOUTME: Verifies bit conservation, degenerate inputs and sampling weights

package ga

import (
	"math"
	"slices"
	"testing"
)

func zeros(n int) Chromosome {
	return make(Chromosome, n)
}

func ones(n int) Chromosome {
	c := make(Chromosome, n)
	for i := range c {
		c[i] = 1
	}

	return c
}

// labeledPopulation returns chromosomes whose single set bit identifies them
func labeledPopulation(n int) []Chromosome {
	pop := make([]Chromosome, n)
	for i := range pop {
		pop[i] = zeros(n)
		pop[i][i] = 1
	}

	return pop
}

func label(c Chromosome) int {
	return slices.Index(c, 1)
}

func assertConserved(t *testing.T, a, b, c1, c2 Chromosome) {
	t.Helper()

	for i := range a {
		if a[i]+b[i] != c1[i]+c2[i] {
			t.Fatalf("Position %d: parents (%d,%d) children (%d,%d)", i, a[i], b[i], c1[i], c2[i])
		}
	}
}

func TestOnePointCrossover(t *testing.T) {
	rng := NewRand(1)
	n := 12

	for range 200 {
		a, b := zeros(n), ones(n)
		c1, c2 := OnePointCrossover(a, b, rng)

		assertConserved(t, a, b, c1, c2)

		p := slices.Index(c1, 1)
		if p < 1 || p > n-1 {
			t.Fatalf("Cut point %d outside [1, %d]", p, n-1)
		}

		for i := p; i < n; i++ {
			if c1[i] != 1 {
				t.Fatalf("Child %s is not a single-cut prefix/suffix", c1)
			}
		}
	}
}

func TestTwoPointCrossover(t *testing.T) {
	rng := NewRand(2)
	n := 10

	for range 500 {
		a, b := zeros(n), ones(n)
		c1, c2 := TwoPointCrossover(a, b, rng)

		assertConserved(t, a, b, c1, c2)

		// c1 must hold a single non-empty run of ones strictly inside [1, n-1)
		start := slices.Index(c1, 1)
		if start < 1 {
			t.Fatalf("Swapped segment in %s starts at %d, want >= 1", c1, start)
		}

		end := start
		for end < n && c1[end] == 1 {
			end++
		}

		if end >= n {
			t.Fatalf("Swapped segment in %s reaches the last position", c1)
		}

		for i := end; i < n; i++ {
			if c1[i] != 0 {
				t.Fatalf("Child %s has more than one swapped segment", c1)
			}
		}
	}
}

func TestUniformCrossoverConservesBits(t *testing.T) {
	rng := NewRand(3)

	a := Chromosome{1, 0, 1, 1, 0, 0, 1, 0}
	b := Chromosome{0, 0, 1, 0, 1, 1, 1, 1}

	for range 100 {
		c1, c2 := UniformCrossover(a, b, rng)
		assertConserved(t, a, b, c1, c2)
	}
}

func TestCrossoverShortChromosomes(t *testing.T) {
	tests := []struct {
		name string
		fn   Crossover
		n    int
	}{
		{"one point n=1", OnePointCrossover, 1},
		{"two point n=1", TwoPointCrossover, 1},
		{"two point n=2", TwoPointCrossover, 2},
		{"uniform n=1", UniformCrossover, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := NewRand(4)
			a, b := zeros(tt.n), ones(tt.n)

			c1, c2 := tt.fn(a, b, rng)
			if len(c1) != tt.n || len(c2) != tt.n {
				t.Fatalf("Children lengths %d,%d, want %d", len(c1), len(c2), tt.n)
			}

			assertConserved(t, a, b, c1, c2)
		})
	}
}

func TestCrossoverDoesNotAliasParents(t *testing.T) {
	rng := NewRand(5)
	a, b := zeros(6), ones(6)

	for _, fn := range []Crossover{OnePointCrossover, TwoPointCrossover, UniformCrossover} {
		c1, c2 := fn(a, b, rng)
		c1[0], c2[0] = 9, 9

		if a[0] != 0 || b[0] != 1 {
			t.Fatal("Crossover children share storage with parents")
		}
	}
}

func TestBitFlipMutate(t *testing.T) {
	rng := NewRand(6)

	c := Chromosome{1, 0, 1, 0, 1}
	BitFlipMutate(c, 0, rng)
	if c.String() != "10101" {
		t.Errorf("Rate 0 changed chromosome to %s", c)
	}

	BitFlipMutate(c, 1, rng)
	if c.String() != "01010" {
		t.Errorf("Rate 1 produced %s, want 01010", c)
	}
}

func TestSwapMutate(t *testing.T) {
	rng := NewRand(7)

	c := Chromosome{1, 1, 0, 0, 0, 0}
	SwapMutate(c, 0, rng)
	if c.String() != "110000" {
		t.Errorf("Rate 0 changed chromosome to %s", c)
	}

	changed := 0
	for range 200 {
		before := Chromosome{1, 1, 0, 0, 0, 0}
		after := before.Clone()
		SwapMutate(after, 1, rng)

		if after.Count() != before.Count() {
			t.Fatalf("Swap changed the number of selected items: %s -> %s", before, after)
		}

		diff := 0
		for i := range before {
			if before[i] != after[i] {
				diff++
			}
		}

		if diff != 0 && diff != 2 {
			t.Fatalf("Swap changed %d positions, want 0 or 2", diff)
		}

		if diff == 2 {
			changed++
		}
	}

	// Distinct positions with differing values swap 8 of 15 times
	if changed == 0 {
		t.Error("Swap at rate 1 never changed the chromosome")
	}

	single := Chromosome{1}
	SwapMutate(single, 1, rng)
	if single[0] != 1 {
		t.Error("Swap on a single-element chromosome must be a no-op")
	}
}

func TestTournamentSelectPicksBest(t *testing.T) {
	rng := NewRand(8)
	pop := labeledPopulation(5)
	fitness := []float64{1, 5, 3, 2, 4}

	for range 50 {
		// With k much larger than the population the best is virtually always drawn
		if got := label(TournamentSelect(pop, fitness, rng, 64)); got != 1 {
			t.Fatalf("Tournament picked %d, want 1", got)
		}
	}
}

func TestTournamentSelectSizeOne(t *testing.T) {
	rng := NewRand(9)
	pop := labeledPopulation(4)
	fitness := []float64{10, 0, 0, 0}

	seen := make(map[int]int)
	for range 400 {
		seen[label(TournamentSelect(pop, fitness, rng, 1))]++
	}

	if len(seen) != 4 {
		t.Errorf("Tournament of size 1 should sample uniformly, saw %v", seen)
	}
}

func TestSelectionReturnsCopy(t *testing.T) {
	rng := NewRand(10)
	pop := labeledPopulation(3)
	fitness := []float64{1, 2, 3}

	selectors := map[string]Selector{
		"tournament": Tournament.selector(2),
		"roulette":   Roulette.selector(0),
		"rank":       Rank.selector(0),
	}

	for name, sel := range selectors {
		t.Run(name, func(t *testing.T) {
			picked := sel(pop, fitness, rng)
			idx := label(picked)
			picked[idx] = 0

			if pop[idx][idx] != 1 {
				t.Error("Selected chromosome aliases the population")
			}
		})
	}
}

func TestRouletteSelectZeroTotal(t *testing.T) {
	rng := NewRand(11)
	pop := labeledPopulation(4)
	fitness := []float64{0, 0, 0, 0}

	seen := make(map[int]int)
	for range 400 {
		seen[label(RouletteSelect(pop, fitness, rng))]++
	}

	if len(seen) != 4 {
		t.Errorf("Zero-total roulette should fall back to uniform, saw %v", seen)
	}
}

func TestRouletteSelectShiftsNegative(t *testing.T) {
	rng := NewRand(12)
	pop := labeledPopulation(3)

	// Shifting by the minimum leaves weights [0, 0, 15]
	fitness := []float64{-5, -5, 10}

	for range 100 {
		if got := label(RouletteSelect(pop, fitness, rng)); got != 2 {
			t.Fatalf("Roulette picked %d, want 2", got)
		}
	}
}

func TestRouletteSelectProportional(t *testing.T) {
	rng := NewRand(13)
	pop := labeledPopulation(2)
	fitness := []float64{1, 3}

	const draws = 8000
	counts := [2]int{}
	for range draws {
		counts[label(RouletteSelect(pop, fitness, rng))]++
	}

	if got := float64(counts[1]) / draws; math.Abs(got-0.75) > 0.03 {
		t.Errorf("Share of fitter individual = %.3f, want ~0.75", got)
	}
}

func TestRankSelectWeights(t *testing.T) {
	rng := NewRand(14)
	pop := labeledPopulation(3)

	// Scale must not matter, only order: weights 3,2,1 for ranks 0,1,2
	fitness := []float64{1, 1000, 2}

	const draws = 9000
	counts := [3]int{}
	for range draws {
		counts[label(RankSelect(pop, fitness, rng))]++
	}

	want := [3]float64{1.0 / 6, 3.0 / 6, 2.0 / 6}
	for i := range counts {
		if got := float64(counts[i]) / draws; math.Abs(got-want[i]) > 0.03 {
			t.Errorf("Individual %d share = %.3f, want ~%.3f", i, got, want[i])
		}
	}
}

func TestRankOrderStable(t *testing.T) {
	got := rankOrder([]float64{3, 5, 3, 1, 5})
	want := []int{1, 4, 0, 2, 3}

	if !slices.Equal(got, want) {
		t.Errorf("rankOrder = %v, want %v", got, want)
	}
}
