// ABOUTME: Run configuration for the genetic algorithm with defaults and validation
// ABOUTME: Invalid combinations fail fast before any generation executes

package ga

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Config holds all tunable parameters of a single GA run
type Config struct {
	PopulationSize int     // Chromosomes per generation (>= 2)
	Generations    int     // Hard cap on generations
	MutationRate   float64 // Per-bit (bit-flip) or per-chromosome (swap) probability

	Selection   SelectionMethod
	TournamentK int // Sample size, only used by tournament selection
	Crossover   CrossoverMethod
	Mutation    MutationMethod

	Elitism            int // Best individuals copied unchanged each generation
	StagnationPatience int // Generations without improvement before a partial restart

	EarlyStop         bool
	EarlyStopDelta    float64 // Generation-to-generation change considered flat
	EarlyStopPatience int     // Flat generations before stopping

	Repair  bool // Drop random items from infeasible children
	Workers int  // Parallel fitness evaluation when > 1
}

// DefaultConfig returns the default GA configuration
func DefaultConfig() Config {
	return Config{
		PopulationSize:     100,
		Generations:        200,
		MutationRate:       0.01,
		Selection:          Tournament,
		TournamentK:        3,
		Crossover:          OnePoint,
		Mutation:           BitFlip,
		Elitism:            0,
		StagnationPatience: 30,
		EarlyStop:          true,
		EarlyStopDelta:     1e-3,
		EarlyStopPatience:  20,
		Repair:             false,
		Workers:            1,
	}
}

// Validate rejects configurations the engine cannot run
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return fmt.Errorf("%w: population size must be >= 2 (got %d)", ErrConfig, c.PopulationSize)
	case c.Generations < 0:
		return fmt.Errorf("%w: generations must be >= 0 (got %d)", ErrConfig, c.Generations)
	case math.IsNaN(c.MutationRate) || c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("%w: mutation rate must be in [0,1] (got %v)", ErrConfig, c.MutationRate)
	case !c.Selection.Valid():
		return fmt.Errorf("%w: unknown selection method %d", ErrConfig, int(c.Selection))
	case !c.Crossover.Valid():
		return fmt.Errorf("%w: unknown crossover method %d", ErrConfig, int(c.Crossover))
	case !c.Mutation.Valid():
		return fmt.Errorf("%w: unknown mutation method %d", ErrConfig, int(c.Mutation))
	case c.Selection == Tournament && c.TournamentK < 1:
		return fmt.Errorf("%w: tournament size must be >= 1 (got %d)", ErrConfig, c.TournamentK)
	case c.Elitism < 0:
		return fmt.Errorf("%w: elitism must be >= 0 (got %d)", ErrConfig, c.Elitism)
	case c.StagnationPatience < 1:
		return fmt.Errorf("%w: stagnation patience must be >= 1 (got %d)", ErrConfig, c.StagnationPatience)
	case math.IsNaN(c.EarlyStopDelta) || c.EarlyStopDelta < 0:
		return fmt.Errorf("%w: early stop delta must be >= 0 (got %v)", ErrConfig, c.EarlyStopDelta)
	case c.EarlyStop && c.EarlyStopPatience < 1:
		return fmt.Errorf("%w: early stop patience must be >= 1 (got %d)", ErrConfig, c.EarlyStopPatience)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0 (got %d)", ErrConfig, c.Workers)
	}

	return nil
}

// NewRand returns a PCG-backed random source for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// newRandomRand returns a non-deterministically seeded source
func newRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
