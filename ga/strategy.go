// ABOUTME: Strategy kinds for selection, crossover and mutation
// ABOUTME: Named enumerations resolved once per run into concrete operator functions

package ga

import (
	"fmt"
	"math/rand/v2"
)

// SelectionMethod identifies a parent selection strategy
type SelectionMethod int

// Selection strategies
const (
	Tournament SelectionMethod = iota
	Roulette
	Rank
)

// CrossoverMethod identifies a crossover strategy
type CrossoverMethod int

// Crossover strategies
const (
	OnePoint CrossoverMethod = iota
	TwoPoint
	Uniform
)

// MutationMethod identifies a mutation strategy
type MutationMethod int

// Mutation strategies
const (
	BitFlip MutationMethod = iota
	Swap
)

// Candidate sets enumerated by the grid search, in enumeration order
var (
	SelectionMethods = []SelectionMethod{Tournament, Roulette, Rank}
	CrossoverMethods = []CrossoverMethod{OnePoint, TwoPoint, Uniform}
	MutationMethods  = []MutationMethod{BitFlip, Swap}
)

var (
	selectionNames = map[SelectionMethod]string{Tournament: "tournament", Roulette: "roulette", Rank: "rank"}
	crossoverNames = map[CrossoverMethod]string{OnePoint: "one_point", TwoPoint: "two_point", Uniform: "uniform"}
	mutationNames  = map[MutationMethod]string{BitFlip: "bit_flip", Swap: "swap"}
)

func (m SelectionMethod) String() string {
	if name, ok := selectionNames[m]; ok {
		return name
	}

	return fmt.Sprintf("SelectionMethod(%d)", int(m))
}

// Valid reports whether m is a known selection strategy
func (m SelectionMethod) Valid() bool {
	_, ok := selectionNames[m]
	return ok
}

// MarshalText implements encoding.TextMarshaler
func (m SelectionMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown selection method %d", ErrConfig, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *SelectionMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseSelectionMethod(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// ParseSelectionMethod resolves a selection strategy name
func ParseSelectionMethod(name string) (SelectionMethod, error) {
	for m, n := range selectionNames {
		if n == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown selection method %q", ErrConfig, name)
}

func (m CrossoverMethod) String() string {
	if name, ok := crossoverNames[m]; ok {
		return name
	}

	return fmt.Sprintf("CrossoverMethod(%d)", int(m))
}

// Valid reports whether m is a known crossover strategy
func (m CrossoverMethod) Valid() bool {
	_, ok := crossoverNames[m]
	return ok
}

// MarshalText implements encoding.TextMarshaler
func (m CrossoverMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown crossover method %d", ErrConfig, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *CrossoverMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseCrossoverMethod(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// ParseCrossoverMethod resolves a crossover strategy name
func ParseCrossoverMethod(name string) (CrossoverMethod, error) {
	for m, n := range crossoverNames {
		if n == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown crossover method %q", ErrConfig, name)
}

func (m MutationMethod) String() string {
	if name, ok := mutationNames[m]; ok {
		return name
	}

	return fmt.Sprintf("MutationMethod(%d)", int(m))
}

// Valid reports whether m is a known mutation strategy
func (m MutationMethod) Valid() bool {
	_, ok := mutationNames[m]
	return ok
}

// MarshalText implements encoding.TextMarshaler
func (m MutationMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown mutation method %d", ErrConfig, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *MutationMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseMutationMethod(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// ParseMutationMethod resolves a mutation strategy name
func ParseMutationMethod(name string) (MutationMethod, error) {
	for m, n := range mutationNames {
		if n == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown mutation method %q", ErrConfig, name)
}

// selector resolves the strategy into a concrete selection function
func (m SelectionMethod) selector(tournamentK int) Selector {
	switch m {
	case Roulette:
		return RouletteSelect
	case Rank:
		return RankSelect
	default:
		return func(pop []Chromosome, fitness []float64, rng *rand.Rand) Chromosome {
			return TournamentSelect(pop, fitness, rng, tournamentK)
		}
	}
}

// crossover resolves the strategy into a concrete crossover function
func (m CrossoverMethod) crossover() Crossover {
	switch m {
	case TwoPoint:
		return TwoPointCrossover
	case Uniform:
		return UniformCrossover
	default:
		return OnePointCrossover
	}
}

// mutator resolves the strategy into a concrete mutation function
func (m MutationMethod) mutator() Mutator {
	switch m {
	case Swap:
		return SwapMutate
	default:
		return BitFlipMutate
	}
}
