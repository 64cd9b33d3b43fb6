// ABOUTME: Experiment definition with defaults for batch GA runs
// ABOUTME: Converts one experiment into dataset limits and a GA configuration

// Package experiment loads batch experiment definitions, runs them against
// farm datasets and writes per-experiment JSON results plus a CSV summary.
package experiment

import (
	"math/rand/v2"
	"strconv"

	"farmplan/farm"
	"farmplan/ga"
)

// Defaults applied to keys an experiment file leaves out
const (
	DefaultDataPath    = "data/farm_data_seed42.csv"
	DefaultPlots       = 100
	DefaultDatasetSeed = 42
)

// Experiment is one batch entry
type Experiment struct {
	Name     string  `mapstructure:"name" json:"name,omitempty"`
	DataPath string  `mapstructure:"data_path" json:"data_path"`
	N        int     `mapstructure:"N" json:"N"`                           // Plots generated when DataPath does not exist
	Seed     *uint64 `mapstructure:"seed" json:"seed,omitempty"`           // Nil draws a random seed
	Grid     bool    `mapstructure:"grid" json:"grid,omitempty"`           // Run all 18 combinations
	Parallel bool    `mapstructure:"parallel" json:"parallel,omitempty"` // Parallel grid search

	Budget     float64 `mapstructure:"budget" json:"budget"`
	WaterLimit float64 `mapstructure:"water_limit" json:"water_limit"`
	FertLimit  float64 `mapstructure:"fert_limit" json:"fert_limit"`

	PopSize            int                `mapstructure:"pop_size" json:"pop_size"`
	Generations        int                `mapstructure:"n_gens" json:"n_gens"`
	MutationRate       float64            `mapstructure:"mutation_rate" json:"mutation_rate"`
	Selection          ga.SelectionMethod `mapstructure:"selection" json:"selection"`
	TournamentK        int                `mapstructure:"tournament_k" json:"tournament_k"`
	Crossover          ga.CrossoverMethod `mapstructure:"crossover" json:"crossover"`
	Mutation           ga.MutationMethod  `mapstructure:"mutation" json:"mutation"`
	Elitism            int                `mapstructure:"elitism" json:"elitism"`
	StagnationPatience int                `mapstructure:"stagnation_patience" json:"stagnation_patience"`
	EarlyStop          bool               `mapstructure:"early_stop" json:"early_stop"`
	EarlyStopDelta     float64            `mapstructure:"early_stop_delta" json:"early_stop_delta"`
	EarlyStopPatience  int                `mapstructure:"early_stop_patience" json:"early_stop_patience"`
	Repair             bool               `mapstructure:"repair" json:"repair,omitempty"`
	Workers            int                `mapstructure:"workers" json:"workers,omitempty"`

	ignored []string // Keys in the source file that no field uses
}

// IgnoredKeys returns the file keys that were skipped while decoding, sorted
func (e *Experiment) IgnoredKeys() []string {
	return e.ignored
}

// Default returns an experiment with every default applied
func Default() Experiment {
	cfg := ga.DefaultConfig()
	limits := farm.DefaultLimits()

	return Experiment{
		DataPath:           DefaultDataPath,
		N:                  DefaultPlots,
		Budget:             limits.Budget,
		WaterLimit:         limits.Water,
		FertLimit:          limits.Fertilizer,
		PopSize:            100,
		Generations:        100,
		MutationRate:       0.01,
		Selection:          ga.Tournament,
		TournamentK:        3,
		Crossover:          ga.TwoPoint,
		Mutation:           ga.BitFlip,
		Elitism:            1,
		StagnationPatience: cfg.StagnationPatience,
		EarlyStop:          cfg.EarlyStop,
		EarlyStopDelta:     cfg.EarlyStopDelta,
		EarlyStopPatience:  cfg.EarlyStopPatience,
		Repair:             cfg.Repair,
		Workers:            cfg.Workers,
	}
}

// Config returns the GA configuration of the experiment
func (e *Experiment) Config() ga.Config {
	return ga.Config{
		PopulationSize:     e.PopSize,
		Generations:        e.Generations,
		MutationRate:       e.MutationRate,
		Selection:          e.Selection,
		TournamentK:        e.TournamentK,
		Crossover:          e.Crossover,
		Mutation:           e.Mutation,
		Elitism:            e.Elitism,
		StagnationPatience: e.StagnationPatience,
		EarlyStop:          e.EarlyStop,
		EarlyStopDelta:     e.EarlyStopDelta,
		EarlyStopPatience:  e.EarlyStopPatience,
		Repair:             e.Repair,
		Workers:            e.Workers,
	}
}

// Limits returns the resource limits of the experiment
func (e *Experiment) Limits() farm.Limits {
	return farm.Limits{
		Budget:     e.Budget,
		Water:      e.WaterLimit,
		Fertilizer: e.FertLimit,
	}
}

// DatasetSeed is the seed used when the dataset has to be generated
func (e *Experiment) DatasetSeed() uint64 {
	if e.Seed != nil {
		return *e.Seed
	}

	return DefaultDatasetSeed
}

// Rand returns the run's random source, nil when no seed is set
func (e *Experiment) Rand() *rand.Rand {
	if e.Seed == nil {
		return nil
	}

	return ga.NewRand(*e.Seed)
}

// SeedLabel renders the seed for file names, "na" when unset
func (e *Experiment) SeedLabel() string {
	if e.Seed == nil {
		return "na"
	}

	return strconv.FormatUint(*e.Seed, 10)
}
