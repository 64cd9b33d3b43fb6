// ABOUTME: Configuration management for farmplan settings and GA parameters
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

// Package config stores the tool's own settings: default GA parameters,
// resource limits, dataset path and seed.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"farmplan/farm"
	"farmplan/ga"
)

// DefaultDataPath is the dataset used when none is given
const DefaultDataPath = "data/farm_data_seed42.csv"

// GAConfig holds all tunable genetic algorithm parameters
type GAConfig struct {
	// Population parameters
	PopulationSize int     `toml:"population_size"`
	Generations    int     `toml:"generations"`
	MutationRate   float64 `toml:"mutation_rate"`

	// Operators
	Selection   ga.SelectionMethod `toml:"selection"`
	TournamentK int                `toml:"tournament_k"`
	Crossover   ga.CrossoverMethod `toml:"crossover"`
	Mutation    ga.MutationMethod  `toml:"mutation"`

	// Search control
	Elitism            int     `toml:"elitism"`
	StagnationPatience int     `toml:"stagnation_patience"`
	EarlyStop          bool    `toml:"early_stop"`
	EarlyStopDelta     float64 `toml:"early_stop_delta"`
	EarlyStopPatience  int     `toml:"early_stop_patience"`
	Repair             bool    `toml:"repair"`
	Workers            int     `toml:"workers"`
}

// Settings is the full contents of a farmplan config file
type Settings struct {
	DataPath string      `toml:"data_path"`
	Seed     *uint64     `toml:"seed,omitempty"` // Nil draws a random seed per run
	Limits   farm.Limits `toml:"limits"`
	GA       GAConfig    `toml:"ga"`
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/farmplan/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./farmplan.toml"); err == nil {
		return "./farmplan.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./farmplan.toml"
	}

	return filepath.Join(home, ".config", "farmplan", "config.toml")
}

// LoadConfig loads settings from a TOML file
// Keys missing from the file keep their defaults; a missing file yields defaults.
func LoadConfig(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	settings := DefaultConfig()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return settings, nil
}

// SaveConfig saves settings to a TOML file
func SaveConfig(path string, settings Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Round to the TUI's step precision so repeated saves don't drift
	settings = roundConfigPrecision(settings)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default settings
func DefaultConfig() Settings {
	return Settings{
		DataPath: DefaultDataPath,
		Limits:   farm.DefaultLimits(),
		GA:       FromGA(ga.DefaultConfig()),
	}
}

// Validate checks GA parameters and limits
func (s Settings) Validate() error {
	if err := s.GA.ToGA().Validate(); err != nil {
		return err
	}

	if s.Limits.Budget < 0 || s.Limits.Water < 0 || s.Limits.Fertilizer < 0 {
		return fmt.Errorf("%w: limits must be non-negative", ga.ErrConfig)
	}

	return nil
}

// ToGA converts the file representation into an engine configuration
func (c GAConfig) ToGA() ga.Config {
	return ga.Config{
		PopulationSize:     c.PopulationSize,
		Generations:        c.Generations,
		MutationRate:       c.MutationRate,
		Selection:          c.Selection,
		TournamentK:        c.TournamentK,
		Crossover:          c.Crossover,
		Mutation:           c.Mutation,
		Elitism:            c.Elitism,
		StagnationPatience: c.StagnationPatience,
		EarlyStop:          c.EarlyStop,
		EarlyStopDelta:     c.EarlyStopDelta,
		EarlyStopPatience:  c.EarlyStopPatience,
		Repair:             c.Repair,
		Workers:            c.Workers,
	}
}

// FromGA converts an engine configuration into its file representation
func FromGA(cfg ga.Config) GAConfig {
	return GAConfig{
		PopulationSize:     cfg.PopulationSize,
		Generations:        cfg.Generations,
		MutationRate:       cfg.MutationRate,
		Selection:          cfg.Selection,
		TournamentK:        cfg.TournamentK,
		Crossover:          cfg.Crossover,
		Mutation:           cfg.Mutation,
		Elitism:            cfg.Elitism,
		StagnationPatience: cfg.StagnationPatience,
		EarlyStop:          cfg.EarlyStop,
		EarlyStopDelta:     cfg.EarlyStopDelta,
		EarlyStopPatience:  cfg.EarlyStopPatience,
		Repair:             cfg.Repair,
		Workers:            cfg.Workers,
	}
}

// roundConfigPrecision rounds the mutation rate and limits to 4 decimal places
func roundConfigPrecision(s Settings) Settings {
	round := func(x float64) float64 {
		return math.Round(x*1e4) / 1e4
	}

	s.GA.MutationRate = round(s.GA.MutationRate)
	s.Limits.Budget = round(s.Limits.Budget)
	s.Limits.Water = round(s.Limits.Water)
	s.Limits.Fertilizer = round(s.Limits.Fertilizer)

	return s
}

// SharedConfig wraps Settings with a mutex for safe concurrent access
// The TUI updates it while a GA run reads it.
type SharedConfig struct {
	mu       sync.RWMutex
	settings Settings
}

// NewSharedConfig returns a SharedConfig holding s
func NewSharedConfig(s Settings) *SharedConfig {
	return &SharedConfig{settings: s}
}

// Get returns a copy of the current settings
func (sc *SharedConfig) Get() Settings {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	return sc.settings
}

// Update replaces the current settings
func (sc *SharedConfig) Update(s Settings) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.settings = s
}
