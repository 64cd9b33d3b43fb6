// ABOUTME: Shared initialization code for all commands (CLI, TUI, watch)
// ABOUTME: Provides debug logging, dataset loading and random source setup

package main

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"farmplan/config"
	"farmplan/experiment"
	"farmplan/farm"
	"farmplan/ga"
)

const debugLogFile = "farmplan-debug.log"

var debugLog *log.Logger

// dataOptions selects the dataset for a command
type dataOptions struct {
	path  string // Empty uses the settings data path
	plots int    // Plots generated when the file does not exist
}

// SetupDebugLog initializes debug logging
func SetupDebugLog(filename string) error {
	if err := InitDebugLog(filename); err != nil {
		return fmt.Errorf("failed to initialize debug log: %w", err)
	}

	if isTTY(os.Stdout) {
		fmt.Printf("Debug logging enabled: %s\n", filename)
	}

	return nil
}

// InitDebugLog initializes debug logging
func InitDebugLog(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugLog = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// debugf logs debug messages if enabled
func debugf(format string, args ...any) {
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}

// isTTY checks if the given file is a terminal
func isTTY(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	return (stat.Mode() & os.ModeCharDevice) != 0
}

// hasFitnessImproved returns true if newFitness is significantly higher (uses epsilon for float comparison)
func hasFitnessImproved(newFitness, oldFitness, epsilon float64) bool {
	return newFitness > oldFitness+epsilon
}

// loadDataset loads the dataset, generating it when the file is missing
// Generated datasets use the settings seed, or the default dataset seed.
func loadDataset(out io.Writer, s config.Settings, opts dataOptions) (*farm.Dataset, error) {
	path := opts.path
	if path == "" {
		path = s.DataPath
	}

	plots := opts.plots
	if plots <= 0 {
		plots = experiment.DefaultPlots
	}

	seed := uint64(experiment.DefaultDatasetSeed)
	if s.Seed != nil {
		seed = *s.Seed
	}

	d, generated, err := farm.LoadOrGenerate(path, plots, seed)
	if err != nil {
		return nil, err
	}

	if generated {
		fmt.Fprintf(out, "Generated %d plots (seed %d) to %s\n", d.Len(), seed, path)
	} else {
		fmt.Fprintf(out, "Loaded %d plots from %s\n", d.Len(), path)
	}

	debugf("[CLI] Dataset %s: %d plots (generated=%v)", path, d.Len(), generated)

	return d, nil
}

// runRand returns the random source for a run; nil lets the engine pick a seed
func runRand(s config.Settings) *rand.Rand {
	if s.Seed == nil {
		return nil
	}

	return ga.NewRand(*s.Seed)
}
