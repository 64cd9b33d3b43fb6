// ABOUTME: Entry point for farmplan application
// ABOUTME: Handles command-line parsing, profiling, and routing to the subcommands

// Package main provides the entry point for farmplan, a genetic algorithm
// that selects farmland plots under budget, water and fertilizer limits.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/spf13/cobra"

	"farmplan/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &rootOptions{}
	defer opts.finish()

	if err := newRootCommand(opts).ExecuteContext(ctx); err != nil {
		log.Printf("CLI error: %v", err)

		return 1
	}

	return 0
}

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	debug      bool
	cpuprofile string
	memprofile string
	configPath string

	cleanups []func()
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farmplan",
		Short: "Select farmland plots with a genetic algorithm",
		Long: `farmplan searches for a near-optimal subset of farmland plots to cultivate
under budget, water and fertilizer limits. It maximizes net revenue minus
cost and risk with a genetic algorithm, and can compare all 18 selection,
crossover and mutation strategy combinations in a grid search.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.setup()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging to "+debugLogFile)
	flags.StringVar(&opts.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	flags.StringVar(&opts.memprofile, "memprofile", "", "write memory profile to file")
	flags.StringVar(&opts.configPath, "config", "", "settings file (default ./farmplan.toml or ~/.config/farmplan/config.toml)")

	cmd.AddCommand(newGenerateCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newGridCommand(opts))
	cmd.AddCommand(newExperimentCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newTUICommand(opts))

	return cmd
}

// setup starts debug logging and profiling
func (o *rootOptions) setup() error {
	if o.debug {
		if err := SetupDebugLog(debugLogFile); err != nil {
			return err
		}
	}

	if o.cpuprofile != "" {
		stopCPUProfile, err := setupCPUProfile(o.cpuprofile)
		if err != nil {
			return err
		}

		o.cleanups = append(o.cleanups, stopCPUProfile)
	}

	return nil
}

// finish stops profiling and writes the memory profile
func (o *rootOptions) finish() {
	for i := len(o.cleanups) - 1; i >= 0; i-- {
		o.cleanups[i]()
	}

	o.cleanups = nil

	if o.memprofile != "" {
		writeMemoryProfile(o.memprofile)
	}
}

// resolvedConfigPath returns --config or the default settings location
func (o *rootOptions) resolvedConfigPath() string {
	if o.configPath != "" {
		return o.configPath
	}

	return config.GetConfigPath()
}

// settings loads the settings file
func (o *rootOptions) settings() (config.Settings, error) {
	path := o.resolvedConfigPath()

	s, err := config.LoadConfig(path)
	if err != nil {
		return s, err
	}

	debugf("[CLI] Loaded settings from %s", path)

	return s, nil
}

// setupCPUProfile starts CPU profiling, returns cleanup function
func setupCPUProfile(filename string) (func(), error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("could not create CPU profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("could not start CPU profile: %w", err)
	}

	return func() {
		pprof.StopCPUProfile()

		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close CPU profile: %v", err)
		}
	}, nil
}

// writeMemoryProfile writes memory profile to file
func writeMemoryProfile(filename string) {
	f, err := os.Create(filename)
	if err != nil {
		log.Printf("could not create memory profile: %v", err)

		return
	}

	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close memory profile: %v", err)
		}
	}()

	runtime.GC()

	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Printf("could not write memory profile: %v", err)
	}
}
