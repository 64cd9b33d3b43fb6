// ABOUTME: TUI command wiring: runs the GA in the background for the interactive tuner
// ABOUTME: Bridges engine progress into tui.Update messages and prints the final selection

package main

import (
	"context"
	"runtime/debug"

	"github.com/spf13/cobra"

	"farmplan/config"
	"farmplan/experiment"
	"farmplan/farm"
	"farmplan/ga"
	"farmplan/report"
	"farmplan/tui"
)

func newTUICommand(opts *rootOptions) *cobra.Command {
	var (
		data dataOptions
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Tune GA parameters interactively",
		Long: `Open an interactive terminal UI that runs the genetic algorithm live.
Parameter changes restart the run. Settings are saved on quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("seed") {
				s.Seed = &seed
			}

			out := cmd.OutOrStdout()

			dataset, err := loadDataset(out, s, data)
			if err != nil {
				return err
			}

			// Settings are read by the GA goroutine while the TUI edits them
			shared := config.NewSharedConfig(s)

			outcome, err := tui.Run(tui.Options{
				Dataset:    dataset,
				ConfigPath: opts.resolvedConfigPath(),
			}, tui.Dependencies{
				Config: shared,
				RunGA:  runGAForTUI(dataset),
				Debugf: debugf,
			})
			if err != nil {
				return err
			}

			if outcome.Best == nil {
				return nil
			}

			summary, err := farm.Summarize(dataset, outcome.Best, outcome.Settings.Limits)
			if err != nil {
				return err
			}

			return report.WriteSelection(out, summary)
		},
	}

	cmd.Flags().StringVar(&data.path, "data", "", "dataset file, generated when missing (default from settings)")
	cmd.Flags().IntVar(&data.plots, "n", experiment.DefaultPlots, "plots to generate when the dataset is missing")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for the dataset and the GA (default random GA seed)")

	return cmd
}

// runGAForTUI returns the tui.RunFunc that optimizes dataset
func runGAForTUI(dataset *farm.Dataset) tui.RunFunc {
	return func(ctx context.Context, s config.Settings, updates chan<- tui.Update, epoch int) {
		defer func() {
			if r := recover(); r != nil {
				debugf("[PANIC] GA goroutine panic: %v\n%s", r, string(debug.Stack()))
				panic(r) // Re-panic after logging
			}
		}()

		problem, err := dataset.Problem(s.Limits)
		if err != nil {
			debugf("[GA] epoch %d: %v", epoch, err)
			return
		}

		engine, err := ga.NewEngine(problem, s.GA.ToGA(), runRand(s))
		if err != nil {
			debugf("[GA] epoch %d: %v", epoch, err)
			return
		}
		engine.SetLogger(debugf)

		gaUpdates := make(chan ga.Update, 10)
		engine.SetUpdates(gaUpdates)

		type runResult struct {
			result ga.Result
			err    error
		}

		done := make(chan runResult, 1)

		go func() {
			// The engine never closes its update channel
			defer close(gaUpdates)

			result, err := engine.Run(ctx)
			done <- runResult{result: result, err: err}
		}()

		for u := range gaUpdates {
			select {
			case updates <- toTUIUpdate(u, &problem, epoch, false):
			default:
				// Channel full, skip update
			}
		}

		finished := <-done
		if finished.err != nil {
			debugf("[GA] epoch %d stopped: %v", epoch, finished.err)
		}

		if finished.result.Best == nil {
			return
		}

		final := ga.Update{
			Generation:   finished.result.Generations,
			BestFitness:  finished.result.BestFitness,
			MutationRate: finished.result.FinalMutationRate,
			Restarts:     finished.result.Restarts,
			Best:         finished.result.Best,
			Elapsed:      finished.result.Elapsed,
		}
		if n := finished.result.History.Len(); n > 0 {
			final.GenerationBest = finished.result.History.Best[n-1]
			final.MeanFitness = finished.result.History.Mean[n-1]
		}

		select {
		case updates <- toTUIUpdate(final, &problem, epoch, true):
		case <-ctx.Done():
		}
	}
}

func toTUIUpdate(u ga.Update, problem *ga.Problem, epoch int, done bool) tui.Update {
	return tui.Update{
		Progress:  u,
		Breakdown: ga.Evaluate(u.Best, problem),
		Done:      done,
		Epoch:     epoch,
	}
}

// The tui package depends only on this interface
var _ tui.ConfigProvider = (*config.SharedConfig)(nil)
