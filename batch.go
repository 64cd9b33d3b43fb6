// ABOUTME: Batch experiment command: runs every experiment in a file and writes results
// ABOUTME: Shared by the experiment and watch commands

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"farmplan/experiment"
	"farmplan/farm"
	"farmplan/report"
)

const defaultResultsDir = "results"

// batchOptions controls what a batch writes besides the JSON results
type batchOptions struct {
	resultsDir string
	noCSV      bool
	plots      bool
}

func (b *batchOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.resultsDir, "results", defaultResultsDir, "directory for result files")
	cmd.Flags().BoolVar(&b.noCSV, "no-csv", false, "skip the batch CSV summary")
	cmd.Flags().BoolVar(&b.plots, "plots", false, "write a convergence plot (PNG) per experiment")
}

func newExperimentCommand(_ *rootOptions) *cobra.Command {
	var batch batchOptions

	cmd := &cobra.Command{
		Use:   "experiment <file>",
		Short: "Run a batch of experiments",
		Long: `Run every experiment in a JSON, YAML or TOML file. The file holds a single
experiment or a list of them. Missing datasets are generated first.

Each experiment writes result_seed<seed>_exp<i>_<unix>.json into the results
directory, and the batch writes batch_results.csv.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runBatch(cmd.Context(), cmd.OutOrStdout(), args[0], batch)

			return err
		},
	}

	batch.register(cmd)

	return cmd
}

// runBatch loads, runs and saves one experiment file
func runBatch(ctx context.Context, out io.Writer, path string, opts batchOptions) ([]experiment.Outcome, error) {
	exps, err := experiment.LoadFile(path)
	if err != nil {
		return nil, err
	}

	debugf("[BATCH] Loaded %d experiments from %s", len(exps), path)
	fmt.Fprintf(out, "Loaded %d experiment(s) from %s\n", len(exps), path)

	runner := experiment.Runner{Out: out, Logf: debugf}

	outcomes, runErr := runner.Run(ctx, exps)
	if len(outcomes) == 0 {
		return nil, runErr
	}

	for i := range outcomes {
		if err := writeOutcome(out, &outcomes[i]); err != nil {
			return outcomes, err
		}
	}

	paths, err := experiment.WriteJSON(opts.resultsDir, outcomes, time.Now())
	if err != nil {
		return outcomes, err
	}

	fmt.Fprintln(out)
	for _, p := range paths {
		fmt.Fprintf(out, "Result written to %s\n", p)
	}

	if !opts.noCSV {
		csvPath, err := experiment.WriteBatchCSV(opts.resultsDir, outcomes)
		if err != nil {
			return outcomes, err
		}
		fmt.Fprintf(out, "Batch summary written to %s\n", csvPath)
	}

	if opts.plots {
		for i := range outcomes {
			o := &outcomes[i]
			plotPath := filepath.Join(opts.resultsDir, fmt.Sprintf("convergence_exp%d.png", o.Index))
			title := fmt.Sprintf("Experiment %d (%s/%s/%s)", o.Index, o.Selection, o.Crossover, o.Mutation)

			if err := report.PlotConvergence(plotPath, title, o.History); err != nil {
				return outcomes, err
			}
			fmt.Fprintf(out, "Convergence plot written to %s\n", plotPath)
		}
	}

	return outcomes, runErr
}

// writeOutcome prints the selected plots of one experiment
func writeOutcome(out io.Writer, o *experiment.Outcome) error {
	summary, err := farm.Summarize(o.Dataset, o.Best, o.Config.Limits())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n=== Experiment %d ===\n", o.Index)

	return report.WriteSelection(out, summary)
}
