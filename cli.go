// ABOUTME: Non-interactive commands: dataset generation, single GA runs and grid search
// ABOUTME: Handles GA flag overrides, progress display and result output for command-line usage

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"farmplan/config"
	"farmplan/experiment"
	"farmplan/farm"
	"farmplan/ga"
	"farmplan/report"
)

// gaFlags are the GA overrides shared by run and grid
// Only flags the user actually set replace values from the settings file.
type gaFlags struct {
	population  int
	generations int
	rate        float64
	selection   string
	tournamentK int
	crossover   string
	mutation    string
	elitism     int
	patience    int
	earlyStop   bool
	repair      bool
	workers     int

	budget     float64
	water      float64
	fertilizer float64
}

func (g *gaFlags) register(flags *pflag.FlagSet, strategies bool) {
	defaults := config.DefaultConfig()

	flags.IntVar(&g.population, "pop", defaults.GA.PopulationSize, "population size")
	flags.IntVar(&g.generations, "gens", defaults.GA.Generations, "maximum generations")
	flags.Float64Var(&g.rate, "rate", defaults.GA.MutationRate, "mutation rate")
	flags.IntVar(&g.tournamentK, "tournament-k", defaults.GA.TournamentK, "tournament sample size")
	flags.IntVar(&g.elitism, "elitism", defaults.GA.Elitism, "individuals copied unchanged each generation")
	flags.IntVar(&g.patience, "patience", defaults.GA.StagnationPatience, "generations without improvement before a partial restart")
	flags.BoolVar(&g.earlyStop, "early-stop", defaults.GA.EarlyStop, "stop when best fitness stops changing")
	flags.BoolVar(&g.repair, "repair", defaults.GA.Repair, "repair infeasible children by dropping random plots")
	flags.IntVar(&g.workers, "workers", defaults.GA.Workers, "parallel fitness workers")

	flags.Float64Var(&g.budget, "budget", defaults.Limits.Budget, "budget limit")
	flags.Float64Var(&g.water, "water", defaults.Limits.Water, "water limit")
	flags.Float64Var(&g.fertilizer, "fert", defaults.Limits.Fertilizer, "fertilizer limit")

	// Grid search sweeps the operators itself
	if strategies {
		flags.StringVar(&g.selection, "selection", defaults.GA.Selection.String(), "selection method (tournament, roulette, rank)")
		flags.StringVar(&g.crossover, "crossover", defaults.GA.Crossover.String(), "crossover method (one_point, two_point, uniform)")
		flags.StringVar(&g.mutation, "mutation", defaults.GA.Mutation.String(), "mutation method (bit_flip, swap)")
	}
}

// apply copies changed flags into s and validates the result
func (g *gaFlags) apply(flags *pflag.FlagSet, s *config.Settings) error {
	changed := flags.Changed

	if changed("pop") {
		s.GA.PopulationSize = g.population
	}
	if changed("gens") {
		s.GA.Generations = g.generations
	}
	if changed("rate") {
		s.GA.MutationRate = g.rate
	}
	if changed("tournament-k") {
		s.GA.TournamentK = g.tournamentK
	}
	if changed("elitism") {
		s.GA.Elitism = g.elitism
	}
	if changed("patience") {
		s.GA.StagnationPatience = g.patience
	}
	if changed("early-stop") {
		s.GA.EarlyStop = g.earlyStop
	}
	if changed("repair") {
		s.GA.Repair = g.repair
	}
	if changed("workers") {
		s.GA.Workers = g.workers
	}
	if changed("budget") {
		s.Limits.Budget = g.budget
	}
	if changed("water") {
		s.Limits.Water = g.water
	}
	if changed("fert") {
		s.Limits.Fertilizer = g.fertilizer
	}

	if flags.Lookup("selection") != nil && changed("selection") {
		m, err := ga.ParseSelectionMethod(g.selection)
		if err != nil {
			return err
		}
		s.GA.Selection = m
	}
	if flags.Lookup("crossover") != nil && changed("crossover") {
		m, err := ga.ParseCrossoverMethod(g.crossover)
		if err != nil {
			return err
		}
		s.GA.Crossover = m
	}
	if flags.Lookup("mutation") != nil && changed("mutation") {
		m, err := ga.ParseMutationMethod(g.mutation)
		if err != nil {
			return err
		}
		s.GA.Mutation = m
	}

	return s.Validate()
}

// commonRunFlags selects settings, dataset and seed for run and grid
type commonRunFlags struct {
	data dataOptions
	seed uint64
	ga   gaFlags
	json string
}

func (c *commonRunFlags) register(cmd *cobra.Command, strategies bool) {
	flags := cmd.Flags()
	flags.StringVar(&c.data.path, "data", "", "dataset file, generated when missing (default from settings)")
	flags.IntVar(&c.data.plots, "n", experiment.DefaultPlots, "plots to generate when the dataset is missing")
	flags.Uint64Var(&c.seed, "seed", 0, "random seed for the dataset and the GA (default random GA seed)")
	flags.StringVar(&c.json, "json", "", "write the result as JSON to this file")
	c.ga.register(flags, strategies)
}

// resolve loads settings, applies flag overrides and loads the dataset
func (c *commonRunFlags) resolve(cmd *cobra.Command, opts *rootOptions) (config.Settings, *farm.Dataset, error) {
	s, err := opts.settings()
	if err != nil {
		return s, nil, err
	}

	if cmd.Flags().Changed("seed") {
		seed := c.seed
		s.Seed = &seed
	}

	if err := c.ga.apply(cmd.Flags(), &s); err != nil {
		return s, nil, err
	}

	dataset, err := loadDataset(cmd.OutOrStdout(), s, c.data)
	if err != nil {
		return s, nil, err
	}

	return s, dataset, nil
}

func newGenerateCommand(_ *rootOptions) *cobra.Command {
	var (
		n    int
		seed uint64
		out  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic farmland dataset",
		Long: `Generate a synthetic dataset of farmland plots with random productivity,
cost, water, fertilizer, price, risk, soil and crop values. The file format
follows the extension: .csv or .xlsx.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = filepath.Join("data", fmt.Sprintf("farm_data_seed%d.csv", seed))
			}

			d, err := farm.Generate(n, seed)
			if err != nil {
				return err
			}

			if err := farm.Save(out, d); err != nil {
				return err
			}

			debugf("[CLI] Generated %d plots with seed %d", d.Len(), seed)
			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d plots (seed %d) to %s\n", d.Len(), seed, out)

			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", experiment.DefaultPlots, "number of plots")
	cmd.Flags().Uint64Var(&seed, "seed", experiment.DefaultDatasetSeed, "generator seed")
	cmd.Flags().StringVar(&out, "out", "", "output file, .csv or .xlsx (default data/farm_data_seed<seed>.csv)")

	return cmd
}

// runReport is the JSON document written by run --json
type runReport struct {
	Fitness      float64            `json:"best_fitness"`
	Selected     []int              `json:"selected_ids"`
	Vector       string             `json:"best_vector"`
	Revenue      float64            `json:"revenue"`
	Cost         float64            `json:"cost"`
	Water        float64            `json:"water"`
	Fertilizer   float64            `json:"fertilizer"`
	Risk         float64            `json:"risk"`
	Penalty      float64            `json:"penalty"`
	Generations  int                `json:"generations"`
	Stop         ga.StopReason      `json:"stop_reason"`
	Restarts     int                `json:"restarts"`
	MutationRate float64            `json:"final_mutation_rate"`
	TimeSeconds  float64            `json:"time_seconds"`
	Convergence  report.Convergence `json:"convergence"`
	Config       config.GAConfig    `json:"config"`
	Limits       farm.Limits        `json:"limits"`
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		flags commonRunFlags
		plot  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the genetic algorithm once",
		Long: `Run the genetic algorithm once on a dataset, printing progress as the best
fitness improves, then a summary of the selected plots. Flags override the
settings file for this run only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, dataset, err := flags.resolve(cmd, opts)
			if err != nil {
				return err
			}

			problem, err := dataset.Problem(s.Limits)
			if err != nil {
				return err
			}

			engine, err := ga.NewEngine(problem, s.GA.ToGA(), runRand(s))
			if err != nil {
				return err
			}
			engine.SetLogger(debugf)

			out := cmd.OutOrStdout()
			terminal := out == io.Writer(os.Stdout) && isTTY(os.Stdout)

			result, runErr := runWithProgress(cmd.Context(), engine, out, terminal)
			if runErr != nil && result.Best == nil {
				return runErr
			}

			if err := writeRunSummary(out, dataset, s, result); err != nil {
				return err
			}

			if plot != "" {
				if err := report.PlotConvergence(plot, "Convergence", result.History); err != nil {
					return err
				}
				fmt.Fprintf(out, "Convergence plot written to %s\n", plot)
			}

			if flags.json != "" {
				if err := writeRunJSON(flags.json, problem, s, result); err != nil {
					return err
				}
				fmt.Fprintf(out, "Result written to %s\n", flags.json)
			}

			// Interrupted runs still print their best selection
			return runErr
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&plot, "plot", "", "write a convergence plot (PNG) to this file")

	return cmd
}

// writeRunSummary prints the selection and convergence statistics
func writeRunSummary(w io.Writer, dataset *farm.Dataset, s config.Settings, result ga.Result) error {
	summary, err := farm.Summarize(dataset, result.Best, s.Limits)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	if err := report.WriteSelection(w, summary); err != nil {
		return err
	}

	fmt.Fprintln(w)

	return report.WriteConvergence(w, report.Summarize(result.History))
}

func writeRunJSON(path string, problem ga.Problem, s config.Settings, result ga.Result) error {
	b := ga.Evaluate(result.Best, &problem)

	doc := runReport{
		Fitness:      result.BestFitness,
		Selected:     result.Best.Selected(),
		Vector:       result.Best.String(),
		Revenue:      b.Revenue,
		Cost:         b.Cost,
		Water:        b.Water,
		Fertilizer:   b.Fertilizer,
		Risk:         b.Risk,
		Penalty:      b.Penalty,
		Generations:  result.Generations,
		Stop:         result.Stop,
		Restarts:     result.Restarts,
		MutationRate: result.FinalMutationRate,
		TimeSeconds:  result.Elapsed.Seconds(),
		Convergence:  report.Summarize(result.History),
		Config:       s.GA,
		Limits:       s.Limits,
	}

	return writeJSONFile(path, doc)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	return nil
}

func newGridCommand(opts *rootOptions) *cobra.Command {
	var (
		flags    commonRunFlags
		parallel bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Compare all 18 strategy combinations",
		Long: `Run the genetic algorithm once for every combination of selection,
crossover and mutation method and print a table of the results.

Sequential search shares one random source across runs. Parallel search
derives one source per combination from the seed, so it is reproducible
but gives different numbers than the sequential search.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, dataset, err := flags.resolve(cmd, opts)
			if err != nil {
				return err
			}

			problem, err := dataset.Problem(s.Limits)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			base := s.GA.ToGA()

			var grid ga.GridResult
			if parallel {
				seed := uint64(time.Now().UnixNano())
				if s.Seed != nil {
					seed = *s.Seed
				}

				debugf("[CLI] Parallel grid search with seed %d, %d workers", seed, workers)
				fmt.Fprintf(out, "Running 18 combinations in parallel (seed %d)...\n", seed)
				grid, err = ga.GridSearchParallel(cmd.Context(), problem, base, seed, workers, ga.WithGridLogger(debugf))
			} else {
				fmt.Fprintln(out, "Running 18 combinations...")
				grid, err = ga.GridSearch(cmd.Context(), problem, base, runRand(s), ga.WithGridLogger(debugf))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			if err := report.WriteGridTable(out, grid); err != nil {
				return err
			}

			if flags.json != "" {
				rows := make([]experiment.GridRow, 0, len(grid.Entries))
				for _, entry := range grid.Entries {
					rows = append(rows, experiment.GridRow{
						Combination: entry.Combination,
						BestFitness: entry.Result.BestFitness,
						TimeSeconds: entry.Result.Elapsed.Seconds(),
						Generations: entry.Result.Generations,
					})
				}

				if err := writeJSONFile(flags.json, rows); err != nil {
					return err
				}
				fmt.Fprintf(out, "Grid written to %s\n", flags.json)
			}

			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVar(&parallel, "parallel", false, "run combinations concurrently")
	cmd.Flags().IntVar(&workers, "grid-workers", 0, "concurrent combinations with --parallel (default unlimited)")

	return cmd
}
