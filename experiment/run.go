// ABOUTME: Executes experiments sequentially, generating missing datasets on the way
// ABOUTME: Produces one identified outcome per experiment, optionally from a full grid search

package experiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"farmplan/farm"
	"farmplan/ga"
)

// GridRow is one combination of a grid-search experiment
type GridRow struct {
	Combination ga.Combination `json:"combination"`
	BestFitness float64        `json:"best_fitness"`
	TimeSeconds float64        `json:"time_seconds"`
	Generations int            `json:"generations"`
}

// Outcome is the serialized result of one experiment
type Outcome struct {
	ID          uuid.UUID          `json:"id"`
	Index       int                `json:"index"` // 1-based position in the batch
	Config      Experiment         `json:"config"`
	BestFitness float64            `json:"best_fitness"`
	TimeSeconds float64            `json:"time_seconds"`
	Selection   ga.SelectionMethod `json:"selection_method"`
	Crossover   ga.CrossoverMethod `json:"crossover_method"`
	Mutation    ga.MutationMethod  `json:"mutation_method"`
	BestVector  []int              `json:"best_vector"`
	Generations int                `json:"generations"`
	Stop        ga.StopReason      `json:"stop_reason"`
	Restarts    int                `json:"restarts"`
	History     ga.History         `json:"history"`
	Grid        []GridRow          `json:"grid,omitempty"`
	Finished    time.Time          `json:"finished"`

	Dataset *farm.Dataset `json:"-"`
	Best    ga.Chromosome `json:"-"`
}

// Runner executes batches of experiments
type Runner struct {
	Out  io.Writer                        // Progress lines, nil for silence
	Logf func(format string, args ...any) // Debug log sink for the engine
}

// Run executes every experiment in order
// A cancelled context stops the batch; outcomes completed so far are returned.
func (r *Runner) Run(ctx context.Context, exps []Experiment) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(exps))

	for i, exp := range exps {
		r.printf("\n--- Running experiment %d/%d ---\n", i+1, len(exps))

		outcome, err := r.runOne(ctx, i+1, exp)
		if err != nil {
			return outcomes, fmt.Errorf("experiment %d: %w", i+1, err)
		}

		r.printf("Best fitness %.4f in %.3fs (%s/%s/%s)\n",
			outcome.BestFitness, outcome.TimeSeconds, outcome.Selection, outcome.Crossover, outcome.Mutation)

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, index int, exp Experiment) (Outcome, error) {
	if ignored := exp.IgnoredKeys(); len(ignored) > 0 {
		r.logf("[EXPERIMENT] %d: ignoring unknown keys %v", index, ignored)
	}

	dataset, generated, err := farm.LoadOrGenerate(exp.DataPath, exp.N, exp.DatasetSeed())
	if err != nil {
		return Outcome{}, err
	}

	if generated {
		r.printf("Generated %d plots to %s\n", dataset.Len(), exp.DataPath)
	}

	problem, err := dataset.Problem(exp.Limits())
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		ID:      uuid.New(),
		Index:   index,
		Config:  exp,
		Dataset: dataset,
	}

	var result ga.Result

	if exp.Grid {
		grid, err := r.grid(ctx, problem, exp)
		if err != nil {
			return Outcome{}, err
		}

		best := grid.Best()
		result = best.Result
		outcome.Selection, outcome.Crossover, outcome.Mutation = best.Selection, best.Crossover, best.Mutation
		outcome.TimeSeconds = grid.Elapsed.Seconds()

		for _, entry := range grid.Entries {
			outcome.Grid = append(outcome.Grid, GridRow{
				Combination: entry.Combination,
				BestFitness: entry.Result.BestFitness,
				TimeSeconds: entry.Result.Elapsed.Seconds(),
				Generations: entry.Result.Generations,
			})
		}
	} else {
		engine, err := ga.NewEngine(problem, exp.Config(), exp.Rand())
		if err != nil {
			return Outcome{}, err
		}

		if r.Logf != nil {
			engine.SetLogger(r.Logf)
		}

		result, err = engine.Run(ctx)
		if err != nil {
			return Outcome{}, err
		}

		outcome.Selection, outcome.Crossover, outcome.Mutation = exp.Selection, exp.Crossover, exp.Mutation
		outcome.TimeSeconds = result.Elapsed.Seconds()
	}

	outcome.BestFitness = result.BestFitness
	outcome.Best = result.Best
	outcome.BestVector = bits(result.Best)
	outcome.Generations = result.Generations
	outcome.Stop = result.Stop
	outcome.Restarts = result.Restarts
	outcome.History = result.History
	outcome.Finished = time.Now()

	return outcome, nil
}

func (r *Runner) grid(ctx context.Context, problem ga.Problem, exp Experiment) (ga.GridResult, error) {
	if exp.Parallel {
		seed := exp.DatasetSeed()
		if exp.Seed == nil {
			seed = uint64(time.Now().UnixNano())
		}

		return ga.GridSearchParallel(ctx, problem, exp.Config(), seed, 0, ga.WithGridLogger(r.Logf))
	}

	return ga.GridSearch(ctx, problem, exp.Config(), exp.Rand(), ga.WithGridLogger(r.Logf))
}

func (r *Runner) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out != nil {
		_, _ = fmt.Fprintf(r.Out, format, args...)
	}
}

func bits(c ga.Chromosome) []int {
	out := make([]int, len(c))
	for i, b := range c {
		out[i] = int(b)
	}

	return out
}
