// ABOUTME: Tests for the GA engine run loop
// ABOUTME: Covers determinism, elitism, early stopping, cancellation and known optima

package ga

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 30
	cfg.Generations = 60
	cfg.Elitism = 1

	return cfg
}

func TestRunFindsSmallOptimum(t *testing.T) {
	p := smallProblem()
	optimum := bruteForceBest(&p)

	cfg := testConfig()
	cfg.EarlyStop = false

	const seeds = 25
	hits := 0

	for seed := range uint64(seeds) {
		result, err := Run(context.Background(), p, cfg, NewRand(seed))
		if err != nil {
			t.Fatalf("Seed %d: Run() error: %v", seed, err)
		}

		if result.BestFitness == optimum {
			hits++
		}
	}

	if rate := float64(hits) / seeds; rate < 0.9 {
		t.Errorf("Found optimum %.0f in %d/%d runs, want >= 90%%", optimum, hits, seeds)
	}
}

func TestRunAllOverBudget(t *testing.T) {
	p := Problem{
		Productivity: []float64{4, 6, 3, 5},
		Cost:         []float64{50, 60, 70, 80},
		Water:        []float64{0, 0, 0, 0},
		Fertilizer:   []float64{0, 0, 0, 0},
		Price:        []float64{1, 1, 1, 1},
		Risk:         []float64{0, 0, 0, 0},
		Budget:       20,
	}

	cfg := testConfig()
	cfg.EarlyStop = false

	result, err := Run(context.Background(), p, cfg, NewRand(42))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.BestFitness != 0 {
		t.Errorf("BestFitness = %v, want 0", result.BestFitness)
	}

	if result.Best.Count() != 0 {
		t.Errorf("Best = %s, want empty selection", result.Best)
	}
}

func TestRunDeterministic(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.Selection = Roulette
	cfg.Crossover = Uniform
	cfg.Mutation = Swap
	cfg.MutationRate = 0.2

	a, err := Run(context.Background(), p, cfg, NewRand(99))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	b, err := Run(context.Background(), p, cfg, NewRand(99))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if a.BestFitness != b.BestFitness || a.Best.String() != b.Best.String() {
		t.Errorf("Same seed gave %v/%s and %v/%s", a.BestFitness, a.Best, b.BestFitness, b.Best)
	}

	if !slices.Equal(a.History.Best, b.History.Best) || !slices.Equal(a.History.Mean, b.History.Mean) {
		t.Error("Same seed gave different histories")
	}
}

func TestRunParallelEvaluationMatchesSequential(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()

	seq, err := Run(context.Background(), p, cfg, NewRand(5))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	cfg.Workers = 4
	par, err := Run(context.Background(), p, cfg, NewRand(5))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !slices.Equal(seq.History.Best, par.History.Best) {
		t.Error("Parallel evaluation changed the run")
	}
}

func TestRunIncumbentIsBestEver(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.Elitism = 0
	cfg.MutationRate = 0.3

	result, err := Run(context.Background(), p, cfg, NewRand(17))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got := Fitness(result.Best, &p); got != result.BestFitness {
		t.Errorf("Fitness(Best) = %v, BestFitness = %v", got, result.BestFitness)
	}

	for gen, f := range result.History.Best {
		if f > result.BestFitness {
			t.Fatalf("Gen %d best %v exceeds incumbent %v", gen, f, result.BestFitness)
		}
	}
}

func TestRunElitismNeverRegresses(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.EarlyStop = false
	cfg.MutationRate = 0.4
	cfg.StagnationPatience = cfg.Generations + 1 // restarts would overwrite the elite slot

	for _, sel := range SelectionMethods {
		t.Run(sel.String(), func(t *testing.T) {
			cfg.Selection = sel

			result, err := Run(context.Background(), p, cfg, NewRand(3))
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}

			for gen := 1; gen < result.History.Len(); gen++ {
				if result.History.Best[gen] < result.History.Best[gen-1] {
					t.Fatalf("Gen %d best %v dropped below gen %d best %v",
						gen, result.History.Best[gen], gen-1, result.History.Best[gen-1])
				}
			}
		})
	}
}

func TestRunLongerCapNeverWorse(t *testing.T) {
	p := smallProblem()
	p.Productivity = []float64{12, 25, 31, 7, 18}

	cfg := testConfig()
	cfg.Elitism = 0
	cfg.EarlyStop = false

	for seed := range uint64(10) {
		cfg.Generations = 50
		short, err := Run(context.Background(), p, cfg, NewRand(seed))
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}

		cfg.Generations = 100
		long, err := Run(context.Background(), p, cfg, NewRand(seed))
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}

		if long.BestFitness < short.BestFitness {
			t.Errorf("Seed %d: 100 generations gave %v, 50 gave %v", seed, long.BestFitness, short.BestFitness)
		}

		if !slices.Equal(long.History.Best[:50], short.History.Best) {
			t.Errorf("Seed %d: longer run diverged within the shared prefix", seed)
		}
	}
}

func TestRunZeroGenerations(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.Generations = 0

	result, err := Run(context.Background(), p, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.History.Len() != 0 || result.Generations != 0 {
		t.Errorf("History length %d, generations %d, want 0", result.History.Len(), result.Generations)
	}

	if result.Stop != Exhausted {
		t.Errorf("Stop = %v, want exhausted", result.Stop)
	}

	if len(result.Best) != p.Len() {
		t.Errorf("Best has %d genes, want %d", len(result.Best), p.Len())
	}

	if got := Fitness(result.Best, &p); got != result.BestFitness {
		t.Errorf("Best of initial population scored %v, reported %v", got, result.BestFitness)
	}
}

func TestRunElitismCoversPopulation(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.Elitism = cfg.PopulationSize + 3
	cfg.EarlyStop = false
	cfg.StagnationPatience = cfg.Generations + 1

	result, err := Run(context.Background(), p, cfg, NewRand(8))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Every slot is an elite, so the population never changes
	for gen := 1; gen < result.History.Len(); gen++ {
		if result.History.Best[gen] != result.History.Best[0] || result.History.Mean[gen] != result.History.Mean[0] {
			t.Fatalf("Gen %d changed the population: best %v mean %v", gen, result.History.Best[gen], result.History.Mean[gen])
		}
	}
}

func TestRunEarlyStop(t *testing.T) {
	// All-zero attributes make every chromosome score 0, so the best never moves
	n := 6
	p := Problem{
		Productivity: make([]float64, n),
		Cost:         make([]float64, n),
		Water:        make([]float64, n),
		Fertilizer:   make([]float64, n),
		Price:        make([]float64, n),
		Risk:         make([]float64, n),
	}

	cfg := testConfig()
	cfg.Generations = 100
	cfg.EarlyStopPatience = 5

	result, err := Run(context.Background(), p, cfg, NewRand(2))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Stop != EarlyStopped {
		t.Errorf("Stop = %v, want early_stopped", result.Stop)
	}

	if result.Generations != cfg.EarlyStopPatience {
		t.Errorf("Generations = %d, want %d", result.Generations, cfg.EarlyStopPatience)
	}
}

func TestRunHugeGenerationCapEarlyStops(t *testing.T) {
	n := 6
	p := Problem{
		Productivity: make([]float64, n),
		Cost:         make([]float64, n),
		Water:        make([]float64, n),
		Fertilizer:   make([]float64, n),
		Price:        make([]float64, n),
		Risk:         make([]float64, n),
	}

	// A cap far beyond what fits in memory must not be allocated up front
	cfg := testConfig()
	cfg.Generations = 1 << 40
	cfg.EarlyStopPatience = 5

	result, err := Run(context.Background(), p, cfg, NewRand(1))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Stop != EarlyStopped {
		t.Errorf("Stop = %v, want early_stopped", result.Stop)
	}

	if result.History.Len() != result.Generations {
		t.Errorf("History has %d entries for %d generations", result.History.Len(), result.Generations)
	}
}

func TestRunStagnationRestarts(t *testing.T) {
	n := 4
	p := Problem{
		Productivity: make([]float64, n),
		Cost:         make([]float64, n),
		Water:        make([]float64, n),
		Fertilizer:   make([]float64, n),
		Price:        make([]float64, n),
		Risk:         make([]float64, n),
	}

	cfg := testConfig()
	cfg.Generations = 40
	cfg.EarlyStop = false
	cfg.StagnationPatience = 9
	cfg.MutationRate = 0.1

	result, err := Run(context.Background(), p, cfg, NewRand(4))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Flat fitness never improves: restarts at generations 8, 17, 26 and 35
	if result.Restarts != 4 {
		t.Errorf("Restarts = %d, want 4", result.Restarts)
	}

	if result.FinalMutationRate <= cfg.MutationRate {
		t.Errorf("FinalMutationRate = %v, want above %v", result.FinalMutationRate, cfg.MutationRate)
	}

	if result.FinalMutationRate > maxAdaptiveMutationRate {
		t.Errorf("FinalMutationRate = %v exceeds cap %v", result.FinalMutationRate, maxAdaptiveMutationRate)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := smallProblem()
	result, err := Run(ctx, p, testConfig(), NewRand(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	if result.Stop != Cancelled {
		t.Errorf("Stop = %v, want cancelled", result.Stop)
	}

	if len(result.Best) != p.Len() {
		t.Errorf("Cancelled run returned %d genes, want %d", len(result.Best), p.Len())
	}
}

func TestRunRejectsInvalidInput(t *testing.T) {
	p := smallProblem()
	p.Cost = p.Cost[:2]

	if _, err := Run(context.Background(), p, testConfig(), NewRand(1)); !errors.Is(err, ErrInput) {
		t.Errorf("Run() with mismatched arrays = %v, want ErrInput", err)
	}

	cfg := testConfig()
	cfg.PopulationSize = 0
	if _, err := Run(context.Background(), smallProblem(), cfg, NewRand(1)); !errors.Is(err, ErrConfig) {
		t.Errorf("Run() with empty population = %v, want ErrConfig", err)
	}
}

func TestRunWithRepairStaysFeasible(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.Repair = true
	cfg.MutationRate = 0.3

	result, err := Run(context.Background(), p, cfg, NewRand(12))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if want := bruteForceBest(&p); result.BestFitness != want {
		t.Errorf("BestFitness = %v, want %v", result.BestFitness, want)
	}

	if b := Evaluate(result.Best, &p); !b.Feasible(&p) {
		t.Errorf("Best %s is infeasible (cost %v)", result.Best, b.Cost)
	}
}

func TestEngineUpdates(t *testing.T) {
	p := smallProblem()
	cfg := testConfig()
	cfg.EarlyStop = false

	engine, err := NewEngine(p, cfg, NewRand(21))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	updates := make(chan Update, cfg.Generations+1)
	engine.SetUpdates(updates)

	var logged int
	engine.SetLogger(func(string, ...any) { logged++ })

	result, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	close(updates)

	var last Update
	count := 0
	for u := range updates {
		last = u
		count++
	}

	if count == 0 {
		t.Fatal("Expected at least one update")
	}

	if last.Generation != cfg.Generations-1 {
		t.Errorf("Last update generation = %d, want %d", last.Generation, cfg.Generations-1)
	}

	if last.BestFitness != result.BestFitness || last.Best.String() != result.Best.String() {
		t.Errorf("Last update best %v/%s, result %v/%s", last.BestFitness, last.Best, result.BestFitness, result.Best)
	}

	if logged == 0 {
		t.Error("Expected debug log lines")
	}
}
