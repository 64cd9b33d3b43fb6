// ABOUTME: Genetic algorithm engine orchestrating one optimization run
// ABOUTME: Elitism, adaptive mutation, stagnation restarts, early stopping and progress updates

package ga

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat"

	"farmplan/pool"
)

const (
	maxAdaptiveMutationRate = 0.5 // Ceiling for stagnation-driven rate increases
	adaptiveMutationFactor  = 1.5 // Rate multiplier applied on stagnation
	logIntervalGens         = 10  // Debug log cadence

	// History capacity hint; longer runs grow by append
	maxHistoryPrealloc = 4096
)

// StopReason records how a run ended
type StopReason int

// Terminal states of a run
const (
	Exhausted    StopReason = iota // All generations executed
	EarlyStopped                   // Best fitness flat for EarlyStopPatience generations
	Cancelled                      // Caller's context was cancelled
)

func (s StopReason) String() string {
	switch s {
	case Exhausted:
		return "exhausted"
	case EarlyStopped:
		return "early_stopped"
	case Cancelled:
		return "cancelled"
	}

	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (s StopReason) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// History holds per-generation convergence diagnostics, one entry per executed generation
type History struct {
	Best []float64 `json:"best_fitness"`
	Mean []float64 `json:"mean_fitness"`
}

// Len returns the number of recorded generations
func (h History) Len() int {
	return len(h.Best)
}

// Result is the outcome of one run
type Result struct {
	Best              Chromosome    // Best chromosome found across the whole run
	BestFitness       float64       // Fitness of Best
	Elapsed           time.Duration // Wall-clock time of the run
	History           History       // Per-generation best and mean fitness
	Generations       int           // Generations executed
	Stop              StopReason    // How the run ended
	Restarts          int           // Partial restarts triggered by stagnation
	FinalMutationRate float64       // Mutation rate after adaptive increases
}

// Engine runs the genetic algorithm for one problem and configuration
type Engine struct {
	problem Problem
	cfg     Config
	rng     *rand.Rand

	// Resolved once per run from the configured strategy kinds
	selector  Selector
	crossover Crossover
	mutator   Mutator

	updates chan<- Update
	logf    func(format string, args ...any)
}

// NewEngine validates inputs and resolves the configured operators
// A nil rng gets a freshly seeded source.
func NewEngine(problem Problem, cfg Config, rng *rand.Rand) (*Engine, error) {
	if err := problem.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if rng == nil {
		rng = newRandomRand()
	}

	return &Engine{
		problem:   problem,
		cfg:       cfg,
		rng:       rng,
		selector:  cfg.Selection.selector(cfg.TournamentK),
		crossover: cfg.Crossover.crossover(),
		mutator:   cfg.Mutation.mutator(),
		logf:      func(string, ...any) {},
	}, nil
}

// SetUpdates registers a channel for progress updates
// Sends never block; updates are dropped when the channel is full.
func (e *Engine) SetUpdates(updates chan<- Update) {
	e.updates = updates
}

// SetLogger registers a debug logger
func (e *Engine) SetLogger(logf func(format string, args ...any)) {
	if logf != nil {
		e.logf = logf
	}
}

// Run executes one optimization run
//
// The algorithm works as follows:
//  1. Initialize a random population and evaluate it
//  2. For each generation:
//     a. Copy the top Elitism individuals into the next generation
//     b. Fill the rest with select, crossover and mutate
//     c. Evaluate the new generation and update the best-ever individual
//     d. Raise the mutation rate while stagnating, restart half the population at patience
//     e. Stop early when generation best fitness stays flat
//  3. Return the best individual found across all generations
//
// A cancelled context ends the run after the current generation; the result so
// far is returned together with ctx.Err().
func (e *Engine) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	n := e.problem.Len()
	popSize := e.cfg.PopulationSize
	rate := e.cfg.MutationRate

	var workers *pool.WorkerPool
	if e.cfg.Workers > 1 {
		workers = pool.NewWorkerPool(e.cfg.Workers, popSize)
		defer workers.Close()
	}

	pop := make([]Chromosome, popSize)
	for i := range pop {
		pop[i] = e.randomChromosome(n)
	}

	fitness := make([]float64, popSize)
	e.evaluate(pop, fitness, workers)

	bestIdx := argmax(fitness)
	best := pop[bestIdx].Clone()
	bestFitness := fitness[bestIdx]

	historyCap := min(e.cfg.Generations, maxHistoryPrealloc)
	history := History{
		Best: make([]float64, 0, historyCap),
		Mean: make([]float64, 0, historyCap),
	}

	tracker := newProgressTracker(e.updates, start)
	stop := Exhausted
	noImprove := 0
	flatGens := 0
	restarts := 0
	prevGenBest := bestFitness
	restartInterval := e.cfg.StagnationPatience/3 + 1

	var runErr error

	for gen := range e.cfg.Generations {
		if err := ctx.Err(); err != nil {
			stop = Cancelled
			runErr = err

			break
		}

		pop = e.nextGeneration(pop, fitness, rate)
		e.evaluate(pop, fitness, workers)

		genBestIdx := argmax(fitness)
		genBest := fitness[genBestIdx]
		history.Best = append(history.Best, genBest)
		history.Mean = append(history.Mean, stat.Mean(fitness, nil))

		// Strict improvement only: ties keep the first-found optimum
		improved := genBest > bestFitness
		if improved {
			bestFitness = genBest
			best = pop[genBestIdx].Clone()
			noImprove = 0
		} else {
			noImprove++
		}

		// Flatness is measured against the previous generation, not the incumbent
		if math.Abs(genBest-prevGenBest) < e.cfg.EarlyStopDelta {
			flatGens++
		} else {
			flatGens = 0
		}
		prevGenBest = genBest

		if noImprove > 0 && noImprove%restartInterval == 0 {
			rate = min(maxAdaptiveMutationRate, rate*adaptiveMutationFactor)
		}

		// Partial restart replaces array slots [0, pop/2), not the worst performers
		if noImprove >= e.cfg.StagnationPatience {
			half := popSize / 2
			for i := range half {
				pop[i] = e.randomChromosome(n)
			}
			e.evaluate(pop[:half], fitness[:half], workers)

			noImprove = 0
			restarts++
			e.logf("[GA] Gen %d: stagnation restart #%d (mutation rate %.4f)", gen, restarts, rate)
		}

		if gen%logIntervalGens == 0 || gen == e.cfg.Generations-1 {
			e.logf("[GA] Gen %3d: best=%.2f mean=%.2f incumbent=%.2f", gen, genBest, history.Mean[gen], bestFitness)
		}

		last := gen == e.cfg.Generations-1
		earlyStop := e.cfg.EarlyStop && flatGens >= e.cfg.EarlyStopPatience

		tracker.send(Update{
			Generation:     gen,
			BestFitness:    bestFitness,
			GenerationBest: genBest,
			MeanFitness:    history.Mean[gen],
			MutationRate:   rate,
			Restarts:       restarts,
		}, best, improved || last || earlyStop)

		if earlyStop {
			stop = EarlyStopped
			e.logf("[GA] Early stop at gen %d, best fitness %.2f", gen, bestFitness)

			break
		}
	}

	return Result{
		Best:              best,
		BestFitness:       bestFitness,
		Elapsed:           time.Since(start),
		History:           history,
		Generations:       history.Len(),
		Stop:              stop,
		Restarts:          restarts,
		FinalMutationRate: rate,
	}, runErr
}

// Run is a convenience wrapper building an Engine and running it once
func Run(ctx context.Context, problem Problem, cfg Config, rng *rand.Rand) (Result, error) {
	engine, err := NewEngine(problem, cfg, rng)
	if err != nil {
		return Result{}, err
	}

	return engine.Run(ctx)
}

// nextGeneration builds a fully materialized next population from pop
// pop is only read, so every pair selects from the same snapshot.
func (e *Engine) nextGeneration(pop []Chromosome, fitness []float64, rate float64) []Chromosome {
	popSize := len(pop)
	next := make([]Chromosome, 0, popSize)

	if e.cfg.Elitism > 0 {
		order := rankOrder(fitness)
		for _, idx := range order[:min(e.cfg.Elitism, popSize)] {
			next = append(next, pop[idx].Clone())
		}
	}

	for len(next) < popSize {
		p1 := e.selector(pop, fitness, e.rng)
		p2 := e.selector(pop, fitness, e.rng)

		c1, c2 := e.crossover(p1, p2, e.rng)
		e.mutator(c1, rate, e.rng)
		e.mutator(c2, rate, e.rng)

		if e.cfg.Repair {
			Repair(c1, &e.problem, e.rng)
			Repair(c2, &e.problem, e.rng)
		}

		next = append(next, c1)
		if len(next) < popSize {
			next = append(next, c2)
		}
	}

	return next
}

// evaluate fills fitness[i] for every pop[i], in parallel when a pool is given
func (e *Engine) evaluate(pop []Chromosome, fitness []float64, workers *pool.WorkerPool) {
	if workers == nil {
		for i := range pop {
			fitness[i] = Fitness(pop[i], &e.problem)
		}

		return
	}

	workers.ForEach(len(pop), func(i int) {
		fitness[i] = Fitness(pop[i], &e.problem)
	})
}

// randomChromosome draws each bit from a fair coin
func (e *Engine) randomChromosome(n int) Chromosome {
	c := make(Chromosome, n)
	for i := range c {
		c[i] = uint8(e.rng.Uint32() & 1)
	}

	return c
}

// argmax returns the index of the first maximum
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}

	return best
}
