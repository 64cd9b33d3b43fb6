// ABOUTME: Progress updates emitted by the engine while a run is in flight
// ABOUTME: Handles generation speed calculation and non-blocking channel sends

package ga

import (
	"time"
)

// updateIntervalGens forces an update every N generations even without improvement
const updateIntervalGens = 10

// Update describes the state of a run after one generation
type Update struct {
	Generation     int
	BestFitness    float64    // Best-ever fitness so far
	GenerationBest float64    // Best fitness within this generation
	MeanFitness    float64    // Mean fitness of this generation
	MutationRate   float64    // Current (possibly adapted) mutation rate
	Restarts       int        // Partial restarts so far
	Best           Chromosome // Copy of the best-ever chromosome
	GenPerSec      float64
	Elapsed        time.Duration
}

// progressTracker tracks progress update state
type progressTracker struct {
	updateChan   chan<- Update
	start        time.Time
	lastGenTime  time.Time
	lastGenCount int
}

func newProgressTracker(updateChan chan<- Update, start time.Time) *progressTracker {
	return &progressTracker{
		updateChan:  updateChan,
		start:       start,
		lastGenTime: start,
	}
}

// send delivers an update when forced or on the regular interval
func (pt *progressTracker) send(update Update, best Chromosome, force bool) {
	// Guard: skip if not time to update or no channel
	if pt.updateChan == nil || (!force && update.Generation%updateIntervalGens != 0) {
		return
	}

	now := time.Now()
	elapsed := now.Sub(pt.lastGenTime).Seconds()
	if elapsed > 0 {
		update.GenPerSec = float64(update.Generation+1-pt.lastGenCount) / elapsed
	}
	update.Elapsed = now.Sub(pt.start)
	update.Best = best.Clone()

	select {
	case pt.updateChan <- update:
	default:
		// Don't block if channel is full
	}

	pt.lastGenTime = now
	pt.lastGenCount = update.Generation + 1
}
