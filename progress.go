// ABOUTME: Live progress display for GA runs on the command line
// ABOUTME: Prints improvement lines and an elapsed-time spinner while the engine runs

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"farmplan/ga"
)

const (
	spinnerUpdateInterval     = 500 * time.Millisecond
	fitnessImprovementEpsilon = 1e-10
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progressPrinter renders engine updates as they arrive
type progressPrinter struct {
	out      io.Writer
	terminal bool // Spinner and line clearing only make sense on a TTY
	start    time.Time

	previousBest float64
	precision    int // Grows monotonically, never shrinks (max 10)
	generation   int
	spinnerIdx   int
	improvements int
}

func newProgressPrinter(out io.Writer, terminal bool) *progressPrinter {
	return &progressPrinter{
		out:          out,
		terminal:     terminal,
		start:        time.Now(),
		previousBest: math.Inf(-1),
		precision:    minFitnessPrecision,
	}
}

// update prints a line when the best fitness improved
func (p *progressPrinter) update(u ga.Update) {
	p.generation = u.Generation

	if !hasFitnessImproved(u.BestFitness, p.previousBest, fitnessImprovementEpsilon) {
		return
	}

	p.clearLine()

	var fitnessStr string
	fitnessStr, p.precision = FormatWithMonotonicPrecision(p.previousBest, u.BestFitness, p.precision)
	fmt.Fprintf(p.out, "%s Gen %7d - fitness: %s (%d plots, mean %.2f)\n",
		formatElapsed(time.Since(p.start)), u.Generation, fitnessStr, u.Best.Count(), u.MeanFitness)

	p.previousBest = u.BestFitness
	p.improvements++
}

// tick redraws the status line (TTY only)
func (p *progressPrinter) tick() {
	if !p.terminal {
		return
	}

	fmt.Fprintf(p.out, "\r%s Gen %d %s     ", formatElapsed(time.Since(p.start)), p.generation, spinnerFrames[p.spinnerIdx])
	p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
}

// clearLine erases the status line before printing (TTY only)
func (p *progressPrinter) clearLine() {
	if p.terminal {
		fmt.Fprint(p.out, "\r\033[K")
	}
}

// formatElapsed right-pads elapsed time to 6 chars (max "59m59s")
func formatElapsed(d time.Duration) string {
	var s string
	if d >= time.Minute {
		s = fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		s = fmt.Sprintf("%ds", int(d.Seconds()))
	}

	return fmt.Sprintf("%6s", s)
}

// runWithProgress runs engine and prints progress until it completes
func runWithProgress(ctx context.Context, engine *ga.Engine, out io.Writer, terminal bool) (ga.Result, error) {
	printer := newProgressPrinter(out, terminal)

	updates := make(chan ga.Update, 10)
	engine.SetUpdates(updates)

	type runResult struct {
		result ga.Result
		err    error
	}

	done := make(chan runResult, 1)

	go func() {
		result, err := engine.Run(ctx)
		done <- runResult{result: result, err: err}
	}()

	// Non-TTY: a nil channel never fires, so no spinner spam in logs or pipes
	var tick <-chan time.Time
	if terminal {
		ticker := time.NewTicker(spinnerUpdateInterval)
		defer ticker.Stop()

		tick = ticker.C
	}

	var finished runResult

loop:
	for {
		select {
		case u := <-updates:
			printer.update(u)

		case <-tick:
			printer.tick()

		case finished = <-done:
			break loop
		}
	}

	// The engine has returned, so whatever is buffered is all there is
	for {
		select {
		case u := <-updates:
			printer.update(u)

			continue
		default:
		}

		break
	}

	printer.clearLine()
	fmt.Fprintf(out, "\nCompleted %d generations in %v (%s)\n",
		finished.result.Generations, finished.result.Elapsed.Round(time.Millisecond), finished.result.Stop)

	return finished.result, finished.err
}
