// ABOUTME: Text reports for grid searches, selections and convergence statistics
// ABOUTME: Aligns columns with tabwriter and groups digits with x/text/message

package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"farmplan/farm"
	"farmplan/ga"
)

// printer groups thousands in reported numbers
var printer = message.NewPrinter(language.English)

// errWriter stops writing after the first error
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = printer.Fprintf(ew.w, format, args...)
}

// WriteGridTable writes one row per combination, marking the winner
func WriteGridTable(w io.Writer, grid ga.GridResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}

	ew.printf("#\tSelection\tCrossover\tMutation\tBest fitness\tGens\tStop\tRestarts\tTime\t\n")
	ew.printf("---\t---------\t---------\t--------\t------------\t----\t----\t--------\t----\t\n")

	for i, entry := range grid.Entries {
		marker := ""
		if i == grid.BestIndex {
			marker = "*"
		}

		ew.printf("%d\t%s\t%s\t%s\t%.4f\t%d\t%s\t%d\t%.3fs\t%s\n",
			i+1,
			entry.Selection,
			entry.Crossover,
			entry.Mutation,
			entry.Result.BestFitness,
			entry.Result.Generations,
			entry.Result.Stop,
			entry.Result.Restarts,
			entry.Result.Elapsed.Seconds(),
			marker,
		)
	}

	if ew.err != nil {
		return fmt.Errorf("failed to write grid table: %w", ew.err)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush grid table: %w", err)
	}

	if len(grid.Entries) > 0 {
		best := grid.Best()
		ew = &errWriter{w: w}
		ew.printf("\nBest combination: %s (fitness %.4f), total time %.3fs\n",
			best.Combination, best.Result.BestFitness, grid.Elapsed.Seconds())
	}

	return ew.err
}

// WriteSelection writes totals against limits, per-attribute statistics and rankings
func WriteSelection(w io.Writer, s *farm.Summary) error {
	ew := &errWriter{w: w}
	b := s.Breakdown

	ew.printf("Selected plots: %d\n", len(s.Selected))
	if len(s.Selected) == 0 {
		return ew.err
	}

	ew.printf("Plot ids: %s\n", joinInts(s.IDs()))
	ew.printf("Total productivity: %.2f t\n", s.Yield)
	ew.printf("Revenue: %.2f\n", b.Revenue)
	ew.printf("Total risk: %.2f (index 0-10 per plot)\n", b.Risk)
	ew.printf("Soil types: %s\n", strings.Join(s.Soils, ", "))
	ew.printf("Crops: %s\n", strings.Join(s.Crops, ", "))
	ew.printf("Penalty for exceeding limits: %.2f\n", b.Penalty)
	ew.printf("Fitness: %.4f\n", b.Total)

	ew.printf("\nResources used vs limits:\n")
	ew.printf("  Cost:       %.2f / %.2f\n", b.Cost, s.Limits.Budget)
	ew.printf("  Water:      %.2f / %.2f m³\n", b.Water, s.Limits.Water)
	ew.printf("  Fertilizer: %.2f / %.2f kg\n", b.Fertilizer, s.Limits.Fertilizer)

	if ew.err != nil {
		return ew.err
	}

	ew.printf("\nAttribute statistics:\n")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	tew := &errWriter{w: tw}
	tew.printf("attr\tcount\tmean\tstd\tmin\tmax\t\n")
	for _, a := range Describe(s) {
		tew.printf("%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n", a.Name, a.Count, a.Mean, a.StdDev, a.Min, a.Max)
	}

	if tew.err == nil {
		tew.err = tw.Flush()
	}

	if tew.err != nil {
		return fmt.Errorf("failed to write attribute table: %w", tew.err)
	}

	if err := writeRanking(w, "Top plots by productivity", s.TopProductivity); err != nil {
		return err
	}

	return writeRanking(w, "Top plots by lowest risk", s.LowestRisk)
}

func writeRanking(w io.Writer, title string, plots []farm.Plot) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s:\n", title)
	if ew.err != nil {
		return ew.err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	tew := &errWriter{w: tw}
	tew.printf("id\tprod\tcost\trisk\tsoil\tcrop\n")
	for _, p := range plots {
		tew.printf("%d\t%.2f\t%.2f\t%.2f\t%s\t%s\n", p.ID, p.Productivity, p.Cost, p.Risk, p.Soil, p.Crop)
	}

	if tew.err != nil {
		return fmt.Errorf("failed to write ranking: %w", tew.err)
	}

	return tw.Flush()
}

// WriteConvergence writes the statistics of one run's history
func WriteConvergence(w io.Writer, c Convergence) error {
	ew := &errWriter{w: w}

	if c.Generations == 0 {
		ew.printf("No generations executed\n")
		return ew.err
	}

	ew.printf("Generations: %d\n", c.Generations)
	ew.printf("Best fitness: final %.4f, peak %.4f at gen %d\n", c.FinalBest, c.PeakBest, c.PeakGen)
	ew.printf("Generation best: mean %.4f, std %.4f, median %.4f\n", c.MeanBest, c.StdDevBest, c.MedianBest)
	ew.printf("Final population mean: %.4f (gap %.4f)\n", c.FinalMean, c.GapFinalMean)
	ew.printf("Best moved up in %d generations, down in %d\n", c.Improvements, c.Deteriorating)

	return ew.err
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}

	return strings.Join(parts, ", ")
}
