// ABOUTME: Statistical summaries of convergence histories and selected plot attributes
// ABOUTME: Uses gonum/stat for means, deviations and quantiles

// Package report renders GA results: convergence statistics and plots,
// selection summaries and grid-search tables.
package report

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"farmplan/farm"
	"farmplan/ga"
)

// Convergence summarizes one run's per-generation history
type Convergence struct {
	Generations   int
	FinalBest     float64 // Best fitness of the last generation
	PeakBest      float64 // Highest generation best
	PeakGen       int     // First generation reaching PeakBest
	MeanBest      float64
	StdDevBest    float64
	MedianBest    float64
	FinalMean     float64 // Population mean of the last generation
	MeanImprove   float64 // Average generation-to-generation change of the best
	GapFinalMean  float64 // FinalBest - FinalMean, a diversity proxy
	Improvements  int     // Generations where the best moved up
	Deteriorating int     // Generations where the best moved down
}

// Summarize computes convergence statistics of a history
// An empty history yields a zero Convergence.
func Summarize(h ga.History) Convergence {
	n := h.Len()
	if n == 0 {
		return Convergence{}
	}

	c := Convergence{
		Generations: n,
		FinalBest:   h.Best[n-1],
		PeakBest:    floats.Max(h.Best),
		PeakGen:     floats.MaxIdx(h.Best),
		FinalMean:   h.Mean[n-1],
	}

	c.MeanBest, c.StdDevBest = stat.MeanStdDev(h.Best, nil)
	if n == 1 {
		c.StdDevBest = 0
	}

	sorted := slices.Clone(h.Best)
	slices.Sort(sorted)
	c.MedianBest = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	c.GapFinalMean = c.FinalBest - c.FinalMean

	if n > 1 {
		deltas := make([]float64, n-1)
		floats.SubTo(deltas, h.Best[1:], h.Best[:n-1])
		c.MeanImprove = stat.Mean(deltas, nil)

		for _, d := range deltas {
			switch {
			case d > 0:
				c.Improvements++
			case d < 0:
				c.Deteriorating++
			}
		}
	}

	return c
}

// Attribute describes one numeric column of the selected plots
type Attribute struct {
	Name   string
	Count  int
	Sum    float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// AttributeNames lists the described columns in display order
var AttributeNames = []string{"prod", "cost", "water", "fert", "price", "risk"}

// Describe computes per-attribute statistics of a selection
func Describe(s *farm.Summary) []Attribute {
	attrs := make([]Attribute, 0, len(AttributeNames))

	for _, name := range AttributeNames {
		values, _ := s.Column(name) // names come from AttributeNames
		a := Attribute{Name: name, Count: len(values)}

		if len(values) > 0 {
			a.Sum = floats.Sum(values)
			a.Mean, a.StdDev = stat.MeanStdDev(values, nil)
			a.Min = floats.Min(values)
			a.Max = floats.Max(values)
		}

		if len(values) < 2 {
			a.StdDev = 0
		}

		attrs = append(attrs, a)
	}

	return attrs
}
