// ABOUTME: Tests for convergence statistics, charts and text reports
// ABOUTME: Uses small hand-built histories and selections with known values

package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmplan/farm"
	"farmplan/ga"
)

func TestSummarize(t *testing.T) {
	h := ga.History{
		Best: []float64{1, 3, 2, 5, 5},
		Mean: []float64{0, 1, 1, 2, 4},
	}

	c := Summarize(h)
	assert.Equal(t, 5, c.Generations)
	assert.Equal(t, 5.0, c.FinalBest)
	assert.Equal(t, 5.0, c.PeakBest)
	assert.Equal(t, 3, c.PeakGen)
	assert.InDelta(t, 3.2, c.MeanBest, 1e-12)
	assert.Equal(t, 3.0, c.MedianBest)
	assert.Equal(t, 4.0, c.FinalMean)
	assert.Equal(t, 1.0, c.GapFinalMean)
	assert.InDelta(t, 1.0, c.MeanImprove, 1e-12)
	assert.Equal(t, 2, c.Improvements)
	assert.Equal(t, 1, c.Deteriorating)
	assert.Greater(t, c.StdDevBest, 0.0)
}

func TestSummarizeDegenerate(t *testing.T) {
	assert.Equal(t, Convergence{}, Summarize(ga.History{}))

	c := Summarize(ga.History{Best: []float64{7}, Mean: []float64{3}})
	assert.Equal(t, 1, c.Generations)
	assert.Zero(t, c.StdDevBest)
	assert.Zero(t, c.MeanImprove)
}

func sampleSummary(t *testing.T) *farm.Summary {
	t.Helper()

	d := &farm.Dataset{Plots: []farm.Plot{
		{ID: 0, Productivity: 40, Cost: 10, Water: 5, Fertilizer: 2, Price: 1.5, Risk: 2, Soil: "arenoso", Crop: "soja"},
		{ID: 1, Productivity: 60, Cost: 20, Water: 8, Fertilizer: 3, Price: 1.0, Risk: 6, Soil: "siltoso", Crop: "trigo"},
		{ID: 2, Productivity: 10, Cost: 2, Water: 1, Fertilizer: 1, Price: 1.0, Risk: 1, Soil: "arenoso", Crop: "milho"},
	}}

	s, err := farm.Summarize(d, ga.Chromosome{1, 1, 0}, farm.Limits{Budget: 100, Water: 100, Fertilizer: 100})
	require.NoError(t, err)

	return s
}

func TestDescribe(t *testing.T) {
	attrs := Describe(sampleSummary(t))
	require.Len(t, attrs, len(AttributeNames))

	prod := attrs[0]
	assert.Equal(t, "prod", prod.Name)
	assert.Equal(t, 2, prod.Count)
	assert.Equal(t, 100.0, prod.Sum)
	assert.Equal(t, 50.0, prod.Mean)
	assert.Equal(t, 40.0, prod.Min)
	assert.Equal(t, 60.0, prod.Max)
	assert.InDelta(t, 14.1421356, prod.StdDev, 1e-6)
}

func TestWriteSelection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSelection(&buf, sampleSummary(t)))

	out := buf.String()
	assert.Contains(t, out, "Selected plots: 2")
	assert.Contains(t, out, "Plot ids: 0, 1")
	assert.Contains(t, out, "Revenue: 120.00")
	assert.Contains(t, out, "Cost:       30.00 / 100.00")
	assert.Contains(t, out, "Soil types: arenoso, siltoso")
	assert.Contains(t, out, "Top plots by lowest risk")
	assert.Contains(t, out, "trigo")
}

func TestWriteSelectionEmpty(t *testing.T) {
	d, err := farm.Generate(4, 1)
	require.NoError(t, err)

	s, err := farm.Summarize(d, make(ga.Chromosome, 4), farm.DefaultLimits())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSelection(&buf, s))
	assert.Equal(t, "Selected plots: 0\n", buf.String())
}

func TestWriteGridTable(t *testing.T) {
	d, err := farm.Generate(12, 2)
	require.NoError(t, err)

	p, err := d.Problem(farm.Limits{Budget: 80, Water: 80, Fertilizer: 40})
	require.NoError(t, err)

	cfg := ga.DefaultConfig()
	cfg.PopulationSize = 8
	cfg.Generations = 4

	grid, err := ga.GridSearch(context.Background(), p, cfg, ga.NewRand(1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteGridTable(&buf, grid))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// header + separator + 18 rows + blank + best line
	require.Len(t, lines, 22)
	assert.Contains(t, lines[2], "tournament")
	assert.Contains(t, lines[19], "rank")
	assert.Contains(t, lines[21], "Best combination: "+grid.Best().Combination.String())
	assert.Contains(t, lines[grid.BestIndex+2], "*")
}

func TestWriteConvergence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConvergence(&buf, Convergence{}))
	assert.Contains(t, buf.String(), "No generations")

	buf.Reset()
	c := Summarize(ga.History{Best: []float64{1234.5, 2000}, Mean: []float64{1000, 1500}})
	require.NoError(t, WriteConvergence(&buf, c))
	assert.Contains(t, buf.String(), "2,000.0000")
}

func TestPlotConvergence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "convergence.png")
	h := ga.History{Best: []float64{1, 2, 4, 4}, Mean: []float64{0.5, 1, 2, 3}}

	require.NoError(t, PlotConvergence(path, "GA convergence", h))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.ErrorIs(t, PlotConvergence(path, "empty", ga.History{}), ErrEmptyHistory)
}
