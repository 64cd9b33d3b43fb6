// ABOUTME: Renders convergence charts of best and mean fitness per generation
// ABOUTME: Uses gonum/plot; the image format follows the output file extension

package report

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"farmplan/ga"
)

// Chart dimensions
const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// Line colors
var (
	bestColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	meanColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// ErrEmptyHistory is returned when there is nothing to plot
var ErrEmptyHistory = errors.New("history has no generations")

// ConvergencePlot builds a chart with best and mean fitness lines
func ConvergencePlot(title string, h ga.History) (*plot.Plot, error) {
	if h.Len() == 0 {
		return nil, ErrEmptyHistory
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"
	p.Add(plotter.NewGrid())

	bestPts := make(plotter.XYs, h.Len())
	meanPts := make(plotter.XYs, h.Len())
	for i := range h.Best {
		bestPts[i].X, bestPts[i].Y = float64(i), h.Best[i]
		meanPts[i].X, meanPts[i].Y = float64(i), h.Mean[i]
	}

	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return nil, fmt.Errorf("failed to build best line: %w", err)
	}
	bestLine.Width = vg.Points(2)
	bestLine.Color = bestColor

	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return nil, fmt.Errorf("failed to build mean line: %w", err)
	}
	meanLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	meanLine.Color = meanColor

	p.Add(bestLine, meanLine)
	p.Legend.Add("Best fitness", bestLine)
	p.Legend.Add("Mean fitness", meanLine)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

// PlotConvergence writes a convergence chart to path (.png, .svg or .pdf)
func PlotConvergence(path, title string, h ga.History) error {
	p, err := ConvergencePlot(title, h)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}

	return nil
}
