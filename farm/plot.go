// ABOUTME: Defines farmland plots and datasets plus conversion into GA problems
// ABOUTME: Holds the resource limits the selection must respect

// Package farm handles farmland datasets: synthetic generation, CSV and XLSX
// persistence, conversion into ga.Problem values and summaries of selections.
package farm

import (
	"fmt"

	"farmplan/ga"
)

// Categorical values used by the generator
var (
	SoilTypes = []string{"argiloso", "arenoso", "siltoso"}
	CropTypes = []string{"soja", "milho", "algodao", "trigo"}
)

// Plot is one candidate farmland area
type Plot struct {
	ID           int
	Productivity float64 // Expected yield in tonnes
	Cost         float64 // Total cultivation cost
	Water        float64 // Water consumption (m³)
	Fertilizer   float64 // Fertilizer consumption (kg)
	Price        float64 // Sale price per unit of yield
	Risk         float64 // Risk index, 0 = low, 10 = high
	Soil         string  // Soil type, informational only
	Crop         string  // Crop type, informational only
}

// Dataset is an ordered list of plots with the seed that generated it
type Dataset struct {
	Plots   []Plot
	Seed    uint64
	HasSeed bool // Seed is only meaningful for generated datasets
}

// Len returns the number of plots
func (d *Dataset) Len() int {
	return len(d.Plots)
}

// Limits are the three resource caps of a planning run
type Limits struct {
	Budget     float64 `json:"budget" toml:"budget"`
	Water      float64 `json:"water_limit" toml:"water_limit"`
	Fertilizer float64 `json:"fert_limit" toml:"fert_limit"`
}

// DefaultLimits returns the limits used for the 100-plot reference dataset
func DefaultLimits() Limits {
	return Limits{
		Budget:     1200,
		Water:      1200,
		Fertilizer: 600,
	}
}

// Problem converts the dataset into the GA's parallel attribute slices
func (d *Dataset) Problem(limits Limits) (ga.Problem, error) {
	n := len(d.Plots)
	p := ga.Problem{
		Productivity: make([]float64, n),
		Cost:         make([]float64, n),
		Water:        make([]float64, n),
		Fertilizer:   make([]float64, n),
		Price:        make([]float64, n),
		Risk:         make([]float64, n),
		Budget:       limits.Budget,
		WaterLimit:   limits.Water,
		FertLimit:    limits.Fertilizer,
	}

	for i, plot := range d.Plots {
		p.Productivity[i] = plot.Productivity
		p.Cost[i] = plot.Cost
		p.Water[i] = plot.Water
		p.Fertilizer[i] = plot.Fertilizer
		p.Price[i] = plot.Price
		p.Risk[i] = plot.Risk
	}

	if err := p.Validate(); err != nil {
		return ga.Problem{}, fmt.Errorf("invalid dataset: %w", err)
	}

	return p, nil
}

// String returns a one-line description of the plot
func (p *Plot) String() string {
	return fmt.Sprintf("#%-4d prod %6.2f cost %5.2f water %5.2f fert %5.2f risk %4.2f %s/%s",
		p.ID, p.Productivity, p.Cost, p.Water, p.Fertilizer, p.Risk, p.Soil, p.Crop)
}
