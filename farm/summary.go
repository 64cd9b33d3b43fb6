// ABOUTME: Summarizes a chromosome as selected plots with totals against limits
// ABOUTME: Provides rankings by productivity and risk plus categorical coverage

package farm

import (
	"cmp"
	"fmt"
	"slices"

	"farmplan/ga"
)

// topRanked is the number of plots listed in each ranking
const topRanked = 5

// Summary describes the plots picked by one chromosome
type Summary struct {
	Selected  []Plot
	Breakdown ga.Breakdown // Totals and penalty from the fitness evaluator
	Yield     float64      // Sum of productivity
	Limits    Limits
	Soils     []string // Distinct soil types, sorted
	Crops     []string // Distinct crop types, sorted

	TopProductivity []Plot // Highest productivity first
	LowestRisk      []Plot // Lowest risk first
}

// Summarize builds a summary of chromosome c over the dataset
func Summarize(d *Dataset, c ga.Chromosome, limits Limits) (*Summary, error) {
	if len(c) != d.Len() {
		return nil, fmt.Errorf("%w: chromosome has %d genes for %d plots", ga.ErrInput, len(c), d.Len())
	}

	problem, err := d.Problem(limits)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Breakdown: ga.Evaluate(c, &problem),
		Limits:    limits,
	}

	soils := make(map[string]struct{})
	crops := make(map[string]struct{})

	for _, i := range c.Selected() {
		plot := d.Plots[i]
		s.Selected = append(s.Selected, plot)
		s.Yield += plot.Productivity

		if plot.Soil != "" {
			soils[plot.Soil] = struct{}{}
		}

		if plot.Crop != "" {
			crops[plot.Crop] = struct{}{}
		}
	}

	s.Soils = sortedKeys(soils)
	s.Crops = sortedKeys(crops)

	s.TopProductivity = slices.Clone(s.Selected)
	slices.SortStableFunc(s.TopProductivity, func(a, b Plot) int {
		return cmp.Compare(b.Productivity, a.Productivity)
	})
	s.TopProductivity = s.TopProductivity[:min(topRanked, len(s.TopProductivity))]

	s.LowestRisk = slices.Clone(s.Selected)
	slices.SortStableFunc(s.LowestRisk, func(a, b Plot) int {
		return cmp.Compare(a.Risk, b.Risk)
	})
	s.LowestRisk = s.LowestRisk[:min(topRanked, len(s.LowestRisk))]

	return s, nil
}

// IDs returns the area ids of the selected plots
func (s *Summary) IDs() []int {
	ids := make([]int, len(s.Selected))
	for i, p := range s.Selected {
		ids[i] = p.ID
	}

	return ids
}

// Feasible reports whether the selection respects all three limits
func (s *Summary) Feasible() bool {
	return s.Breakdown.Penalty == 0
}

// Column returns one numeric attribute of every selected plot
func (s *Summary) Column(name string) ([]float64, error) {
	values := make([]float64, len(s.Selected))
	for i, p := range s.Selected {
		switch name {
		case "prod":
			values[i] = p.Productivity
		case "cost":
			values[i] = p.Cost
		case "water":
			values[i] = p.Water
		case "fert":
			values[i] = p.Fertilizer
		case "price":
			values[i] = p.Price
		case "risk":
			values[i] = p.Risk
		default:
			return nil, fmt.Errorf("unknown attribute %q", name)
		}
	}

	return values, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
