// ABOUTME: Problem data and chromosome types for the plot selection GA
// ABOUTME: Validates index-aligned attribute slices and resource limits before a run

// Package ga implements a genetic algorithm that selects a subset of items
// (farmland plots) under budget, water and fertilizer limits.
//
// The package is a pure library: callers pass plain numeric slices and a
// Config, and get back the best chromosome found plus run statistics.
// All randomness comes from an injected *rand.Rand so runs are reproducible.
package ga

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Validation error categories. Every error returned by Validate wraps one of these.
var (
	ErrInput  = errors.New("invalid input")
	ErrConfig = errors.New("invalid configuration")
)

// Problem holds per-item attributes as index-aligned slices plus the resource limits
// Item i's attributes live at position i of every slice.
type Problem struct {
	Productivity []float64
	Cost         []float64
	Water        []float64
	Fertilizer   []float64
	Price        []float64
	Risk         []float64

	Budget     float64
	WaterLimit float64
	FertLimit  float64
}

// Len returns the number of candidate items
func (p *Problem) Len() int {
	return len(p.Productivity)
}

// Validate checks slice alignment, attribute values and limits
func (p *Problem) Validate() error {
	n := len(p.Productivity)
	if n == 0 {
		return fmt.Errorf("%w: problem has no items", ErrInput)
	}

	columns := []struct {
		name   string
		values []float64
	}{
		{"productivity", p.Productivity},
		{"cost", p.Cost},
		{"water", p.Water},
		{"fertilizer", p.Fertilizer},
		{"price", p.Price},
		{"risk", p.Risk},
	}

	for _, col := range columns {
		if len(col.values) != n {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrInput, col.name, len(col.values), n)
		}

		for i, v := range col.values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s[%d] is not a finite number", ErrInput, col.name, i)
			}
		}
	}

	limits := []struct {
		name  string
		value float64
	}{
		{"budget", p.Budget},
		{"water limit", p.WaterLimit},
		{"fertilizer limit", p.FertLimit},
	}

	for _, l := range limits {
		if math.IsNaN(l.value) || l.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative (got %v)", ErrConfig, l.name, l.value)
		}
	}

	return nil
}

// Chromosome is a binary selection vector: bit i = 1 selects item i
type Chromosome []uint8

// Clone returns an independent copy so later in-place mutation cannot alias
func (c Chromosome) Clone() Chromosome {
	return slices.Clone(c)
}

// Selected returns the indices of selected items in ascending order
func (c Chromosome) Selected() []int {
	idx := make([]int, 0, len(c))
	for i, bit := range c {
		if bit == 1 {
			idx = append(idx, i)
		}
	}

	return idx
}

// Count returns the number of selected items
func (c Chromosome) Count() int {
	n := 0
	for _, bit := range c {
		n += int(bit)
	}

	return n
}

// String renders the chromosome as a compact bit string (e.g. "10110")
func (c Chromosome) String() string {
	b := make([]byte, len(c))
	for i, bit := range c {
		b[i] = '0' + bit
	}

	return string(b)
}
