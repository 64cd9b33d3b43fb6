// ABOUTME: Tunable GA parameters and resource limits shown in the left panel
// ABOUTME: Handles parameter value adjustments with boundary checking

package tui

import (
	"fmt"
	"strconv"

	"farmplan/config"
	"farmplan/ga"
)

// Parameter represents a tunable GA parameter with constraints
type Parameter struct {
	Name     string
	Value    *float64 // Pointer to actual config field
	IntValue *int     // For integer and choice parameters
	Min      float64
	Max      float64
	Step     float64
	IsInt    bool
	Labels   []string // Choice parameters display Labels[*IntValue]
}

// strategyChoices mirrors the strategy enums as ints so choice parameters
// can point at them. Enum values index their candidate lists.
type strategyChoices struct {
	Selection int
	Crossover int
	Mutation  int
}

func choicesOf(cfg config.GAConfig) strategyChoices {
	return strategyChoices{
		Selection: int(cfg.Selection),
		Crossover: int(cfg.Crossover),
		Mutation:  int(cfg.Mutation),
	}
}

func (c strategyChoices) applyTo(cfg *config.GAConfig) {
	cfg.Selection = ga.SelectionMethod(c.Selection)
	cfg.Crossover = ga.CrossoverMethod(c.Crossover)
	cfg.Mutation = ga.MutationMethod(c.Mutation)
}

// buildParams returns the parameter list with pointers into s and choices
func buildParams(s *config.Settings, choices *strategyChoices) []Parameter {
	return []Parameter{
		{Name: "Population Size", IntValue: &s.GA.PopulationSize, Min: 10, Max: 1000, Step: 10, IsInt: true},
		{Name: "Generations", IntValue: &s.GA.Generations, Min: 10, Max: 5000, Step: 10, IsInt: true},
		{Name: "Mutation Rate", Value: &s.GA.MutationRate, Min: 0, Max: 0.5, Step: 0.01},
		{Name: "Selection", IntValue: &choices.Selection, Min: 0, Max: float64(len(ga.SelectionMethods) - 1), Step: 1, IsInt: true, Labels: labels(ga.SelectionMethods)},
		{Name: "Tournament K", IntValue: &s.GA.TournamentK, Min: 1, Max: 20, Step: 1, IsInt: true},
		{Name: "Crossover", IntValue: &choices.Crossover, Min: 0, Max: float64(len(ga.CrossoverMethods) - 1), Step: 1, IsInt: true, Labels: labels(ga.CrossoverMethods)},
		{Name: "Mutation", IntValue: &choices.Mutation, Min: 0, Max: float64(len(ga.MutationMethods) - 1), Step: 1, IsInt: true, Labels: labels(ga.MutationMethods)},
		{Name: "Elitism", IntValue: &s.GA.Elitism, Min: 0, Max: 20, Step: 1, IsInt: true},
		{Name: "Stagnation Patience", IntValue: &s.GA.StagnationPatience, Min: 5, Max: 500, Step: 5, IsInt: true},
		{Name: "Budget", Value: &s.Limits.Budget, Min: 0, Max: 10000, Step: 50},
		{Name: "Water Limit", Value: &s.Limits.Water, Min: 0, Max: 10000, Step: 50},
		{Name: "Fertilizer Limit", Value: &s.Limits.Fertilizer, Min: 0, Max: 5000, Step: 25},
	}
}

func labels[T fmt.Stringer](methods []T) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.String()
	}

	return out
}

// increaseParam increases a parameter value with bounds checking
// Returns true if the value was changed
func increaseParam(param *Parameter) bool {
	if param.IsInt {
		newVal := *param.IntValue + int(param.Step)
		if float64(newVal) <= param.Max {
			*param.IntValue = newVal

			return true
		}

		return false
	}

	newVal := *param.Value + param.Step
	// Clamp to max if we're very close (handles floating point precision)
	if newVal > param.Max && newVal <= param.Max+0.0001 {
		newVal = param.Max
	}

	if newVal <= param.Max {
		*param.Value = newVal

		return true
	}

	return false
}

// decreaseParam decreases a parameter value with bounds checking
// Returns true if the value was changed
func decreaseParam(param *Parameter) bool {
	if param.IsInt {
		newVal := *param.IntValue - int(param.Step)
		if float64(newVal) >= param.Min {
			*param.IntValue = newVal

			return true
		}

		return false
	}

	newVal := *param.Value - param.Step
	if newVal < param.Min && newVal >= param.Min-0.0001 {
		newVal = param.Min
	}

	if newVal >= param.Min {
		*param.Value = newVal

		return true
	}

	return false
}

// displayValue formats the current value of a parameter
func (p Parameter) displayValue() string {
	switch {
	case p.IntValue != nil && p.Labels != nil:
		if i := *p.IntValue; i >= 0 && i < len(p.Labels) {
			return p.Labels[i]
		}

		return "N/A"
	case p.IsInt && p.IntValue != nil:
		return strconv.Itoa(*p.IntValue)
	case !p.IsInt && p.Value != nil:
		return fmt.Sprintf("%.2f", *p.Value)
	default:
		return "N/A"
	}
}
