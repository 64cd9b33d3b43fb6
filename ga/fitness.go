// ABOUTME: Fitness evaluation with soft-constraint penalties
// ABOUTME: Net revenue minus cost and risk, with weighted penalties for exceeding each limit

package ga

// Penalty weights per unit of overrun. Cost overruns are the most expensive.
const (
	CostPenaltyWeight  = 2.0
	WaterPenaltyWeight = 1.5
	FertPenaltyWeight  = 1.2
)

// Breakdown shows the individual components contributing to fitness
type Breakdown struct {
	Revenue    float64 // Σ productivity·price of selected items
	Cost       float64 // Total monetary cost
	Water      float64 // Total water use
	Fertilizer float64 // Total fertilizer use
	Risk       float64 // Total risk index
	Penalty    float64 // Weighted sum of limit overruns
	Total      float64 // Revenue - Cost - Risk - Penalty
}

// Feasible reports whether the selection respects all three limits of p
func (b Breakdown) Feasible(p *Problem) bool {
	return b.Cost <= p.Budget && b.Water <= p.WaterLimit && b.Fertilizer <= p.FertLimit
}

// Fitness computes the scalar fitness of a chromosome (higher is better)
func Fitness(c Chromosome, p *Problem) float64 {
	return Evaluate(c, p).Total
}

// Evaluate computes fitness and returns the detailed breakdown
// The empty selection scores exactly 0.
func Evaluate(c Chromosome, p *Problem) Breakdown {
	var b Breakdown

	for i, bit := range c {
		if bit == 0 {
			continue
		}

		b.Revenue += p.Productivity[i] * p.Price[i]
		b.Cost += p.Cost[i]
		b.Water += p.Water[i]
		b.Fertilizer += p.Fertilizer[i]
		b.Risk += p.Risk[i]
	}

	b.Penalty = overrun(b.Cost, p.Budget)*CostPenaltyWeight +
		overrun(b.Water, p.WaterLimit)*WaterPenaltyWeight +
		overrun(b.Fertilizer, p.FertLimit)*FertPenaltyWeight

	b.Total = b.Revenue - b.Cost - b.Risk - b.Penalty

	return b
}

// overrun returns max(0, used-limit)
func overrun(used, limit float64) float64 {
	if used > limit {
		return used - limit
	}

	return 0
}
