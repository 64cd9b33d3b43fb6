// ABOUTME: Optional constraint repair for infeasible chromosomes
// ABOUTME: Drops random selected items until every resource limit is satisfied

package ga

import "math/rand/v2"

// Repair deselects uniformly chosen items until c fits all three limits of p
// or nothing is selected. It reports how many items were dropped.
func Repair(c Chromosome, p *Problem, rng *rand.Rand) int {
	b := Evaluate(c, p)
	selected := c.Selected()
	dropped := 0

	for !b.Feasible(p) && len(selected) > 0 {
		k := rng.IntN(len(selected))
		i := selected[k]

		c[i] = 0
		b.Cost -= p.Cost[i]
		b.Water -= p.Water[i]
		b.Fertilizer -= p.Fertilizer[i]

		selected[k] = selected[len(selected)-1]
		selected = selected[:len(selected)-1]
		dropped++
	}

	return dropped
}
