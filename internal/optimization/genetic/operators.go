package genetic

import (
	"math"
	"math/rand"
)

// crossover produces a child whose value for each parameter is the
// arithmetic mean of the parents' values. The mean of two in-bound values
// stays in bounds, so no clamping is required here.
func crossover(a, b Individual) Individual {
	values := make([]float64, len(a.Values))
	for i := range values {
		values[i] = (a.Values[i] + b.Values[i]) / 2
	}
	return Individual{Values: values}
}

// mutate perturbs each of the individual's values in place with noise drawn
// uniformly from [-span, span], span = rate * currentValue, then clamps to
// the parameter's bounds.
//
// A value of exactly zero yields a zero span and never moves, and the step
// size scales with the current value rather than the parameter range. Both
// are inherited behavior, kept as-is.
func mutate(ind Individual, bounds [][2]float64, rate float64, rng *rand.Rand) Individual {
	for i, v := range ind.Values {
		span := rate * v
		perturbed := v + (2*rng.Float64()-1)*span
		ind.Values[i] = math.Min(math.Max(perturbed, bounds[i][0]), bounds[i][1])
	}
	return ind
}

// invertRank flips a 1-based rank in a population of size n so that the
// worst individual (rank 1) maps to n and the best (rank n) maps to 1.
func invertRank(rank, n int) int {
	return n - rank + 1
}

// adaptiveRate derives the mutation rate for a child from its parents'
// inverted ranks: offspring of high-fitness parents get proportionally less
// noise (exploitation), offspring of low-fitness parents get more
// (exploration). A temperature schedule keyed to parent quality rather than
// elapsed generations.
func adaptiveRate(exploration float64, invRank1, invRank2, n int) float64 {
	meanInverted := float64(invRank1+invRank2) / 2
	return exploration * meanInverted / float64(n)
}
