package genetic

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/HELIX/internal/optimization"
)

// Strategy identifies a selection policy.
type Strategy int

const (
	// StrategyRank weights individuals by sorted position: monotone in rank
	// regardless of fitness magnitude, robust to outliers, no negative
	// weights possible.
	StrategyRank Strategy = iota + 1

	// StrategyRoulette weights individuals by offset-shifted fitness.
	// Sensitive to fitness scale and variance; can converge prematurely
	// when one individual dominates.
	StrategyRoulette
)

// ParseStrategy maps a strategy name to its tag.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "rank":
		return StrategyRank, nil
	case "roulette":
		return StrategyRoulette, nil
	default:
		return 0, optimization.NewConfigErrorf("%q invalid: opt [roulette/rank]", name).
			WithComponent("genetic").
			WithOperation("ParseStrategy")
	}
}

// String returns the strategy's configuration name.
func (s Strategy) String() string {
	switch s {
	case StrategyRank:
		return "rank"
	case StrategyRoulette:
		return "roulette"
	default:
		return "unknown"
	}
}

// rankSummation is the rank-selection weight normalizer: the sum of
// ranks 1..n.
func rankSummation(n int) float64 {
	return float64(n*(n+1)) / 2
}

// rawSummation is the roulette weight normalizer before any offset shift:
// the sum of the population's fitness values.
func rawSummation(fits []float64) float64 {
	return floats.Sum(fits)
}

// selectRank draws one individual from the fitness-sorted population
// (worst first) with probability idx/summation for the 1-based sorted
// position idx. Returns the individual and its 1-based rank (1 = worst).
func selectRank(sorted Population, summation float64, rng *rand.Rand) (Individual, int) {
	draw := rng.Float64()
	cumulative := 0.0
	for i := range sorted {
		idx := i + 1
		cumulative += float64(idx) / summation
		if draw <= cumulative {
			return sorted[i], idx
		}
	}
	// Floating-point shortfall: the cumulative walk can end a hair below 1.
	return sorted[len(sorted)-1], len(sorted)
}

// selectRoulette draws one individual from the fitness-sorted population
// with probability proportional to its shifted fitness. When the worst
// fitness is negative, every weight is shifted by its absolute value so no
// weight goes negative; summation is adjusted accordingly. Returns the
// individual and its 1-based rank (1 = worst).
func selectRoulette(sorted Population, fits []float64, summation float64, rng *rand.Rand) (Individual, int) {
	offset := 0.0
	if worst := fits[0]; worst < 0 {
		offset = -worst
		summation += offset * float64(len(sorted))
	}

	draw := rng.Float64()
	cumulative := 0.0
	for i := range sorted {
		cumulative += (fits[i] + offset) / summation
		if draw <= cumulative {
			return sorted[i], i + 1
		}
	}
	return sorted[len(sorted)-1], len(sorted)
}
