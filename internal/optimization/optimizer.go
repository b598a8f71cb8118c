package optimization

import (
	"context"
)

// Evaluator scores a candidate parameter assignment. Implementations must be
// deterministic for a run to be reproducible: the engine re-reads fitness
// instead of caching it on individuals.
type Evaluator interface {
	// Score returns the raw score for the ordered value vector.
	// No minimize/maximize sign adjustment is applied here.
	Score(values []float64) (float64, error)
}

// Optimizer defines the interface for optimization algorithms
type Optimizer interface {
	// Optimize runs the optimization process
	Optimize(ctx context.Context, config RunConfig) (*Result, error)

	// BestSolution returns the best solution found so far
	BestSolution() *Solution

	// Predict returns the raw evaluator score for a value vector,
	// without sign adjustment, for external reporting
	Predict(values []float64) (float64, error)
}

// RunConfig contains the per-run settings consumed by an optimizer.
// It is immutable for the duration of one Optimize call.
type RunConfig struct {
	// Objective direction: "maximize" or "minimize"
	Objective string

	// Selection strategy name: "rank" or "roulette"
	Selection string

	// Adaptive enables fitness-adaptive mutation noise scaling
	Adaptive bool

	// Generations is the fixed number of generational steps
	Generations int

	// Exploration is the base mutation rate
	Exploration float64

	// KeepTop is the number of elite individuals carried over unchanged
	KeepTop int

	// Verbose logs every generation's population
	Verbose bool
}

// DefaultRunConfig returns the standard run settings.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Objective:   "maximize",
		Selection:   "rank",
		Adaptive:    true,
		Generations: 500,
		Exploration: 0.25,
		KeepTop:     1,
	}
}

// Solution represents a solution in the optimization space
type Solution struct {
	Parameters []float64
	Value      float64
}

// Result contains the result of an optimization run
type Result struct {
	// BestSolution is the highest-scoring individual of the final population
	BestSolution *Solution

	// History holds one rounded best-score observation per generation,
	// recorded on the population entering that generation
	History []float64

	// Generations is the number of generational steps executed
	Generations int
}

// ParamMap pairs parameter names with an ordered value vector. Used for
// reporting; the engine itself works on value vectors in parameter order.
func ParamMap(names []string, values []float64) map[string]float64 {
	m := make(map[string]float64, len(names))
	for i, name := range names {
		if i < len(values) {
			m[name] = values[i]
		}
	}
	return m
}
