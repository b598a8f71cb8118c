package server

import (
	"math"
	"sort"

	"github.com/copyleftdev/HELIX/internal/optimization"
)

// Built-in objective functions selectable by name when starting a run over
// the API. Arbitrary evaluators (trained models, custom functions) are a
// library-level concern; the service surface only exposes this registry.
var builtinObjectives = map[string]optimization.ObjectiveFunc{
	// Sum of values; maximized at the upper bounds.
	"sum": func(x []float64) (float64, error) {
		sum := 0.0
		for _, v := range x {
			sum += v
		}
		return sum, nil
	},

	// Sum of squares; minimized at the origin.
	"sphere": func(x []float64) (float64, error) {
		sum := 0.0
		for _, v := range x {
			sum += v * v
		}
		return sum, nil
	},

	// Highly multimodal; global minimum 0 at the origin.
	"rastrigin": func(x []float64) (float64, error) {
		sum := 10.0 * float64(len(x))
		for _, v := range x {
			sum += v*v - 10*math.Cos(2*math.Pi*v)
		}
		return sum, nil
	},

	// Many shallow local minima around a deep global minimum at the origin.
	"ackley": func(x []float64) (float64, error) {
		n := float64(len(x))
		var sumSq, sumCos float64
		for _, v := range x {
			sumSq += v * v
			sumCos += math.Cos(2 * math.Pi * v)
		}
		return -20*math.Exp(-0.2*math.Sqrt(sumSq/n)) - math.Exp(sumCos/n) + 20 + math.E, nil
	},
}

// lookupObjective resolves a built-in objective function by name.
func lookupObjective(name string) (optimization.ObjectiveFunc, error) {
	fn, ok := builtinObjectives[name]
	if !ok {
		return nil, optimization.NewConfigErrorf("unknown objective function %q, available: %v",
			name, objectiveNames()).
			WithComponent("server").
			WithOperation("lookupObjective")
	}
	return fn, nil
}

// objectiveNames returns the sorted names of the built-in objectives.
func objectiveNames() []string {
	names := make([]string, 0, len(builtinObjectives))
	for name := range builtinObjectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
