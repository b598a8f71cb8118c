package genetic

import (
	"math/rand"
	"sort"
)

// Individual is one candidate parameter assignment: a value vector in
// parameter order, in-bounds at all times after creation, crossover,
// or mutation.
type Individual struct {
	Values []float64
}

// Clone returns a deep copy of the individual.
func (ind Individual) Clone() Individual {
	return Individual{Values: append([]float64(nil), ind.Values...)}
}

// Population is the fixed-size working set of individuals for one
// generation. Duplicates are allowed and expected as the search converges.
type Population []Individual

// newPopulation draws each parameter of each individual independently and
// uniformly from its bounds.
func newPopulation(size int, bounds [][2]float64, rng *rand.Rand) Population {
	pop := make(Population, size)
	for i := range pop {
		values := make([]float64, len(bounds))
		for j, b := range bounds {
			values[j] = b[0] + rng.Float64()*(b[1]-b[0])
		}
		pop[i] = Individual{Values: values}
	}
	return pop
}

// sortByFitness returns the population ordered ascending by fitness (worst
// first, best last) together with the aligned fitness values. The sort is
// stable: ties keep their original order. Fitness is computed once per
// individual per call, never cached across calls.
//
// Elitism takes from the end of this ordering and rank selection's weight
// grows with position, so the worst-to-best convention is load-bearing.
func sortByFitness(pop Population, fitness func(Individual) (float64, error)) (Population, []float64, error) {
	fits := make([]float64, len(pop))
	for i, ind := range pop {
		f, err := fitness(ind)
		if err != nil {
			return nil, nil, err
		}
		fits[i] = f
	}

	order := make([]int, len(pop))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fits[order[a]] < fits[order[b]]
	})

	sorted := make(Population, len(pop))
	sortedFits := make([]float64, len(pop))
	for i, idx := range order {
		sorted[i] = pop[idx]
		sortedFits[i] = fits[idx]
	}
	return sorted, sortedFits, nil
}
