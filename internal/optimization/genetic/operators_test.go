package genetic

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossover(t *testing.T) {
	a := Individual{Values: []float64{0, 10, -4}}
	b := Individual{Values: []float64{2, 6, -2}}

	child := crossover(a, b)

	assert.Equal(t, []float64{1, 8, -3}, child.Values)
	// Parents untouched.
	assert.Equal(t, []float64{0, 10, -4}, a.Values)
	assert.Equal(t, []float64{2, 6, -2}, b.Values)
}

func TestMutateStaysWithinBounds(t *testing.T) {
	bounds := [][2]float64{{0, 10}, {-5, 5}}
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 1000; i++ {
		ind := Individual{Values: []float64{9.5, 4.9}}
		mutated := mutate(ind, bounds, 0.9, rng)
		for j, v := range mutated.Values {
			require.GreaterOrEqual(t, v, bounds[j][0])
			require.LessOrEqual(t, v, bounds[j][1])
		}
	}
}

func TestMutateZeroValueDoesNotMove(t *testing.T) {
	// span = rate * value degenerates to zero noise at value 0:
	// inherited behavior, preserved.
	bounds := [][2]float64{{-1, 1}}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		ind := Individual{Values: []float64{0}}
		mutated := mutate(ind, bounds, 0.5, rng)
		assert.Equal(t, 0.0, mutated.Values[0])
	}
}

func TestMutateNegativeValues(t *testing.T) {
	// Noise stays symmetric when the current value, and therefore the
	// span, is negative.
	bounds := [][2]float64{{-10, 10}}
	rng := rand.New(rand.NewSource(5))

	moved := false
	for i := 0; i < 100; i++ {
		ind := Individual{Values: []float64{-4}}
		mutated := mutate(ind, bounds, 0.5, rng)
		require.GreaterOrEqual(t, mutated.Values[0], -6.0)
		require.LessOrEqual(t, mutated.Values[0], -2.0)
		if mutated.Values[0] != -4 {
			moved = true
		}
	}
	assert.True(t, moved, "nonzero values should be perturbed")
}

func TestInvertRank(t *testing.T) {
	// Worst (rank 1) maps to n, best (rank n) maps to 1.
	assert.Equal(t, 20, invertRank(1, 20))
	assert.Equal(t, 1, invertRank(20, 20))
	assert.Equal(t, 11, invertRank(10, 20))
}

func TestAdaptiveRate(t *testing.T) {
	tests := []struct {
		name        string
		exploration float64
		inv1, inv2  int
		n           int
		want        float64
	}{
		{name: "two worst parents get full noise", exploration: 0.25, inv1: 20, inv2: 20, n: 20, want: 0.25},
		{name: "two best parents get minimal noise", exploration: 0.25, inv1: 1, inv2: 1, n: 20, want: 0.0125},
		{name: "mixed parents average", exploration: 0.1, inv1: 20, inv2: 1, n: 20, want: 0.1 * 10.5 / 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adaptiveRate(tt.exploration, tt.inv1, tt.inv2, tt.n)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
