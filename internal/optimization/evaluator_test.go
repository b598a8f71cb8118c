package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// stubModel returns a fixed affine transform of the first feature.
type stubModel struct {
	outputs func(x mat.Vector) []float64
}

func (m *stubModel) Predict(x mat.Vector) ([]float64, error) {
	return m.outputs(x), nil
}

// stubScaler scales every value by a constant factor.
type stubScaler struct {
	factor float64
}

func (s *stubScaler) Transform(values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * s.factor
	}
	return out, nil
}

func (s *stubScaler) InverseTransform(values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / s.factor
	}
	return out, nil
}

func TestNewFunctionEvaluator(t *testing.T) {
	t.Run("nil function", func(t *testing.T) {
		_, err := NewFunctionEvaluator(nil)
		require.Error(t, err)
		assert.True(t, IsConfigError(err), "nil function should be a configuration error")
	})

	t.Run("scores through the wrapped function", func(t *testing.T) {
		ev, err := NewFunctionEvaluator(testSumFunc)
		require.NoError(t, err)

		got, err := ev.Score([]float64{1, 2, 3})
		require.NoError(t, err)
		assert.InDelta(t, 6.0, got, 1e-12)
	})

	t.Run("quadratic objective", func(t *testing.T) {
		ev, err := NewFunctionEvaluator(testSphereFunc)
		require.NoError(t, err)

		inputs := [][]float64{{0, 0}, {1, 2}, {-3, 4}}
		scores := make([]float64, len(inputs))
		for i, in := range inputs {
			scores[i], err = ev.Score(in)
			require.NoError(t, err)
		}
		assertFloat64SlicesEqual(t, scores, []float64{0, 5, 25}, 1e-12)
	})
}

func TestNewModelEvaluator(t *testing.T) {
	model := &stubModel{outputs: func(x mat.Vector) []float64 {
		return []float64{x.AtVec(0)}
	}}
	scaler := &stubScaler{factor: 2}

	tests := []struct {
		name         string
		model        Model
		dims         int
		featureScale Scaler
		labelScale   Scaler
		wantErr      bool
	}{
		{name: "no scalers", model: model, dims: 1},
		{name: "both scalers", model: model, dims: 1, featureScale: scaler, labelScale: scaler},
		{name: "feature scaler only", model: model, dims: 1, featureScale: scaler, wantErr: true},
		{name: "label scaler only", model: model, dims: 1, labelScale: scaler, wantErr: true},
		{name: "nil model", model: nil, dims: 1, wantErr: true},
		{name: "zero dims", model: model, dims: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModelEvaluator(tt.model, tt.dims, tt.featureScale, tt.labelScale)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err), "should be a configuration error")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestModelEvaluatorScore(t *testing.T) {
	t.Run("unwraps length-1 prediction", func(t *testing.T) {
		model := &stubModel{outputs: func(x mat.Vector) []float64 {
			return []float64{x.AtVec(0) + x.AtVec(1)}
		}}
		ev, err := NewModelEvaluator(model, 2, nil, nil)
		require.NoError(t, err)

		got, err := ev.Score([]float64{3, 4})
		require.NoError(t, err)
		assert.InDelta(t, 7.0, got, 1e-12)
	})

	t.Run("applies feature and inverse label transforms", func(t *testing.T) {
		model := &stubModel{outputs: func(x mat.Vector) []float64 {
			return []float64{x.AtVec(0)}
		}}
		// Features doubled going in, labels halved coming out:
		// score(5) = (5*2)/2 = 5
		ev, err := NewModelEvaluator(model, 1, &stubScaler{factor: 2}, &stubScaler{factor: 2})
		require.NoError(t, err)

		got, err := ev.Score([]float64{5})
		require.NoError(t, err)
		assert.InDelta(t, 5.0, got, 1e-12)
	})

	t.Run("rejects wrong input length", func(t *testing.T) {
		model := &stubModel{outputs: func(x mat.Vector) []float64 {
			return []float64{0}
		}}
		ev, err := NewModelEvaluator(model, 3, nil, nil)
		require.NoError(t, err)

		_, err = ev.Score([]float64{1, 2})
		require.Error(t, err)
		assert.True(t, IsShapeError(err), "length mismatch should be a shape error")
	})

	t.Run("rejects empty prediction", func(t *testing.T) {
		model := &stubModel{outputs: func(x mat.Vector) []float64 {
			return nil
		}}
		ev, err := NewModelEvaluator(model, 1, nil, nil)
		require.NoError(t, err)

		_, err = ev.Score([]float64{1})
		require.Error(t, err)
		assert.True(t, IsShapeError(err))
	})
}

func TestErrorContext(t *testing.T) {
	err := NewConfigError("bad setting").WithComponent("genetic").WithOperation("Run")
	assert.Contains(t, err.Error(), "genetic")
	assert.Contains(t, err.Error(), "Run")
	assert.Contains(t, err.Error(), "bad setting")
	assert.True(t, IsConfigError(err))
	assert.False(t, IsShapeError(err))
}

func TestParamMap(t *testing.T) {
	m := ParamMap([]string{"a", "b"}, []float64{1.5, 2.5})
	assert.Equal(t, map[string]float64{"a": 1.5, "b": 2.5}, m)
}
