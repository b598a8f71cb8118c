package optimization

import (
	"gonum.org/v1/gonum/mat"
)

// ObjectiveFunc is a plain scoring function over the ordered value vector.
type ObjectiveFunc func(values []float64) (float64, error)

// Model is a trained predictive model exposing a predict operation over a
// 1-D numeric vector built in parameter order.
type Model interface {
	// Predict returns the model output for the given feature vector.
	Predict(x mat.Vector) ([]float64, error)
}

// Scaler is an invertible transform over value vectors. A feature scaler is
// applied before prediction, a label scaler's inverse after.
type Scaler interface {
	Transform(values []float64) ([]float64, error)
	InverseTransform(values []float64) ([]float64, error)
}

// FunctionEvaluator adapts a plain ObjectiveFunc to the Evaluator interface.
type FunctionEvaluator struct {
	fn ObjectiveFunc
}

// NewFunctionEvaluator wraps fn as an Evaluator.
func NewFunctionEvaluator(fn ObjectiveFunc) (*FunctionEvaluator, error) {
	if fn == nil {
		return nil, NewConfigError("objective function is nil").
			WithComponent("evaluator").
			WithOperation("NewFunctionEvaluator")
	}
	return &FunctionEvaluator{fn: fn}, nil
}

// Score evaluates the wrapped function at the given values.
func (e *FunctionEvaluator) Score(values []float64) (float64, error) {
	return e.fn(values)
}

// ModelEvaluator adapts a trained Model, optionally paired with a feature
// scaler and a label scaler, to the Evaluator interface. The variant is
// chosen once at construction: scalers are required both-or-neither.
type ModelEvaluator struct {
	model        Model
	dims         int
	featureScale Scaler
	labelScale   Scaler
}

// NewModelEvaluator wraps model as an Evaluator over dims parameters.
// featureScale and labelScale must be supplied together or not at all.
func NewModelEvaluator(model Model, dims int, featureScale, labelScale Scaler) (*ModelEvaluator, error) {
	if model == nil {
		return nil, NewConfigError("model is nil").
			WithComponent("evaluator").
			WithOperation("NewModelEvaluator")
	}
	if dims < 1 {
		return nil, NewConfigErrorf("dims must be positive, got %d", dims).
			WithComponent("evaluator").
			WithOperation("NewModelEvaluator")
	}
	if (featureScale == nil) != (labelScale == nil) {
		return nil, NewConfigError("feature and label scalers must be supplied together").
			WithComponent("evaluator").
			WithOperation("NewModelEvaluator")
	}
	return &ModelEvaluator{
		model:        model,
		dims:         dims,
		featureScale: featureScale,
		labelScale:   labelScale,
	}, nil
}

// Score builds the model input vector in parameter order, applies the
// feature transform when configured, predicts, applies the inverse label
// transform, and unwraps a length-1 prediction to a scalar.
func (e *ModelEvaluator) Score(values []float64) (float64, error) {
	if len(values) != e.dims {
		return 0, NewShapeErrorf("input vector has %d values, expected %d", len(values), e.dims).
			WithComponent("evaluator").
			WithOperation("Score")
	}

	features := values
	if e.featureScale != nil {
		scaled, err := e.featureScale.Transform(values)
		if err != nil {
			return 0, WrapError(err, KindShape, "feature transform failed").
				WithComponent("evaluator").
				WithOperation("Score")
		}
		features = scaled
	}

	prediction, err := e.model.Predict(mat.NewVecDense(len(features), features))
	if err != nil {
		return 0, err
	}

	if e.labelScale != nil {
		prediction, err = e.labelScale.InverseTransform(prediction)
		if err != nil {
			return 0, WrapError(err, KindShape, "label inverse transform failed").
				WithComponent("evaluator").
				WithOperation("Score")
		}
	}

	if len(prediction) == 0 {
		return 0, NewShapeErrorf("model returned an empty prediction").
			WithComponent("evaluator").
			WithOperation("Score")
	}

	return prediction[0], nil
}
