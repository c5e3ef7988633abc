package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Regressor predicts a scalar from a feature vector in trained order
type Regressor interface {
	Predict(x []float64) (float64, error)
}

// RegressorFunc adapts a plain function to Regressor
type RegressorFunc func(x []float64) (float64, error)

// Predict calls f(x)
func (f RegressorFunc) Predict(x []float64) (float64, error) {
	return f(x)
}

// batchRegressor is implemented by models that can score a whole matrix at once
type batchRegressor interface {
	PredictMatrix(x *mat.Dense) ([]float64, error)
}

// LinearModel is y = intercept + coef · x
type LinearModel struct {
	coef      *mat.VecDense
	intercept float64
}

// NewLinearModel builds a linear model from an artifact
func NewLinearModel(a *Artifact) *LinearModel {
	coef := make([]float64, len(a.Coefficients))
	copy(coef, a.Coefficients)
	return &LinearModel{
		coef:      mat.NewVecDense(len(coef), coef),
		intercept: a.Intercept,
	}
}

// Predict scores one vector
func (m *LinearModel) Predict(x []float64) (float64, error) {
	if len(x) != m.coef.Len() {
		return 0, fmt.Errorf("got %d features, model expects %d", len(x), m.coef.Len())
	}
	return m.intercept + mat.Dot(m.coef, mat.NewVecDense(len(x), x)), nil
}

// PredictMatrix scores every row of x
func (m *LinearModel) PredictMatrix(x *mat.Dense) ([]float64, error) {
	r, c := x.Dims()
	if c != m.coef.Len() {
		return nil, fmt.Errorf("got %d feature columns, model expects %d", c, m.coef.Len())
	}

	var y mat.VecDense
	y.MulVec(x, m.coef)

	out := make([]float64, r)
	for i := range out {
		out[i] = y.AtVec(i) + m.intercept
	}
	return out, nil
}
