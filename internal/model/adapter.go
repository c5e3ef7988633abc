package model

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/wonny/hivdash/internal/contracts"
)

// =============================================================================
// Model Adapter
// =============================================================================

// Adapter wraps a Regressor with the dashboard's feature contract.
// ⭐ SSOT: predictions are clamped at zero since patient counts cannot be negative
type Adapter struct {
	reg      Regressor
	features [2]string
	name     string
	log      zerolog.Logger
}

// NewAdapter wraps reg, whose inputs are in the given feature order
func NewAdapter(reg Regressor, features [2]string, name string, log zerolog.Logger) *Adapter {
	return &Adapter{
		reg:      reg,
		features: features,
		name:     name,
		log:      log.With().Str("component", "model.adapter").Logger(),
	}
}

// Load reads the artifact at path and returns an adapter around its linear model
func Load(path string, log zerolog.Logger) (*Adapter, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}

	adapter := NewAdapter(NewLinearModel(a), a.FeatureOrder(), a.DisplayName(), log)
	adapter.log.Info().
		Str("path", path).
		Str("model", adapter.name).
		Strs("features", a.Features).
		Msg("model loaded")

	return adapter, nil
}

// Name returns the model display name
func (a *Adapter) Name() string {
	return a.name
}

// Features returns the trained feature order
func (a *Adapter) Features() [2]string {
	return a.features
}

// PredictBatch predicts one total per feature row, preserving order
func (a *Adapter) PredictBatch(rows []contracts.FeatureRow) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}

	var (
		out []float64
		err error
	)
	if br, ok := a.reg.(batchRegressor); ok {
		data := make([]float64, 0, len(rows)*2)
		for _, r := range rows {
			data = append(data, r.Male, r.Female)
		}
		out, err = br.PredictMatrix(mat.NewDense(len(rows), 2, data))
		if err != nil {
			return nil, fmt.Errorf("batch predict: %w", err)
		}
	} else {
		out = make([]float64, len(rows))
		for i, r := range rows {
			out[i], err = a.reg.Predict(r.Vector())
			if err != nil {
				return nil, fmt.Errorf("predict %s: %w", r.District, err)
			}
		}
	}

	for i := range out {
		out[i] = clamp(out[i])
	}
	return out, nil
}

// PredictOne predicts the total for one ad-hoc (male, female) pair
func (a *Adapter) PredictOne(male, female int) (float64, error) {
	if male < 0 || female < 0 {
		return 0, fmt.Errorf("counts must be >= 0 (male=%d, female=%d): %w", male, female, contracts.ErrInvalidInput)
	}

	y, err := a.reg.Predict([]float64{float64(male), float64(female)})
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}

	a.log.Debug().
		Int("male", male).
		Int("female", female).
		Float64("predicted", y).
		Msg("ad-hoc prediction")

	return clamp(y), nil
}

func clamp(y float64) float64 {
	if y < 0 || math.IsNaN(y) {
		return 0
	}
	return y
}
