package analytics

import (
	"fmt"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/hivdash/internal/contracts"
)

// =============================================================================
// Evaluator
// =============================================================================

// BatchPredictor predicts one value per feature row, preserving order
type BatchPredictor interface {
	PredictBatch(rows []contracts.FeatureRow) ([]float64, error)
}

// Evaluator scores the model against the pivoted features.
// ⭐ SSOT: ground truth is the row sum of the two feature columns
type Evaluator struct {
	predictor BatchPredictor
	log       zerolog.Logger
}

// NewEvaluator creates an evaluator
func NewEvaluator(predictor BatchPredictor, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		predictor: predictor,
		log:       log.With().Str("component", "analytics.evaluator").Logger(),
	}
}

// Evaluate computes MAE and R² over rows.
// No rows means the evaluation is not available; zero variance in the
// ground truth leaves R² undefined. Neither case is an error.
func (e *Evaluator) Evaluate(rows []contracts.FeatureRow) (contracts.Evaluation, error) {
	result := contracts.Evaluation{
		Samples: len(rows),
		Note:    contracts.EvaluationNote,
	}
	if len(rows) == 0 {
		e.log.Warn().Msg("no feature rows, evaluation not available")
		return result, nil
	}

	predicted, err := e.predictor.PredictBatch(rows)
	if err != nil {
		return result, fmt.Errorf("predict batch: %w", err)
	}
	if len(predicted) != len(rows) {
		return result, fmt.Errorf("predictor returned %d values for %d rows", len(predicted), len(rows))
	}

	truth := GroundTruth(rows)

	result.Available = true
	result.MAE = MeanAbsoluteError(truth, predicted)
	result.R2, result.R2Defined = RSquared(truth, predicted)

	e.log.Info().
		Int("samples", result.Samples).
		Float64("mae", result.MAE).
		Float64("r2", result.R2).
		Bool("r2_defined", result.R2Defined).
		Msg("model evaluated")

	return result, nil
}

// GroundTruth returns male+female per row
func GroundTruth(rows []contracts.FeatureRow) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Total()
	}
	return out
}

// MeanAbsoluteError returns mean |truth - predicted|. Both slices must have equal length.
func MeanAbsoluteError(truth, predicted []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	return floats.Distance(truth, predicted, 1) / float64(len(truth))
}

// RSquared returns the coefficient of determination and whether it is defined.
// It is undefined when the ground truth has zero variance.
func RSquared(truth, predicted []float64) (float64, bool) {
	if len(truth) == 0 {
		return 0, false
	}

	mean := stat.Mean(truth, nil)
	var ssTot float64
	for _, y := range truth {
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 0, false
	}

	return stat.RSquaredFrom(predicted, truth, nil), true
}
