package analytics

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/internal/contracts"
)

type fixedPredictor struct {
	values []float64
	err    error
}

func (f fixedPredictor) PredictBatch(rows []contracts.FeatureRow) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

type sumPredictor struct{}

func (sumPredictor) PredictBatch(rows []contracts.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Male + r.Female
	}
	return out, nil
}

func TestEvaluator_KnownValues(t *testing.T) {
	rows := []contracts.FeatureRow{
		{District: "A", Male: 10, Female: 5},
		{District: "B", Male: 0, Female: 0},
	}
	ev := NewEvaluator(fixedPredictor{values: []float64{14, 1}}, zerolog.Nop())

	result, err := ev.Evaluate(rows)
	require.NoError(t, err)

	assert.True(t, result.Available)
	assert.Equal(t, 2, result.Samples)
	assert.InDelta(t, 1.0, result.MAE, 1e-12)
	assert.True(t, result.R2Defined)
	assert.InDelta(t, 1-2/112.5, result.R2, 1e-12)
	assert.Equal(t, contracts.EvaluationNote, result.Note)
}

func TestEvaluator_PerfectModel(t *testing.T) {
	rows := []contracts.FeatureRow{
		{District: "A", Male: 16, Female: 4},
		{District: "B", Male: 3, Female: 17},
		{District: "C", Male: 0, Female: 2},
	}
	ev := NewEvaluator(sumPredictor{}, zerolog.Nop())

	result, err := ev.Evaluate(rows)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.MAE)
	assert.True(t, result.R2Defined)
	assert.InDelta(t, 1.0, result.R2, 1e-12)
}

func TestEvaluator_ZeroVarianceLeavesR2Undefined(t *testing.T) {
	rows := []contracts.FeatureRow{
		{District: "A", Male: 3, Female: 2},
		{District: "B", Male: 1, Female: 4},
	}
	ev := NewEvaluator(fixedPredictor{values: []float64{4, 6}}, zerolog.Nop())

	result, err := ev.Evaluate(rows)
	require.NoError(t, err)

	assert.True(t, result.Available)
	assert.InDelta(t, 1.0, result.MAE, 1e-12)
	assert.False(t, result.R2Defined)
}

func TestEvaluator_EmptyIsNotAvailable(t *testing.T) {
	ev := NewEvaluator(fixedPredictor{err: errors.New("must not be called")}, zerolog.Nop())

	result, err := ev.Evaluate(nil)
	require.NoError(t, err)

	assert.False(t, result.Available)
	assert.Equal(t, 0, result.Samples)
}

func TestEvaluator_PredictorError(t *testing.T) {
	boom := errors.New("boom")
	ev := NewEvaluator(fixedPredictor{err: boom}, zerolog.Nop())

	_, err := ev.Evaluate([]contracts.FeatureRow{{District: "A", Male: 1}})
	assert.ErrorIs(t, err, boom)
}

func TestEvaluator_LengthMismatch(t *testing.T) {
	ev := NewEvaluator(fixedPredictor{values: []float64{1}}, zerolog.Nop())

	_, err := ev.Evaluate([]contracts.FeatureRow{{District: "A"}, {District: "B"}})
	assert.Error(t, err)
}

func TestMeanAbsoluteError(t *testing.T) {
	assert.Equal(t, 0.0, MeanAbsoluteError(nil, nil))
	assert.InDelta(t, 2.0, MeanAbsoluteError([]float64{1, 5}, []float64{3, 3}), 1e-12)
}
