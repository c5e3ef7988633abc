package dashboard

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/internal/contracts"
	"github.com/wonny/hivdash/internal/model"
)

func sumModel() *model.Adapter {
	return model.NewAdapter(model.RegressorFunc(func(x []float64) (float64, error) {
		return x[0] + x[1], nil
	}), contracts.CanonicalGenders(), "sum", zerolog.Nop())
}

func rec(district, gender string, year int, count float64) contracts.Record {
	return contracts.Record{DistrictName: district, Gender: gender, Year: year, Count: count}
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	table := contracts.NewTable([]contracts.Record{
		rec("CITEUREUP", contracts.GenderMale, 2021, 3),
		rec("CIBINONG", contracts.GenderMale, 2021, 10),
		rec("CIBINONG", contracts.GenderFemale, 2021, 4),
		rec("CIBINONG", contracts.GenderMale, 2022, 6),
		rec("CITEUREUP", contracts.GenderFemale, 2022, 20),
		rec("GUNUNG PUTRI", contracts.GenderFemale, 2022, 2),
	}, contracts.LoadStats{TotalRows: 7, DroppedRows: 1})

	p, err := New(table, sumModel(), DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	return p
}

func TestPipeline_Aggregates(t *testing.T) {
	p := newTestPipeline(t)

	assert.Equal(t, []contracts.DistrictTotal{
		{District: "CITEUREUP", Count: 23},
		{District: "CIBINONG", Count: 20},
		{District: "GUNUNG PUTRI", Count: 2},
	}, p.DistrictTotals())

	assert.Equal(t, []contracts.YearlyTotal{
		{Year: 2021, Count: 17},
		{Year: 2022, Count: 28},
	}, p.YearlyTotals())

	assert.Equal(t, []string{"CIBINONG", "CITEUREUP", "GUNUNG PUTRI"}, p.Districts())
	assert.Equal(t, []string{contracts.GenderMale, contracts.GenderFemale}, p.Genders())
	assert.Equal(t, []int{2021, 2022}, p.Years())
	assert.Len(t, p.DistrictGender(), 5)
}

func TestPipeline_TopDistricts(t *testing.T) {
	p := newTestPipeline(t)

	top := p.TopDistricts(2)
	require.Len(t, top, 2)
	assert.Equal(t, "CITEUREUP", top[0].District)

	assert.Len(t, p.TopDistricts(0), 3) // default 5, only 3 available
}

func TestPipeline_EvaluationIsPerfectForSumModel(t *testing.T) {
	p := newTestPipeline(t)

	ev := p.Evaluate()
	assert.True(t, ev.Available)
	assert.Equal(t, 3, ev.Samples)
	assert.Equal(t, 0.0, ev.MAE)
	assert.True(t, ev.R2Defined)
	assert.InDelta(t, 1.0, ev.R2, 1e-12)
}

func TestPipeline_Features(t *testing.T) {
	p := newTestPipeline(t)

	rows, stats := p.Features()
	assert.Equal(t, []contracts.FeatureRow{
		{District: "CIBINONG", Male: 16, Female: 4},
		{District: "CITEUREUP", Male: 3, Female: 20},
		{District: "GUNUNG PUTRI", Male: 0, Female: 2},
	}, rows)
	assert.Equal(t, 3, stats.Districts)
}

func TestPipeline_DistrictDetail(t *testing.T) {
	p := newTestPipeline(t)

	rows, err := p.DistrictDetail("CIBINONG")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "CIBINONG", r.DistrictName)
	}
	// file order preserved
	assert.Equal(t, 10.0, rows[0].Count)
	assert.Equal(t, 4.0, rows[1].Count)
	assert.Equal(t, 6.0, rows[2].Count)

	_, err = p.DistrictDetail("NOWHERE")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestPipeline_FilterByGender(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.FilterByGender(contracts.GenderFemale)
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, []contracts.DistrictTotal{
		{District: "CIBINONG", Count: 4},
		{District: "CITEUREUP", Count: 20},
		{District: "GUNUNG PUTRI", Count: 2},
	}, res.Districts)

	res, err = p.FilterByGender("Unknown")
	require.NoError(t, err)
	assert.Empty(t, res.Districts)
	assert.Equal(t, WarnGenderNotFound, res.Warning)
}

func TestPipeline_Scenario(t *testing.T) {
	p := newTestPipeline(t)

	sc := p.Scenario(50)
	require.Len(t, sc.Points, 2)
	assert.InDelta(t, 8.5, sc.Points[0].Adjusted, 1e-9)
	assert.InDelta(t, 14.0, sc.Points[1].Adjusted, 1e-9)
}

func TestPipeline_Predict(t *testing.T) {
	p := newTestPipeline(t)

	pred, err := p.Predict(10, 5)
	require.NoError(t, err)
	assert.Equal(t, contracts.Prediction{Male: 10, Female: 5, Total: 15}, pred)

	_, err = p.Predict(-1, 5)
	assert.ErrorIs(t, err, contracts.ErrInvalidInput)
}

func TestPipeline_Summary(t *testing.T) {
	p := newTestPipeline(t)

	s := p.Summary()
	assert.Equal(t, 7, s.Load.TotalRows)
	assert.Equal(t, 1, s.Load.DroppedRows)
	assert.Equal(t, 3, s.Districts)
	assert.Equal(t, 45.0, s.GrandTotal)
	assert.Equal(t, "sum", s.Model)
	assert.True(t, s.Evaluation.Available)
}

func TestPipeline_ReturnsCopies(t *testing.T) {
	p := newTestPipeline(t)

	totals := p.DistrictTotals()
	totals[0].Count = -1

	assert.Equal(t, 23.0, p.DistrictTotals()[0].Count)
}

func TestPipeline_UnknownYearCountsOutsideYearlyView(t *testing.T) {
	table := contracts.NewTable([]contracts.Record{
		rec("CIBINONG", contracts.GenderMale, 2021, 42),
		rec("CIBINONG", contracts.GenderMale, contracts.YearUnknown, 42),
		rec("CIBINONG", contracts.GenderFemale, contracts.YearUnknown, 7),
	}, contracts.LoadStats{TotalRows: 3})

	p, err := New(table, sumModel(), DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 91.0, p.Summary().GrandTotal)
	assert.Equal(t, []contracts.DistrictTotal{{District: "CIBINONG", Count: 91}}, p.DistrictTotals())
	assert.Equal(t, []contracts.YearlyTotal{{Year: 2021, Count: 42}}, p.YearlyTotals())
	assert.Equal(t, []int{2021}, p.Years())

	features, _ := p.Features()
	require.Len(t, features, 1)
	assert.Equal(t, 84.0, features[0].Male)
	assert.Equal(t, 7.0, features[0].Female)
}

func TestPipeline_EmptyTable(t *testing.T) {
	p, err := New(contracts.NewTable(nil, contracts.LoadStats{TotalRows: 3, DroppedRows: 3}), sumModel(), DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	assert.Empty(t, p.DistrictTotals())
	assert.Empty(t, p.YearlyTotals())
	assert.False(t, p.Evaluate().Available)

	res, err := p.FilterByGender(contracts.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, WarnGenderNotFound, res.Warning)

	v, err := p.View(contracts.ModeDistrictDetail, "")
	require.NoError(t, err)
	assert.Equal(t, WarnNoData, v.Warning)
}
