package contracts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_IsImmutable(t *testing.T) {
	src := []Record{
		{DistrictName: "Cibinong", Gender: GenderMale, Count: 3},
		{DistrictName: "Cibinong", Gender: GenderFemale, Count: 2},
	}
	table := NewTable(src, LoadStats{TotalRows: 3, DroppedRows: 1})

	// Mutating the source slice does not leak into the table
	src[0].Count = 100
	assert.Equal(t, 3.0, table.At(0).Count)

	// Mutating a returned copy does not leak either
	rows := table.Records()
	rows[1].Count = 100
	assert.Equal(t, 2.0, table.At(1).Count)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 5.0, table.GrandTotal())
	assert.Equal(t, 2, table.Stats().KeptRows())
}

func TestColumns(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, 9)
	assert.Equal(t, ColCount, cols[7])
	assert.Equal(t, [2]string{"Laki-Laki", "Perempuan"}, CanonicalGenders())
}

func TestFeatureRow(t *testing.T) {
	f := FeatureRow{District: "Bogor", Male: 10, Female: 5}
	assert.Equal(t, []float64{10, 5}, f.Vector())
	assert.Equal(t, 15.0, f.Total())
}

func TestGenderTotal_Share(t *testing.T) {
	assert.InDelta(t, 25.0, GenderTotal{Count: 1}.Share(4), 1e-9)
	assert.Equal(t, 0.0, GenderTotal{Count: 1}.Share(0))
}

func TestPivotStats_DiscardedTotal(t *testing.T) {
	s := PivotStats{DiscardedCategories: map[string]float64{"Tidak Diketahui": 2, "L": 3}}
	assert.Equal(t, 5.0, s.DiscardedTotal())
	assert.Equal(t, 0.0, PivotStats{}.DiscardedTotal())
}

func TestScenario_Totals(t *testing.T) {
	s := Scenario{Points: []ScenarioPoint{{Actual: 100, Adjusted: 80}, {Actual: 200, Adjusted: 160}}}
	actual, adjusted := s.Totals()
	assert.Equal(t, 300.0, actual)
	assert.Equal(t, 240.0, adjusted)
}

func TestParseVisualMode(t *testing.T) {
	tests := []struct {
		input   string
		want    VisualMode
		wantErr bool
	}{
		{"", ModeDistrictBar, false},
		{"district-bar", ModeDistrictBar, false},
		{" GENDER-PIE ", ModeGenderPie, false},
		{"top5", ModeTop5, false},
		{"district-detail", ModeDistrictDetail, false},
		{"scatter", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVisualMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVisualMode_Title(t *testing.T) {
	for _, m := range VisualModes() {
		assert.NotEqual(t, string(m), m.Title(), "mode %s should have a label", m)
	}
}
