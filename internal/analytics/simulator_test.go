package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/internal/contracts"
)

func TestSimulate(t *testing.T) {
	years := []contracts.YearlyTotal{
		{Year: 2021, Count: 100},
		{Year: 2022, Count: 200},
	}

	tests := []struct {
		name     string
		pct      float64
		expected []float64
	}{
		{"twenty percent", 20, []float64{80, 160}},
		{"no reduction", 0, []float64{100, 200}},
		{"full reduction", 100, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := Simulate(years, tt.pct)

			assert.Equal(t, tt.pct, sc.ReductionPct)
			require.Len(t, sc.Points, len(years))
			for i, p := range sc.Points {
				assert.Equal(t, years[i].Year, p.Year)
				assert.Equal(t, years[i].Count, p.Actual)
				assert.InDelta(t, tt.expected[i], p.Adjusted, 1e-9)
			}
		})
	}
}

func TestSimulate_Empty(t *testing.T) {
	sc := Simulate(nil, 10)

	assert.Empty(t, sc.Points)
	actual, adjusted := sc.Totals()
	assert.Equal(t, 0.0, actual)
	assert.Equal(t, 0.0, adjusted)
}
