package analytics

import "github.com/wonny/hivdash/internal/contracts"

// Simulate applies a uniform prevention reduction to each yearly total:
// adjusted = actual * (1 - pct/100). Range checks on pct are the caller's job.
func Simulate(years []contracts.YearlyTotal, pct float64) contracts.Scenario {
	factor := 1 - pct/100

	points := make([]contracts.ScenarioPoint, len(years))
	for i, y := range years {
		points[i] = contracts.ScenarioPoint{
			Year:     y.Year,
			Actual:   y.Count,
			Adjusted: y.Count * factor,
		}
	}

	return contracts.Scenario{ReductionPct: pct, Points: points}
}
