package analytics

import (
	"sort"

	"github.com/wonny/hivdash/internal/contracts"
)

// BuildFeatures reshapes the (district, gender) aggregate into one FeatureRow per district.
//
// order is the model's feature order: order[0] fills Male, order[1] fills Female.
// Districts missing a category get 0 for it. Categories outside order are ignored
// and reported in PivotStats.DiscardedCategories.
func BuildFeatures(agg []contracts.DistrictGenderTotal, order [2]string) ([]contracts.FeatureRow, contracts.PivotStats) {
	stats := contracts.PivotStats{}
	rows := make(map[string]*contracts.FeatureRow)

	for _, a := range agg {
		row, ok := rows[a.District]
		if !ok {
			row = &contracts.FeatureRow{District: a.District}
			rows[a.District] = row
		}

		switch a.Gender {
		case order[0]:
			row.Male += a.Count
		case order[1]:
			row.Female += a.Count
		default:
			if stats.DiscardedCategories == nil {
				stats.DiscardedCategories = make(map[string]float64)
			}
			stats.DiscardedCategories[a.Gender] += a.Count
		}
	}

	out := make([]contracts.FeatureRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })

	stats.Districts = len(out)
	return out, stats
}
