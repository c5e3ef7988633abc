package analytics

import (
	"sort"

	"github.com/wonny/hivdash/internal/contracts"
)

// =============================================================================
// Aggregations over the Cleaned Table
// All functions are pure: the table is only read, empty input yields empty output.
// =============================================================================

type districtGenderKey struct {
	district string
	gender   string
}

// AggregateByDistrictGender sums counts per observed (district, gender) pair,
// ordered by district then gender
func AggregateByDistrictGender(table *contracts.Table) []contracts.DistrictGenderTotal {
	sums := make(map[districtGenderKey]float64)
	table.Each(func(_ int, r contracts.Record) {
		sums[districtGenderKey{r.DistrictName, r.Gender}] += r.Count
	})

	out := make([]contracts.DistrictGenderTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, contracts.DistrictGenderTotal{District: k.district, Gender: k.gender, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].District != out[j].District {
			return out[i].District < out[j].District
		}
		return out[i].Gender < out[j].Gender
	})
	return out
}

// AggregateByDistrict collapses the (district, gender) aggregate over gender.
// Sorted by count descending; ties keep district-name order.
func AggregateByDistrict(table *contracts.Table) []contracts.DistrictTotal {
	return CollapseGender(AggregateByDistrictGender(table))
}

// CollapseGender sums a (district, gender) aggregate per district, descending by count
func CollapseGender(agg []contracts.DistrictGenderTotal) []contracts.DistrictTotal {
	sums := make(map[string]float64)
	for _, a := range agg {
		sums[a.District] += a.Count
	}
	return sortDistrictTotals(sums)
}

// SumByDistrict sums arbitrary records per district, ordered by district name.
// Used by the gender filter, which lists districts alphabetically.
func SumByDistrict(records []contracts.Record) []contracts.DistrictTotal {
	sums := make(map[string]float64)
	for _, r := range records {
		sums[r.DistrictName] += r.Count
	}

	out := make([]contracts.DistrictTotal, 0, len(sums))
	for d, v := range sums {
		out = append(out, contracts.DistrictTotal{District: d, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })
	return out
}

// AggregateByGender sums counts per gender category, ordered by category
func AggregateByGender(table *contracts.Table) []contracts.GenderTotal {
	sums := make(map[string]float64)
	table.Each(func(_ int, r contracts.Record) {
		sums[r.Gender] += r.Count
	})

	out := make([]contracts.GenderTotal, 0, len(sums))
	for g, v := range sums {
		out = append(out, contracts.GenderTotal{Gender: g, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gender < out[j].Gender })
	return out
}

// AggregateByYear sums counts per year, ascending by year. Rows with an
// unknown year are left out.
func AggregateByYear(table *contracts.Table) []contracts.YearlyTotal {
	sums := make(map[int]float64)
	table.Each(func(_ int, r contracts.Record) {
		if !r.HasYear() {
			return
		}
		sums[r.Year] += r.Count
	})

	out := make([]contracts.YearlyTotal, 0, len(sums))
	for y, v := range sums {
		out = append(out, contracts.YearlyTotal{Year: y, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// TopN returns the first n entries of a descending district ranking
func TopN(totals []contracts.DistrictTotal, n int) []contracts.DistrictTotal {
	if n < 0 {
		n = 0
	}
	if n > len(totals) {
		n = len(totals)
	}
	out := make([]contracts.DistrictTotal, n)
	copy(out, totals[:n])
	return out
}

func sortDistrictTotals(sums map[string]float64) []contracts.DistrictTotal {
	out := make([]contracts.DistrictTotal, 0, len(sums))
	for d, v := range sums {
		out = append(out, contracts.DistrictTotal{District: d, Count: v})
	}
	// Name order first so the stable count sort breaks ties deterministically
	sort.Slice(out, func(i, j int) bool { return out[i].District < out[j].District })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
