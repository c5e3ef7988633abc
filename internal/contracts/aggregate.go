package contracts

// DistrictGenderTotal is one entry of the (district, gender) aggregate
type DistrictGenderTotal struct {
	District string  `json:"district"`
	Gender   string  `json:"gender"`
	Count    float64 `json:"count"`
}

// DistrictTotal is the count of one district summed across genders
type DistrictTotal struct {
	District string  `json:"district"`
	Count    float64 `json:"count"`
}

// GenderTotal is the count of one gender category summed across districts
type GenderTotal struct {
	Gender string  `json:"gender"`
	Count  float64 `json:"count"`
}

// Share returns this gender's share of total in percent (0 when total is 0)
func (g GenderTotal) Share(total float64) float64 {
	if total == 0 {
		return 0
	}
	return g.Count / total * 100
}

// YearlyTotal is the count of one year
type YearlyTotal struct {
	Year  int     `json:"year"`
	Count float64 `json:"count"`
}

// FeatureRow is the two-column model input of one district
// Column order is fixed: Male (Laki-Laki), Female (Perempuan)
type FeatureRow struct {
	District string  `json:"district"`
	Male     float64 `json:"male"`
	Female   float64 `json:"female"`
}

// Vector returns the features in model order
func (f FeatureRow) Vector() []float64 {
	return []float64{f.Male, f.Female}
}

// Total returns the row sum, used as the evaluation ground truth
func (f FeatureRow) Total() float64 {
	return f.Male + f.Female
}

// PivotStats reports what the pivot kept and ignored
type PivotStats struct {
	Districts int `json:"districts"`
	// Summed counts of gender categories outside the canonical pair
	DiscardedCategories map[string]float64 `json:"discarded_categories,omitempty"`
}

// DiscardedTotal sums the ignored counts
func (s PivotStats) DiscardedTotal() float64 {
	var sum float64
	for _, v := range s.DiscardedCategories {
		sum += v
	}
	return sum
}
