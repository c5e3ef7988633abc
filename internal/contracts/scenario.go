package contracts

// ScenarioPoint pairs the actual and post-prevention count of one year
type ScenarioPoint struct {
	Year     int     `json:"year"`
	Actual   float64 `json:"actual"`
	Adjusted float64 `json:"adjusted"`
}

// Scenario is the prevention-impact series for one reduction percentage
type Scenario struct {
	ReductionPct float64         `json:"reduction_pct"`
	Points       []ScenarioPoint `json:"points"`
}

// Totals returns the summed actual and adjusted counts
func (s Scenario) Totals() (actual, adjusted float64) {
	for _, p := range s.Points {
		actual += p.Actual
		adjusted += p.Adjusted
	}
	return actual, adjusted
}
