package contracts

import (
	"fmt"
	"strings"
)

// VisualMode selects one of the four dashboard visualisations
type VisualMode string

const (
	ModeDistrictBar    VisualMode = "district-bar"    // bar chart of district totals
	ModeGenderPie      VisualMode = "gender-pie"      // gender distribution
	ModeTop5           VisualMode = "top5"            // top districts table
	ModeDistrictDetail VisualMode = "district-detail" // all rows of one district
)

// VisualModes returns every mode in selector order
func VisualModes() []VisualMode {
	return []VisualMode{ModeDistrictBar, ModeGenderPie, ModeTop5, ModeDistrictDetail}
}

// Title returns the selector label of the mode
func (m VisualMode) Title() string {
	switch m {
	case ModeDistrictBar:
		return "Bar Chart per Kecamatan"
	case ModeGenderPie:
		return "Pie Chart Gender"
	case ModeTop5:
		return "Top 5 Kecamatan"
	case ModeDistrictDetail:
		return "Data Lengkap per Kecamatan"
	default:
		return string(m)
	}
}

// ParseVisualMode parses a selector value; empty means district-bar
func ParseVisualMode(s string) (VisualMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeDistrictBar, nil
	}
	for _, m := range VisualModes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown visual mode %q: %w", s, ErrInvalidInput)
}

// View is the result of one visualisation. Exactly one payload is set, matching Mode.
type View struct {
	Mode VisualMode `json:"mode"`

	DistrictTotals []DistrictTotal `json:"district_totals,omitempty"` // district-bar
	GenderTotals   []GenderTotal   `json:"gender_totals,omitempty"`   // gender-pie
	TopDistricts   []DistrictTotal `json:"top_districts,omitempty"`   // top5

	// district-detail
	District string   `json:"district,omitempty"`
	Rows     []Record `json:"rows,omitempty"`

	Warning string `json:"warning,omitempty"`
}

// GenderFilterResult is the per-district breakdown for one gender category
type GenderFilterResult struct {
	Gender    string          `json:"gender"`
	Districts []DistrictTotal `json:"districts"`
	Warning   string          `json:"warning,omitempty"`
}

// Summary is the headline block of the dashboard
type Summary struct {
	Load       LoadStats  `json:"load"`
	Pivot      PivotStats `json:"pivot"`
	Districts  int        `json:"districts"`
	Genders    []string   `json:"genders"`
	Years      []int      `json:"years"`
	GrandTotal float64    `json:"grand_total"`
	Evaluation Evaluation `json:"evaluation"`
	Model      string     `json:"model"`
}
