package dashboard

import (
	"fmt"

	"github.com/wonny/hivdash/internal/contracts"
)

// User-facing warnings, in the dashboard's language
const (
	WarnGenderNotFound = "Data tidak ditemukan untuk gender ini."
	WarnNoAggregate    = "Data agregasi kosong. Tidak dapat mengevaluasi model."
	WarnNoData         = "Data kosong."
)

// View renders one visualisation. district is used only by district-detail;
// empty selects the first district alphabetically.
func (p *Pipeline) View(mode contracts.VisualMode, district string) (contracts.View, error) {
	v := contracts.View{Mode: mode}

	switch mode {
	case contracts.ModeDistrictBar:
		v.DistrictTotals = p.DistrictTotals()
		if len(v.DistrictTotals) == 0 {
			v.Warning = WarnNoData
		}

	case contracts.ModeGenderPie:
		v.GenderTotals = p.GenderTotals()
		if len(v.GenderTotals) == 0 {
			v.Warning = WarnNoData
		}

	case contracts.ModeTop5:
		v.TopDistricts = p.TopDistricts(p.opt.TopN)
		if len(v.TopDistricts) == 0 {
			v.Warning = WarnNoData
		}

	case contracts.ModeDistrictDetail:
		if district == "" {
			if len(p.districts) == 0 {
				v.Warning = WarnNoData
				return v, nil
			}
			district = p.districts[0]
		}
		rows, err := p.DistrictDetail(district)
		if err != nil {
			return contracts.View{}, err
		}
		v.District = district
		v.Rows = rows

	default:
		return contracts.View{}, fmt.Errorf("visual mode %q: %w", mode, contracts.ErrInvalidInput)
	}

	return v, nil
}

// ValidateReduction checks a prevention percentage against the slider's range and step
func ValidateReduction(pct, step int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("reduction %d%% outside 0..100: %w", pct, contracts.ErrInvalidInput)
	}
	if step > 0 && pct%step != 0 {
		return fmt.Errorf("reduction %d%% is not a multiple of %d: %w", pct, step, contracts.ErrInvalidInput)
	}
	return nil
}
