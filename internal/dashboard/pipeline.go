package dashboard

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/hivdash/internal/analytics"
	"github.com/wonny/hivdash/internal/contracts"
)

// =============================================================================
// Pipeline
// Load -> Aggregate -> Pivot -> Evaluate, computed once; every view reads the result.
// =============================================================================

// Predictor is what the pipeline needs from the model adapter
type Predictor interface {
	analytics.BatchPredictor
	PredictOne(male, female int) (float64, error)
	Features() [2]string
	Name() string
}

// Options tunes the views
type Options struct {
	TopN int
}

// DefaultOptions returns the dashboard defaults
func DefaultOptions() Options {
	return Options{TopN: 5}
}

// Pipeline holds the Cleaned Table and everything derived from it.
// It is immutable after New and safe for concurrent readers.
type Pipeline struct {
	table *contracts.Table
	model Predictor
	opt   Options
	frame *frame

	districtGender []contracts.DistrictGenderTotal
	districtTotals []contracts.DistrictTotal
	genderTotals   []contracts.GenderTotal
	yearlyTotals   []contracts.YearlyTotal
	features       []contracts.FeatureRow
	pivotStats     contracts.PivotStats
	evaluation     contracts.Evaluation

	districts []string
	genders   []string

	log zerolog.Logger
}

// New runs the pipeline over table
func New(table *contracts.Table, model Predictor, opt Options, log zerolog.Logger) (*Pipeline, error) {
	if opt.TopN <= 0 {
		opt.TopN = DefaultOptions().TopN
	}

	p := &Pipeline{
		table: table,
		model: model,
		opt:   opt,
		log:   log.With().Str("component", "dashboard.pipeline").Logger(),
	}

	fr, err := newFrame(table)
	if err != nil {
		return nil, err
	}
	p.frame = fr

	p.districtGender = analytics.AggregateByDistrictGender(table)
	p.districtTotals = analytics.CollapseGender(p.districtGender)
	p.genderTotals = analytics.AggregateByGender(table)
	p.yearlyTotals = analytics.AggregateByYear(table)

	p.features, p.pivotStats = analytics.BuildFeatures(p.districtGender, model.Features())
	if total := p.pivotStats.DiscardedTotal(); total > 0 {
		p.log.Warn().
			Interface("categories", p.pivotStats.DiscardedCategories).
			Float64("count", total).
			Msg("gender categories outside the model features were ignored")
	}

	p.evaluation, err = analytics.NewEvaluator(model, log).Evaluate(p.features)
	if err != nil {
		return nil, fmt.Errorf("evaluate model: %w", err)
	}

	for _, d := range p.districtTotals {
		p.districts = append(p.districts, d.District)
	}
	sort.Strings(p.districts)
	for _, g := range p.genderTotals {
		p.genders = append(p.genders, g.Gender)
	}

	stats := table.Stats()
	p.log.Info().
		Int("rows", table.Len()).
		Int("dropped", stats.DroppedRows).
		Int("districts", len(p.districts)).
		Int("genders", len(p.genders)).
		Msg("pipeline ready")

	return p, nil
}

// Table returns the Cleaned Table
func (p *Pipeline) Table() *contracts.Table { return p.table }

// ModelName returns the loaded model's display name
func (p *Pipeline) ModelName() string { return p.model.Name() }

// DistrictGender returns the (district, gender) aggregate
func (p *Pipeline) DistrictGender() []contracts.DistrictGenderTotal {
	return append([]contracts.DistrictGenderTotal(nil), p.districtGender...)
}

// DistrictTotals returns per-district totals, descending
func (p *Pipeline) DistrictTotals() []contracts.DistrictTotal {
	return append([]contracts.DistrictTotal(nil), p.districtTotals...)
}

// TopDistricts returns the n largest districts; n <= 0 uses the configured default
func (p *Pipeline) TopDistricts(n int) []contracts.DistrictTotal {
	if n <= 0 {
		n = p.opt.TopN
	}
	return analytics.TopN(p.districtTotals, n)
}

// GenderTotals returns per-gender totals
func (p *Pipeline) GenderTotals() []contracts.GenderTotal {
	return append([]contracts.GenderTotal(nil), p.genderTotals...)
}

// YearlyTotals returns per-year totals, ascending by year
func (p *Pipeline) YearlyTotals() []contracts.YearlyTotal {
	return append([]contracts.YearlyTotal(nil), p.yearlyTotals...)
}

// Features returns the pivoted model inputs and pivot stats
func (p *Pipeline) Features() ([]contracts.FeatureRow, contracts.PivotStats) {
	return append([]contracts.FeatureRow(nil), p.features...), p.pivotStats
}

// Evaluate returns the model evaluation computed at startup
func (p *Pipeline) Evaluate() contracts.Evaluation {
	return p.evaluation
}

// Scenario simulates a prevention reduction of pct percent over the yearly totals
func (p *Pipeline) Scenario(pct float64) contracts.Scenario {
	return analytics.Simulate(p.yearlyTotals, pct)
}

// Predict runs an ad-hoc prediction
func (p *Pipeline) Predict(male, female int) (contracts.Prediction, error) {
	total, err := p.model.PredictOne(male, female)
	if err != nil {
		return contracts.Prediction{}, err
	}
	return contracts.Prediction{Male: male, Female: female, Total: total}, nil
}

// Districts returns district names, ascending
func (p *Pipeline) Districts() []string {
	return append([]string(nil), p.districts...)
}

// Genders returns observed gender categories, ascending
func (p *Pipeline) Genders() []string {
	return append([]string(nil), p.genders...)
}

// Years returns observed years, ascending
func (p *Pipeline) Years() []int {
	years := make([]int, len(p.yearlyTotals))
	for i, y := range p.yearlyTotals {
		years[i] = y.Year
	}
	return years
}

// DistrictDetail returns every row of one district in file order
func (p *Pipeline) DistrictDetail(name string) ([]contracts.Record, error) {
	rows, err := p.frame.where(contracts.ColDistrictName, name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("district %q: %w", name, contracts.ErrNotFound)
	}
	return rows, nil
}

// FilterByGender sums one gender category per district, alphabetically.
// An unknown category is not an error: the result carries a warning instead.
func (p *Pipeline) FilterByGender(gender string) (contracts.GenderFilterResult, error) {
	rows, err := p.frame.where(contracts.ColGender, gender)
	if err != nil {
		return contracts.GenderFilterResult{}, err
	}

	result := contracts.GenderFilterResult{
		Gender:    gender,
		Districts: analytics.SumByDistrict(rows),
	}
	if len(rows) == 0 {
		result.Warning = WarnGenderNotFound
	}
	return result, nil
}

// Summary returns the dashboard headline block
func (p *Pipeline) Summary() contracts.Summary {
	return contracts.Summary{
		Load:       p.table.Stats(),
		Pivot:      p.pivotStats,
		Districts:  len(p.districts),
		Genders:    p.Genders(),
		Years:      p.Years(),
		GrandTotal: p.table.GrandTotal(),
		Evaluation: p.evaluation,
		Model:      p.model.Name(),
	}
}
