package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/hivdash/internal/charts"
	"github.com/wonny/hivdash/internal/contracts"
)

// Sheet names of the exported workbook
const (
	SheetSummary   = "Ringkasan"
	SheetDistricts = "Kecamatan"
	SheetGenders   = "Gender"
	SheetScenario  = "Simulasi"
	SheetFeatures  = "Fitur"
	SheetData      = "Data"
)

// Source is the read side of the dashboard pipeline
type Source interface {
	Summary() contracts.Summary
	DistrictTotals() []contracts.DistrictTotal
	GenderTotals() []contracts.GenderTotal
	Features() ([]contracts.FeatureRow, contracts.PivotStats)
	Scenario(pct float64) contracts.Scenario
	Table() *contracts.Table
}

// Result lists the files one export wrote
type Result struct {
	Workbook string   `json:"workbook"`
	Charts   []string `json:"charts"`
}

// Exporter writes the dashboard as an XLSX workbook plus chart PNGs
type Exporter struct {
	src          Source
	reductionPct float64
	size         charts.Size
	now          func() time.Time
	log          zerolog.Logger
}

// NewExporter creates an exporter; reductionPct selects the scenario that is exported
func NewExporter(src Source, reductionPct float64, log zerolog.Logger) *Exporter {
	return &Exporter{
		src:          src,
		reductionPct: reductionPct,
		size:         charts.DefaultSize(),
		now:          time.Now,
		log:          log.With().Str("component", "report.exporter").Logger(),
	}
}

// Export writes hivdash_<timestamp>.xlsx and one PNG per chart into dir
func (e *Exporter) Export(ctx context.Context, dir string) (*Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	stamp := e.now().Format("20060102_150405")
	res := &Result{Workbook: filepath.Join(dir, fmt.Sprintf("hivdash_%s.xlsx", stamp))}

	f, err := e.Workbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.SaveAs(res.Workbook); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}

	for _, kind := range []charts.Kind{charts.KindDistricts, charts.KindGenders, charts.KindScenario} {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		data, err := e.Chart(kind)
		if err != nil {
			return res, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", kind, stamp))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return res, fmt.Errorf("write chart %s: %w", kind, err)
		}
		res.Charts = append(res.Charts, path)
	}

	e.log.Info().
		Str("workbook", res.Workbook).
		Int("charts", len(res.Charts)).
		Msg("report exported")

	return res, nil
}

// WriteWorkbook streams the workbook to w
func (e *Exporter) WriteWorkbook(w io.Writer) error {
	f, err := e.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Chart renders one chart kind as PNG
func (e *Exporter) Chart(kind charts.Kind) ([]byte, error) {
	switch kind {
	case charts.KindDistricts:
		return charts.DistrictBar(e.src.DistrictTotals(), e.size)
	case charts.KindGenders:
		return charts.GenderShare(e.src.GenderTotals(), e.size)
	case charts.KindScenario:
		return charts.ScenarioLines(e.src.Scenario(e.reductionPct), e.size)
	default:
		return nil, fmt.Errorf("chart %q: %w", kind, contracts.ErrNotFound)
	}
}

// Workbook builds the in-memory workbook. The caller closes it.
func (e *Exporter) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	steps := []struct {
		sheet string
		fill  func(*excelize.File, string) error
	}{
		{SheetSummary, e.fillSummary},
		{SheetDistricts, e.fillDistricts},
		{SheetGenders, e.fillGenders},
		{SheetScenario, e.fillScenario},
		{SheetFeatures, e.fillFeatures},
		{SheetData, e.fillData},
	}
	for _, s := range steps {
		if s.sheet != SheetSummary {
			if _, err := f.NewSheet(s.sheet); err != nil {
				f.Close()
				return nil, fmt.Errorf("new sheet %s: %w", s.sheet, err)
			}
		}
		if err := s.fill(f, s.sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("fill sheet %s: %w", s.sheet, err)
		}
	}

	return f, nil
}

func (e *Exporter) fillSummary(f *excelize.File, sheet string) error {
	s := e.src.Summary()

	r2 := "tidak terdefinisi"
	if s.Evaluation.R2Defined {
		r2 = fmt.Sprintf("%.4f", s.Evaluation.R2)
	}
	mae := "tidak tersedia"
	if s.Evaluation.Available {
		mae = fmt.Sprintf("%.4f", s.Evaluation.MAE)
	}

	rows := [][]interface{}{
		{"Metrik", "Nilai"},
		{"Model", s.Model},
		{"Baris data", s.Load.TotalRows},
		{"Baris dibuang", s.Load.DroppedRows},
		{"Jumlah kecamatan", s.Districts},
		{"Total pasien", s.GrandTotal},
		{"MAE", mae},
		{"R²", r2},
		{"Catatan", s.Evaluation.Note},
		{"Diekspor", e.now().Format(time.RFC3339)},
	}
	cats := make([]string, 0, len(s.Pivot.DiscardedCategories))
	for cat := range s.Pivot.DiscardedCategories {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		rows = append(rows, []interface{}{"Kategori diabaikan: " + cat, s.Pivot.DiscardedCategories[cat]})
	}
	return writeRows(f, sheet, rows, 28)
}

func (e *Exporter) fillDistricts(f *excelize.File, sheet string) error {
	rows := [][]interface{}{{"Peringkat", "Kecamatan", "Jumlah Pasien HIV"}}
	for i, d := range e.src.DistrictTotals() {
		rows = append(rows, []interface{}{i + 1, d.District, d.Count})
	}
	return writeRows(f, sheet, rows, 22)
}

func (e *Exporter) fillGenders(f *excelize.File, sheet string) error {
	totals := e.src.GenderTotals()
	var grand float64
	for _, g := range totals {
		grand += g.Count
	}

	rows := [][]interface{}{{"Jenis Kelamin", "Jumlah Pasien HIV", "Persentase"}}
	for _, g := range totals {
		rows = append(rows, []interface{}{g.Gender, g.Count, fmt.Sprintf("%.1f%%", g.Share(grand))})
	}
	return writeRows(f, sheet, rows, 20)
}

func (e *Exporter) fillScenario(f *excelize.File, sheet string) error {
	sc := e.src.Scenario(e.reductionPct)

	rows := [][]interface{}{{"Tahun", "Kasus Aktual", fmt.Sprintf("Setelah Pencegahan (%g%%)", sc.ReductionPct)}}
	for _, p := range sc.Points {
		rows = append(rows, []interface{}{p.Year, p.Actual, p.Adjusted})
	}
	return writeRows(f, sheet, rows, 26)
}

func (e *Exporter) fillFeatures(f *excelize.File, sheet string) error {
	features, _ := e.src.Features()

	rows := [][]interface{}{{"Kecamatan", contracts.GenderMale, contracts.GenderFemale, "Total"}}
	for _, r := range features {
		rows = append(rows, []interface{}{r.District, r.Male, r.Female, r.Total()})
	}
	return writeRows(f, sheet, rows, 20)
}

func (e *Exporter) fillData(f *excelize.File, sheet string) error {
	header := make([]interface{}, 0, 9)
	for _, c := range contracts.Columns() {
		header = append(header, c)
	}
	rows := [][]interface{}{header}

	e.src.Table().Each(func(_ int, r contracts.Record) {
		var year interface{} = ""
		if r.HasYear() {
			year = r.Year
		}
		rows = append(rows, []interface{}{
			r.RegionCode, r.DistrictCode, r.RegionName, r.DistrictName,
			year, r.Gender, r.Label, r.Count, r.Unit,
		})
	})
	return writeRows(f, sheet, rows, 18)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, width float64) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, width); err != nil {
			return err
		}
	}
	return nil
}
