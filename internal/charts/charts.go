package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/wonny/hivdash/internal/contracts"
)

// Kind names a renderable chart
type Kind string

const (
	KindDistricts Kind = "districts"
	KindGenders   Kind = "genders"
	KindScenario  Kind = "scenario"
)

// ParseKind validates a chart name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindDistricts, KindGenders, KindScenario:
		return k, nil
	default:
		return "", fmt.Errorf("chart %q: %w", s, contracts.ErrNotFound)
	}
}

var (
	colorBar    = color.RGBA{R: 135, G: 206, B: 235, A: 255} // skyblue
	colorMale   = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 255}
	colorFemale = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 255}
	colorActual = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	colorAfter  = color.RGBA{R: 34, G: 139, B: 34, A: 255}
)

// Size of rendered images
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize is 12x6 inches
func DefaultSize() Size {
	return Size{Width: 12 * vg.Inch, Height: 6 * vg.Inch}
}

// DistrictBar renders total patients per district, in the given (descending) order
func DistrictBar(totals []contracts.DistrictTotal, size Size) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Total Pasien HIV per Kecamatan"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "Jumlah Pasien HIV"
	p.Y.Min = 0

	if len(totals) > 0 {
		values := make(plotter.Values, len(totals))
		labels := make([]string, len(totals))
		for i, d := range totals {
			values[i] = d.Count
			labels[i] = d.District
		}

		bars, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return nil, fmt.Errorf("district bars: %w", err)
		}
		bars.Color = colorBar
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		p.NominalX(labels...)
		p.X.Tick.Label.Rotation = math.Pi / 2
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}

	return render(p, size)
}

// GenderShare renders the gender distribution as percentage bars labelled with
// one decimal, the same figures a pie chart would show
func GenderShare(totals []contracts.GenderTotal, size Size) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Distribusi Pasien HIV berdasarkan Gender"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "%"
	p.Y.Min = 0
	p.Y.Max = 110

	var grand float64
	for _, g := range totals {
		grand += g.Count
	}

	labels := make([]string, len(totals))
	for i, g := range totals {
		share := g.Share(grand)

		bar, err := plotter.NewBarChart(plotter.Values{share}, vg.Points(60))
		if err != nil {
			return nil, fmt.Errorf("gender bar %s: %w", g.Gender, err)
		}
		bar.XMin = float64(i)
		bar.Color = genderColor(g.Gender, i)
		bar.LineStyle.Width = vg.Length(0)
		p.Add(bar)

		text, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: float64(i), Y: share + 2}},
			Labels: []string{fmt.Sprintf("%.1f%%", share)},
		})
		if err != nil {
			return nil, fmt.Errorf("gender label %s: %w", g.Gender, err)
		}
		p.Add(text)

		labels[i] = g.Gender
	}
	if len(labels) > 0 {
		p.NominalX(labels...)
	}

	return render(p, size)
}

// ScenarioLines renders actual vs post-prevention yearly counts
func ScenarioLines(sc contracts.Scenario, size Size) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Simulasi Dampak Pencegahan Terhadap Jumlah Kasus HIV"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Tahun"
	p.Y.Label.Text = "Jumlah Pasien HIV"
	p.Y.Min = 0
	p.Legend.Top = true

	if len(sc.Points) > 0 {
		actual := make(plotter.XYs, len(sc.Points))
		adjusted := make(plotter.XYs, len(sc.Points))
		for i, pt := range sc.Points {
			actual[i] = plotter.XY{X: float64(pt.Year), Y: pt.Actual}
			adjusted[i] = plotter.XY{X: float64(pt.Year), Y: pt.Adjusted}
		}

		if err := addSeries(p, actual, colorActual, "Kasus Aktual"); err != nil {
			return nil, err
		}
		label := fmt.Sprintf("Skenario Setelah Pencegahan (%g%%)", sc.ReductionPct)
		if err := addSeries(p, adjusted, colorAfter, label); err != nil {
			return nil, err
		}
		p.X.Tick.Marker = yearTicks{}
	}

	return render(p, size)
}

func addSeries(p *plot.Plot, xys plotter.XYs, c color.Color, name string) error {
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("series %s: %w", name, err)
	}
	line.Color = c
	points.Color = c
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	p.Legend.Add(name, line, points)
	return nil
}

func genderColor(gender string, i int) color.Color {
	switch gender {
	case contracts.GenderMale:
		return colorMale
	case contracts.GenderFemale:
		return colorFemale
	}
	if i%2 == 0 {
		return colorMale
	}
	return colorFemale
}

// yearTicks puts one labelled tick on every whole year
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for y := math.Ceil(min); y <= max; y++ {
		ticks = append(ticks, plot.Tick{Value: y, Label: fmt.Sprintf("%.0f", y)})
	}
	return ticks
}

func render(p *plot.Plot, size Size) ([]byte, error) {
	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
