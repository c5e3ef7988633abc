package handlers

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/hivdash/internal/contracts"
	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/logger"
)

//go:embed templates/index.html
var indexHTML string

var pageTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	"f2":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"f1":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"f0":  func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"inc": func(i int) int { return i + 1 },
}).Parse(indexHTML))

// modeOption is one entry of the visualisation selector
type modeOption struct {
	Value    string
	Title    string
	Selected bool
}

type genderShare struct {
	Gender   string
	Count    float64
	SharePct float64
}

type pageData struct {
	Summary    contracts.Summary
	EvalNotice string

	Modes    []modeOption
	Mode     contracts.VisualMode
	View     contracts.View
	ViewErr  string
	Shares   []genderShare
	District string

	Districts []string
	Genders   []string

	Gender       string
	GenderResult *contracts.GenderFilterResult

	Male, Female int
	Prediction   *contracts.Prediction
	PredictErr   string

	Reduction        int
	ReductionOptions []int
	Scenario         contracts.Scenario
	ScenarioImg      string
}

// PageHandler renders the server-side dashboard page
type PageHandler struct {
	pipeline *dashboard.Pipeline
	cfg      config.DashboardConfig
	limiter  Limiter
	logger   *logger.Logger
}

// NewPageHandler creates the page handler
func NewPageHandler(p *dashboard.Pipeline, cfg config.DashboardConfig, limiter Limiter, log *logger.Logger) *PageHandler {
	return &PageHandler{pipeline: p, cfg: cfg, limiter: limiter, logger: log}
}

// GetIndex renders the dashboard. Every control is a GET query parameter:
// mode, district, gender, male, female, reduction.
// GET /
func (h *PageHandler) GetIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{
		Summary:   h.pipeline.Summary(),
		Districts: h.pipeline.Districts(),
		Genders:   h.pipeline.Genders(),
	}
	if !data.Summary.Evaluation.Available {
		data.EvalNotice = dashboard.WarnNoAggregate
	}

	h.fillView(&data, q)
	h.fillGender(r.Context(), &data, q)
	h.fillPrediction(&data, r)

	pct, err := reductionParam(r, h.cfg)
	if err != nil {
		pct = h.cfg.DefaultReductionPct
	}
	data.Reduction = pct
	step := h.cfg.ReductionStepPct
	if step <= 0 {
		step = 100
	}
	for v := 0; v <= 100; v += step {
		data.ReductionOptions = append(data.ReductionOptions, v)
	}
	data.Scenario = h.pipeline.Scenario(float64(pct))
	data.ScenarioImg = fmt.Sprintf("/charts/scenario.png?reduction=%d", pct)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Page render failed")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *PageHandler) fillView(data *pageData, q url.Values) {
	mode, err := contracts.ParseVisualMode(q.Get("mode"))
	if err != nil {
		data.ViewErr = err.Error()
		mode = contracts.ModeDistrictBar
	}
	data.Mode = mode
	for _, m := range contracts.VisualModes() {
		data.Modes = append(data.Modes, modeOption{Value: string(m), Title: m.Title(), Selected: m == mode})
	}

	view, err := h.pipeline.View(mode, q.Get("district"))
	if err != nil {
		data.ViewErr = err.Error()
		return
	}
	data.View = view
	data.District = view.District

	if mode == contracts.ModeGenderPie {
		var grand float64
		for _, g := range view.GenderTotals {
			grand += g.Count
		}
		for _, g := range view.GenderTotals {
			data.Shares = append(data.Shares, genderShare{Gender: g.Gender, Count: g.Count, SharePct: g.Share(grand)})
		}
	}
}

func (h *PageHandler) fillGender(ctx context.Context, data *pageData, q url.Values) {
	gender := q.Get("gender")
	if gender == "" && len(data.Genders) > 0 {
		gender = data.Genders[0]
	}
	data.Gender = gender

	result, err := h.pipeline.FilterByGender(gender)
	if err != nil {
		logger.FromContext(ctx, h.logger).WithError(err).Error("Gender filter failed")
		return
	}
	data.GenderResult = &result
}

func (h *PageHandler) fillPrediction(data *pageData, r *http.Request) {
	q := r.URL.Query()
	if strings.TrimSpace(q.Get("male")) == "" && strings.TrimSpace(q.Get("female")) == "" {
		return
	}

	male, err := intParam(r, "male", 0)
	if err == nil {
		data.Male = male
		data.Female, err = intParam(r, "female", 0)
	}
	if err != nil {
		data.PredictErr = err.Error()
		return
	}

	if d, lerr := h.limiter.Allow(r.Context()); lerr != nil || !d.Allowed {
		data.PredictErr = ErrRateLimited.Error()
		return
	}

	pred, err := h.pipeline.Predict(data.Male, data.Female)
	if err != nil {
		data.PredictErr = err.Error()
		return
	}
	data.Prediction = &pred
}
