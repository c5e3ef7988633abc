package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/hivdash/internal/contracts"
	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/logger"
)

// DashboardHandler serves the dashboard data as JSON
// ⭐ SSOT: JSON API handlers read the pipeline only through this struct
type DashboardHandler struct {
	pipeline *dashboard.Pipeline
	cfg      config.DashboardConfig
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(p *dashboard.Pipeline, cfg config.DashboardConfig, m *metrics.Metrics, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		pipeline: p,
		cfg:      cfg,
		metrics:  m,
		logger:   log,
	}
}

// GetSummary returns load stats, totals and the evaluation
// GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.pipeline.Summary())
}

// GetEvaluation returns MAE and R²
// GET /api/evaluation
func (h *DashboardHandler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.pipeline.Evaluate())
}

// GetDistricts returns district totals, descending
// GET /api/districts
func (h *DashboardHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"districts": h.pipeline.DistrictTotals(),
	})
}

// GetTopDistricts returns the n largest districts
// GET /api/districts/top?n=5
func (h *DashboardHandler) GetTopDistricts(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r, "n", h.cfg.TopN)
	if err != nil {
		respondErr(w, err)
		return
	}
	if n <= 0 {
		respondErr(w, fmt.Errorf("n must be > 0: %w", contracts.ErrInvalidInput))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"n":         n,
		"districts": h.pipeline.TopDistricts(n),
	})
}

// GetDistrictDetail returns every row of one district
// GET /api/districts/{name}
func (h *DashboardHandler) GetDistrictDetail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	rows, err := h.pipeline.DistrictDetail(name)
	if err != nil {
		respondErr(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"district": name,
		"rows":     rows,
	})
}

// GetGenders returns gender totals with their share in percent
// GET /api/genders
func (h *DashboardHandler) GetGenders(w http.ResponseWriter, r *http.Request) {
	totals := h.pipeline.GenderTotals()

	var grand float64
	for _, g := range totals {
		grand += g.Count
	}

	type genderShare struct {
		contracts.GenderTotal
		SharePct float64 `json:"share_pct"`
	}
	out := make([]genderShare, len(totals))
	for i, g := range totals {
		out[i] = genderShare{GenderTotal: g, SharePct: g.Share(grand)}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"genders": out,
	})
}

// GetGenderDistricts returns per-district sums of one gender.
// An unknown gender is a 200 with a warning, as on the page.
// GET /api/genders/{gender}/districts
func (h *DashboardHandler) GetGenderDistricts(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.FilterByGender(mux.Vars(r)["gender"])
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Gender filter failed")
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetYears returns yearly totals
// GET /api/years
func (h *DashboardHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"years": h.pipeline.YearlyTotals(),
	})
}

// GetFeatures returns the pivoted model inputs
// GET /api/features
func (h *DashboardHandler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	rows, stats := h.pipeline.Features()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"features": rows,
		"pivot":    stats,
	})
}

// GetView renders one visual mode as data
// GET /api/view?mode=district-bar&district=
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode, err := contracts.ParseVisualMode(q.Get("mode"))
	if err != nil {
		respondErr(w, err)
		return
	}

	view, err := h.pipeline.View(mode, q.Get("district"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetScenario simulates a prevention reduction
// GET /api/scenario?reduction=10
func (h *DashboardHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	pct, err := reductionParam(r, h.cfg)
	if err != nil {
		respondErr(w, err)
		return
	}

	sc := h.pipeline.Scenario(float64(pct))
	actual, adjusted := sc.Totals()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenario":       sc,
		"total_actual":   actual,
		"total_adjusted": adjusted,
	})
}

// PredictRequest is the body of a prediction request
type PredictRequest struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

// Predict runs an ad-hoc prediction. Throttling is applied by the router.
// POST /api/predict
func (h *DashboardHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.metrics.IncrementPrediction("invalid")
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := h.pipeline.Predict(req.Male, req.Female)
	if err != nil {
		h.metrics.IncrementPrediction(outcome(err))
		respondErr(w, err)
		return
	}

	h.metrics.IncrementPrediction("ok")
	respondJSON(w, http.StatusOK, pred)
}

// reductionParam reads ?reduction=, defaulting and validating against the slider config
func reductionParam(r *http.Request, cfg config.DashboardConfig) (int, error) {
	pct, err := intParam(r, "reduction", cfg.DefaultReductionPct)
	if err != nil {
		return 0, err
	}
	if err := dashboard.ValidateReduction(pct, cfg.ReductionStepPct); err != nil {
		return 0, err
	}
	return pct, nil
}

func outcome(err error) string {
	if StatusFor(err) == http.StatusBadRequest {
		return "invalid"
	}
	return "error"
}
