package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/hivdash/internal/charts"
	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/pkg/config"
	"github.com/wonny/hivdash/pkg/logger"
	"github.com/wonny/hivdash/pkg/redis"
)

// ChartHandler serves rendered PNG charts, cached in Redis when enabled
type ChartHandler struct {
	pipeline *dashboard.Pipeline
	cfg      config.DashboardConfig
	cache    *redis.Cache
	version  string
	size     charts.Size
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewChartHandler creates a chart handler. version identifies the dataset in cache keys.
func NewChartHandler(p *dashboard.Pipeline, cfg config.DashboardConfig, cache *redis.Cache, version string, m *metrics.Metrics, log *logger.Logger) *ChartHandler {
	return &ChartHandler{
		pipeline: p,
		cfg:      cfg,
		cache:    cache,
		version:  version,
		size:     charts.DefaultSize(),
		metrics:  m,
		logger:   log,
	}
}

// GetChart renders one chart
// GET /charts/{kind}.png  (scenario accepts ?reduction=)
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind, err := charts.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		respondErr(w, err)
		return
	}

	param := 0
	if kind == charts.KindScenario {
		if param, err = reductionParam(r, h.cfg); err != nil {
			respondErr(w, err)
			return
		}
	}

	render := func() ([]byte, error) {
		h.metrics.IncrementChartRender(string(kind))
		return h.render(kind, param)
	}

	var (
		data []byte
		hit  bool
	)
	if h.cache != nil {
		data, hit, err = h.cache.GetOrSet(r.Context(), redis.ChartKey(h.version, string(kind), param), h.cfg.ChartCacheTTL, render)
	} else {
		data, err = render()
	}
	if err != nil {
		logger.FromContext(r.Context(), h.logger).WithError(err).WithField("kind", kind).Error("Chart render failed")
		respondError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	if hit {
		h.metrics.IncrementChartCacheHit()
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ChartHandler) render(kind charts.Kind, param int) ([]byte, error) {
	switch kind {
	case charts.KindDistricts:
		return charts.DistrictBar(h.pipeline.DistrictTotals(), h.size)
	case charts.KindGenders:
		return charts.GenderShare(h.pipeline.GenderTotals(), h.size)
	default:
		return charts.ScenarioLines(h.pipeline.Scenario(float64(param)), h.size)
	}
}
