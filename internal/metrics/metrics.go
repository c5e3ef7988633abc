package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wonny/hivdash/internal/contracts"
)

// Metrics provides observability for the dashboard service.
// All methods are safe on a nil receiver so callers can run with metrics disabled.
type Metrics struct {
	RowsLoaded          prometheus.Gauge
	RowsDropped         prometheus.Gauge
	DiscardedCategories *prometheus.GaugeVec
	ModelMAE            prometheus.Gauge
	ModelR2             prometheus.Gauge

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	Predictions         *prometheus.CounterVec
	RateLimited         prometheus.Counter
	ChartRenders        *prometheus.CounterVec
	ChartCacheHits      prometheus.Counter
	WSMessages          *prometheus.CounterVec
	Exports             *prometheus.CounterVec
}

// New registers all metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		RowsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Name: "hivdash_rows_loaded",
			Help: "Rows kept in the cleaned table",
		}),
		RowsDropped: f.NewGauge(prometheus.GaugeOpts{
			Name: "hivdash_rows_dropped",
			Help: "Rows dropped because the count did not parse",
		}),
		DiscardedCategories: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hivdash_pivot_discarded_count",
			Help: "Patient counts of gender categories the model does not use",
		}, []string{"category"}),
		ModelMAE: f.NewGauge(prometheus.GaugeOpts{
			Name: "hivdash_model_mae",
			Help: "Mean absolute error of the model on the pivoted features",
		}),
		ModelR2: f.NewGauge(prometheus.GaugeOpts{
			Name: "hivdash_model_r2",
			Help: "R squared of the model on the pivoted features",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hivdash_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hivdash_http_request_duration_seconds",
			Help:    "HTTP request duration by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hivdash_predictions_total",
			Help: "Ad-hoc predictions by outcome",
		}, []string{"outcome"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "hivdash_rate_limited_total",
			Help: "Requests rejected by the prediction rate limit",
		}),
		ChartRenders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hivdash_chart_renders_total",
			Help: "Chart images rendered by kind",
		}, []string{"kind"}),
		ChartCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "hivdash_chart_cache_hits_total",
			Help: "Chart images served from cache",
		}),
		WSMessages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hivdash_ws_messages_total",
			Help: "Websocket widget messages by type",
		}, []string{"type"}),
		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hivdash_exports_total",
			Help: "Report exports by outcome",
		}, []string{"outcome"}),
	}
}

// ObservePipeline records load, pivot and evaluation results
func (m *Metrics) ObservePipeline(s contracts.Summary) {
	if m == nil {
		return
	}
	m.RowsLoaded.Set(float64(s.Load.KeptRows()))
	m.RowsDropped.Set(float64(s.Load.DroppedRows))
	for category, count := range s.Pivot.DiscardedCategories {
		m.DiscardedCategories.WithLabelValues(category).Set(count)
	}
	if s.Evaluation.Available {
		m.ModelMAE.Set(s.Evaluation.MAE)
	}
	if s.Evaluation.R2Defined {
		m.ModelR2.Set(s.Evaluation.R2)
	}
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// IncrementPrediction records an ad-hoc prediction outcome ("ok", "invalid", "error")
func (m *Metrics) IncrementPrediction(outcome string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(outcome).Inc()
}

// IncrementRateLimited records a throttled request
func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// IncrementChartRender records a freshly rendered chart
func (m *Metrics) IncrementChartRender(kind string) {
	if m == nil {
		return
	}
	m.ChartRenders.WithLabelValues(kind).Inc()
}

// IncrementChartCacheHit records a chart served from cache
func (m *Metrics) IncrementChartCacheHit() {
	if m == nil {
		return
	}
	m.ChartCacheHits.Inc()
}

// IncrementWSMessage records a websocket message by type
func (m *Metrics) IncrementWSMessage(msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(msgType).Inc()
}

// IncrementExport records a report export outcome
func (m *Metrics) IncrementExport(outcome string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(outcome).Inc()
}
