package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/hivdash/internal/api/handlers"
	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/pkg/logger"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Dashboard *handlers.DashboardHandler
	Charts    *handlers.ChartHandler
	Export    *handlers.ExportHandler
	Page      *handlers.PageHandler
	WS        *handlers.WSHandler

	// Limiter throttles POST /api/predict
	Limiter handlers.Limiter
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; nil leaves the endpoint unmounted
	Gatherer prometheus.Gatherer
	// Redis is reported by /health; nil reads as disabled
	Redis Pinger
}

// Pinger is the optional shared store behind the chart cache and limiter
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: every route is declared in this function
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthHandler(h.Redis)).Methods("GET")

	if h.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}

	// Page + widget channel
	r.HandleFunc("/", h.Page.GetIndex).Methods("GET")
	r.HandleFunc("/ws", h.WS.Serve).Methods("GET")

	// Images and workbook
	r.HandleFunc("/charts/{kind}.png", h.Charts.GetChart).Methods("GET")
	r.HandleFunc("/export/report.xlsx", h.Export.GetWorkbook).Methods("GET")

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", h.Dashboard.GetSummary).Methods("GET")
	api.HandleFunc("/evaluation", h.Dashboard.GetEvaluation).Methods("GET")
	api.HandleFunc("/districts", h.Dashboard.GetDistricts).Methods("GET")
	api.HandleFunc("/districts/top", h.Dashboard.GetTopDistricts).Methods("GET")
	api.HandleFunc("/districts/{name}", h.Dashboard.GetDistrictDetail).Methods("GET")
	api.HandleFunc("/genders", h.Dashboard.GetGenders).Methods("GET")
	api.HandleFunc("/genders/{gender}/districts", h.Dashboard.GetGenderDistricts).Methods("GET")
	api.HandleFunc("/years", h.Dashboard.GetYears).Methods("GET")
	api.HandleFunc("/features", h.Dashboard.GetFeatures).Methods("GET")
	api.HandleFunc("/view", h.Dashboard.GetView).Methods("GET")
	api.HandleFunc("/scenario", h.Dashboard.GetScenario).Methods("GET")

	throttle := rateLimitMiddleware(h.Limiter, h.Metrics, log)
	api.Handle("/predict", throttle(http.HandlerFunc(h.Dashboard.Predict))).Methods("POST")

	// Apply middleware
	r.Use(requestIDMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(metricsMiddleware(h.Metrics))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthHandler reports liveness. A Redis outage degrades the status but
// the dashboard keeps serving from the in-memory pipeline.
func healthHandler(rdb Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, redisState := "ok", "disabled"
		if rdb != nil && rdb.Enabled() {
			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			defer cancel()
			if err := rdb.Ping(ctx); err != nil {
				status, redisState = "degraded", "unavailable"
			} else {
				redisState = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"service": "hivdash",
			"redis":   redisState,
		})
	}
}
