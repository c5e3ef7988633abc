package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/wonny/hivdash/internal/api"
	"github.com/wonny/hivdash/internal/api/handlers"
	"github.com/wonny/hivdash/internal/dataset"
	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/internal/report"
	"github.com/wonny/hivdash/internal/scheduler"
	"github.com/wonny/hivdash/internal/scheduler/jobs"
	"github.com/wonny/hivdash/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Loads the dataset and model once, then serves the dashboard.

Endpoints:
  GET  /                          - dashboard page
  GET  /ws                        - widget channel (websocket)
  GET  /api/summary               - load stats, totals, evaluation
  GET  /api/view?mode=            - district-bar | gender-pie | top5 | district-detail
  POST /api/predict               - ad-hoc prediction (rate limited)
  GET  /api/scenario?reduction=   - prevention scenario
  GET  /charts/{kind}.png         - districts | genders | scenario
  GET  /export/report.xlsx        - workbook download
  GET  /metrics                   - Prometheus metrics

Example:
  go run ./cmd/hivdash serve
  go run ./cmd/hivdash serve --port 9090`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== hivdash server ===")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	cfg, log, p := a.cfg, a.log, a.pipeline

	// Override port if flag is set
	if servePort != "" {
		cfg.Port = servePort
	}

	// Metrics
	var (
		m   *metrics.Metrics
		reg *prometheus.Registry
	)
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
		m.ObservePipeline(p.Summary())
	}

	// Redis (optional)
	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	version, err := dataset.Fingerprint(cfg.Data.Path)
	if err != nil {
		return err
	}

	d := cfg.Dashboard
	limiter := handlers.NewLimiter(rdb, d.PredictRatePerSec, d.PredictRateBurst)
	exporter := report.NewExporter(p, float64(d.DefaultReductionPct), log.Zerolog())

	h := api.Handlers{
		Dashboard: handlers.NewDashboardHandler(p, d, m, log),
		Charts:    handlers.NewChartHandler(p, d, redis.NewCache(rdb, "hivdash"), version, m, log),
		Export:    handlers.NewExportHandler(exporter, m, log),
		Page:      handlers.NewPageHandler(p, d, limiter, log),
		WS:        handlers.NewWSHandler(p, d, limiter, m, log),
		Limiter:   limiter,
		Metrics:   m,
		Redis:     rdb,
	}
	if reg != nil {
		h.Gatherer = reg
	}

	// Scheduled export
	if cfg.Export.Schedule != "" {
		sched := scheduler.New(log)
		job := jobs.NewExportJob(exporter, cfg.Export.Dir, cfg.Export.Schedule, m, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule export: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	server := api.New(cfg, log, api.NewRouter(h, log))

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("Dashboard server started successfully")
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
