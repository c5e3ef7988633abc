package jobs

import (
	"context"

	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/internal/report"
	"github.com/wonny/hivdash/internal/scheduler"
	"github.com/wonny/hivdash/pkg/logger"
)

// ExportJob writes the dashboard workbook and charts on a schedule
type ExportJob struct {
	exporter *report.Exporter
	dir      string
	schedule string
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewExportJob creates an export job writing into dir
func NewExportJob(exporter *report.Exporter, dir, schedule string, m *metrics.Metrics, log *logger.Logger) *ExportJob {
	return &ExportJob{
		exporter: exporter,
		dir:      dir,
		schedule: schedule,
		metrics:  m,
		logger:   log,
	}
}

// Name returns the job name
func (j *ExportJob) Name() string {
	return "report_export"
}

// Schedule returns the configured cron schedule
func (j *ExportJob) Schedule() string {
	return j.schedule
}

// Run writes one workbook and the chart PNGs. A cancelled export is not retried.
func (j *ExportJob) Run(ctx context.Context) error {

	res, err := j.exporter.Export(ctx, j.dir)
	if err != nil {
		j.metrics.IncrementExport("error")
		if ctx.Err() != nil {
			return scheduler.Permanent(err)
		}
		return err
	}

	j.metrics.IncrementExport("ok")
	j.logger.WithFields(map[string]interface{}{
		"workbook": res.Workbook,
		"charts":   len(res.Charts),
	}).Info("Report export completed")

	return nil
}
