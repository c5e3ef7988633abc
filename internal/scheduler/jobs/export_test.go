package jobs

import (
	"context"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hivdash/internal/contracts"
	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/internal/model"
	"github.com/wonny/hivdash/internal/report"
	"github.com/wonny/hivdash/internal/scheduler"
	"github.com/wonny/hivdash/pkg/logger"
)

func TestExportJob(t *testing.T) {
	table := contracts.NewTable([]contracts.Record{
		{DistrictName: "CIBINONG", Gender: contracts.GenderMale, Year: 2021, Count: 10},
		{DistrictName: "CITEUREUP", Gender: contracts.GenderFemale, Year: 2022, Count: 4},
	}, contracts.LoadStats{TotalRows: 2})
	adapter := model.NewAdapter(model.RegressorFunc(func(x []float64) (float64, error) {
		return x[0] + x[1], nil
	}), contracts.CanonicalGenders(), "sum", zerolog.Nop())
	p, err := dashboard.New(table, adapter, dashboard.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	dir := t.TempDir()
	job := NewExportJob(report.NewExporter(p, 10, zerolog.Nop()), dir, "0 0 6 * * *", m, logger.Nop())

	assert.Equal(t, "report_export", job.Name())
	assert.Equal(t, "0 0 6 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4) // workbook + 3 charts
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("ok")))
}

func TestExportJob_CancelledIsPermanent(t *testing.T) {
	table := contracts.NewTable([]contracts.Record{
		{DistrictName: "CIBINONG", Gender: contracts.GenderMale, Year: 2021, Count: 10},
	}, contracts.LoadStats{TotalRows: 1})
	adapter := model.NewAdapter(model.RegressorFunc(func(x []float64) (float64, error) {
		return x[0] + x[1], nil
	}), contracts.CanonicalGenders(), "sum", zerolog.Nop())
	p, err := dashboard.New(table, adapter, dashboard.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewExportJob(report.NewExporter(p, 10, zerolog.Nop()), t.TempDir(), "@daily", nil, logger.Nop())
	err = job.Run(ctx)
	require.Error(t, err)
	assert.True(t, scheduler.IsPermanent(err))
}
