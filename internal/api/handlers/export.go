package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/hivdash/internal/metrics"
	"github.com/wonny/hivdash/internal/report"
	"github.com/wonny/hivdash/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler streams the dashboard workbook
type ExportHandler struct {
	exporter *report.Exporter
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewExportHandler creates an export handler
func NewExportHandler(e *report.Exporter, m *metrics.Metrics, log *logger.Logger) *ExportHandler {
	return &ExportHandler{exporter: e, metrics: m, logger: log}
}

// GetWorkbook returns the XLSX report
// GET /export/report.xlsx
func (h *ExportHandler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.exporter.WriteWorkbook(&buf); err != nil {
		h.metrics.IncrementExport("error")
		logger.FromContext(r.Context(), h.logger).WithError(err).Error("Workbook export failed")
		respondError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}
	h.metrics.IncrementExport("ok")

	name := fmt.Sprintf("hivdash_%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
