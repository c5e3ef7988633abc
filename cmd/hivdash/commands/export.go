package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hivdash/internal/dashboard"
	"github.com/wonny/hivdash/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard workbook and chart images",
	Long: `Writes hivdash_<timestamp>.xlsx and districts/genders/scenario PNGs.

Example:
  go run ./cmd/hivdash export --out ./export --reduction 20`,
	RunE: runExport,
}

var (
	exportDir       string
	exportReduction int
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "out", "", "output directory (default EXPORT_DIR)")
	exportCmd.Flags().IntVar(&exportReduction, "reduction", -1, "scenario reduction percent; negative selects DEFAULT_REDUCTION_PCT")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}

	dir := exportDir
	if dir == "" {
		dir = a.cfg.Export.Dir
	}
	pct := exportReduction
	if pct < 0 {
		pct = a.cfg.Dashboard.DefaultReductionPct
	}
	if err := dashboard.ValidateReduction(pct, a.cfg.Dashboard.ReductionStepPct); err != nil {
		return err
	}

	res, err := report.NewExporter(a.pipeline, float64(pct), a.log.Zerolog()).Export(context.Background(), dir)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	w := cmd.OutOrStdout()
	PrintSuccess(w, "Workbook: "+res.Workbook)
	for _, c := range res.Charts {
		PrintSuccess(w, "Chart:    "+c)
	}
	return nil
}
