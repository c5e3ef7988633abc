package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hivdash/internal/dashboard"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a uniform prevention reduction over the yearly totals",
	Long: `Applies adjusted = actual * (1 - reduction/100) to every yearly total.
The reduction must be in 0..100 and a multiple of REDUCTION_STEP_PCT.

Example:
  go run ./cmd/hivdash simulate --reduction 20`,
	RunE: runSimulate,
}

var simulateReduction int

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&simulateReduction, "reduction", -1, "reduction percent; negative selects DEFAULT_REDUCTION_PCT")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}

	pct := simulateReduction
	if pct < 0 {
		pct = a.cfg.Dashboard.DefaultReductionPct
	}
	if err := dashboard.ValidateReduction(pct, a.cfg.Dashboard.ReductionStepPct); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	sc := a.pipeline.Scenario(float64(pct))

	PrintHeader(w, fmt.Sprintf("Simulasi Dampak Pencegahan (%d%%)", pct))
	fmt.Fprintf(w, "  %-6s %14s %14s\n", "Tahun", "Aktual", "Setelah")
	for _, pt := range sc.Points {
		fmt.Fprintf(w, "  %-6d %14s %14s\n", pt.Year, formatCount(pt.Actual), formatFixed(pt.Adjusted))
	}
	PrintSeparator(w)
	actual, adjusted := sc.Totals()
	fmt.Fprintf(w, "  %-6s %14s %14s\n", "Total", formatCount(actual), formatFixed(adjusted))
	return nil
}
