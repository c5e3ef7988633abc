package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hivdash/internal/dashboard"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print load stats, district ranking and gender split",
	Long: `Prints what the loader kept, the top districts and the gender distribution.

Example:
  go run ./cmd/hivdash summary
  go run ./cmd/hivdash summary --top 10`,
	RunE: runSummary,
}

var summaryTop int

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().IntVar(&summaryTop, "top", 0, "number of districts to list (default TOP_N)")
}

func runSummary(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	p := a.pipeline
	s := p.Summary()

	PrintHeader(w, "Dataset")
	PrintKV(w, "Rows read", s.Load.TotalRows)
	PrintKV(w, "Rows dropped", s.Load.DroppedRows)
	PrintKV(w, "Districts", s.Districts)
	PrintKV(w, "Years", fmt.Sprint(s.Years))
	PrintKV(w, "Total patients", formatCount(s.GrandTotal))
	for cat, v := range s.Pivot.DiscardedCategories {
		PrintKV(w, "Ignored category", fmt.Sprintf("%s (%s)", cat, formatCount(v)))
	}

	top := p.TopDistricts(summaryTop)
	PrintHeader(w, fmt.Sprintf("Top %d Kecamatan", len(top)))
	for i, d := range top {
		fmt.Fprintf(w, "  %2d. %-24s %s\n", i+1, d.District, formatCount(d.Count))
	}

	PrintHeader(w, "Gender")
	for _, g := range p.GenderTotals() {
		fmt.Fprintf(w, "  %-24s %8s  %5.1f%%\n", g.Gender, formatCount(g.Count), g.Share(s.GrandTotal))
	}
	PrintDoubleSeparator(w)

	if s.Load.KeptRows() == 0 {
		PrintWarning(w, dashboard.WarnNoData)
	}
	return nil
}
