package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/hivdash/internal/dashboard"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Print MAE and R² of the model",
	Long: `Evaluates the model on the per-district (Laki-Laki, Perempuan) features.
Ground truth is the row sum of the same two features.

Example:
  go run ./cmd/hivdash evaluate`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	ev := a.pipeline.Evaluate()

	PrintHeader(w, "Evaluasi Model ("+a.pipeline.ModelName()+")")
	if !ev.Available {
		PrintWarning(w, dashboard.WarnNoAggregate)
		return nil
	}

	PrintKV(w, "Samples", ev.Samples)
	PrintKV(w, "MAE", formatFixed(ev.MAE))
	if ev.R2Defined {
		PrintKV(w, "R²", formatFixed(ev.R2))
	} else {
		PrintKV(w, "R²", "undefined (ground truth has zero variance)")
	}
	PrintSeparator(w)
	PrintKV(w, "Note", ev.Note)
	return nil
}
