package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the total patient count from male and female counts",
	Long: `Runs one ad-hoc prediction through the loaded model.

Example:
  go run ./cmd/hivdash predict --male 120 --female 45`,
	RunE: runPredict,
}

var (
	predictMale   int
	predictFemale int
)

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().IntVar(&predictMale, "male", 0, "Jumlah Pasien Laki-Laki")
	predictCmd.Flags().IntVar(&predictFemale, "female", 0, "Jumlah Pasien Perempuan")
}

func runPredict(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}

	pred, err := a.pipeline.Predict(predictMale, predictFemale)
	if err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Prediksi Jumlah Total Pasien HIV: %.0f", pred.Total))
	return nil
}
