package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataPath  string
	modelPath string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hivdash",
	Short: "HIV patient dashboard - aggregation, prediction and prevention scenarios",
	Long: `hivdash Unified CLI

Loads the district-level HIV patient table, evaluates the regression model
and serves the dashboard.

Usage:
  go run ./cmd/hivdash [command]

Examples:
  go run ./cmd/hivdash serve
  go run ./cmd/hivdash summary
  go run ./cmd/hivdash predict --male 120 --female 45
  go run ./cmd/hivdash simulate --reduction 20
  go run ./cmd/hivdash export --out ./export`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "input CSV (overrides DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "model artifact (overrides MODEL_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
