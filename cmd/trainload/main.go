// Command trainload is the operator-facing surface for the decode, analyze,
// PMC, zone, batch-processing, and export engines: six cobra subcommands
// (plus version) replacing the teacher's collection of single-purpose
// flag-based binaries (fit_analyze, fitnotes, fitllmexport) with one
// multi-command CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *profileConfig
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trainload",
		Short: "Training-load analytics for endurance athletes",
		Long: `trainload decodes FIT session files, computes power/pace/HR-based
training stress, tracks chronic/acute load over time, and fits critical
power and W'-balance models from a rider's or runner's mean-maximal-power
curve.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			var err error
			cfg, err = loadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: trainload.yaml in ., ~/.trainload, or /etc/trainload)")

	rootCmd.AddCommand(
		newDecodeCmd(),
		newAnalyzeCmd(),
		newPMCCmd(),
		newZonesCmd(),
		newBatchCmd(),
		newExportCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("trainload v0.1.0")
		},
	}
}
