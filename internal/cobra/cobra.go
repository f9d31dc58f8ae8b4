// Package cobra wires the ecagg CLI commands, generalized from the raid
// simulator's single `raid` subcommand to an aggregation `run` subcommand.
package cobra

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Anthya1104/ecagg/internal/aggregate"
	"github.com/Anthya1104/ecagg/internal/config"
)

var (
	poolID      string
	contID      string
	loEpoch     uint64
	hiEpoch     uint64
	dataCells   int
	parityCells int
)

var rootCmd = &cobra.Command{
	Use:   "ecagg",
	Short: "Erasure-coded object aggregation engine",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		logrus.Infof("Version: %s", config.Version)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an aggregation pass over a demo object",
	Run: func(cmd *cobra.Command, args []string) {
		if poolID == "" || contID == "" {
			logrus.Error("Please provide --pool and --cont flags")
			return
		}
		status, err := aggregate.RunDemo(poolID, contID, loEpoch, hiEpoch, dataCells, parityCells)
		if err != nil {
			logrus.Errorf("aggregation run failed: %v", err)
			return
		}
		logrus.Infof("aggregation run complete: visited=%d reconciled=%d failed=%d skipped=%d",
			status.ObjectsVisited, status.StripesReconciled, status.ObjectsFailed, status.ObjectsSkipped)
	},
}

func InitCLI() *cobra.Command {
	runCmd.Flags().StringVar(&poolID, "pool", "", "pool identifier")
	runCmd.Flags().StringVar(&contID, "cont", "", "container identifier")
	runCmd.Flags().Uint64Var(&loEpoch, "lo", 0, "low epoch bound")
	runCmd.Flags().Uint64Var(&hiEpoch, "hi", 100, "high epoch bound")
	runCmd.Flags().IntVar(&dataCells, "k", 2, "number of data cells")
	runCmd.Flags().IntVar(&parityCells, "p", 1, "number of parity cells (1 or 2)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)

	return rootCmd
}

func ExecuteCmd() error {
	return InitCLI().Execute()
}
