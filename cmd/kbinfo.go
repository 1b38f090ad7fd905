package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/collective-hls/collective-hls/advisor/kb"
)

// kbinfoCmd summarizes a knowledge base snapshot.
var kbinfoCmd = &cobra.Command{
	Use:   "kbinfo",
	Short: "Print a knowledge base summary",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		snapshot, err := kb.Load(context.Background(), kbPath)
		if err != nil {
			logrus.Fatalf("Failed to load knowledge base: %v", err)
		}

		proj := snapshot.Projection()
		rows, cols := proj.Matrix.Dims()
		fmt.Printf("version:      %s\n", snapshot.Version())
		fmt.Printf("features:     %d\n", rows)
		fmt.Printf("components:   %d\n", cols)
		fmt.Printf("clusters:     %d\n", len(snapshot.ClusterModels()))
		fmt.Printf("applications: %d\n", len(snapshot.Applications()))
		for _, cluster := range snapshot.Clusters() {
			fmt.Printf("  cluster %d: %d Pareto points\n", cluster, len(snapshot.ParetoSet(cluster)))
		}
	},
}

func init() {
	rootCmd.AddCommand(kbinfoCmd)
}
