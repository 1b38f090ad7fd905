package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/collective-hls/collective-hls/advisor/kb"
)

// validateCmd checks the structural invariants of a knowledge base: fitted
// dimensions agree everywhere and no frontier entry dominates a sibling.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a knowledge base's structural invariants",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		snapshot, err := kb.Load(context.Background(), kbPath)
		if err != nil {
			logrus.Fatalf("Failed to load knowledge base: %v", err)
		}
		if err := snapshot.Validate(); err != nil {
			logrus.Fatalf("Knowledge base is invalid: %v", err)
		}
		fmt.Printf("knowledge base %s is valid\n", snapshot.Version())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
