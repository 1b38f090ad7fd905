package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/collective-hls/collective-hls/advisor/kb"
)

var convertTo string

// convertCmd re-encodes a YAML+CSV knowledge base directory into a
// single-file SQLite knowledge base, the format used for distribution.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a KB directory into a SQLite knowledge base",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if convertTo == "" {
			logrus.Fatalf("--to is required")
		}

		manifest, entries, err := kb.LoadDirRaw(kbPath)
		if err != nil {
			logrus.Fatalf("Failed to load knowledge base: %v", err)
		}
		if err := kb.SaveSQLite(context.Background(), convertTo, manifest, entries); err != nil {
			logrus.Fatalf("Failed to write SQLite knowledge base: %v", err)
		}
		fmt.Printf("wrote %s (%d applications, %d Pareto points)\n", convertTo, len(manifest.Apps), len(entries))
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Output SQLite file path")
	_ = convertCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(convertCmd)
}
