package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/collective-hls/collective-hls/advisor"
	"github.com/collective-hls/collective-hls/advisor/kb"
	"github.com/collective-hls/collective-hls/advisor/synth"
)

var (
	// Shared CLI flags
	kbPath   string // KB directory (kb.yaml + frontier CSVs) or SQLite file
	logLevel string // Log verbosity level

	// Recommendation knobs
	retainedComponents  int     // Number of retained principal components
	membershipThreshold float64 // Minimum cluster membership probability
	repropose           bool    // Try the next candidate on infeasibility
	maxReproposals      int     // Extra cap on re-proposal iterations (0 = candidate-list bound only)

	// Synthesis toolchain flags
	appsDir      string        // Directory with one sub-directory per application
	outputDir    string        // Work directory for synthesis attempts
	deviceID     string        // Target FPGA part
	clockPeriod  string        // Target clock period in nanoseconds
	synthTimeout time.Duration // Per-attempt synthesis timeout
	vitisOptsOn  bool          // Keep default Vitis optimizations enabled
	recommendApp string        // Application to optimize
	dryRun       bool          // Stop after printing the candidate list
	featuresFile string        // Optional YAML feature vector for apps not in the KB
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "collective-hls",
	Short: "Knowledge-driven synthesis directive advisor for FPGA designs",
}

// recommendCmd runs the full pipeline for one application: project its
// feature vector, pick clusters, merge their Pareto frontiers, and refine
// against Vitis HLS until a feasible design comes out or options run out.
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend and synthesize directive combinations for an application",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if recommendApp == "" {
			logrus.Fatalf("--app is required")
		}

		ctx := context.Background()
		snapshot, err := kb.Load(ctx, kbPath)
		if err != nil {
			logrus.Fatalf("Failed to load knowledge base: %v", err)
		}

		features, err := resolveFeatures(snapshot, recommendApp)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		// The application's own contributions never inform its own
		// recommendation.
		view := snapshot.WithoutApplication(recommendApp)

		cfg := advisorConfig()
		runner := synth.NewVitisRunner(synth.VitisConfig{
			AppsDir:            appsDir,
			OutputDir:          outputDir,
			Device:             deviceID,
			ClockPeriodNs:      clockPeriod,
			Timeout:            synthTimeout,
			VitisOptimizations: vitisOptsOn,
		})
		engine := advisor.NewEngine(runner, cfg)

		if dryRun {
			candidates, err := engine.Propose(features, view)
			if err != nil {
				logrus.Fatalf("Proposal failed: %v", err)
			}
			printCandidates(candidates)
			return
		}

		report, err := engine.Recommend(ctx, recommendApp, features, view)
		if err != nil {
			logrus.Fatalf("Recommendation failed: %v", err)
		}
		printReport(snapshot.Version(), cfg, report)
		if report.State != advisor.StateFeasible {
			os.Exit(1)
		}
	},
}

// resolveFeatures fetches the application's feature vector, either from the
// KB snapshot or from a --features YAML file for applications the KB has
// never seen.
func resolveFeatures(snapshot *kb.Snapshot, app string) (advisor.FeatureVector, error) {
	if featuresFile != "" {
		return loadFeaturesFile(featuresFile)
	}
	entry, ok := snapshot.Application(app)
	if !ok {
		return nil, fmt.Errorf("application %s is not in the knowledge base; provide --features", app)
	}
	return entry.Features, nil
}

func advisorConfig() advisor.Config {
	return advisor.Config{
		RetainedComponents:  retainedComponents,
		MembershipThreshold: membershipThreshold,
		Repropose:           repropose,
		MaxReproposals:      maxReproposals,
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func printCandidates(candidates []advisor.Candidate) {
	fmt.Printf("%d candidates:\n", len(candidates))
	for i, c := range candidates {
		fmt.Printf("%3d. %-40s cluster=%d %s\n", i+1, c.Combination.Key, c.Combination.Cluster, c.RecordedQoR)
	}
}

func printReport(version string, cfg advisor.Config, report *advisor.SessionReport) {
	fmt.Println("*******************************************************")
	fmt.Println("*                   CollectiveHLS                     *")
	fmt.Println("*******************************************************")
	fmt.Printf("* KB Version            = %s\n", version)
	fmt.Printf("* Number of PCs         = %d\n", cfg.RetainedComponents)
	fmt.Printf("* Probability Threshold = %v\n", cfg.MembershipThreshold)
	fmt.Printf("* Re-propose Directives = %v\n", cfg.Repropose)
	fmt.Println("*******************************************************")
	fmt.Printf("* Optimized App. = %s\n", report.Application)
	fmt.Printf("* Final State    = %s\n", report.State)
	fmt.Printf("* Attempts       = %d\n", len(report.Attempts))
	if report.WinnerQoR != nil {
		fmt.Printf("* Winning Combo  = %s\n", report.Winner.Combination.Key)
		fmt.Printf("* Design Latency = %.4f msec\n", report.WinnerQoR.LatencyMs)
		fmt.Printf("* BRAM %%         = %.1f %%\n", report.WinnerQoR.BRAMPct)
		fmt.Printf("* DSP %%          = %.1f %%\n", report.WinnerQoR.DSPPct)
		fmt.Printf("* FF %%           = %.1f %%\n", report.WinnerQoR.FFPct)
		fmt.Printf("* LUT %%          = %.1f %%\n", report.WinnerQoR.LUTPct)
	}
	for i, attempt := range report.Attempts {
		fmt.Printf("* Attempt %d: %s -> %s", i+1, attempt.Candidate.Combination.Key, attempt.Outcome)
		if attempt.QoR != nil {
			fmt.Printf(" (%s)", attempt.QoR)
		}
		if attempt.Err != nil {
			fmt.Printf(" (%v)", attempt.Err)
		}
		fmt.Println()
	}
	fmt.Println("*******************************************************")
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&kbPath, "kb", "KnowledgeBase", "Knowledge base directory or SQLite file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	recommendCmd.Flags().StringVar(&recommendApp, "app", "", "Application to optimize")
	recommendCmd.Flags().StringVar(&featuresFile, "features", "", "YAML file with the application's feature vector (for apps outside the KB)")
	recommendCmd.Flags().IntVar(&retainedComponents, "pcs", advisor.DefaultRetainedComponents, "Number of retained principal components")
	recommendCmd.Flags().Float64Var(&membershipThreshold, "threshold", advisor.DefaultMembershipThreshold, "Minimum cluster membership probability")
	recommendCmd.Flags().BoolVar(&repropose, "repropose", true, "Propose the next candidate when a design is infeasible")
	recommendCmd.Flags().IntVar(&maxReproposals, "max-reproposals", 0, "Extra cap on re-proposal iterations (0 = bounded by candidate count)")
	recommendCmd.Flags().StringVar(&appsDir, "apps-dir", "Applications", "Directory holding application sources")
	recommendCmd.Flags().StringVar(&outputDir, "output-dir", "output", "Directory for synthesis work trees")
	recommendCmd.Flags().StringVar(&deviceID, "device", "xczu7ev-ffvc1156-2-e", "Target FPGA part identifier")
	recommendCmd.Flags().StringVar(&clockPeriod, "clock-period", "3.33", "Target clock period in nanoseconds")
	recommendCmd.Flags().DurationVar(&synthTimeout, "timeout", time.Hour, "Per-attempt synthesis timeout")
	recommendCmd.Flags().BoolVar(&vitisOptsOn, "vitis-optimizations", false, "Keep default Vitis optimizations enabled")
	recommendCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the ranked candidate list and exit")

	rootCmd.AddCommand(recommendCmd)
}
