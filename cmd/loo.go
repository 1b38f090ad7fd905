package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/collective-hls/collective-hls/advisor"
	"github.com/collective-hls/collective-hls/advisor/kb"
	"github.com/collective-hls/collective-hls/advisor/synth"
)

var looApp string

// looCmd measures how well the knowledge base generalizes: for each
// application, its own contributions are removed from the snapshot before
// recommending, and the resulting candidates are replayed against the
// application's recorded runs instead of live synthesis.
var looCmd = &cobra.Command{
	Use:   "loo",
	Short: "Leave-one-out evaluation over the knowledge base",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		ctx := context.Background()
		snapshot, err := kb.Load(ctx, kbPath)
		if err != nil {
			logrus.Fatalf("Failed to load knowledge base: %v", err)
		}

		apps := snapshot.Applications()
		if looApp != "" {
			app, ok := snapshot.Application(looApp)
			if !ok {
				logrus.Fatalf("Application %s is not in the knowledge base", looApp)
			}
			apps = []kb.Application{app}
		}

		cfg := advisorConfig()
		feasible, exhausted, aborted := 0, 0, 0
		for _, app := range apps {
			recorded := snapshot.FrontierOf(app.Name)
			if len(recorded) == 0 {
				logrus.Warnf("skipping %s: no recorded runs to replay against", app.Name)
				continue
			}

			records := make([]synth.Record, 0, len(recorded))
			for _, cand := range recorded {
				records = append(records, synth.Record{
					Directives: cand.Combination.Directives,
					QoR:        cand.RecordedQoR,
				})
			}

			engine := advisor.NewEngine(synth.NewReplayAdapter(records), cfg)
			report, err := engine.Recommend(ctx, app.Name, app.Features, snapshot.WithoutApplication(app.Name))
			if err != nil {
				logrus.Errorf("%s: %v", app.Name, err)
				aborted++
				continue
			}

			switch report.State {
			case advisor.StateFeasible:
				feasible++
				fmt.Printf("%-40s feasible after %d attempt(s): %s\n", app.Name, len(report.Attempts), *report.WinnerQoR)
			case advisor.StateExhausted:
				exhausted++
				fmt.Printf("%-40s exhausted after %d attempt(s)\n", app.Name, len(report.Attempts))
			case advisor.StateAborted:
				aborted++
				fmt.Printf("%-40s aborted after %d attempt(s)\n", app.Name, len(report.Attempts))
			}
		}
		fmt.Printf("\n%d feasible, %d exhausted, %d aborted\n", feasible, exhausted, aborted)
	},
}

func init() {
	looCmd.Flags().StringVar(&looApp, "app", "", "Evaluate a single application (default: all)")
	looCmd.Flags().IntVar(&retainedComponents, "pcs", advisor.DefaultRetainedComponents, "Number of retained principal components")
	looCmd.Flags().Float64Var(&membershipThreshold, "threshold", advisor.DefaultMembershipThreshold, "Minimum cluster membership probability")
	looCmd.Flags().BoolVar(&repropose, "repropose", true, "Propose the next candidate when a design is infeasible")
	looCmd.Flags().IntVar(&maxReproposals, "max-reproposals", 0, "Extra cap on re-proposal iterations (0 = bounded by candidate count)")

	rootCmd.AddCommand(looCmd)
}
