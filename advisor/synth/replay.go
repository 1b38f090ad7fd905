package synth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/collective-hls/collective-hls/advisor"
)

// Record is one previously measured synthesis run: the directive set applied
// and the QoR it achieved.
type Record struct {
	Directives map[string]string
	QoR        advisor.QoRRecord
}

// ReplayAdapter answers synthesis requests from previously measured runs,
// matching on the directive set itself rather than the combination key, since
// recommended candidates originate from other applications' frontiers.
// Combinations with no recorded run fail as a toolchain error: replay cannot
// invent a measurement.
type ReplayAdapter struct {
	outcomes map[string]advisor.QoRRecord
}

// NewReplayAdapter indexes the given records by directive fingerprint. Later
// records win on duplicate directive sets.
func NewReplayAdapter(records []Record) *ReplayAdapter {
	outcomes := make(map[string]advisor.QoRRecord, len(records))
	for _, rec := range records {
		outcomes[fingerprint(rec.Directives)] = rec.QoR
	}
	return &ReplayAdapter{outcomes: outcomes}
}

// Synthesize implements advisor.SynthesisAdapter.
func (a *ReplayAdapter) Synthesize(ctx context.Context, app string, combo advisor.DirectiveCombination) (*advisor.QoRRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &advisor.ToolchainError{Stage: "replay", Err: err}
	}
	qor, ok := a.outcomes[fingerprint(combo.Directives)]
	if !ok {
		return nil, &advisor.ToolchainError{
			Stage: "replay",
			Err:   fmt.Errorf("no recorded run of %s matches candidate %s", app, combo.Key),
		}
	}
	out := qor
	return &out, nil
}

// fingerprint canonicalizes a directive set into a comparable string.
func fingerprint(directives map[string]string) string {
	parts := make([]string, 0, len(directives))
	for ap, label := range directives {
		parts = append(parts, ap+"="+label)
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}
