// Package synth provides synthesis adapters for the advisor core: a Vitis
// HLS runner that drives the real toolchain, and a scripted adapter that
// replays recorded outcomes for tests and offline evaluation.
package synth

import (
	"context"
	"fmt"

	"github.com/collective-hls/collective-hls/advisor"
)

// Outcome is one scripted synthesis result: a measured QoR or an error
// standing in for a toolchain failure.
type Outcome struct {
	QoR *advisor.QoRRecord
	Err error
}

// ScriptedAdapter replays outcomes keyed by directive-combination key. When a
// key has no scripted outcome the Default applies; with no default either,
// the adapter reports a toolchain failure, which is what a replay harness
// wants: it can only evaluate combinations it has records for.
type ScriptedAdapter struct {
	ByKey   map[string]Outcome
	Default *Outcome

	// Calls records the combination keys synthesized, in order.
	Calls []string
}

// Synthesize implements advisor.SynthesisAdapter.
func (a *ScriptedAdapter) Synthesize(ctx context.Context, app string, combo advisor.DirectiveCombination) (*advisor.QoRRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &advisor.ToolchainError{Stage: "replay", Err: err}
	}
	a.Calls = append(a.Calls, combo.Key)

	outcome, ok := a.ByKey[combo.Key]
	if !ok {
		if a.Default == nil {
			return nil, &advisor.ToolchainError{
				Stage: "replay",
				Err:   fmt.Errorf("no recorded outcome for combination %s of %s", combo.Key, app),
			}
		}
		outcome = *a.Default
	}
	if outcome.Err != nil {
		return nil, outcome.Err
	}
	qor := *outcome.QoR
	return &qor, nil
}
