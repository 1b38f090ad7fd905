package advisor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAdapter returns canned outcomes keyed by combination key and
// records the order of synthesis calls.
type scriptedAdapter struct {
	outcomes map[string]scriptedOutcome
	calls    []string
}

type scriptedOutcome struct {
	qor *QoRRecord
	err error
}

func (a *scriptedAdapter) Synthesize(ctx context.Context, app string, combo DirectiveCombination) (*QoRRecord, error) {
	a.calls = append(a.calls, combo.Key)
	out, ok := a.outcomes[combo.Key]
	if !ok {
		return nil, fmt.Errorf("unscripted combination %s", combo.Key)
	}
	return out.qor, out.err
}

// scenarioCandidates is the two-candidate list shared by the re-proposal
// scenarios: D1 is fast but blows FF and LUT, D2 is slow but fits.
func scenarioCandidates() []Candidate {
	return []Candidate{
		cand("D1", 0, 0.02, 0, 22, 354, 262),
		cand("D2", 0, 0.6, 0, 0, 15, 12),
	}
}

func scenarioAdapter() *scriptedAdapter {
	return &scriptedAdapter{outcomes: map[string]scriptedOutcome{
		"D1": {qor: &QoRRecord{LatencyMs: 0.02, DSPPct: 22, FFPct: 354, LUTPct: 262}},
		"D2": {qor: &QoRRecord{LatencyMs: 0.6, FFPct: 15, LUTPct: 12}},
	}}
}

func TestSession_ReproposalFindsFeasible(t *testing.T) {
	adapter := scenarioAdapter()
	session := NewSession("app", scenarioCandidates(), adapter, Config{Repropose: true})

	report := session.Run(context.Background())

	assert.Equal(t, StateFeasible, report.State)
	require.NotNil(t, report.Winner)
	assert.Equal(t, "D2", report.Winner.Combination.Key)
	require.NotNil(t, report.WinnerQoR)
	assert.Equal(t, 0.6, report.WinnerQoR.LatencyMs)

	require.Len(t, report.Attempts, 2)
	assert.Equal(t, OutcomeInfeasible, report.Attempts[0].Outcome)
	assert.Equal(t, OutcomeFeasible, report.Attempts[1].Outcome)
	assert.Equal(t, []string{"D1", "D2"}, adapter.calls)
}

func TestSession_ReproposalDisabled(t *testing.T) {
	adapter := scenarioAdapter()
	session := NewSession("app", scenarioCandidates(), adapter, Config{Repropose: false})

	report := session.Run(context.Background())

	assert.Equal(t, StateExhausted, report.State)
	assert.Nil(t, report.Winner)
	assert.Nil(t, report.WinnerQoR)
	require.Len(t, report.Attempts, 1)
	// The infeasible QoR stays on the trail for diagnostics.
	assert.Equal(t, OutcomeInfeasible, report.Attempts[0].Outcome)
	require.NotNil(t, report.Attempts[0].QoR)
	assert.Equal(t, 354.0, report.Attempts[0].QoR.FFPct)
}

func TestSession_ToolchainFailureAborts(t *testing.T) {
	toolErr := &ToolchainError{Stage: "csynth", Err: errors.New("license server unreachable")}
	adapter := &scriptedAdapter{outcomes: map[string]scriptedOutcome{
		"D1": {err: toolErr},
	}}
	session := NewSession("app", scenarioCandidates()[:1], adapter, Config{Repropose: true})

	report := session.Run(context.Background())

	assert.Equal(t, StateAborted, report.State)
	assert.Nil(t, report.Winner)
	assert.Nil(t, report.WinnerQoR)
	require.Len(t, report.Attempts, 1)
	assert.Equal(t, OutcomeToolchainFailure, report.Attempts[0].Outcome)
	assert.ErrorIs(t, report.Attempts[0].Err, toolErr)
}

func TestSession_ExhaustsWholeList(t *testing.T) {
	infeasible := &QoRRecord{LatencyMs: 0.1, LUTPct: 200}
	candidates := make([]Candidate, 5)
	outcomes := make(map[string]scriptedOutcome, 5)
	for i := range candidates {
		key := fmt.Sprintf("D%d", i)
		candidates[i] = cand(key, 0, float64(i), 0, 0, 0, 0)
		outcomes[key] = scriptedOutcome{qor: infeasible}
	}
	adapter := &scriptedAdapter{outcomes: outcomes}
	session := NewSession("app", candidates, adapter, Config{Repropose: true})

	report := session.Run(context.Background())

	// Bounded by the candidate list: exactly N attempts, then Exhausted.
	assert.Equal(t, StateExhausted, report.State)
	assert.Len(t, report.Attempts, 5)
	assert.Len(t, adapter.calls, 5)
}

func TestSession_MaxReproposalsCap(t *testing.T) {
	infeasible := &QoRRecord{LatencyMs: 0.1, LUTPct: 200}
	candidates := make([]Candidate, 5)
	outcomes := make(map[string]scriptedOutcome, 5)
	for i := range candidates {
		key := fmt.Sprintf("D%d", i)
		candidates[i] = cand(key, 0, float64(i), 0, 0, 0, 0)
		outcomes[key] = scriptedOutcome{qor: infeasible}
	}
	adapter := &scriptedAdapter{outcomes: outcomes}
	session := NewSession("app", candidates, adapter, Config{Repropose: true, MaxReproposals: 2})

	report := session.Run(context.Background())

	// One initial attempt plus two re-proposals.
	assert.Equal(t, StateExhausted, report.State)
	assert.Len(t, report.Attempts, 3)
}

func TestSession_EmptyCandidateList(t *testing.T) {
	session := NewSession("app", nil, &scriptedAdapter{}, Config{Repropose: true})
	report := session.Run(context.Background())
	assert.Equal(t, StateExhausted, report.State)
	assert.Empty(t, report.Attempts)
}

func TestSession_CancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := scenarioAdapter()
	session := NewSession("app", scenarioCandidates(), adapter, Config{Repropose: true})
	report := session.Run(ctx)

	assert.Equal(t, StateAborted, report.State)
	assert.Empty(t, adapter.calls)
}

func TestSessionState_Terminal(t *testing.T) {
	assert.False(t, StateProposing.Terminal())
	assert.False(t, StateAwaitingSynthesis.Terminal())
	assert.True(t, StateFeasible.Terminal())
	assert.True(t, StateExhausted.Terminal())
	assert.True(t, StateAborted.Terminal())
}
