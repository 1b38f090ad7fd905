package advisor

import "fmt"

// FeatureVector is the ordered source-code metric vector of one application.
// Dimensionality is fixed per knowledge-base version.
type FeatureVector []float64

// ProjectedVector is a FeatureVector mapped into the knowledge base's
// principal-component space. Its length equals the number of retained
// components for the KB version that produced it.
type ProjectedVector []float64

// DirectiveCombination is one set of synthesis knobs mined from a previous
// design-space exploration. Key identifies the combination inside its
// cluster's frontier; Directives maps action-point names to directive
// specifications and is opaque to the recommendation core.
type DirectiveCombination struct {
	Key        string
	Cluster    int
	Directives map[string]string
}

// QoRRecord holds the measured quality-of-result of synthesizing one
// directive combination: design latency plus the four FPGA resource
// utilization percentages.
type QoRRecord struct {
	LatencyMs float64
	BRAMPct   float64
	DSPPct    float64
	FFPct     float64
	LUTPct    float64
}

// Feasible reports whether the design fits the device: every resource
// utilization percentage must be at most 100.
func (q QoRRecord) Feasible() bool {
	return q.BRAMPct <= 100 && q.DSPPct <= 100 && q.FFPct <= 100 && q.LUTPct <= 100
}

// TotalUtilization is the sum of the four resource percentages, used as the
// tie-break when ranking candidates with equal latency.
func (q QoRRecord) TotalUtilization() float64 {
	return q.BRAMPct + q.DSPPct + q.FFPct + q.LUTPct
}

// Dominates reports whether q is at least as good as other on every objective
// (latency and all four utilizations, lower is better) and strictly better on
// at least one.
func (q QoRRecord) Dominates(other QoRRecord) bool {
	betterOrEqual := q.LatencyMs <= other.LatencyMs &&
		q.BRAMPct <= other.BRAMPct &&
		q.DSPPct <= other.DSPPct &&
		q.FFPct <= other.FFPct &&
		q.LUTPct <= other.LUTPct
	strictlyBetter := q.LatencyMs < other.LatencyMs ||
		q.BRAMPct < other.BRAMPct ||
		q.DSPPct < other.DSPPct ||
		q.FFPct < other.FFPct ||
		q.LUTPct < other.LUTPct
	return betterOrEqual && strictlyBetter
}

func (q QoRRecord) String() string {
	return fmt.Sprintf("latency=%.4fms BRAM=%.1f%% DSP=%.1f%% FF=%.1f%% LUT=%.1f%%",
		q.LatencyMs, q.BRAMPct, q.DSPPct, q.FFPct, q.LUTPct)
}

// Candidate pairs a directive combination with the QoR it achieved when the
// knowledge base was mined. The recorded QoR ranks candidates; the QoR of the
// application under optimization is only known after synthesis.
type Candidate struct {
	Combination DirectiveCombination
	RecordedQoR QoRRecord
}

// MembershipResult maps cluster ids to soft membership probabilities in [0,1].
// Probabilities are not required to sum to one; the clustering is soft.
type MembershipResult map[int]float64

// AttemptOutcome classifies what one synthesis attempt produced.
type AttemptOutcome int

const (
	// OutcomePending marks an attempt submitted to the adapter but not yet resolved.
	OutcomePending AttemptOutcome = iota
	// OutcomeFeasible means the design synthesized and fits the device.
	OutcomeFeasible
	// OutcomeInfeasible means the design synthesized but exceeds at least one resource.
	OutcomeInfeasible
	// OutcomeToolchainFailure means synthesis itself failed; no QoR was measured.
	OutcomeToolchainFailure
)

func (o AttemptOutcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeFeasible:
		return "feasible"
	case OutcomeInfeasible:
		return "infeasible"
	case OutcomeToolchainFailure:
		return "toolchain-failure"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// AttemptRecord is one entry of a session's audit trail: the candidate
// submitted, what came back, and the toolchain error when synthesis failed.
type AttemptRecord struct {
	Candidate Candidate
	Outcome   AttemptOutcome
	QoR       *QoRRecord
	Err       error
}

// SessionState is the refinement loop's state.
type SessionState int

const (
	// StateProposing means the loop is about to pick the next candidate.
	StateProposing SessionState = iota
	// StateAwaitingSynthesis means a candidate has been handed to the adapter.
	StateAwaitingSynthesis
	// StateFeasible is the terminal success state.
	StateFeasible
	// StateExhausted is terminal: every candidate was tried (or re-proposal is
	// disabled) and none was feasible.
	StateExhausted
	// StateAborted is terminal: the toolchain failed or the caller cancelled.
	StateAborted
)

func (s SessionState) String() string {
	switch s {
	case StateProposing:
		return "proposing"
	case StateAwaitingSynthesis:
		return "awaiting-synthesis"
	case StateFeasible:
		return "feasible"
	case StateExhausted:
		return "exhausted"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Terminal reports whether the session has finished.
func (s SessionState) Terminal() bool {
	return s == StateFeasible || s == StateExhausted || s == StateAborted
}

// SessionReport is the externally visible result of one recommendation
// session: the terminal state, the winning candidate and its measured QoR
// when the session reached StateFeasible, and the full attempt trail.
type SessionReport struct {
	Application string
	State       SessionState
	Winner      *Candidate
	WinnerQoR   *QoRRecord
	Attempts    []AttemptRecord
}
