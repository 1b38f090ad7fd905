package advisor

import (
	"context"

	"github.com/sirupsen/logrus"
)

// SynthesisAdapter applies a directive combination to an application's source
// and runs the synthesis toolchain. It blocks for the duration of the run
// (minutes for real toolchains); implementations own their timeouts. A nil
// error with a QoR means the design synthesized, feasible or not. A non-nil
// error means the toolchain itself failed and the session will abort.
type SynthesisAdapter interface {
	Synthesize(ctx context.Context, application string, combo DirectiveCombination) (*QoRRecord, error)
}

// Session is the refinement loop over one ordered candidate list. It owns the
// only mutable state of a recommendation: the attempt trail. Sessions are
// single-use; independent sessions share nothing and may run in parallel.
type Session struct {
	app        string
	candidates []Candidate
	adapter    SynthesisAdapter
	cfg        Config

	state    SessionState
	next     int
	attempts []AttemptRecord
}

// NewSession builds a session in StateProposing over the given candidate
// list. The list is consumed left to right and never reordered.
func NewSession(app string, candidates []Candidate, adapter SynthesisAdapter, cfg Config) *Session {
	return &Session{
		app:        app,
		candidates: candidates,
		adapter:    adapter,
		cfg:        cfg,
		state:      StateProposing,
	}
}

// State returns the session's current state.
func (s *Session) State() SessionState { return s.state }

// Run drives the state machine to a terminal state and returns the session
// report. The loop is bounded by the candidate-list length; with re-proposal
// enabled at most len(candidates) synthesis attempts are made. Cancellation
// is honored between attempts: a cancelled context aborts the session before
// the next candidate is submitted, with the trail so far preserved.
func (s *Session) Run(ctx context.Context) SessionReport {
	for !s.state.Terminal() {
		if err := ctx.Err(); err != nil {
			logrus.Warnf("session for %s cancelled after %d attempts: %v", s.app, len(s.attempts), err)
			s.state = StateAborted
			break
		}
		s.step(ctx)
	}
	return s.report()
}

// step performs one Proposing → AwaitingSynthesis → outcome transition.
func (s *Session) step(ctx context.Context) {
	if s.next >= len(s.candidates) {
		s.state = StateExhausted
		return
	}
	cand := s.candidates[s.next]
	s.next++

	s.state = StateAwaitingSynthesis
	s.attempts = append(s.attempts, AttemptRecord{Candidate: cand, Outcome: OutcomePending})
	record := &s.attempts[len(s.attempts)-1]

	logrus.Infof("synthesizing %s with candidate %s (recorded %s)", s.app, cand.Combination.Key, cand.RecordedQoR)
	qor, err := s.adapter.Synthesize(ctx, s.app, cand.Combination)
	if err != nil {
		record.Outcome = OutcomeToolchainFailure
		record.Err = err
		logrus.Errorf("synthesis of %s failed on candidate %s: %v", s.app, cand.Combination.Key, err)
		s.state = StateAborted
		return
	}

	record.QoR = qor
	if qor.Feasible() {
		record.Outcome = OutcomeFeasible
		logrus.Infof("feasible design for %s: %s", s.app, qor)
		s.state = StateFeasible
		return
	}

	record.Outcome = OutcomeInfeasible
	logrus.Infof("candidate %s infeasible for %s: %s", cand.Combination.Key, s.app, qor)
	if !s.cfg.Repropose || s.reproposalsSpent() {
		s.state = StateExhausted
		return
	}
	s.state = StateProposing
}

// reproposalsSpent reports whether the optional re-proposal cap is used up.
// Attempts beyond the first are re-proposals.
func (s *Session) reproposalsSpent() bool {
	return s.cfg.MaxReproposals > 0 && len(s.attempts)-1 >= s.cfg.MaxReproposals
}

func (s *Session) report() SessionReport {
	rep := SessionReport{
		Application: s.app,
		State:       s.state,
		Attempts:    s.attempts,
	}
	if s.state == StateFeasible {
		last := s.attempts[len(s.attempts)-1]
		rep.Winner = &last.Candidate
		rep.WinnerQoR = last.QoR
	}
	return rep
}
