package advisor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// KnowledgeView is one immutable, versioned knowledge-base snapshot as the
// core sees it. The KB build pipeline supplies the fitted artifacts; the core
// performs no fitting or mining. Leave-one-out evaluation passes a filtered
// snapshot here, the core has no awareness of the exclusion.
type KnowledgeView interface {
	ParetoSource
	// Projection returns the fitted feature-space transform.
	Projection() *Projection
	// ClusterModels returns the fitted cluster descriptors.
	ClusterModels() []ClusterModel
}

// Engine runs the full recommendation pipeline: project the application's
// feature vector, resolve soft cluster membership, retrieve the merged
// candidate list, then refine against the synthesis adapter until a feasible
// design is found or the options run out.
type Engine struct {
	Adapter SynthesisAdapter
	Config  Config
}

// NewEngine builds an engine; the config is validated on first use.
func NewEngine(adapter SynthesisAdapter, cfg Config) *Engine {
	return &Engine{Adapter: adapter, Config: cfg}
}

// Propose runs the non-mutating stages only (project → resolve → retrieve)
// and returns the ordered candidate list. Idempotent: the same feature vector
// against the same snapshot always yields the same list.
func (e *Engine) Propose(features FeatureVector, kb KnowledgeView) ([]Candidate, error) {
	if err := e.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	proj := kb.Projection()
	if got := proj.Components(); got != e.Config.RetainedComponents {
		return nil, fmt.Errorf("%w: projection retains %d components, config expects %d",
			ErrDimensionMismatch, got, e.Config.RetainedComponents)
	}

	projected, err := proj.Project(features)
	if err != nil {
		return nil, fmt.Errorf("projecting feature vector: %w", err)
	}
	logrus.Debugf("projected vector: %v", projected)

	membership, err := ResolveMembership(projected, kb.ClusterModels())
	if err != nil {
		return nil, fmt.Errorf("resolving cluster membership: %w", err)
	}
	selected := SelectClusters(membership, e.Config.MembershipThreshold)
	logrus.Infof("cluster membership %v, selected %v (threshold %v)",
		membership, selected, e.Config.MembershipThreshold)

	candidates, err := RetrieveCandidates(selected, kb)
	if err != nil {
		return nil, fmt.Errorf("retrieving candidates: %w", err)
	}
	return candidates, nil
}

// Recommend runs the full pipeline for one application and drives the
// refinement session to a terminal state. Fatal pipeline errors (dimension
// mismatch, empty KB) abort before any synthesis attempt; synthesis outcomes
// are reported through the session report, never as errors.
func (e *Engine) Recommend(ctx context.Context, app string, features FeatureVector, kb KnowledgeView) (*SessionReport, error) {
	candidates, err := e.Propose(features, kb)
	if err != nil {
		return nil, err
	}
	session := NewSession(app, candidates, e.Adapter, e.Config)
	report := session.Run(ctx)
	return &report, nil
}
