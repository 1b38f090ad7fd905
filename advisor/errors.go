package advisor

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch means a feature vector is incompatible with the
	// fitted projection of the knowledge-base version in use.
	ErrDimensionMismatch = errors.New("feature vector dimension does not match fitted projection")

	// ErrNoModelsAvailable means the knowledge base carries no fitted cluster
	// models for the configured parameters.
	ErrNoModelsAvailable = errors.New("no cluster models available")

	// ErrEmptyKnowledgeBase means no selected cluster has a non-empty Pareto
	// frontier, so no candidate can be proposed.
	ErrEmptyKnowledgeBase = errors.New("no Pareto-optimal candidates in selected clusters")
)

// ToolchainError reports a synthesis toolchain or process failure, as opposed
// to a measured-but-infeasible design. The refinement loop never retries it.
type ToolchainError struct {
	Stage string // e.g. "csynth", "report-parse", "launch"
	Err   error
}

func (e *ToolchainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("toolchain failure during %s", e.Stage)
	}
	return fmt.Sprintf("toolchain failure during %s: %v", e.Stage, e.Err)
}

func (e *ToolchainError) Unwrap() error { return e.Err }
