package advisor

import "fmt"

// Defaults mirror the knob settings the knowledge base was mined with.
const (
	DefaultRetainedComponents  = 3
	DefaultMembershipThreshold = 0.1
)

// Config is the tuning surface of one recommendation session.
type Config struct {
	// RetainedComponents is the expected dimensionality of projected vectors.
	// It must agree with the KB version's projection matrix.
	RetainedComponents int

	// MembershipThreshold is the minimum soft membership probability for a
	// cluster to contribute its Pareto frontier.
	MembershipThreshold float64

	// Repropose enables trying the next-best candidate after a synthesizable
	// but resource-infeasible design. When false the session ends after the
	// first attempt.
	Repropose bool

	// MaxReproposals further caps re-proposal iterations beyond the implicit
	// candidate-list bound. Zero or negative means no extra cap.
	MaxReproposals int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		RetainedComponents:  DefaultRetainedComponents,
		MembershipThreshold: DefaultMembershipThreshold,
		Repropose:           true,
	}
}

// Validate checks the configuration for values no session can run with.
func (c Config) Validate() error {
	if c.RetainedComponents <= 0 {
		return fmt.Errorf("retained components must be positive, got %d", c.RetainedComponents)
	}
	if c.MembershipThreshold < 0 || c.MembershipThreshold > 1 {
		return fmt.Errorf("membership threshold must be in [0, 1], got %v", c.MembershipThreshold)
	}
	return nil
}
