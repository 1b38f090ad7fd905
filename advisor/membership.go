package advisor

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// ClusterModel is one fitted cluster descriptor. MembershipScore returns a
// soft membership probability in [0,1] that is monotone non-increasing in the
// distance between the vector and the cluster's characteristic point.
// Concrete density and distance models are interchangeable behind this
// interface; the resolver never looks past it.
type ClusterModel interface {
	// ID is the stable cluster identifier used to index the Pareto tables.
	ID() int
	// Dim is the dimensionality of vectors the model was fitted on.
	Dim() int
	// MembershipScore returns the membership probability of vec.
	MembershipScore(vec ProjectedVector) float64
}

// GaussianModel scores membership with a fitted multivariate normal density,
// normalized by the density at the mean so the score at the centroid is 1.
type GaussianModel struct {
	id   int
	mean []float64
	dist *distmv.Normal
}

// NewGaussianModel builds a Gaussian cluster model from a fitted mean and
// covariance. The covariance is given row-major; it must be symmetric
// positive definite or the construction fails.
func NewGaussianModel(id int, mean []float64, covariance []float64) (*GaussianModel, error) {
	n := len(mean)
	if len(covariance) != n*n {
		return nil, fmt.Errorf("cluster %d: covariance has %d entries, want %d", id, len(covariance), n*n)
	}
	sigma := mat.NewSymDense(n, covariance)
	dist, ok := distmv.NewNormal(mean, sigma, nil)
	if !ok {
		return nil, fmt.Errorf("cluster %d: covariance is not positive definite", id)
	}
	return &GaussianModel{id: id, mean: mean, dist: dist}, nil
}

func (m *GaussianModel) ID() int  { return m.id }
func (m *GaussianModel) Dim() int { return len(m.mean) }

func (m *GaussianModel) MembershipScore(vec ProjectedVector) float64 {
	peak := m.dist.Prob(m.mean)
	if peak == 0 {
		return 0
	}
	score := m.dist.Prob(vec) / peak
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(1, math.Max(0, score))
}

// CentroidModel scores membership by an exponential transform of Euclidean
// distance to the centroid, scaled by the cluster's fitted radius. Score is 1
// at the centroid and decays toward 0 with distance.
type CentroidModel struct {
	id       int
	centroid []float64
	radius   float64
}

// NewCentroidModel builds a distance-based cluster model. Radius must be
// positive; it is the distance at which membership falls to 1/e.
func NewCentroidModel(id int, centroid []float64, radius float64) (*CentroidModel, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("cluster %d: radius must be positive, got %v", id, radius)
	}
	return &CentroidModel{id: id, centroid: centroid, radius: radius}, nil
}

func (m *CentroidModel) ID() int  { return m.id }
func (m *CentroidModel) Dim() int { return len(m.centroid) }

func (m *CentroidModel) MembershipScore(vec ProjectedVector) float64 {
	return math.Exp(-floats.Distance(m.centroid, vec, 2) / m.radius)
}

// ResolveMembership computes the soft membership of a projected vector
// against every fitted cluster model. Deterministic: the same vector and
// models always produce the same result. Fails with ErrNoModelsAvailable when
// the model set is empty and ErrDimensionMismatch when the vector length
// disagrees with any model's fitted dimensionality.
func ResolveMembership(vec ProjectedVector, models []ClusterModel) (MembershipResult, error) {
	if len(models) == 0 {
		return nil, ErrNoModelsAvailable
	}
	result := make(MembershipResult, len(models))
	for _, model := range models {
		if model.Dim() != len(vec) {
			return nil, fmt.Errorf("%w: vector has %d components, cluster %d fitted on %d",
				ErrDimensionMismatch, len(vec), model.ID(), model.Dim())
		}
		result[model.ID()] = model.MembershipScore(vec)
	}
	return result, nil
}
