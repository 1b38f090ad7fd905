package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testProjection() *Projection {
	// 4 features down to 2 components.
	return &Projection{
		Centering: []float64{1, 2, 3, 4},
		Matrix: mat.NewDense(4, 2, []float64{
			1, 0,
			0, 1,
			1, 1,
			0, 0,
		}),
	}
}

func TestProject_KnownValues(t *testing.T) {
	p := testProjection()
	got, err := p.Project(FeatureVector{2, 4, 6, 8})
	require.NoError(t, err)
	// centered = (1, 2, 3, 4); components = (1*1+3*1, 2*1+3*1)
	assert.Equal(t, ProjectedVector{4, 5}, got)
}

func TestProject_Deterministic(t *testing.T) {
	p := testProjection()
	features := FeatureVector{0.5, -1.25, 3.75, 9}

	first, err := p.Project(features)
	require.NoError(t, err)
	second, err := p.Project(features)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProject_DimensionMismatch(t *testing.T) {
	p := testProjection()
	_, err := p.Project(FeatureVector{1, 2, 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestProject_BadCentering(t *testing.T) {
	p := testProjection()
	p.Centering = []float64{1, 2}
	_, err := p.Project(FeatureVector{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestProjection_Components(t *testing.T) {
	assert.Equal(t, 2, testProjection().Components())
	assert.Equal(t, 0, (&Projection{}).Components())
}
