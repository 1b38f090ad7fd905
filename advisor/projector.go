package advisor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Projection is the fitted linear map from raw feature space into the
// knowledge base's principal-component space. Centering holds the per-feature
// offsets subtracted before the transform; Matrix has one row per raw feature
// and one column per retained component. Both are supplied by the KB build
// pipeline; the core never fits them.
type Projection struct {
	Centering []float64
	Matrix    *mat.Dense
}

// Components returns the number of retained principal components.
func (p *Projection) Components() int {
	if p.Matrix == nil {
		return 0
	}
	_, c := p.Matrix.Dims()
	return c
}

// Project maps a raw feature vector into component space: subtract the
// centering vector element-wise, then multiply by the projection matrix.
// Pure and deterministic. Returns ErrDimensionMismatch when the vector length
// disagrees with the fitted projection.
func (p *Projection) Project(features FeatureVector) (ProjectedVector, error) {
	rows, cols := p.Matrix.Dims()
	if len(features) != rows {
		return nil, fmt.Errorf("%w: got %d features, projection expects %d", ErrDimensionMismatch, len(features), rows)
	}
	if len(p.Centering) != rows {
		return nil, fmt.Errorf("%w: centering has %d entries, projection expects %d", ErrDimensionMismatch, len(p.Centering), rows)
	}

	centered := mat.NewVecDense(rows, nil)
	for i, v := range features {
		centered.SetVec(i, v-p.Centering[i])
	}

	var out mat.VecDense
	out.MulVec(p.Matrix.T(), centered)

	projected := make(ProjectedVector, cols)
	for j := range projected {
		projected[j] = out.AtVec(j)
	}
	return projected, nil
}
