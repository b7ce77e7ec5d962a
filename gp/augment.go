package gp

import (
	"gonum.org/v1/gonum/mat"
)

// AugmentWithDerivIndex appends a constant derivative-index column to every
// row of X. Index 0 tags a function-value observation; index k > 0 tags the
// partial derivative with respect to dimension k-1.
//
// The input is not modified.
func AugmentWithDerivIndex(X mat.Matrix, derivIndex int) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	tag := float64(derivIndex)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j))
		}
		out.Set(i, c, tag)
	}
	return out
}

// derivConstraintPoints re-augments the inducing points once per monotonic
// dimension, tagging each block with that dimension's derivative index
// (dimension i maps to tag i+1), and stacks the blocks. The result is
// regenerated on every sampling call, never cached.
func derivConstraintPoints(inducing *mat.Dense, monotonicIdxs []int) *mat.Dense {
	if len(monotonicIdxs) == 0 {
		return nil
	}
	m, d := inducing.Dims()
	out := mat.NewDense(m*len(monotonicIdxs), d+1, nil)
	for bi, idx := range monotonicIdxs {
		block := AugmentWithDerivIndex(inducing, idx+1)
		for i := 0; i < m; i++ {
			for j := 0; j <= d; j++ {
				out.Set(bi*m+i, j, block.At(i, j))
			}
		}
	}
	return out
}

// stackRows concatenates two row-blocks with identical column counts.
func stackRows(a, b *mat.Dense) *mat.Dense {
	if b == nil {
		return a
	}
	ra, c := a.Dims()
	rb, _ := b.Dims()
	out := mat.NewDense(ra+rb, c, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, a.At(i, j))
		}
	}
	for i := 0; i < rb; i++ {
		for j := 0; j < c; j++ {
			out.Set(ra+i, j, b.At(i, j))
		}
	}
	return out
}
