package gp

import (
	"github.com/adaptive-psych/psygo/pkg/errors"
)

// Bounds is the canonical (lower, upper, dim) triple owned by a model.
// Immutable after construction: accessors copy.
type Bounds struct {
	lower []float64
	upper []float64
	dim   int
}

// ProcessBounds normalizes lower/upper bound vectors and an optional explicit
// dimensionality into canonical bounds.
//
// dim <= 0 means "infer from the bound vectors". A single scalar bound is
// promoted: ProcessBounds([]float64{0}, []float64{1}, 3) tiles the bound to
// three dimensions. Validation fails when the vectors disagree in length,
// when dim is inconsistent with their length, or when any lower[i] >= upper[i].
func ProcessBounds(lb, ub []float64, dim int) (Bounds, error) {
	if len(lb) == 0 {
		return Bounds{}, errors.NewValidationError("lb", "lower bound must not be empty", lb)
	}
	if len(ub) == 0 {
		return Bounds{}, errors.NewValidationError("ub", "upper bound must not be empty", ub)
	}
	if len(lb) != len(ub) {
		return Bounds{}, errors.NewValidationError("ub",
			"lower and upper bounds must have the same length", []int{len(lb), len(ub)})
	}

	lower := append([]float64(nil), lb...)
	upper := append([]float64(nil), ub...)

	switch {
	case dim <= 0:
		dim = len(lower)
	case len(lower) == 1 && dim > 1:
		// Scalar bounds tile to the requested dimensionality.
		l, u := lower[0], upper[0]
		lower = make([]float64, dim)
		upper = make([]float64, dim)
		for i := range lower {
			lower[i] = l
			upper[i] = u
		}
	case len(lower) != dim:
		return Bounds{}, errors.NewValidationError("dim",
			"dim is inconsistent with the bound length", dim)
	}

	for i := range lower {
		if lower[i] >= upper[i] {
			return Bounds{}, errors.NewValidationError("lb",
				"lower bound must be strictly less than upper bound in every dimension",
				[]float64{lower[i], upper[i]})
		}
	}

	return Bounds{lower: lower, upper: upper, dim: dim}, nil
}

// Dim returns the input dimensionality D.
func (b Bounds) Dim() int { return b.dim }

// Lower returns a copy of the lower bound vector.
func (b Bounds) Lower() []float64 { return append([]float64(nil), b.lower...) }

// Upper returns a copy of the upper bound vector.
func (b Bounds) Upper() []float64 { return append([]float64(nil), b.upper...) }

// Range returns upper[i] - lower[i] for dimension i.
func (b Bounds) Range(i int) float64 { return b.upper[i] - b.lower[i] }

// Contains reports whether x lies inside the bound box.
func (b Bounds) Contains(x []float64) bool {
	if len(x) != b.dim {
		return false
	}
	for i, v := range x {
		if v < b.lower[i] || v > b.upper[i] {
			return false
		}
	}
	return true
}
