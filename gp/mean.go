package gp

import "gonum.org/v1/gonum/mat"

// Mean is a mean function over derivative-augmented points.
type Mean interface {
	// Eval returns the prior mean at an augmented point.
	Eval(x []float64) float64
}

// ConstantGradMean is a constant mean extended to the augmented space: rows
// tagged as derivatives have mean zero, since the derivative of a constant
// vanishes.
type ConstantGradMean struct {
	// Constant is the prior mean of the latent function.
	Constant float64

	// Fixed freezes the constant during fitting. Set when a fixed prior
	// mean is supplied at construction.
	Fixed bool
}

// NewConstantGradMean creates a learnable constant mean initialized at c.
func NewConstantGradMean(c float64) *ConstantGradMean {
	return &ConstantGradMean{Constant: c}
}

// Eval implements Mean. The last element of x is the derivative tag.
func (m *ConstantGradMean) Eval(x []float64) float64 {
	if int(x[len(x)-1]) != 0 {
		return 0
	}
	return m.Constant
}

// meanVector evaluates the mean over every row of augmented X.
func meanVector(m Mean, X *mat.Dense) []float64 {
	n, _ := X.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m.Eval(X.RawRowView(i))
	}
	return out
}
