package gp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/adaptive-psych/psygo/core/parallel"
)

// Kernel is a covariance function over derivative-augmented points. The last
// element of each input is the derivative index (see AugmentWithDerivIndex);
// implementations must return the appropriate value/derivative
// cross-covariance for the tag pair.
type Kernel interface {
	// Eval returns the covariance between two augmented points.
	Eval(a, b []float64) float64
}

// RBFGradKernel is an ARD RBF kernel extended with the closed-form partial
// derivative cross-covariances of the base covariance
//
//	k(x, x') = exp(-1/2 Σ_d (x_d - x'_d)^2 / ℓ_d^2)
//
// so a single kernel jointly models a function and its partial derivatives.
// With u = x - x', the tag cases are
//
//	cov(f(x), f(x'))          = k
//	cov(f(x), ∂f/∂x'_j)       = k · u_j/ℓ_j²
//	cov(∂f/∂x_i, f(x'))       = -k · u_i/ℓ_i²
//	cov(∂f/∂x_i, ∂f/∂x'_j)    = k · (δ_ij/ℓ_j² - u_i u_j/(ℓ_i² ℓ_j²))
type RBFGradKernel struct {
	// Lengthscales holds one ARD lengthscale per input dimension.
	Lengthscales []float64
}

// NewRBFGradKernel creates an RBF gradient kernel with the given initial
// lengthscale in every one of dim dimensions.
func NewRBFGradKernel(dim int, lengthscale float64) *RBFGradKernel {
	ls := make([]float64, dim)
	for i := range ls {
		ls[i] = lengthscale
	}
	return &RBFGradKernel{Lengthscales: ls}
}

// Eval implements Kernel for augmented points. Both inputs must be length
// dim+1 with the trailing derivative tag.
func (k *RBFGradKernel) Eval(a, b []float64) float64 {
	d := len(k.Lengthscales)
	ta := int(a[d])
	tb := int(b[d])

	// Base RBF over the raw coordinates.
	s := 0.0
	for i := 0; i < d; i++ {
		u := (a[i] - b[i]) / k.Lengthscales[i]
		s += u * u
	}
	base := math.Exp(-0.5 * s)

	switch {
	case ta == 0 && tb == 0:
		return base
	case ta == 0:
		j := tb - 1
		lj2 := k.Lengthscales[j] * k.Lengthscales[j]
		return base * (a[j] - b[j]) / lj2
	case tb == 0:
		i := ta - 1
		li2 := k.Lengthscales[i] * k.Lengthscales[i]
		return -base * (a[i] - b[i]) / li2
	default:
		i := ta - 1
		j := tb - 1
		li2 := k.Lengthscales[i] * k.Lengthscales[i]
		lj2 := k.Lengthscales[j] * k.Lengthscales[j]
		v := -(a[i] - b[i]) * (a[j] - b[j]) / (li2 * lj2)
		if i == j {
			v += 1 / lj2
		}
		return base * v
	}
}

// ScaleKernel wraps a base kernel with a learnable output scale, matching
// the scaled-RBF default covariance.
type ScaleKernel struct {
	Base        *RBFGradKernel
	OutputScale float64
}

// NewScaleKernel creates a ScaleKernel around base with the given initial
// output scale.
func NewScaleKernel(base *RBFGradKernel, outputScale float64) *ScaleKernel {
	return &ScaleKernel{Base: base, OutputScale: outputScale}
}

// Eval implements Kernel.
func (k *ScaleKernel) Eval(a, b []float64) float64 {
	return k.OutputScale * k.Base.Eval(a, b)
}

// Threshold below which kernel matrices are assembled sequentially.
const kernelParallelThreshold = 64

// kernelMatrix assembles the symmetric covariance matrix of the rows of X.
func kernelMatrix(k Kernel, X *mat.Dense) *mat.SymDense {
	n, _ := X.Dims()
	K := mat.NewSymDense(n, nil)
	parallel.ParallelizeWithThreshold(n, kernelParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			xi := X.RawRowView(i)
			for j := i; j < n; j++ {
				K.SetSym(i, j, k.Eval(xi, X.RawRowView(j)))
			}
		}
	})
	return K
}

// crossKernelMatrix assembles the covariance matrix between the rows of X1
// and the rows of X2.
func crossKernelMatrix(k Kernel, X1, X2 *mat.Dense) *mat.Dense {
	n1, _ := X1.Dims()
	n2, _ := X2.Dims()
	K := mat.NewDense(n1, n2, nil)
	parallel.ParallelizeWithThreshold(n1, kernelParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			xi := X1.RawRowView(i)
			for j := 0; j < n2; j++ {
				K.Set(i, j, k.Eval(xi, X2.RawRowView(j)))
			}
		}
	})
	return K
}
