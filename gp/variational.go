package gp

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/adaptive-psych/psygo/pkg/errors"
)

// defaultJitter stabilizes Cholesky factorizations of kernel matrices.
const defaultJitter = 1e-6

// CholeskyVariationalDistribution is the learnable multivariate Gaussian
// over function (and derivative) values at the inducing points,
// parameterized by its mean and the lower Cholesky factor of its covariance.
// The factor's diagonal is held in log space so every parameter vector maps
// to a valid covariance.
type CholeskyVariationalDistribution struct {
	// MeanParams is the variational mean, one entry per inducing point.
	MeanParams []float64

	// CholParams packs the lower-triangular factor row by row:
	// row i contributes entries (i,0..i-1) followed by log L_ii.
	CholParams []float64

	n int
}

// NewCholeskyVariationalDistribution initializes the distribution at
// N(0, I) over n inducing values.
func NewCholeskyVariationalDistribution(n int) *CholeskyVariationalDistribution {
	return &CholeskyVariationalDistribution{
		MeanParams: make([]float64, n),
		CholParams: make([]float64, n*(n+1)/2),
		n:          n,
	}
}

// NumInducing returns the number of inducing values.
func (v *CholeskyVariationalDistribution) NumInducing() int { return v.n }

// NumParams returns the packed parameter count.
func (v *CholeskyVariationalDistribution) NumParams() int {
	return v.n + v.n*(v.n+1)/2
}

// Reset reinitializes the distribution at N(0, I).
func (v *CholeskyVariationalDistribution) Reset() {
	for i := range v.MeanParams {
		v.MeanParams[i] = 0
	}
	for i := range v.CholParams {
		v.CholParams[i] = 0
	}
}

// Mean returns the variational mean vector.
func (v *CholeskyVariationalDistribution) Mean() *mat.VecDense {
	return mat.NewVecDense(v.n, append([]float64(nil), v.MeanParams...))
}

// CholFactor materializes the lower Cholesky factor.
func (v *CholeskyVariationalDistribution) CholFactor() *mat.TriDense {
	L := mat.NewTriDense(v.n, mat.Lower, nil)
	idx := 0
	for i := 0; i < v.n; i++ {
		for j := 0; j < i; j++ {
			L.SetTri(i, j, v.CholParams[idx])
			idx++
		}
		L.SetTri(i, i, math.Exp(v.CholParams[idx]))
		idx++
	}
	return L
}

// Covariance returns S = L Lᵀ.
func (v *CholeskyVariationalDistribution) Covariance() *mat.SymDense {
	L := v.CholFactor()
	var s mat.SymDense
	s.SymOuterK(1, L)
	return &s
}

// VariationalGP is a sparse variational GP over the derivative-augmented
// space: a fixed augmented inducing set, a Cholesky-parameterized
// variational distribution over values there, and the conditioning
// ("variational strategy") that predicts a posterior at new augmented
// points. Inducing locations are not re-learned.
type VariationalGP struct {
	InducingAug *mat.Dense // m x (D+1), tag 0
	MeanFn      Mean
	Kern        Kernel
	VarDist     *CholeskyVariationalDistribution
	Jitter      float64
}

// NewVariationalGP builds the variational GP around a fixed augmented
// inducing set.
func NewVariationalGP(inducingAug *mat.Dense, meanFn Mean, kern Kernel) *VariationalGP {
	m, _ := inducingAug.Dims()
	return &VariationalGP{
		InducingAug: inducingAug,
		MeanFn:      meanFn,
		Kern:        kern,
		VarDist:     NewCholeskyVariationalDistribution(m),
		Jitter:      defaultJitter,
	}
}

// Prior evaluates the model's joint prior at augmented points: mean vector
// via the mean function, covariance via the kernel.
func (g *VariationalGP) Prior(Xaug *mat.Dense) (*mat.VecDense, *mat.SymDense) {
	n, _ := Xaug.Dims()
	mu := mat.NewVecDense(n, meanVector(g.MeanFn, Xaug))
	return mu, kernelMatrix(g.Kern, Xaug)
}

// Posterior conditions on the variational distribution to produce the
// posterior multivariate Gaussian at the given augmented points:
//
//	mean = μ(X) + Kxz Kzz⁻¹ (m - μ(Z))
//	cov  = Kxx - Kxz Kzz⁻¹ Kzx + Kxz Kzz⁻¹ S Kzz⁻¹ Kzx
func (g *VariationalGP) Posterior(Xaug *mat.Dense) (*Posterior, error) {
	n, _ := Xaug.Dims()
	m, _ := g.InducingAug.Dims()

	Kzz := kernelMatrix(g.Kern, g.InducingAug)
	addToDiag(Kzz, g.Jitter)

	var chol mat.Cholesky
	if ok := chol.Factorize(Kzz); !ok {
		// Retry with inflated jitter before giving up.
		ok = false
		jitter := g.Jitter
		for attempt := 0; attempt < 6 && !ok; attempt++ {
			jitter *= 10
			addToDiag(Kzz, jitter)
			ok = chol.Factorize(Kzz)
		}
		if !ok {
			return nil, errors.NewModelError("VariationalGP.Posterior",
				"inducing covariance is not positive definite", errors.ErrSingularMatrix)
		}
	}

	Kxz := crossKernelMatrix(g.Kern, Xaug, g.InducingAug)
	Kxx := kernelMatrix(g.Kern, Xaug)

	// A = Kzz⁻¹ Kzx  (m x n)
	var A mat.Dense
	if err := chol.SolveTo(&A, Kxz.T()); err != nil {
		return nil, errors.Wrap(err, "VariationalGP.Posterior: solve Kzz")
	}

	muX := meanVector(g.MeanFn, Xaug)
	muZ := meanVector(g.MeanFn, g.InducingAug)

	// mean = μ(X) + Aᵀ (m - μ(Z))
	diff := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		diff.SetVec(i, g.VarDist.MeanParams[i]-muZ[i])
	}
	mean := mat.NewVecDense(n, muX)
	var corr mat.VecDense
	corr.MulVec(A.T(), diff)
	mean.AddVec(mean, &corr)

	// cov = Kxx - Kxz A + Aᵀ S A
	var KA mat.Dense
	KA.Mul(Kxz, &A) // n x n

	S := g.VarDist.Covariance()
	var SA, ASA mat.Dense
	SA.Mul(S, &A)       // m x n
	ASA.Mul(A.T(), &SA) // n x n

	cov := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// Average the off-diagonal pair to keep the matrix exactly
			// symmetric under floating point error.
			v := Kxx.At(i, j) - 0.5*(KA.At(i, j)+KA.At(j, i)) + 0.5*(ASA.At(i, j)+ASA.At(j, i))
			cov.SetSym(i, j, v)
		}
	}

	return NewPosterior(mean, cov), nil
}

// KLDivergence returns KL(q(u) || p(u)) between the variational
// distribution and the GP prior at the inducing points, in closed form.
func (g *VariationalGP) KLDivergence() (float64, error) {
	m, _ := g.InducingAug.Dims()

	Kzz := kernelMatrix(g.Kern, g.InducingAug)
	addToDiag(Kzz, g.Jitter)

	var chol mat.Cholesky
	if ok := chol.Factorize(Kzz); !ok {
		return 0, errors.NewModelError("VariationalGP.KLDivergence",
			"inducing covariance is not positive definite", errors.ErrSingularMatrix)
	}

	S := g.VarDist.Covariance()

	// tr(Kzz⁻¹ S)
	var KinvS mat.Dense
	if err := chol.SolveTo(&KinvS, S); err != nil {
		return 0, errors.Wrap(err, "VariationalGP.KLDivergence: solve Kzz")
	}
	trace := 0.0
	for i := 0; i < m; i++ {
		trace += KinvS.At(i, i)
	}

	// (μz - m)ᵀ Kzz⁻¹ (μz - m)
	muZ := meanVector(g.MeanFn, g.InducingAug)
	diff := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		diff.SetVec(i, muZ[i]-g.VarDist.MeanParams[i])
	}
	var solved mat.VecDense
	if err := chol.SolveVecTo(&solved, diff); err != nil {
		return 0, errors.Wrap(err, "VariationalGP.KLDivergence: solve Kzz")
	}
	quadTerm := mat.Dot(diff, &solved)

	// log|Kzz| - log|S|, with log|S| read off the packed log-diagonal.
	logDetK := chol.LogDet()
	logDetS := 0.0
	idx := 0
	for i := 0; i < m; i++ {
		idx += i
		logDetS += 2 * g.VarDist.CholParams[idx]
		idx++
	}

	kl := 0.5 * (trace + quadTerm - float64(m) + logDetK - logDetS)
	return kl, nil
}

func addToDiag(s *mat.SymDense, v float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+v)
	}
}
