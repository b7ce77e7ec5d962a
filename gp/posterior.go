package gp

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/adaptive-psych/psygo/pkg/errors"
)

// JointSampler is the narrow contract the rejection sampler requires from a
// posterior: batched joint Monte-Carlo draws over a fixed point set. Any
// Gaussian-process or Monte-Carlo posterior satisfies it.
type JointSampler interface {
	// DrawJointSamples returns a (count x Dim) matrix, one joint draw per
	// row.
	DrawJointSamples(count int) (*mat.Dense, error)

	// Dim returns the number of points each joint draw covers.
	Dim() int
}

// Posterior is a multivariate Gaussian over function (and derivative)
// values at a fixed set of augmented points. It carries no gradients and is
// ephemeral: built per predict/sample call and discarded.
type Posterior struct {
	mean *mat.VecDense
	cov  *mat.SymDense
	src  rand.Source
}

// NewPosterior wraps a mean vector and covariance matrix.
func NewPosterior(mean *mat.VecDense, cov *mat.SymDense) *Posterior {
	return &Posterior{mean: mean, cov: cov}
}

// SetSource injects the random source used by DrawJointSamples, letting
// tests fix a seed. A nil source keeps the global generator.
func (p *Posterior) SetSource(src rand.Source) { p.src = src }

// Dim implements JointSampler.
func (p *Posterior) Dim() int { return p.mean.Len() }

// Mean returns the posterior mean at point i.
func (p *Posterior) Mean(i int) float64 { return p.mean.AtVec(i) }

// Variance returns the posterior marginal variance at point i, clamped to
// be non-negative.
func (p *Posterior) Variance(i int) float64 {
	v := p.cov.At(i, i)
	if v < 0 {
		return 0
	}
	return v
}

// DrawJointSamples draws count joint samples from the Gaussian. The
// covariance is re-jittered and refactorized on failure, the same escape
// hatch used for the inducing covariance.
func (p *Posterior) DrawJointSamples(count int) (*mat.Dense, error) {
	n := p.mean.Len()
	if count <= 0 {
		return nil, errors.NewValidationError("count", "sample count must be positive", count)
	}

	mu := make([]float64, n)
	for i := 0; i < n; i++ {
		mu[i] = p.mean.AtVec(i)
	}

	normal, ok := distmv.NewNormal(mu, p.cov, p.src)
	if !ok {
		jitter := defaultJitter
		work := mat.NewSymDense(n, nil)
		work.CopySym(p.cov)
		for attempt := 0; attempt < 10 && !ok; attempt++ {
			addToDiag(work, jitter)
			jitter *= 10
			normal, ok = distmv.NewNormal(mu, work, p.src)
		}
		if !ok {
			return nil, errors.NewModelError("Posterior.DrawJointSamples",
				"covariance is not positive definite", errors.ErrSingularMatrix)
		}
	}

	samples := mat.NewDense(count, n, nil)
	row := make([]float64, n)
	for i := 0; i < count; i++ {
		normal.Rand(row)
		samples.SetRow(i, row)
	}
	return samples, nil
}
