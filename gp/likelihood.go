package gp

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// Likelihood maps latent function values to response observations and
// supplies the expected log-likelihood term of the variational objective.
type Likelihood interface {
	// ExpectedLogProb returns E[log p(y|f)] for f ~ N(mu, variance).
	ExpectedLogProb(y, mu, variance float64) float64

	// Params returns the learnable likelihood parameters in optimizer
	// space (log-transformed where positivity is required). An empty
	// slice means the likelihood has nothing to learn.
	Params() []float64

	// SetParams restores parameters from optimizer space.
	SetParams(p []float64)

	// ParamNames returns snapshot names aligned with Params.
	ParamNames() []string

	// Name identifies the link/likelihood combination.
	Name() string
}

const ghQuadratureNodes = 20

// BernoulliLikelihood is the default probit-Bernoulli likelihood for binary
// detection responses: p(y=1|f) = Φ(f).
type BernoulliLikelihood struct {
	nodes   []float64
	weights []float64
}

// NewBernoulliLikelihood creates a probit-Bernoulli likelihood.
func NewBernoulliLikelihood() *BernoulliLikelihood {
	x := make([]float64, ghQuadratureNodes)
	w := make([]float64, ghQuadratureNodes)
	quad.Hermite{}.FixedLocations(x, w, math.Inf(-1), math.Inf(1))
	return &BernoulliLikelihood{nodes: x, weights: w}
}

// ExpectedLogProb integrates log Φ((2y-1) f) against N(mu, variance) with
// Gauss-Hermite quadrature.
func (l *BernoulliLikelihood) ExpectedLogProb(y, mu, variance float64) float64 {
	sign := 2*y - 1
	sd := math.Sqrt(math.Max(variance, 0))
	var sum float64
	for i, t := range l.nodes {
		f := mu + math.Sqrt2*sd*t
		p := distuv.UnitNormal.CDF(sign * f)
		if p < 1e-12 {
			p = 1e-12
		}
		sum += l.weights[i] * math.Log(p)
	}
	return sum / math.Sqrt(math.Pi)
}

// Params implements Likelihood; the probit-Bernoulli has no free parameters.
func (l *BernoulliLikelihood) Params() []float64 { return nil }

// SetParams implements Likelihood.
func (l *BernoulliLikelihood) SetParams([]float64) {}

// ParamNames implements Likelihood.
func (l *BernoulliLikelihood) ParamNames() []string { return nil }

// Name implements Likelihood.
func (l *BernoulliLikelihood) Name() string { return "probit-bernoulli" }

// GaussianLikelihood is the identity-Gaussian likelihood for continuous
// outcomes, with a learnable noise variance.
type GaussianLikelihood struct {
	// Noise is the observation noise variance.
	Noise float64
}

// NewGaussianLikelihood creates a Gaussian likelihood with a default noise
// variance.
func NewGaussianLikelihood() *GaussianLikelihood {
	return &GaussianLikelihood{Noise: 0.01}
}

// ExpectedLogProb has the closed form
//
//	-1/2 log(2π s²) - ((y-mu)² + variance) / (2 s²)
func (l *GaussianLikelihood) ExpectedLogProb(y, mu, variance float64) float64 {
	s2 := math.Max(l.Noise, 1e-8)
	r := y - mu
	return -0.5*math.Log(2*math.Pi*s2) - (r*r+math.Max(variance, 0))/(2*s2)
}

// Params implements Likelihood; the noise variance is learned in log space.
func (l *GaussianLikelihood) Params() []float64 {
	return []float64{math.Log(math.Max(l.Noise, 1e-8))}
}

// SetParams implements Likelihood.
func (l *GaussianLikelihood) SetParams(p []float64) {
	if len(p) > 0 {
		l.Noise = math.Exp(p[0])
	}
}

// ParamNames implements Likelihood.
func (l *GaussianLikelihood) ParamNames() []string { return []string{"likelihood.log_noise"} }

// Name implements Likelihood.
func (l *GaussianLikelihood) Name() string { return "identity-gaussian" }
