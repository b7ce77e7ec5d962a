package gp

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Prior is a log-density over a scalar hyperparameter. Log priors are added
// to the variational objective, making the fit a MAP estimate.
type Prior interface {
	LogProb(x float64) float64
}

// MomentMatchInvGamma returns the (shape, rate) of the inverse-gamma
// distribution with the given mode and mean. Solving
//
//	mode = rate/(shape+1),  mean = rate/(shape-1)
//
// gives shape = (mean+mode)/(mean-mode) and rate = mode*(shape+1).
// Requires 0 < mode < mean.
func MomentMatchInvGamma(mode, mean float64) (alpha, beta float64) {
	alpha = (mean + mode) / (mean - mode)
	beta = mode * (alpha + 1)
	return alpha, beta
}

// LengthscalePrior is the default prior on an RBF lengthscale: a Gamma
// density evaluated on the inverse lengthscale, with shape/rate derived from
// the bound range so that the implied prior mode is one-tenth of the range.
type LengthscalePrior struct {
	gamma distuv.Gamma
}

// NewLengthscalePrior builds the lengthscale prior for a dimension whose
// bound range is rangeVal.
func NewLengthscalePrior(rangeVal float64) *LengthscalePrior {
	alpha, beta := MomentMatchInvGamma(rangeVal/10, rangeVal)
	return &LengthscalePrior{gamma: distuv.Gamma{Alpha: alpha, Beta: beta}}
}

// LogProb implements Prior; x is the lengthscale itself.
func (p *LengthscalePrior) LogProb(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}
	return p.gamma.LogProb(1 / x)
}

// Mode returns the prior mode in lengthscale units, used as the initial
// lengthscale value.
func (p *LengthscalePrior) Mode() float64 {
	return p.gamma.Beta / (p.gamma.Alpha + 1)
}

// SmoothedBoxPrior is approximately uniform on [A, B] with Gaussian tails of
// width Sigma outside the box. Used on the kernel output scale.
type SmoothedBoxPrior struct {
	A, B  float64
	Sigma float64
}

// NewSmoothedBoxPrior creates a smoothed box prior on [a, b] with the
// conventional tail width of 0.01.
func NewSmoothedBoxPrior(a, b float64) *SmoothedBoxPrior {
	return &SmoothedBoxPrior{A: a, B: b, Sigma: 0.01}
}

// LogProb implements Prior.
func (p *SmoothedBoxPrior) LogProb(x float64) float64 {
	var d float64
	switch {
	case x < p.A:
		d = p.A - x
	case x > p.B:
		d = x - p.B
	}
	norm := math.Log(p.B - p.A + p.Sigma*math.Sqrt(2*math.Pi))
	return -0.5*(d/p.Sigma)*(d/p.Sigma) - norm
}

// NormalPrior is a Gaussian prior, the default over the constant mean.
type NormalPrior struct {
	dist distuv.Normal
}

// NewNormalPrior creates a Normal(loc, scale) prior.
func NewNormalPrior(loc, scale float64) *NormalPrior {
	return &NormalPrior{dist: distuv.Normal{Mu: loc, Sigma: scale}}
}

// LogProb implements Prior.
func (p *NormalPrior) LogProb(x float64) float64 {
	return p.dist.LogProb(x)
}
