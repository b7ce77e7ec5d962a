package gp

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/adaptive-psych/psygo/pkg/errors"
	"github.com/adaptive-psych/psygo/pkg/log"
)

// defaultMaxFitIter caps the variational fit's major iterations.
const defaultMaxFitIter = 500

// elboObjective is the negative variational evidence lower bound over the
// packed parameter vector:
//
//	-ELBO(θ) = -Σ_i E_q[log p(y_i | f_i)] + KL(q(u) ‖ p(u)) - Σ log prior(θ)
//
// Minimizing it is a MAP variational fit. The parameter layout is
// variational mean, variational Cholesky (log diagonal), log lengthscales,
// log outputscale, mean constant (when learnable), then likelihood
// parameters.
type elboObjective struct {
	vgp  *VariationalGP
	kern *ScaleKernel
	mean *ConstantGradMean
	lik  Likelihood

	trainXAug *mat.Dense
	trainY    *mat.VecDense

	lsPriors  []*LengthscalePrior
	osPrior   *SmoothedBoxPrior
	meanPrior *NormalPrior
}

func (o *elboObjective) numParams() int {
	n := o.vgp.VarDist.NumParams()
	n += len(o.kern.Base.Lengthscales) + 1
	if !o.mean.Fixed {
		n++
	}
	n += len(o.lik.Params())
	return n
}

// pack captures the current model state as an optimizer vector.
func (o *elboObjective) pack() []float64 {
	vd := o.vgp.VarDist
	x := make([]float64, 0, o.numParams())
	x = append(x, vd.MeanParams...)
	x = append(x, vd.CholParams...)
	for _, ls := range o.kern.Base.Lengthscales {
		x = append(x, math.Log(ls))
	}
	x = append(x, math.Log(o.kern.OutputScale))
	if !o.mean.Fixed {
		x = append(x, o.mean.Constant)
	}
	x = append(x, o.lik.Params()...)
	return x
}

// unpack writes an optimizer vector back into the model state.
func (o *elboObjective) unpack(x []float64) {
	vd := o.vgp.VarDist
	idx := 0
	copy(vd.MeanParams, x[idx:idx+len(vd.MeanParams)])
	idx += len(vd.MeanParams)
	copy(vd.CholParams, x[idx:idx+len(vd.CholParams)])
	idx += len(vd.CholParams)
	for i := range o.kern.Base.Lengthscales {
		o.kern.Base.Lengthscales[i] = math.Exp(x[idx])
		idx++
	}
	o.kern.OutputScale = math.Exp(x[idx])
	idx++
	if !o.mean.Fixed {
		o.mean.Constant = x[idx]
		idx++
	}
	if n := len(o.lik.Params()); n > 0 {
		o.lik.SetParams(x[idx : idx+n])
	}
}

// negELBO evaluates the objective at x. Numerical failures map to +Inf so
// the line search backs off instead of aborting.
func (o *elboObjective) negELBO(x []float64) float64 {
	o.unpack(x)

	post, err := o.vgp.Posterior(o.trainXAug)
	if err != nil {
		return math.Inf(1)
	}

	dataTerm := 0.0
	n, _ := o.trainXAug.Dims()
	for i := 0; i < n; i++ {
		dataTerm += o.lik.ExpectedLogProb(o.trainY.AtVec(i), post.Mean(i), post.Variance(i))
	}

	kl, err := o.vgp.KLDivergence()
	if err != nil {
		return math.Inf(1)
	}

	logPrior := 0.0
	for i, p := range o.lsPriors {
		logPrior += p.LogProb(o.kern.Base.Lengthscales[i])
	}
	logPrior += o.osPrior.LogProb(o.kern.OutputScale)
	if !o.mean.Fixed {
		logPrior += o.meanPrior.LogProb(o.mean.Constant)
	}

	v := -(dataTerm - kl + logPrior)
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// fit minimizes the negative ELBO starting from the model's current
// parameters. Non-convergence is best effort: the parameters reached are
// kept and a ConvergenceWarning is raised.
func (o *elboObjective) fit(maxIter int, logger log.Logger) float64 {
	if maxIter <= 0 {
		maxIter = defaultMaxFitIter
	}

	problem := optimize.Problem{
		Func: o.negELBO,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, o.negELBO, x, nil)
		},
	}
	settings := &optimize.Settings{MajorIterations: maxIter}

	x0 := o.pack()
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})

	iterations := maxIter
	finalF := math.Inf(1)
	if result != nil {
		o.unpack(result.X)
		finalF = result.F
		iterations = result.Stats.MajorIterations
	} else {
		// Leave the model at its starting parameters.
		o.unpack(x0)
	}

	if err != nil || result == nil || result.Status == optimize.IterationLimit {
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		errors.Warn(errors.NewConvergenceWarning("VariationalELBO", iterations, msg))
	}

	if logger != nil {
		logger.Debug("variational fit finished",
			log.ELBOKey, -finalF,
			log.IterationsKey, iterations,
		)
	}
	return finalF
}
