package gp

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adaptive-psych/psygo/core/model"
	"github.com/adaptive-psych/psygo/pkg/errors"
	"github.com/adaptive-psych/psygo/pkg/log"
)

// Defaults for construction, overridable through options.
const (
	DefaultNumInducing         = 25
	DefaultNumSamples          = 250
	DefaultNumRejectionSamples = 5000

	defaultOutputScale = 2.0
)

// MonotonicRejectionGP is a monotonic GP using rejection sampling.
//
// An unconstrained sparse variational GP is fit over the derivative-
// augmented space, and monotonic posterior samples are drawn by rejecting
// joint draws whose derivative values at the inducing locations are
// negative along the constrained dimensions.
//
// The zero value is not usable; construct with NewMonotonicRejectionGP.
type MonotonicRejectionGP struct {
	state *model.StateManager

	bounds        Bounds
	monotonicIdxs []int

	numInduc            int
	numSamples          int
	numRejectionSamples int
	maxFitIter          int

	inducingPoints *mat.Dense // numInduc x D, raw stimulus units
	vgp            *VariationalGP
	kern           *ScaleKernel
	meanFn         *ConstantGradMean
	lik            Likelihood
	fixedPriorMean *float64

	lsPriors  []*LengthscalePrior
	osPrior   *SmoothedBoxPrior
	meanPrior *NormalPrior

	trainXAug *mat.Dense
	trainY    *mat.VecDense

	initialSnap model.ParamSnapshot

	src    rand.Source
	logger log.Logger
}

var _ model.PerceptualModel = (*MonotonicRejectionGP)(nil)

// Option configures a MonotonicRejectionGP during construction.
type Option func(*options)

type options struct {
	dim                 int
	meanFn              *ConstantGradMean
	kern                *ScaleKernel
	lik                 Likelihood
	fixedPriorMean      *float64
	numInduc            int
	numSamples          int
	numRejectionSamples int
	maxFitIter          int
	seed                *uint64
	logger              log.Logger
}

// WithDim sets an explicit input dimensionality, promoting scalar bounds.
func WithDim(dim int) Option { return func(o *options) { o.dim = dim } }

// WithMean supplies a mean module; the default is a learnable constant mean
// with a Normal(0, 2) prior.
func WithMean(m *ConstantGradMean) Option { return func(o *options) { o.meanFn = m } }

// WithKernel supplies a covariance module; the default is a scaled ARD RBF
// over the augmented space with range-derived lengthscale priors.
func WithKernel(k *ScaleKernel) Option { return func(o *options) { o.kern = k } }

// WithLikelihood sets the likelihood; the default is probit-Bernoulli.
// Use NewGaussianLikelihood for continuous outcomes.
func WithLikelihood(l Likelihood) Option { return func(o *options) { o.lik = l } }

// WithFixedPriorMean fixes the prior mean, freezing the mean constant.
// Under a Bernoulli likelihood the value is a prior response probability
// and is converted to latent units through the inverse normal CDF.
func WithFixedPriorMean(v float64) Option {
	return func(o *options) { o.fixedPriorMean = &v }
}

// WithNumInducing sets the inducing point count (default 25).
func WithNumInducing(n int) Option { return func(o *options) { o.numInduc = n } }

// WithNumSamples sets the default accepted-sample target (default 250).
func WithNumSamples(n int) Option { return func(o *options) { o.numSamples = n } }

// WithNumRejectionSamples sets the default draw budget (default 5000).
func WithNumRejectionSamples(n int) Option {
	return func(o *options) { o.numRejectionSamples = n }
}

// WithMaxFitIter caps the variational fit's iterations.
func WithMaxFitIter(n int) Option { return func(o *options) { o.maxFitIter = n } }

// WithSeed fixes the random source for the inducing design and posterior
// draws, making sampling reproducible in tests.
func WithSeed(seed uint64) Option { return func(o *options) { o.seed = &seed } }

// WithLogger overrides the default structured logger.
func WithLogger(l log.Logger) Option { return func(o *options) { o.logger = l } }

// NewMonotonicRejectionGP constructs the model.
//
// monotonicIdxs lists the input dimensions along which the latent function
// is constrained to be non-decreasing; negative indices count from the end,
// so -1 is the last dimension. lb and ub are the stimulus bounds.
func NewMonotonicRejectionGP(monotonicIdxs []int, lb, ub []float64, opts ...Option) (*MonotonicRejectionGP, error) {
	o := &options{
		numInduc:            DefaultNumInducing,
		numSamples:          DefaultNumSamples,
		numRejectionSamples: DefaultNumRejectionSamples,
	}
	for _, opt := range opts {
		opt(o)
	}

	bounds, err := ProcessBounds(lb, ub, o.dim)
	if err != nil {
		return nil, err
	}
	dim := bounds.Dim()

	monos := make([]int, len(monotonicIdxs))
	for i, idx := range monotonicIdxs {
		if idx < 0 {
			idx += dim
		}
		if idx < 0 || idx >= dim {
			return nil, errors.NewValidationError("monotonic_idxs",
				fmt.Sprintf("index out of range for dimension %d", dim), monotonicIdxs[i])
		}
		monos[i] = idx
	}

	if o.numInduc <= 0 {
		return nil, errors.NewValidationError("num_induc", "inducing point count must be positive", o.numInduc)
	}

	var src rand.Source
	if o.seed != nil {
		src = rand.NewPCG(*o.seed, *o.seed)
	}

	lik := o.lik
	if lik == nil {
		lik = NewBernoulliLikelihood()
	}

	// Range-derived hyperparameter priors.
	lsPriors := make([]*LengthscalePrior, dim)
	for i := range lsPriors {
		lsPriors[i] = NewLengthscalePrior(bounds.Range(i))
	}
	osPrior := NewSmoothedBoxPrior(1, 4)
	meanPrior := NewNormalPrior(0, 2)

	kern := o.kern
	if kern == nil {
		base := NewRBFGradKernel(dim, 1)
		for i := range base.Lengthscales {
			base.Lengthscales[i] = lsPriors[i].Mode()
		}
		kern = NewScaleKernel(base, defaultOutputScale)
	} else if len(kern.Base.Lengthscales) != dim {
		return nil, errors.NewDimensionError("NewMonotonicRejectionGP", dim, len(kern.Base.Lengthscales), 1)
	}

	meanFn := o.meanFn
	if meanFn == nil {
		meanFn = NewConstantGradMean(0)
	}
	if o.fixedPriorMean != nil {
		c := *o.fixedPriorMean
		if _, isBernoulli := lik.(*BernoulliLikelihood); isBernoulli {
			if c <= 0 || c >= 1 {
				return nil, errors.NewValidationError("fixed_prior_mean",
					"prior probability must lie strictly between 0 and 1", c)
			}
			c = distuv.UnitNormal.Quantile(c)
		}
		meanFn.Constant = c
		meanFn.Fixed = true
	}

	inducing := ScaledDesign(bounds, o.numInduc, src)
	vgp := NewVariationalGP(AugmentWithDerivIndex(inducing, 0), meanFn, kern)

	logger := o.logger
	if logger == nil {
		logger = log.GetLoggerWithName("gp").With(log.ModelNameKey, "MonotonicRejectionGP")
	}

	m := &MonotonicRejectionGP{
		state:               model.NewStateManager(),
		bounds:              bounds,
		monotonicIdxs:       monos,
		numInduc:            o.numInduc,
		numSamples:          o.numSamples,
		numRejectionSamples: o.numRejectionSamples,
		maxFitIter:          o.maxFitIter,
		inducingPoints:      inducing,
		vgp:                 vgp,
		kern:                kern,
		meanFn:              meanFn,
		lik:                 lik,
		fixedPriorMean:      o.fixedPriorMean,
		lsPriors:            lsPriors,
		osPrior:             osPrior,
		meanPrior:           meanPrior,
		src:                 src,
		logger:              logger,
	}
	m.initialSnap = m.Snapshot()
	m.state.SetDimensions(dim, 0)
	return m, nil
}

// Bounds returns the model's canonical bounds.
func (m *MonotonicRejectionGP) Bounds() Bounds { return m.bounds }

// DimGrid returns an evaluation mesh over the model's bounds with gridSize
// points per dimension, the last dimension varying fastest.
func (m *MonotonicRejectionGP) DimGrid(gridSize int) *mat.Dense {
	return DimGrid(m.bounds, gridSize)
}

// InducingPoints returns the fixed (numInduc x D) inducing set in raw
// stimulus units.
func (m *MonotonicRejectionGP) InducingPoints() *mat.Dense { return m.inducingPoints }

// MeanConstant returns the current constant of the mean module.
func (m *MonotonicRejectionGP) MeanConstant() float64 { return m.meanFn.Constant }

// MonotonicIdxs returns the normalized monotonic dimension indices.
func (m *MonotonicRejectionGP) MonotonicIdxs() []int {
	return append([]int(nil), m.monotonicIdxs...)
}

// IsFitted reports whether the model has seen training data.
func (m *MonotonicRejectionGP) IsFitted() bool { return m.state.IsFitted() }

// Likelihood returns the model's likelihood.
func (m *MonotonicRejectionGP) Likelihood() Likelihood { return m.lik }

// Fit trains the model. X is (n x D) raw stimulus points and y is a length
// n response column; the full augmented dataset replaces any prior data.
func (m *MonotonicRejectionGP) Fit(X mat.Matrix, y *mat.VecDense) error {
	return m.setModel(X, y, nil)
}

// Update refits on the full dataset. It expects the complete set of data,
// not an incremental delta. With warmstart, fitting is seeded from the
// current parameter snapshot; otherwise parameters reset to their initial
// values first.
func (m *MonotonicRejectionGP) Update(X mat.Matrix, y *mat.VecDense, warmstart bool) error {
	var snap model.ParamSnapshot
	if warmstart {
		snap = m.Snapshot()
	} else {
		snap = m.initialSnap.Clone()
	}
	return m.setModel(X, y, snap)
}

func (m *MonotonicRejectionGP) setModel(X mat.Matrix, y *mat.VecDense, snap model.ParamSnapshot) error {
	const op = "MonotonicRejectionGP.Fit"

	n, d := X.Dims()
	if n == 0 || d == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if d != m.bounds.Dim() {
		return errors.NewDimensionError(op, m.bounds.Dim(), d, 1)
	}
	if y.Len() != n {
		return errors.NewDimensionError(op, n, y.Len(), 0)
	}

	m.trainXAug = AugmentWithDerivIndex(X, 0)
	m.trainY = mat.VecDenseCopyOf(y)

	if snap != nil {
		m.Restore(snap)
	}

	start := time.Now()
	obj := &elboObjective{
		vgp:       m.vgp,
		kern:      m.kern,
		mean:      m.meanFn,
		lik:       m.lik,
		trainXAug: m.trainXAug,
		trainY:    m.trainY,
		lsPriors:  m.lsPriors,
		osPrior:   m.osPrior,
		meanPrior: m.meanPrior,
	}
	negELBO := obj.fit(m.maxFitIter, m.logger)

	m.state.SetDimensions(m.bounds.Dim(), n)
	m.state.SetFitted()

	m.logger.Info("model fit",
		log.OperationKey, "fit",
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.InducingKey, m.numInduc,
		log.ELBOKey, -negELBO,
		log.WarmStartKey, snap != nil,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Sample draws numSamples monotonic posterior samples of the latent
// function at the rows of X, using the default rejection budget.
// numSamples <= 0 uses the construction default.
func (m *MonotonicRejectionGP) Sample(X mat.Matrix, numSamples int) (*mat.Dense, error) {
	return m.SampleWithBudget(X, numSamples, 0)
}

// SampleWithBudget is Sample with an explicit draw budget.
// numRejectionSamples <= 0 uses the construction default. The returned
// matrix has one accepted joint draw per row, restricted to the query
// points; a shortfall returns fewer rows with a warning.
func (m *MonotonicRejectionGP) SampleWithBudget(X mat.Matrix, numSamples, numRejectionSamples int) (*mat.Dense, error) {
	if numSamples <= 0 {
		numSamples = m.numSamples
	}
	if numRejectionSamples <= 0 {
		numRejectionSamples = m.numRejectionSamples
	}
	if numSamples*RejectionRatio > numRejectionSamples {
		errors.Warn(errors.NewRejectionBudgetWarning(numSamples, numRejectionSamples, RejectionRatio))
	}

	n, d := X.Dims()
	if d != m.bounds.Dim() {
		return nil, errors.NewDimensionError("MonotonicRejectionGP.Sample", m.bounds.Dim(), d, 1)
	}

	// Query points tagged as values, then one derivative block per
	// monotonic dimension at the inducing locations.
	xAug := AugmentWithDerivIndex(X, 0)
	combined := stackRows(xAug, derivConstraintPoints(m.inducingPoints, m.monotonicIdxs))

	total, _ := combined.Dims()
	constrainedIdx := make([]int, 0, total-n)
	for i := n; i < total; i++ {
		constrainedIdx = append(constrainedIdx, i)
	}

	post, err := m.vgp.Posterior(combined)
	if err != nil {
		return nil, err
	}
	post.SetSource(m.src)

	sampler := NewRejectionSampler(numSamples, numRejectionSamples, constrainedIdx)
	sampler.Logger = m.logger
	samples, err := sampler.Sample(post)
	if err != nil {
		return nil, err
	}

	// Drop the constraint-point columns.
	accepted, _ := samples.Dims()
	out := mat.NewDense(accepted, n, nil)
	for i := 0; i < accepted; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, samples.At(i, j))
		}
	}

	m.logger.Debug("posterior sampling",
		log.OperationKey, "sample",
		log.QueryPointsKey, n,
		log.RequestedKey, numSamples,
		log.AcceptedKey, accepted,
		log.BudgetKey, numRejectionSamples,
		log.ConstraintPointsKey, total-n,
	)
	return out, nil
}

// Predict returns the posterior mean and variance at each row of X,
// estimated over monotonic posterior samples. Before any fit this yields
// prior-only predictions, which is allowed.
//
// With probabilitySpace, both mean and variance are passed through the
// standard normal CDF. Transforming the variance this way is a known
// approximation kept for compatibility: the CDF of a variance is not a
// proper probability-space variance.
func (m *MonotonicRejectionGP) Predict(X mat.Matrix, probabilitySpace bool) (*mat.VecDense, *mat.VecDense, error) {
	samples, err := m.Sample(X, m.numSamples)
	if err != nil {
		return nil, nil, err
	}

	rows, cols := samples.Dims()
	mean := mat.NewVecDense(cols, nil)
	variance := mat.NewVecDense(cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, samples)
		mean.SetVec(j, stat.Mean(col, nil))
		if rows < 2 {
			variance.SetVec(j, 0)
		} else {
			v := stat.Variance(col, nil)
			if v < 0 {
				v = 0
			}
			variance.SetVec(j, v)
		}
	}

	if probabilitySpace {
		for j := 0; j < cols; j++ {
			mean.SetVec(j, distuv.UnitNormal.CDF(mean.AtVec(j)))
			variance.SetVec(j, distuv.UnitNormal.CDF(variance.AtVec(j)))
		}
	}
	return mean, variance, nil
}

// Snapshot captures the model and likelihood parameters by name, the
// transport used for warm-starting Update.
func (m *MonotonicRejectionGP) Snapshot() model.ParamSnapshot {
	snap := model.ParamSnapshot{}
	vd := m.vgp.VarDist
	for i, v := range vd.MeanParams {
		snap[fmt.Sprintf("variational.mean_%d", i)] = v
	}
	for i, v := range vd.CholParams {
		snap[fmt.Sprintf("variational.chol_%d", i)] = v
	}
	for i, ls := range m.kern.Base.Lengthscales {
		snap[fmt.Sprintf("kernel.lengthscale_%d", i)] = ls
	}
	snap["kernel.outputscale"] = m.kern.OutputScale
	snap["mean.constant"] = m.meanFn.Constant
	names := m.lik.ParamNames()
	for i, v := range m.lik.Params() {
		snap[names[i]] = v
	}
	return snap
}

// Restore sets parameters from a snapshot. Unknown names are ignored; the
// frozen mean constant is never overwritten.
func (m *MonotonicRejectionGP) Restore(snap model.ParamSnapshot) {
	vd := m.vgp.VarDist
	for i := range vd.MeanParams {
		if v, ok := snap[fmt.Sprintf("variational.mean_%d", i)]; ok {
			vd.MeanParams[i] = v
		}
	}
	for i := range vd.CholParams {
		if v, ok := snap[fmt.Sprintf("variational.chol_%d", i)]; ok {
			vd.CholParams[i] = v
		}
	}
	for i := range m.kern.Base.Lengthscales {
		if v, ok := snap[fmt.Sprintf("kernel.lengthscale_%d", i)]; ok && v > 0 {
			m.kern.Base.Lengthscales[i] = v
		}
	}
	if v, ok := snap["kernel.outputscale"]; ok && v > 0 {
		m.kern.OutputScale = v
	}
	if v, ok := snap["mean.constant"]; ok && !m.meanFn.Fixed {
		m.meanFn.Constant = v
	}
	names := m.lik.ParamNames()
	if len(names) > 0 {
		params := m.lik.Params()
		changed := false
		for i, name := range names {
			if v, ok := snap[name]; ok {
				params[i] = v
				changed = true
			}
		}
		if changed {
			m.lik.SetParams(params)
		}
	}
}
