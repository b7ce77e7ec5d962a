package gp

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adaptive-psych/psygo/pkg/errors"
)

const (
	queryScanSize    = 512
	defaultGridSize  = 30
	defaultConfSamps = 500
)

// posteriorMeans evaluates the variational posterior mean at the rows of X
// (raw stimulus units). Queries use this deterministic mean rather than
// rejection samples so the refinement objective is smooth.
func (m *MonotonicRejectionGP) posteriorMeans(X *mat.Dense) ([]float64, error) {
	post, err := m.vgp.Posterior(AugmentWithDerivIndex(X, 0))
	if err != nil {
		return nil, err
	}
	n, _ := X.Dims()
	out := make([]float64, n)
	for i := range out {
		out[i] = post.Mean(i)
	}
	return out, nil
}

func (m *MonotonicRejectionGP) posteriorMeanAt(x []float64) (float64, error) {
	means, err := m.posteriorMeans(mat.NewDense(1, len(x), append([]float64(nil), x...)))
	if err != nil {
		return 0, err
	}
	return means[0], nil
}

// clampToBounds projects x into the bounding box, in place.
func (m *MonotonicRejectionGP) clampToBounds(x []float64) {
	lb, ub := m.bounds.Lower(), m.bounds.Upper()
	for i := range x {
		if x[i] < lb[i] {
			x[i] = lb[i]
		}
		if x[i] > ub[i] {
			x[i] = ub[i]
		}
	}
}

// GetMax returns the maximum of the posterior mean over the bounds and the
// point attaining it.
func (m *MonotonicRejectionGP) GetMax() (float64, []float64, error) {
	return m.extremum(1)
}

// GetMin returns the minimum of the posterior mean over the bounds and the
// point attaining it.
func (m *MonotonicRejectionGP) GetMin() (float64, []float64, error) {
	return m.extremum(-1)
}

// extremum maximizes sign*mean with a scaled-design scan followed by
// Nelder-Mead refinement clamped to the bounds.
func (m *MonotonicRejectionGP) extremum(sign float64) (float64, []float64, error) {
	if !m.state.IsFitted() {
		method := "GetMax"
		if sign < 0 {
			method = "GetMin"
		}
		return 0, nil, errors.NewNotFittedError("MonotonicRejectionGP", method)
	}

	candidates := ScaledDesign(m.bounds, queryScanSize, m.src)
	means, err := m.posteriorMeans(candidates)
	if err != nil {
		return 0, nil, err
	}
	best := 0
	for i, v := range means {
		if sign*v > sign*means[best] {
			best = i
		}
	}
	x0 := mat.Row(nil, best, candidates)

	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			xc := append([]float64(nil), x...)
			m.clampToBounds(xc)
			v, err := m.posteriorMeanAt(xc)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			return -sign * v
		},
	}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if evalErr != nil {
		return 0, nil, evalErr
	}
	if err != nil || result == nil {
		// Refinement failed; the scan incumbent still stands.
		return means[best], x0, nil
	}
	xStar := append([]float64(nil), result.X...)
	m.clampToBounds(xStar)
	fStar, err := m.posteriorMeanAt(xStar)
	if err != nil {
		return 0, nil, err
	}
	if sign*fStar < sign*means[best] {
		return means[best], x0, nil
	}
	return fStar, xStar, nil
}

// InvQuery finds the point whose posterior mean is closest to y, with any
// locked dimensions held at the given values. With probabilitySpace the
// target y and the returned value are response probabilities.
func (m *MonotonicRejectionGP) InvQuery(y float64, lockedDims map[int]float64, probabilitySpace bool) (float64, []float64, error) {
	if !m.state.IsFitted() {
		return 0, nil, errors.NewNotFittedError("MonotonicRejectionGP", "InvQuery")
	}
	dim := m.bounds.Dim()
	lb, ub := m.bounds.Lower(), m.bounds.Upper()
	for d, v := range lockedDims {
		if d < 0 || d >= dim {
			return 0, nil, errors.NewValidationError("locked_dims",
				fmt.Sprintf("dimension index out of range for dimension %d", dim), d)
		}
		if v < lb[d] || v > ub[d] {
			return 0, nil, errors.NewValidationError("locked_dims",
				"locked value lies outside the bounds", v)
		}
	}
	transform := func(v float64) float64 {
		if probabilitySpace {
			return distuv.UnitNormal.CDF(v)
		}
		return v
	}

	candidates := ScaledDesign(m.bounds, queryScanSize, m.src)
	nCand, _ := candidates.Dims()
	for i := 0; i < nCand; i++ {
		for d, v := range lockedDims {
			candidates.Set(i, d, v)
		}
	}
	means, err := m.posteriorMeans(candidates)
	if err != nil {
		return 0, nil, err
	}
	best := 0
	for i, v := range means {
		if math.Abs(transform(v)-y) < math.Abs(transform(means[best])-y) {
			best = i
		}
	}
	x0 := mat.Row(nil, best, candidates)

	// Optimize over the free dimensions only.
	free := make([]int, 0, dim)
	for d := 0; d < dim; d++ {
		if _, locked := lockedDims[d]; !locked {
			free = append(free, d)
		}
	}
	if len(free) == 0 {
		return transform(means[best]), x0, nil
	}
	assemble := func(freeVals []float64) []float64 {
		x := append([]float64(nil), x0...)
		for i, d := range free {
			x[d] = freeVals[i]
		}
		m.clampToBounds(x)
		for d, v := range lockedDims {
			x[d] = v
		}
		return x
	}
	var evalErr error
	problem := optimize.Problem{
		Func: func(fx []float64) float64 {
			v, err := m.posteriorMeanAt(assemble(fx))
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			return math.Abs(transform(v) - y)
		},
	}
	f0 := make([]float64, len(free))
	for i, d := range free {
		f0[i] = x0[d]
	}
	result, err := optimize.Minimize(problem, f0, nil, &optimize.NelderMead{})
	if evalErr != nil {
		return 0, nil, evalErr
	}
	if err != nil || result == nil {
		return transform(means[best]), x0, nil
	}
	xStar := assemble(result.X)
	fStar, err := m.posteriorMeanAt(xStar)
	if err != nil {
		return 0, nil, err
	}
	if math.Abs(transform(fStar)-y) > math.Abs(transform(means[best])-y) {
		return transform(means[best]), x0, nil
	}
	return transform(fStar), xStar, nil
}

// JNDOptions configures GetJND. Zero values select defaults: a 30-point
// mesh per dimension, the last dimension as intensity, 500 posterior
// samples, and the "step" method.
type JNDOptions struct {
	Grid         *mat.Dense // optional evaluation mesh; must match DimGrid layout
	GridSize     int
	IntensityDim int // negative counts from the end
	CredLevel    float64
	ConfSamps    int
	Method       string // "step" or "taylor"
}

// JNDResult holds per-grid-point just-noticeable-difference estimates.
// Lower and Upper are nil unless a credible level was requested.
type JNDResult struct {
	Grid   *mat.Dense
	Median *mat.VecDense
	Lower  *mat.VecDense
	Upper  *mat.VecDense
}

// GetJND estimates, at each grid point, how much the intensity dimension
// must increase to raise the latent function by one unit. The "taylor"
// method uses the reciprocal of the local gradient; the "step" method walks
// the intensity line and interpolates the crossing. Points where a sample
// never gains a full unit within the bounds contribute +Inf.
func (m *MonotonicRejectionGP) GetJND(o JNDOptions) (*JNDResult, error) {
	if !m.state.IsFitted() {
		return nil, errors.NewNotFittedError("MonotonicRejectionGP", "GetJND")
	}

	method := o.Method
	if method == "" {
		method = "step"
	}
	if method != "step" && method != "taylor" {
		return nil, errors.NewValueError("GetJND",
			fmt.Sprintf("unknown method %q: expected \"step\" or \"taylor\"", method))
	}

	dim := m.bounds.Dim()
	intensity := o.IntensityDim
	if intensity < 0 {
		intensity += dim
	}
	if intensity < 0 || intensity >= dim {
		return nil, errors.NewValidationError("intensity_dim",
			fmt.Sprintf("index out of range for dimension %d", dim), o.IntensityDim)
	}

	gridSize := o.GridSize
	if gridSize <= 0 {
		gridSize = defaultGridSize
	}
	if gridSize < 2 {
		return nil, errors.NewValidationError("grid_size", "mesh needs at least two points per dimension", gridSize)
	}
	grid := o.Grid
	if grid == nil {
		grid = DimGrid(m.bounds, gridSize)
	}

	confSamps := o.ConfSamps
	if confSamps <= 0 {
		confSamps = defaultConfSamps
	}

	fsamps, err := m.Sample(grid, confSamps)
	if err != nil {
		return nil, err
	}
	nSamps, total := fsamps.Dims()

	// DimGrid varies the last dimension fastest, so traversing dimension d
	// steps by gridSize^(D-1-d) flat indices.
	stride := 1
	for d := dim - 1; d > intensity; d-- {
		stride *= gridSize
	}
	coords := make([]float64, gridSize)
	for k := 0; k < gridSize; k++ {
		coords[k] = grid.At(k*stride, intensity)
	}

	perPoint := make([][]float64, total)
	for g := range perPoint {
		perPoint[g] = make([]float64, 0, nSamps)
	}

	line := make([]float64, gridSize)
	for s := 0; s < nSamps; s++ {
		for start := 0; start < total; start++ {
			if (start/stride)%gridSize != 0 {
				continue
			}
			for k := 0; k < gridSize; k++ {
				line[k] = fsamps.At(s, start+k*stride)
			}
			for k := 0; k < gridSize; k++ {
				var jnd float64
				switch method {
				case "taylor":
					jnd = taylorJND(coords, line, k)
				case "step":
					jnd = stepJND(coords, line, k)
				}
				perPoint[start+k*stride] = append(perPoint[start+k*stride], jnd)
			}
		}
	}

	res := &JNDResult{Grid: grid, Median: mat.NewVecDense(total, nil)}
	if o.CredLevel > 0 {
		res.Lower = mat.NewVecDense(total, nil)
		res.Upper = mat.NewVecDense(total, nil)
	}
	alpha := (1 - o.CredLevel) / 2
	for g := 0; g < total; g++ {
		vals := perPoint[g]
		sort.Float64s(vals)
		res.Median.SetVec(g, stat.Quantile(0.5, stat.Empirical, vals, nil))
		if res.Lower != nil {
			res.Lower.SetVec(g, stat.Quantile(alpha, stat.Empirical, vals, nil))
			res.Upper.SetVec(g, stat.Quantile(1-alpha, stat.Empirical, vals, nil))
		}
	}
	return res, nil
}

// taylorJND is 1 over the local gradient along the intensity line, using a
// central difference where both neighbors exist.
func taylorJND(coords, line []float64, k int) float64 {
	lo, hi := k-1, k+1
	if lo < 0 {
		lo = k
	}
	if hi > len(line)-1 {
		hi = k
	}
	grad := (line[hi] - line[lo]) / (coords[hi] - coords[lo])
	if grad <= 0 {
		return math.Inf(1)
	}
	return 1 / grad
}

// stepJND walks forward along the intensity line until the sample gains one
// full latent unit, interpolating the crossing between grid points.
func stepJND(coords, line []float64, k int) float64 {
	target := line[k] + 1
	for j := k + 1; j < len(line); j++ {
		if line[j] >= target {
			frac := 0.0
			if line[j] != line[j-1] {
				frac = (target - line[j-1]) / (line[j] - line[j-1])
			}
			x := coords[j-1] + frac*(coords[j]-coords[j-1])
			return x - coords[k]
		}
	}
	return math.Inf(1)
}
