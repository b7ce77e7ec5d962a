package gp

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// ScaledDesign draws n space-filling points over the bound box using Latin
// hypercube sampling. Used to seed the inducing point set and the coarse
// grids behind extremum and inverse queries.
func ScaledDesign(b Bounds, n int, src rand.Source) *mat.Dense {
	bnds := make([]r1.Interval, b.Dim())
	lower, upper := b.Lower(), b.Upper()
	for i := range bnds {
		bnds[i] = r1.Interval{Min: lower[i], Max: upper[i]}
	}
	u := distmv.NewUniform(bnds, src)

	batch := mat.NewDense(n, b.Dim(), nil)
	samplemv.LatinHypercube{Q: u, Src: src}.Sample(batch)
	return batch
}

// DimGrid returns a full mesh grid over the bounds with gridSize points per
// dimension, gridSize^D rows in total. Rows iterate the last dimension
// fastest.
func DimGrid(b Bounds, gridSize int) *mat.Dense {
	d := b.Dim()
	lower, upper := b.Lower(), b.Upper()

	coords := make([][]float64, d)
	for i := 0; i < d; i++ {
		coords[i] = linspace(lower[i], upper[i], gridSize)
	}

	rows := 1
	for i := 0; i < d; i++ {
		rows *= gridSize
	}
	grid := mat.NewDense(rows, d, nil)
	for r := 0; r < rows; r++ {
		rem := r
		for i := d - 1; i >= 0; i-- {
			grid.Set(r, i, coords[i][rem%gridSize])
			rem /= gridSize
		}
	}
	return grid
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	// Guard against floating point creep past the upper bound.
	out[n-1] = math.Min(out[n-1], hi)
	return out
}
