package gp

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func fitted1DModel(t *testing.T) *MonotonicRejectionGP {
	t.Helper()
	m, err := NewMonotonicRejectionGP([]int{0}, []float64{0}, []float64{4},
		WithLikelihood(NewGaussianLikelihood()),
		WithNumInducing(3),
		WithNumSamples(30),
		WithNumRejectionSamples(600),
		WithMaxFitIter(50),
		WithSeed(11),
	)
	if err != nil {
		t.Fatalf("NewMonotonicRejectionGP failed: %v", err)
	}
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewVecDense(5, []float64{0, 0.5, 1.2, 2.1, 3})
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	return m
}

func TestQueries_RequireFit(t *testing.T) {
	m, err := NewMonotonicRejectionGP([]int{0}, []float64{0}, []float64{4}, WithNumInducing(2))
	if err != nil {
		t.Fatalf("NewMonotonicRejectionGP failed: %v", err)
	}
	if _, _, err := m.GetMax(); err == nil {
		t.Error("GetMax on unfitted model succeeded")
	}
	if _, _, err := m.InvQuery(1, nil, false); err == nil {
		t.Error("InvQuery on unfitted model succeeded")
	}
	if _, err := m.GetJND(JNDOptions{}); err == nil {
		t.Error("GetJND on unfitted model succeeded")
	}
}

func TestGetMaxAndMin(t *testing.T) {
	m := fitted1DModel(t)
	fMax, xMax, err := m.GetMax()
	if err != nil {
		t.Fatalf("GetMax failed: %v", err)
	}
	fMin, xMin, err := m.GetMin()
	if err != nil {
		t.Fatalf("GetMin failed: %v", err)
	}
	if !m.Bounds().Contains(xMax) || !m.Bounds().Contains(xMin) {
		t.Errorf("extremum points %v / %v outside bounds", xMax, xMin)
	}
	if fMax < fMin {
		t.Errorf("max %v below min %v", fMax, fMin)
	}
	// The function rises along the monotonic dimension, so the maximizer
	// sits in the upper half of the range.
	if xMax[0] < 2 {
		t.Errorf("maximizer at %v, want upper half of [0, 4]", xMax[0])
	}
}

func TestInvQuery(t *testing.T) {
	m := fitted1DModel(t)
	fStar, xStar, err := m.InvQuery(1.0, nil, false)
	if err != nil {
		t.Fatalf("InvQuery failed: %v", err)
	}
	if !m.Bounds().Contains(xStar) {
		t.Errorf("query point %v outside bounds", xStar)
	}
	if math.Abs(fStar-1.0) > 0.75 {
		t.Errorf("value at query point = %v, want near 1.0", fStar)
	}
}

func TestInvQuery_LockedDimValidation(t *testing.T) {
	m := fitted1DModel(t)
	if _, _, err := m.InvQuery(1, map[int]float64{3: 0.5}, false); err == nil {
		t.Error("out-of-range locked dimension accepted")
	}
	if _, _, err := m.InvQuery(1, map[int]float64{0: 9}, false); err == nil {
		t.Error("locked value outside bounds accepted")
	}
}

func TestGetJND_UnknownMethod(t *testing.T) {
	m := fitted1DModel(t)
	_, err := m.GetJND(JNDOptions{Method: "bogus"})
	if err == nil {
		t.Fatal("unknown method accepted")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error = %v, want it to name the method", err)
	}
}

func TestGetJND_Methods(t *testing.T) {
	m := fitted1DModel(t)
	for _, method := range []string{"step", "taylor"} {
		res, err := m.GetJND(JNDOptions{GridSize: 5, ConfSamps: 20, Method: method})
		if err != nil {
			t.Fatalf("GetJND(%s) failed: %v", method, err)
		}
		if res.Median.Len() != 5 {
			t.Fatalf("GetJND(%s) median length = %d, want 5", method, res.Median.Len())
		}
		for i := 0; i < res.Median.Len(); i++ {
			if v := res.Median.AtVec(i); v < 0 {
				t.Errorf("GetJND(%s) median %d = %v, negative", method, i, v)
			}
		}
		if res.Lower != nil || res.Upper != nil {
			t.Errorf("GetJND(%s) returned intervals without a credible level", method)
		}
	}
}

func TestGetJND_CredibleIntervals(t *testing.T) {
	m := fitted1DModel(t)
	res, err := m.GetJND(JNDOptions{GridSize: 4, ConfSamps: 20, CredLevel: 0.9, Method: "taylor"})
	if err != nil {
		t.Fatalf("GetJND failed: %v", err)
	}
	if res.Lower == nil || res.Upper == nil {
		t.Fatal("credible level set but no intervals returned")
	}
	for i := 0; i < res.Median.Len(); i++ {
		lo, med, hi := res.Lower.AtVec(i), res.Median.AtVec(i), res.Upper.AtVec(i)
		if lo > med || med > hi {
			t.Errorf("point %d: interval (%v, %v, %v) not ordered", i, lo, med, hi)
		}
	}
}

func TestDimGridLayout(t *testing.T) {
	m := fitted1DModel(t)
	grid := m.DimGrid(5)
	r, c := grid.Dims()
	if r != 5 || c != 1 {
		t.Fatalf("grid dims = (%d, %d), want (5, 1)", r, c)
	}
	if grid.At(0, 0) != 0 || grid.At(4, 0) != 4 {
		t.Errorf("grid endpoints = %v, %v, want 0, 4", grid.At(0, 0), grid.At(4, 0))
	}
	for i := 1; i < 5; i++ {
		if grid.At(i, 0) <= grid.At(i-1, 0) {
			t.Error("grid not increasing")
		}
	}
}
