package gp

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAugmentWithDerivIndex(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
	})
	aug := AugmentWithDerivIndex(X, 0)
	r, c := aug.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("augmented dims = (%d, %d), want (3, 3)", r, c)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if aug.At(i, j) != X.At(i, j) {
				t.Errorf("coordinate (%d, %d) changed: %v != %v", i, j, aug.At(i, j), X.At(i, j))
			}
		}
		if aug.At(i, 2) != 0 {
			t.Errorf("row %d deriv tag = %v, want 0", i, aug.At(i, 2))
		}
	}
}

func TestDerivConstraintPoints_SingleDim(t *testing.T) {
	inducing := mat.NewDense(2, 2, []float64{
		0.5, 1.5,
		3.0, 2.0,
	})
	cp := derivConstraintPoints(inducing, []int{1})
	r, c := cp.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("constraint dims = (%d, %d), want (2, 3)", r, c)
	}
	for i := 0; i < 2; i++ {
		if cp.At(i, 0) != inducing.At(i, 0) || cp.At(i, 1) != inducing.At(i, 1) {
			t.Errorf("row %d coordinates differ from inducing point", i)
		}
		if cp.At(i, 2) != 2 {
			t.Errorf("row %d tag = %v, want 2", i, cp.At(i, 2))
		}
	}
}

func TestDerivConstraintPoints_MultiDim(t *testing.T) {
	inducing := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	})
	cp := derivConstraintPoints(inducing, []int{0, 1})
	r, c := cp.Dims()
	if r != 4 || c != 3 {
		t.Fatalf("constraint dims = (%d, %d), want (4, 3)", r, c)
	}
	// First block carries tag 1, second block tag 2.
	for i := 0; i < 2; i++ {
		if cp.At(i, 2) != 1 {
			t.Errorf("block 0 row %d tag = %v, want 1", i, cp.At(i, 2))
		}
		if cp.At(2+i, 2) != 2 {
			t.Errorf("block 1 row %d tag = %v, want 2", i, cp.At(2+i, 2))
		}
	}
}

func TestStackRows(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	b := mat.NewDense(1, 3, []float64{7, 8, 9})
	s := stackRows(a, b)
	r, c := s.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("stacked dims = (%d, %d), want (3, 3)", r, c)
	}
	if s.At(0, 0) != 1 || s.At(1, 2) != 6 || s.At(2, 1) != 8 {
		t.Error("stacked values out of order")
	}
}
