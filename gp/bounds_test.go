package gp

import (
	"testing"
)

func TestProcessBounds_Vector(t *testing.T) {
	b, err := ProcessBounds([]float64{0, 1}, []float64{4, 5}, 0)
	if err != nil {
		t.Fatalf("ProcessBounds failed: %v", err)
	}
	if b.Dim() != 2 {
		t.Errorf("Dim = %d, want 2", b.Dim())
	}
	if b.Range(0) != 4 || b.Range(1) != 4 {
		t.Errorf("ranges = %v, %v, want 4, 4", b.Range(0), b.Range(1))
	}
}

func TestProcessBounds_ScalarPromotion(t *testing.T) {
	b, err := ProcessBounds([]float64{-1}, []float64{1}, 3)
	if err != nil {
		t.Fatalf("ProcessBounds failed: %v", err)
	}
	if b.Dim() != 3 {
		t.Fatalf("Dim = %d, want 3", b.Dim())
	}
	for i := 0; i < 3; i++ {
		lo, hi := b.Lower()[i], b.Upper()[i]
		if lo != -1 || hi != 1 {
			t.Errorf("dim %d: bounds [%v, %v], want [-1, 1]", i, lo, hi)
		}
	}
}

func TestProcessBounds_Errors(t *testing.T) {
	cases := []struct {
		name string
		lb   []float64
		ub   []float64
		dim  int
	}{
		{"empty", nil, nil, 0},
		{"length mismatch", []float64{0, 0}, []float64{1}, 0},
		{"dim mismatch", []float64{0, 0}, []float64{1, 1}, 3},
		{"lower above upper", []float64{2}, []float64{1}, 0},
		{"degenerate", []float64{1, 1}, []float64{1, 2}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ProcessBounds(tc.lb, tc.ub, tc.dim); err == nil {
				t.Errorf("ProcessBounds(%v, %v, %d) succeeded, want error", tc.lb, tc.ub, tc.dim)
			}
		})
	}
}

func TestBounds_Contains(t *testing.T) {
	b, err := ProcessBounds([]float64{0, 0}, []float64{4, 4}, 0)
	if err != nil {
		t.Fatalf("ProcessBounds failed: %v", err)
	}
	if !b.Contains([]float64{2, 2}) {
		t.Error("interior point reported outside")
	}
	if !b.Contains([]float64{0, 4}) {
		t.Error("boundary point reported outside")
	}
	if b.Contains([]float64{5, 2}) {
		t.Error("exterior point reported inside")
	}
}
