package gp

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/adaptive-psych/psygo/pkg/errors"
)

// fixedSampler hands out preset rows, cycling when the request exceeds the
// preset count.
type fixedSampler struct {
	rows *mat.Dense
}

func (f *fixedSampler) Dim() int {
	_, c := f.rows.Dims()
	return c
}

func (f *fixedSampler) DrawJointSamples(count int) (*mat.Dense, error) {
	n, c := f.rows.Dims()
	out := mat.NewDense(count, c, nil)
	for i := 0; i < count; i++ {
		out.SetRow(i, f.rows.RawRowView(i%n))
	}
	return out, nil
}

func TestRejectionSampler_FiltersNegativeConstraints(t *testing.T) {
	// Columns 0-1 are query values, column 2 is the constrained derivative.
	src := &fixedSampler{rows: mat.NewDense(4, 3, []float64{
		1, 2, 0.5,
		3, 4, -0.1,
		5, 6, 0.0,
		7, 8, -2.0,
	})}
	s := NewRejectionSampler(2, 4, []int{2})
	out, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	r, c := out.Dims()
	if r != 2 || c != 3 {
		t.Fatalf("accepted dims = (%d, %d), want (2, 3)", r, c)
	}
	if out.At(0, 0) != 1 || out.At(1, 0) != 5 {
		t.Errorf("accepted wrong rows: first col values %v, %v", out.At(0, 0), out.At(1, 0))
	}
}

func TestRejectionSampler_ShortfallWarns(t *testing.T) {
	var captured error
	errors.SetWarningHandler(func(w error) { captured = w })
	defer errors.SetWarningHandler(nil)

	src := &fixedSampler{rows: mat.NewDense(2, 2, []float64{
		1, 0.5,
		2, -1,
	})}
	s := NewRejectionSampler(5, 6, []int{1})
	out, err := s.Sample(src)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	r, _ := out.Dims()
	if r != 3 {
		t.Errorf("accepted rows = %d, want 3 of 6 draws", r)
	}
	var shortfall *errors.SamplingShortfallWarning
	if !errors.As(captured, &shortfall) {
		t.Fatalf("warning = %v, want SamplingShortfallWarning", captured)
	}
	if shortfall.Requested != 5 || shortfall.Accepted != 3 || shortfall.Budget != 6 {
		t.Errorf("warning fields = %+v", shortfall)
	}
}

func TestRejectionSampler_AllRejectedErrors(t *testing.T) {
	src := &fixedSampler{rows: mat.NewDense(1, 2, []float64{1, -1})}
	s := NewRejectionSampler(2, 10, []int{1})
	_, err := s.Sample(src)
	if err == nil {
		t.Fatal("Sample succeeded, want error")
	}
	if !errors.Is(err, errors.ErrNoAcceptedSamples) {
		t.Errorf("error = %v, want ErrNoAcceptedSamples in chain", err)
	}
}

func TestRejectionSampler_InvalidCounts(t *testing.T) {
	src := &fixedSampler{rows: mat.NewDense(1, 1, []float64{1})}
	if _, err := NewRejectionSampler(0, 10, nil).Sample(src); err == nil {
		t.Error("zero target accepted")
	}
	if _, err := NewRejectionSampler(10, 5, nil).Sample(src); err == nil {
		t.Error("budget below target accepted")
	}
}
