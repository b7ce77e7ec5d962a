package gp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func TestBernoulliLikelihood_ZeroVarianceReducesToLogCDF(t *testing.T) {
	l := NewBernoulliLikelihood()
	for _, mu := range []float64{-1.5, 0, 0.8, 2} {
		got := l.ExpectedLogProb(1, mu, 0)
		want := math.Log(distuv.UnitNormal.CDF(mu))
		if math.Abs(got-want) > 1e-8 {
			t.Errorf("mu = %v: expected log-prob %v, want log CDF %v", mu, got, want)
		}
	}
}

func TestBernoulliLikelihood_LabelSymmetry(t *testing.T) {
	l := NewBernoulliLikelihood()
	for _, v := range []float64{0, 0.5, 2} {
		a := l.ExpectedLogProb(1, 0.7, v)
		b := l.ExpectedLogProb(0, -0.7, v)
		if math.Abs(a-b) > 1e-10 {
			t.Errorf("variance %v: P(y=1|mu) and P(y=0|-mu) differ: %v vs %v", v, a, b)
		}
	}
}

func TestBernoulliLikelihood_VariancePenalizesConfidence(t *testing.T) {
	l := NewBernoulliLikelihood()
	// For a confidently correct prediction, latent uncertainty lowers the
	// expected log-likelihood.
	sharp := l.ExpectedLogProb(1, 2, 0)
	fuzzy := l.ExpectedLogProb(1, 2, 4)
	if fuzzy >= sharp {
		t.Errorf("expected log-prob with variance (%v) not below noiseless (%v)", fuzzy, sharp)
	}
}

func TestGaussianLikelihood_ClosedForm(t *testing.T) {
	l := &GaussianLikelihood{Noise: 0.25}
	y, mu, v := 1.2, 0.7, 0.3
	want := -0.5*math.Log(2*math.Pi*0.25) - ((y-mu)*(y-mu)+v)/(2*0.25)
	if got := l.ExpectedLogProb(y, mu, v); math.Abs(got-want) > 1e-12 {
		t.Errorf("expected log-prob = %v, want %v", got, want)
	}
}

func TestGaussianLikelihood_ParamRoundTrip(t *testing.T) {
	l := NewGaussianLikelihood()
	l.SetParams([]float64{math.Log(0.5)})
	if math.Abs(l.Noise-0.5) > 1e-12 {
		t.Fatalf("noise = %v, want 0.5", l.Noise)
	}
	p := l.Params()
	if len(p) != 1 || math.Abs(p[0]-math.Log(0.5)) > 1e-12 {
		t.Errorf("params = %v, want [log 0.5]", p)
	}
	if len(l.ParamNames()) != 1 {
		t.Errorf("param names = %v, want one entry", l.ParamNames())
	}
}
