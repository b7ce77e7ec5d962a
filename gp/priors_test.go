package gp

import (
	"math"
	"testing"
)

func TestMomentMatchInvGamma(t *testing.T) {
	// mode = r/10 and mean = r give alpha = 11/9 and beta = 2r/9.
	for _, r := range []float64{1, 4, 10} {
		alpha, beta := MomentMatchInvGamma(r/10, r)
		if math.Abs(alpha-11.0/9.0) > 1e-12 {
			t.Errorf("range %v: alpha = %v, want 11/9", r, alpha)
		}
		if math.Abs(beta-2*r/9) > 1e-12 {
			t.Errorf("range %v: beta = %v, want %v", r, beta, 2*r/9)
		}
	}
}

func TestLengthscalePrior_Mode(t *testing.T) {
	for _, r := range []float64{0.5, 4, 20} {
		p := NewLengthscalePrior(r)
		if math.Abs(p.Mode()-r/10) > 1e-12 {
			t.Errorf("range %v: mode = %v, want %v", r, p.Mode(), r/10)
		}
	}
}

func TestLengthscalePrior_PrefersMode(t *testing.T) {
	p := NewLengthscalePrior(4)
	atMode := p.LogProb(p.Mode())
	if p.LogProb(p.Mode()*20) >= atMode {
		t.Error("log-prob at 20x mode not below log-prob at mode")
	}
	if p.LogProb(p.Mode()/50) >= atMode {
		t.Error("log-prob far below mode not below log-prob at mode")
	}
}

func TestSmoothedBoxPrior(t *testing.T) {
	p := NewSmoothedBoxPrior(1, 4)
	inside := p.LogProb(2.5)
	if math.Abs(p.LogProb(1.5)-inside) > 1e-6 {
		t.Error("log-prob not flat inside the box")
	}
	if p.LogProb(10) >= inside-100 {
		t.Error("log-prob outside the box not heavily penalized")
	}
}

func TestNormalPrior(t *testing.T) {
	p := NewNormalPrior(0, 2)
	if p.LogProb(0) <= p.LogProb(3) {
		t.Error("log-prob at the location not above log-prob in the tail")
	}
}
