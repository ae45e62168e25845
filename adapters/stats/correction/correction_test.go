package correction

import (
	"math"
	"testing"
)

func TestBenjaminiHochberg_KnownValues(t *testing.T) {
	p := []float64{0.005, 0.05, 0.5}
	got := BenjaminiHochberg(p)
	want := []float64{0.015, 0.075, 0.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("index %d: expected q=%v, got %v", i, want[i], got[i])
		}
	}
}

func TestBenjaminiHochberg_StepUpEnforcement(t *testing.T) {
	// All four raw p-values collapse to the same q under the running-minimum
	// enforcement.
	p := []float64{0.01, 0.02, 0.03, 0.04}
	got := BenjaminiHochberg(p)
	for i, q := range got {
		if math.Abs(q-0.04) > 1e-12 {
			t.Errorf("index %d: expected q=0.04, got %v", i, q)
		}
	}
}

func TestBenjaminiHochberg_Properties(t *testing.T) {
	p := []float64{0.3, 0.001, 0.04, 0.9, 0.04, 0.12}
	got := BenjaminiHochberg(p)

	for i := range p {
		if got[i] < p[i]-1e-15 {
			t.Errorf("index %d: q=%v below raw p=%v", i, got[i], p[i])
		}
		if got[i] > 1 {
			t.Errorf("index %d: q=%v above 1", i, got[i])
		}
	}
	// Adjustment preserves the raw ranking.
	for i := range p {
		for j := range p {
			if p[i] < p[j] && got[i] > got[j]+1e-15 {
				t.Errorf("ranking violated: p %v<%v but q %v>%v", p[i], p[j], got[i], got[j])
			}
		}
	}
}

func TestBenjaminiHochberg_SingleAndEmpty(t *testing.T) {
	if got := BenjaminiHochberg([]float64{0.03}); len(got) != 1 || got[0] != 0.03 {
		t.Errorf("single p-value must pass through, got %v", got)
	}
	if got := BenjaminiHochberg(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestBonferroni(t *testing.T) {
	if got := Bonferroni(0.02, 3); math.Abs(got-0.06) > 1e-12 {
		t.Errorf("expected 0.06, got %v", got)
	}
	if got := Bonferroni(0.6, 3); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}
	if got := Bonferroni(0.04, 0); got != 0.04 {
		t.Errorf("expected comparisons floor of 1, got %v", got)
	}
}
