package survival

import (
	"math"
	"testing"

	"phenostats/domain/core"
	domainstats "phenostats/domain/stats"
)

func group(name string, subjects ...domainstats.SubjectTime) domainstats.GroupEvents {
	return domainstats.GroupEvents{Name: core.GroupName(name), Subjects: subjects}
}

func event(t float64) domainstats.SubjectTime    { return domainstats.SubjectTime{Time: t, Event: true} }
func censored(t float64) domainstats.SubjectTime { return domainstats.SubjectTime{Time: t, Event: false} }

func TestEstimate_AllEvents(t *testing.T) {
	est := NewEstimator(1.96)

	sg, err := est.Estimate(group("carriers", event(1), event(2), event(3)))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if sg.N != 3 || sg.Events != 3 {
		t.Fatalf("expected n=3 events=3, got n=%d events=%d", sg.N, sg.Events)
	}
	wantS := []float64{2.0 / 3, 1.0 / 3, 0}
	if len(sg.Curve) != len(wantS) {
		t.Fatalf("expected %d curve points, got %d", len(wantS), len(sg.Curve))
	}
	for i, pt := range sg.Curve {
		if math.Abs(pt.SurvivalProbability-wantS[i]) > 1e-12 {
			t.Errorf("point %d: expected S=%v, got %v", i, wantS[i], pt.SurvivalProbability)
		}
	}
	if sg.Curve[0].AtRisk != 3 || sg.Curve[1].AtRisk != 2 || sg.Curve[2].AtRisk != 1 {
		t.Errorf("expected at-risk 3,2,1, got %d,%d,%d",
			sg.Curve[0].AtRisk, sg.Curve[1].AtRisk, sg.Curve[2].AtRisk)
	}
	// S first drops to 1/3 <= 0.5 at t=2.
	if sg.MedianSurvival == nil || *sg.MedianSurvival != 2 {
		t.Errorf("expected median survival 2, got %v", sg.MedianSurvival)
	}
	// The final risk set is exhausted by events; the CI collapses with the
	// estimate.
	last := sg.Curve[len(sg.Curve)-1]
	if last.CILower != 0 || last.CIUpper != 0 {
		t.Errorf("expected collapsed CI at S=0, got [%v, %v]", last.CILower, last.CIUpper)
	}
}

func TestEstimate_CensoringKeepsSurvivalFlat(t *testing.T) {
	est := NewEstimator(1.96)

	sg, err := est.Estimate(group("carriers", event(1), censored(2), event(3)))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	if sg.Events != 2 {
		t.Errorf("expected 2 events, got %d", sg.Events)
	}
	if len(sg.Curve) != 3 {
		t.Fatalf("expected 3 curve points, got %d", len(sg.Curve))
	}
	// Censoring at t=2 must not move S but must shrink the next risk set.
	if sg.Curve[1].SurvivalProbability != sg.Curve[0].SurvivalProbability {
		t.Errorf("censoring changed survival: %v -> %v",
			sg.Curve[0].SurvivalProbability, sg.Curve[1].SurvivalProbability)
	}
	if sg.Curve[1].Censored != 1 || sg.Curve[1].Events != 0 {
		t.Errorf("expected censored-only point at t=2, got %+v", sg.Curve[1])
	}
	if sg.Curve[2].AtRisk != 1 {
		t.Errorf("expected at-risk 1 at t=3, got %d", sg.Curve[2].AtRisk)
	}
	if sg.Curve[2].SurvivalProbability != 0 {
		t.Errorf("expected S=0 at t=3, got %v", sg.Curve[2].SurvivalProbability)
	}
}

func TestEstimate_ZeroEvents(t *testing.T) {
	est := NewEstimator(1.96)

	sg, err := est.Estimate(group("carriers", censored(1), censored(5), censored(9)))
	if err != nil {
		t.Fatalf("zero events must not raise: %v", err)
	}
	for _, pt := range sg.Curve {
		if pt.SurvivalProbability != 1 {
			t.Errorf("expected flat curve at 1, got %v at t=%v", pt.SurvivalProbability, pt.Time)
		}
	}
	if sg.MedianSurvival != nil {
		t.Errorf("expected no median for a curve that never reaches 0.5, got %v", *sg.MedianSurvival)
	}
}

func TestEstimate_MonotoneAndBoundedCI(t *testing.T) {
	est := NewEstimator(1.96)

	sg, err := est.Estimate(group("carriers",
		event(2), event(2), censored(3), event(5), censored(6),
		event(8), event(8), censored(9), event(12),
	))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}

	prev := 1.0
	for i, pt := range sg.Curve {
		if pt.SurvivalProbability > prev+1e-12 {
			t.Errorf("point %d: survival increased %v -> %v", i, prev, pt.SurvivalProbability)
		}
		prev = pt.SurvivalProbability
		if pt.CILower < 0 || pt.CIUpper > 1 || pt.CILower > pt.CIUpper {
			t.Errorf("point %d: CI [%v, %v] outside [0,1] or inverted", i, pt.CILower, pt.CIUpper)
		}
		if pt.SurvivalProbability < pt.CILower || pt.SurvivalProbability > pt.CIUpper {
			t.Errorf("point %d: estimate %v outside its CI [%v, %v]",
				i, pt.SurvivalProbability, pt.CILower, pt.CIUpper)
		}
	}
}

func TestEstimate_TiedEventTimes(t *testing.T) {
	est := NewEstimator(1.96)

	sg, err := est.Estimate(group("carriers", event(4), event(4), event(4), censored(7)))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if len(sg.Curve) != 2 {
		t.Fatalf("expected one point per distinct time, got %d", len(sg.Curve))
	}
	if sg.Curve[0].Events != 3 || sg.Curve[0].AtRisk != 4 {
		t.Errorf("expected 3 events from a risk set of 4, got %+v", sg.Curve[0])
	}
	if math.Abs(sg.Curve[0].SurvivalProbability-0.25) > 1e-12 {
		t.Errorf("expected S=0.25 after triple event, got %v", sg.Curve[0].SurvivalProbability)
	}
}

func TestEstimate_RejectsBadInput(t *testing.T) {
	est := NewEstimator(1.96)

	if _, err := est.Estimate(group("empty")); err == nil {
		t.Error("expected error for empty group")
	}
	if _, err := est.Estimate(group("negative", event(-1))); err == nil {
		t.Error("expected error for negative time")
	}
	if _, err := est.Estimate(group("nan", event(math.NaN()))); err == nil {
		t.Error("expected error for NaN time")
	}
}
