package survival

import (
	"math"
	"sort"

	domainstats "phenostats/domain/stats"
)

// Estimator fits Kaplan-Meier product-limit survival curves.
type Estimator struct {
	ciZ float64
}

// NewEstimator creates an estimator. ciZ is the normal multiplier for the
// Greenwood confidence interval (1.96 for 95%).
func NewEstimator(ciZ float64) *Estimator {
	return &Estimator{ciZ: ciZ}
}

// Estimate computes the survival curve for one group of time-to-event
// observations. Censored subjects (Event=false) leave the risk set at their
// time without reducing the survival probability.
//
// The curve holds one point per distinct observed time. A group with zero
// events yields a flat curve at probability 1; only an empty group or
// invalid times are errors.
func (e *Estimator) Estimate(group domainstats.GroupEvents) (*domainstats.SurvivalGroup, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}

	subjects := append([]domainstats.SubjectTime(nil), group.Subjects...)
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Time < subjects[j].Time })

	n := len(subjects)
	surv := 1.0
	greenwood := 0.0
	totalEvents := 0
	var median *float64

	curve := make([]domainstats.SurvivalPoint, 0, n)
	for i := 0; i < n; {
		t := subjects[i].Time
		atRisk := n - i
		events, censored := 0, 0
		for ; i < n && subjects[i].Time == t; i++ {
			if subjects[i].Event {
				events++
			} else {
				censored++
			}
		}
		totalEvents += events

		if events > 0 {
			surv *= 1 - float64(events)/float64(atRisk)
			if atRisk > events {
				greenwood += float64(events) / (float64(atRisk) * float64(atRisk-events))
			}
		}

		lower, upper := e.greenwoodInterval(surv, greenwood, atRisk == events && events > 0)

		curve = append(curve, domainstats.SurvivalPoint{
			Time:                t,
			SurvivalProbability: surv,
			CILower:             lower,
			CIUpper:             upper,
			AtRisk:              atRisk,
			Events:              events,
			Censored:            censored,
		})

		if median == nil && surv <= 0.5 {
			mt := t
			median = &mt
		}
	}

	result := &domainstats.SurvivalGroup{
		Name:           group.Name,
		N:              n,
		Events:         totalEvents,
		Curve:          curve,
		MedianSurvival: median,
	}
	if err := domainstats.ValidateSurvivalGroup(result); err != nil {
		return nil, err
	}
	return result, nil
}

// greenwoodInterval returns the 95% CI for S(t) from the accumulated
// Greenwood variance sum, clipped to [0,1]. When the risk set was exhausted
// by events the estimate hits zero exactly and the interval collapses.
func (e *Estimator) greenwoodInterval(surv, greenwood float64, exhausted bool) (lower, upper float64) {
	if exhausted || surv == 0 {
		return 0, 0
	}
	se := e.ciZ * surv * math.Sqrt(greenwood)
	lower = surv - se
	upper = surv + se
	if lower < 0 {
		lower = 0
	}
	if upper > 1 {
		upper = 1
	}
	return lower, upper
}
