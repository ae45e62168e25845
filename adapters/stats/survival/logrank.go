package survival

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"phenostats/adapters/stats/correction"
	domainstats "phenostats/domain/stats"
)

// LogRankTester compares survival curves pairwise with the log-rank test.
type LogRankTester struct {
	alpha float64
}

// NewLogRankTester creates a tester that flags comparisons whose corrected
// p-value falls below alpha.
func NewLogRankTester(alpha float64) *LogRankTester {
	return &LogRankTester{alpha: alpha}
}

var chiSquared1 = distuv.ChiSquared{K: 1}

// Compare runs a two-group log-rank test. The result carries the raw
// p-value uncorrected (PValueCorrected equals PValue); use CompareAll for a
// batch with the shared Bonferroni factor.
//
// A pair where neither group has any events carries no information and
// yields chi-squared 0 with p-value 1, never an error.
func (t *LogRankTester) Compare(a, b domainstats.GroupEvents) (*domainstats.LogRankResult, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	chi2, p := logRankStatistic(a.Subjects, b.Subjects)

	return &domainstats.LogRankResult{
		Group1:          a.Name,
		Group2:          b.Name,
		Statistic:       chi2,
		PValue:          p,
		PValueCorrected: p,
		Significant:     p < t.alpha,
	}, nil
}

// CompareAll runs every pairwise log-rank test over k groups and applies the
// shared Bonferroni factor k*(k-1)/2 to each raw p-value.
func (t *LogRankTester) CompareAll(groups []domainstats.GroupEvents) ([]domainstats.LogRankResult, error) {
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}

	comparisons := len(groups) * (len(groups) - 1) / 2
	results := make([]domainstats.LogRankResult, 0, comparisons)
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			chi2, p := logRankStatistic(groups[i].Subjects, groups[j].Subjects)
			corrected := correction.Bonferroni(p, comparisons)
			results = append(results, domainstats.LogRankResult{
				Group1:          groups[i].Name,
				Group2:          groups[j].Name,
				Statistic:       chi2,
				PValue:          p,
				PValueCorrected: corrected,
				Significant:     corrected < t.alpha,
			})
		}
	}
	return results, nil
}

// logRankStatistic accumulates observed minus expected events for the first
// group over the pooled distinct event times, with the hypergeometric
// variance of each risk set, and returns the chi-squared statistic (1 df)
// and its p-value.
func logRankStatistic(s1, s2 []domainstats.SubjectTime) (chi2, p float64) {
	times := pooledEventTimes(s1, s2)

	var observed, expected, variance float64
	for _, t := range times {
		n1, d1 := riskSetAt(s1, t)
		n2, d2 := riskSetAt(s2, t)
		nj := float64(n1 + n2)
		dj := float64(d1 + d2)
		if nj == 0 || dj == 0 {
			continue
		}

		observed += float64(d1)
		expected += dj * float64(n1) / nj
		if nj > 1 {
			variance += dj * (float64(n1) / nj) * (float64(n2) / nj) * (nj - dj) / (nj - 1)
		}
	}

	if variance == 0 {
		return 0, 1
	}
	diff := observed - expected
	chi2 = diff * diff / variance
	p = 1 - chiSquared1.CDF(chi2)
	if p < 0 {
		p = 0
	}
	return chi2, p
}

// pooledEventTimes returns the ascending distinct times at which at least
// one event occurred in either group. Censoring-only times do not form risk
// sets for the test.
func pooledEventTimes(s1, s2 []domainstats.SubjectTime) []float64 {
	seen := make(map[float64]bool)
	for _, s := range s1 {
		if s.Event {
			seen[s.Time] = true
		}
	}
	for _, s := range s2 {
		if s.Event {
			seen[s.Time] = true
		}
	}
	times := make([]float64, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Float64s(times)
	return times
}

// riskSetAt counts subjects still at risk at time t and events occurring at
// exactly t.
func riskSetAt(subjects []domainstats.SubjectTime, t float64) (atRisk, events int) {
	for _, s := range subjects {
		if s.Time >= t {
			atRisk++
		}
		if s.Event && s.Time == t {
			events++
		}
	}
	return atRisk, events
}

// MedianDifference reports the absolute difference of two median survival
// times, when both exist.
func MedianDifference(a, b *domainstats.SurvivalGroup) (float64, bool) {
	if a.MedianSurvival == nil || b.MedianSurvival == nil {
		return 0, false
	}
	return math.Abs(*a.MedianSurvival - *b.MedianSurvival), true
}
