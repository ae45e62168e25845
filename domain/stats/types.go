package stats

import (
	"fmt"
	"math"

	"phenostats/domain/core"
)

// ============================================================================
// INPUT PRIMITIVES
// ============================================================================

// Sample is a collection of finite real measurements (e.g. variant-to-DNA
// distances in angstroms). Values must be finite; NaN and Inf are invalid
// input and must be rejected before a sample enters the engine.
type Sample []float64

// Validate rejects empty samples and non-finite values.
func (s Sample) Validate() error {
	if len(s) == 0 {
		return core.ErrEmptySample
	}
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewNonFiniteError("sample", i)
		}
	}
	return nil
}

// Clean returns a copy of the sample with NaN and Inf values removed.
// Callers that tolerate missing measurements filter before testing.
func (s Sample) Clean() Sample {
	out := make(Sample, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// SubjectTime is one time-to-event observation. Event reports whether the
// event occurred; false means the subject was censored at Time.
type SubjectTime struct {
	Time  float64 `json:"time"`
	Event bool    `json:"event"`
}

// GroupEvents couples a patient group with its raw time-to-event
// observations, the input of the survival estimator and the log-rank test.
type GroupEvents struct {
	Name     core.GroupName `json:"name"`
	Subjects []SubjectTime  `json:"subjects"`
}

// Validate rejects empty groups and non-finite or negative times.
func (g GroupEvents) Validate() error {
	if len(g.Subjects) == 0 {
		return core.ErrEmptyGroup
	}
	for i, s := range g.Subjects {
		if math.IsNaN(s.Time) || math.IsInf(s.Time, 0) {
			return core.NewNonFiniteError(string(g.Name), i)
		}
		if s.Time < 0 {
			return core.ErrNegativeTime
		}
	}
	return nil
}

// PhenotypeCounts holds the 2x2 contingency input for one phenotype:
// present/total counts in each of the two cohorts being compared.
type PhenotypeCounts struct {
	Phenotype     core.PhenotypeKey `json:"phenotype"`
	Group1Present int               `json:"group1_present"`
	Group1Total   int               `json:"group1_total"`
	Group2Present int               `json:"group2_present"`
	Group2Total   int               `json:"group2_total"`
}

// Validate rejects negative counts and present > total.
func (p PhenotypeCounts) Validate() error {
	if p.Group1Present < 0 || p.Group2Present < 0 || p.Group1Total < 0 || p.Group2Total < 0 {
		return core.NewInvalidInputError(string(p.Phenotype), "negative count")
	}
	if p.Group1Present > p.Group1Total || p.Group2Present > p.Group2Total {
		return core.NewInvalidInputError(string(p.Phenotype), "present exceeds total")
	}
	return nil
}

// ============================================================================
// DESCRIPTIVE RESULTS
// ============================================================================

// GroupStats summarizes one sample.
// INVARIANTS:
// - Count > 0
// - Min <= Q1 <= Median <= Q3 <= Max
// - StdDev is the population standard deviation (divisor n, not n-1).
//   This convention is load-bearing: published cohort figures were produced
//   with it, so it must not be "fixed" to the sample estimator.
// - Q1/Q3 use the nearest-rank method, index = floor(n*p) on the ascending
//   sort. Not interpolated.
type GroupStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
}

// DistanceCategory is the ordinal bucket for a variant-to-DNA distance.
type DistanceCategory string

const (
	DistanceClose  DistanceCategory = "close"  // distance < 5
	DistanceMedium DistanceCategory = "medium" // 5 <= distance < 10
	DistanceFar    DistanceCategory = "far"    // distance >= 10
)

// ============================================================================
// RANK-SUM (MANN-WHITNEY) RESULTS
// ============================================================================

// RankSumMethod identifies how the rank-sum p-value was obtained.
type RankSumMethod string

const (
	MethodExact              RankSumMethod = "exact"                // exact permutation distribution
	MethodNormal             RankSumMethod = "normal"               // normal approximation
	MethodNormalTieCorrected RankSumMethod = "normal_tie_corrected" // normal approximation with tie-corrected variance
)

// RankSumResult is the outcome of a two-sample Mann-Whitney U test.
// Immutable once produced.
//
// RankBiserial is reported as a magnitude in [0,1]. CohensD pools variance
// with the sample (n-1) formula even though GroupStats uses the population
// convention; the mismatch is deliberate and preserved for comparability.
type RankSumResult struct {
	N1           int           `json:"n1"`
	N2           int           `json:"n2"`
	U            float64       `json:"u"`
	Z            float64       `json:"z"`
	PValue       float64       `json:"p_value"`
	Method       RankSumMethod `json:"method"`
	CohensD      float64       `json:"cohens_d"`
	RankBiserial float64       `json:"rank_biserial"`
	TieCount     int           `json:"tie_count"`
}

// ============================================================================
// SURVIVAL RESULTS
// ============================================================================

// SurvivalPoint is one step of a Kaplan-Meier curve, at one distinct
// observed event or censoring time.
type SurvivalPoint struct {
	Time                float64 `json:"time"`
	SurvivalProbability float64 `json:"survival_probability"`
	CILower             float64 `json:"ci_lower"`
	CIUpper             float64 `json:"ci_upper"`
	AtRisk              int     `json:"at_risk"`
	Events              int     `json:"events"`
	Censored            int     `json:"censored"`
}

// SurvivalGroup is the estimated survival curve for one patient group.
// The curve conceptually starts at (time=0, probability=1); Curve holds one
// point per distinct observed time with SurvivalProbability non-increasing.
// MedianSurvival is nil when the curve never reaches 0.5.
type SurvivalGroup struct {
	Name           core.GroupName  `json:"name"`
	N              int             `json:"n"`
	Events         int             `json:"events"`
	Curve          []SurvivalPoint `json:"survival_curve"`
	MedianSurvival *float64        `json:"median_survival"`
}

// LogRankResult is one pairwise log-rank comparison. When produced as part
// of a batch over k groups, PValueCorrected carries the shared Bonferroni
// factor (the number of pairwise comparisons in the batch).
type LogRankResult struct {
	Group1          core.GroupName `json:"group1"`
	Group2          core.GroupName `json:"group2"`
	Statistic       float64        `json:"statistic"` // chi-squared, 1 df
	PValue          float64        `json:"p_value"`
	PValueCorrected float64        `json:"p_value_corrected"`
	Significant     bool           `json:"significant"`
}

// ============================================================================
// CATEGORICAL RESULTS
// ============================================================================

// CategoricalComparisonResult is the per-phenotype outcome of a two-cohort
// prevalence comparison. PValueFDR is computed jointly across all phenotypes
// of one comparison run, never per phenotype in isolation.
type CategoricalComparisonResult struct {
	Phenotype     core.PhenotypeKey `json:"phenotype"`
	Group1Present int               `json:"group1_present"`
	Group1Total   int               `json:"group1_total"`
	Group2Present int               `json:"group2_present"`
	Group2Total   int               `json:"group2_total"`
	PValue        float64           `json:"p_value"`
	PValueFDR     float64           `json:"p_value_fdr"`
	EffectSize    float64           `json:"effect_size"` // Cohen's h, signed
	Significant   bool              `json:"significant"`
}

// EffectMagnitude buckets an effect size for reporting.
type EffectMagnitude string

const (
	EffectSmall  EffectMagnitude = "small"
	EffectMedium EffectMagnitude = "medium"
	EffectLarge  EffectMagnitude = "large"
)

// MagnitudeOfH buckets a Cohen's h value: |h| < 0.2 small, < 0.5 medium,
// else large.
func MagnitudeOfH(h float64) EffectMagnitude {
	switch abs := math.Abs(h); {
	case abs < 0.2:
		return EffectSmall
	case abs < 0.5:
		return EffectMedium
	default:
		return EffectLarge
	}
}

// ============================================================================
// ANALYSIS MANIFEST (audit trail for one batch run)
// ============================================================================

// AnalysisManifest records what one cohort analysis run computed, for the
// audit surface of the surrounding application.
type AnalysisManifest struct {
	AnalysisID       core.AnalysisID `json:"analysis_id"`
	CohortHash       core.CohortHash `json:"cohort_hash"`
	TestsExecuted    []string        `json:"tests_executed"`
	RuntimeMs        int64           `json:"runtime_ms"`
	TotalComparisons int             `json:"total_comparisons"`
	SkippedTests     int             `json:"skipped_tests"`
	CreatedAt        core.Timestamp  `json:"created_at"`
}

// NewAnalysisManifest creates a manifest stamped with a fresh ID.
func NewAnalysisManifest(cohortHash core.CohortHash) *AnalysisManifest {
	return &AnalysisManifest{
		AnalysisID:    core.AnalysisID(core.NewID()),
		CohortHash:    cohortHash,
		TestsExecuted: []string{},
		CreatedAt:     core.Now(),
	}
}

// ============================================================================
// VALIDATION
// ============================================================================

// ValidateRankSumResult checks invariants for rank-sum results.
func ValidateRankSumResult(r *RankSumResult) error {
	if r.N1 <= 0 || r.N2 <= 0 {
		return fmt.Errorf("sample sizes must be > 0, got n1=%d n2=%d", r.N1, r.N2)
	}
	if r.PValue < 0.0 || r.PValue > 1.0 {
		return fmt.Errorf("PValue must be in [0.0, 1.0], got %f", r.PValue)
	}
	if r.U < 0 || r.U > float64(r.N1*r.N2) {
		return fmt.Errorf("U must be in [0, n1*n2], got %f", r.U)
	}
	switch r.Method {
	case MethodExact, MethodNormal, MethodNormalTieCorrected:
	default:
		return fmt.Errorf("unknown method %q", r.Method)
	}
	return nil
}

// ValidateSurvivalGroup checks monotonicity and bounds of a survival curve.
func ValidateSurvivalGroup(g *SurvivalGroup) error {
	if g.N <= 0 {
		return core.ErrEmptyGroup
	}
	prev := 1.0
	prevTime := math.Inf(-1)
	for i, p := range g.Curve {
		if p.Time <= prevTime {
			return fmt.Errorf("curve times must be strictly increasing at point %d", i)
		}
		if p.SurvivalProbability > prev+1e-12 {
			return fmt.Errorf("survival probability increased at point %d", i)
		}
		if p.CILower < 0 || p.CIUpper > 1 || p.CILower > p.CIUpper {
			return fmt.Errorf("confidence interval out of bounds at point %d", i)
		}
		prev = p.SurvivalProbability
		prevTime = p.Time
	}
	return nil
}
