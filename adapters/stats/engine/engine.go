package engine

import (
	"phenostats/adapters/stats/categorical"
	"phenostats/adapters/stats/descriptive"
	"phenostats/adapters/stats/ranksum"
	"phenostats/adapters/stats/survival"
	domainstats "phenostats/domain/stats"
	"phenostats/internal/config"
)

// StatsEngine is the single entry point for the statistical analyses the
// charting and reporting surfaces consume. Every method is a pure function
// over its inputs: no I/O, no logging, no shared mutable state, safe to call
// from any number of goroutines.
type StatsEngine struct {
	cfg         config.EngineConfig
	ranksum     *ranksum.Tester
	estimator   *survival.Estimator
	logrank     *survival.LogRankTester
	categorical *categorical.Comparator
}

// NewStatsEngine creates an engine with the given policy.
func NewStatsEngine(cfg config.EngineConfig) *StatsEngine {
	return &StatsEngine{
		cfg:         cfg,
		ranksum:     ranksum.NewTester(cfg.MinGroupSize, cfg.ExactLimit),
		estimator:   survival.NewEstimator(cfg.CIZScore),
		logrank:     survival.NewLogRankTester(cfg.Alpha),
		categorical: categorical.NewComparator(cfg.Alpha),
	}
}

// NewDefaultStatsEngine creates an engine with the published-figure policy.
func NewDefaultStatsEngine() *StatsEngine {
	return NewStatsEngine(config.DefaultEngineConfig())
}

// ComputeGroupStats returns summary statistics for one sample.
func (e *StatsEngine) ComputeGroupStats(sample domainstats.Sample) (domainstats.GroupStats, error) {
	return descriptive.ComputeGroupStats(sample)
}

// ClassifyDistance maps a variant-to-DNA distance to its ordinal bucket.
func (e *StatsEngine) ClassifyDistance(distance float64) (domainstats.DistanceCategory, error) {
	return descriptive.ClassifyDistance(distance)
}

// CompareTwoGroups runs the Mann-Whitney U test on two distance samples.
func (e *StatsEngine) CompareTwoGroups(x, y domainstats.Sample) (*domainstats.RankSumResult, error) {
	return e.ranksum.Compare(x, y)
}

// EstimateSurvival fits the Kaplan-Meier curve for one patient group.
func (e *StatsEngine) EstimateSurvival(group domainstats.GroupEvents) (*domainstats.SurvivalGroup, error) {
	return e.estimator.Estimate(group)
}

// CompareSurvivalGroups runs a single two-group log-rank test (uncorrected).
func (e *StatsEngine) CompareSurvivalGroups(a, b domainstats.GroupEvents) (*domainstats.LogRankResult, error) {
	return e.logrank.Compare(a, b)
}

// CompareAllSurvivalGroups runs every pairwise log-rank test with the shared
// Bonferroni factor.
func (e *StatsEngine) CompareAllSurvivalGroups(groups []domainstats.GroupEvents) ([]domainstats.LogRankResult, error) {
	return e.logrank.CompareAll(groups)
}

// CompareCategoricalPrevalence compares phenotype prevalence between two
// cohorts with joint FDR correction across the batch.
func (e *StatsEngine) CompareCategoricalPrevalence(counts []domainstats.PhenotypeCounts) ([]domainstats.CategoricalComparisonResult, error) {
	return e.categorical.Compare(counts)
}
