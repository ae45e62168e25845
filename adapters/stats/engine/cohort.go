package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"phenostats/domain/core"
	domainstats "phenostats/domain/stats"
)

// CohortRequest bundles the inputs of one cohort analysis run. Empty
// sections are skipped, not errors: a cohort without survival follow-up
// still gets its distance and phenotype comparisons.
type CohortRequest struct {
	Group1Name      core.GroupName     `json:"group1_name"`
	Group1Distances domainstats.Sample `json:"group1_distances"`
	Group2Name      core.GroupName     `json:"group2_name"`
	Group2Distances domainstats.Sample `json:"group2_distances"`

	SurvivalGroups []domainstats.GroupEvents     `json:"survival_groups"`
	Phenotypes     []domainstats.PhenotypeCounts `json:"phenotypes"`
}

// CohortAnalysis is the complete result record set of one run.
type CohortAnalysis struct {
	Group1Stats *domainstats.GroupStats                   `json:"group1_stats,omitempty"`
	Group2Stats *domainstats.GroupStats                   `json:"group2_stats,omitempty"`
	RankSum     *domainstats.RankSumResult                `json:"rank_sum,omitempty"`
	Survival    []*domainstats.SurvivalGroup              `json:"survival,omitempty"`
	LogRank     []domainstats.LogRankResult               `json:"log_rank,omitempty"`
	Categorical []domainstats.CategoricalComparisonResult `json:"categorical,omitempty"`
	Manifest    *domainstats.AnalysisManifest             `json:"manifest"`
}

// RunCohortAnalysis executes the distance comparison, the survival analysis
// and the phenotype prevalence comparison of one request concurrently. The
// three sections touch disjoint inputs and every component is pure, so no
// coordination beyond the errgroup join is needed.
func (e *StatsEngine) RunCohortAnalysis(ctx context.Context, req CohortRequest) (*CohortAnalysis, error) {
	started := time.Now()
	analysis := &CohortAnalysis{}
	manifest := domainstats.NewAnalysisManifest(cohortHash(req))

	g, _ := errgroup.WithContext(ctx)

	runDistances := len(req.Group1Distances) > 0 && len(req.Group2Distances) > 0
	if runDistances {
		g.Go(func() error {
			s1, err := e.ComputeGroupStats(req.Group1Distances)
			if err != nil {
				return err
			}
			s2, err := e.ComputeGroupStats(req.Group2Distances)
			if err != nil {
				return err
			}
			rs, err := e.CompareTwoGroups(req.Group1Distances, req.Group2Distances)
			if err != nil {
				return err
			}
			analysis.Group1Stats = &s1
			analysis.Group2Stats = &s2
			analysis.RankSum = rs
			return nil
		})
	}

	runSurvival := len(req.SurvivalGroups) > 0
	if runSurvival {
		g.Go(func() error {
			curves := make([]*domainstats.SurvivalGroup, 0, len(req.SurvivalGroups))
			for _, group := range req.SurvivalGroups {
				curve, err := e.EstimateSurvival(group)
				if err != nil {
					return err
				}
				curves = append(curves, curve)
			}
			comparisons, err := e.CompareAllSurvivalGroups(req.SurvivalGroups)
			if err != nil {
				return err
			}
			analysis.Survival = curves
			analysis.LogRank = comparisons
			return nil
		})
	}

	runCategorical := len(req.Phenotypes) > 0
	if runCategorical {
		g.Go(func() error {
			results, err := e.CompareCategoricalPrevalence(req.Phenotypes)
			if err != nil {
				return err
			}
			analysis.Categorical = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if runDistances {
		manifest.TestsExecuted = append(manifest.TestsExecuted, "rank_sum")
		manifest.TotalComparisons++
	} else {
		manifest.SkippedTests++
	}
	if runSurvival {
		manifest.TestsExecuted = append(manifest.TestsExecuted, "log_rank")
		manifest.TotalComparisons += len(analysis.LogRank)
	} else {
		manifest.SkippedTests++
	}
	if runCategorical {
		manifest.TestsExecuted = append(manifest.TestsExecuted, "fisher_exact")
		manifest.TotalComparisons += len(analysis.Categorical)
	} else {
		manifest.SkippedTests++
	}
	manifest.RuntimeMs = time.Since(started).Milliseconds()
	analysis.Manifest = manifest

	return analysis, nil
}

// cohortHash fingerprints the request by group names and sizes.
func cohortHash(req CohortRequest) core.CohortHash {
	sizes := map[string]int{
		string(req.Group1Name): len(req.Group1Distances),
		string(req.Group2Name): len(req.Group2Distances),
	}
	for _, g := range req.SurvivalGroups {
		sizes["survival:"+string(g.Name)] = len(g.Subjects)
	}
	sizes["phenotypes"] = len(req.Phenotypes)
	return core.ComputeCohortHash(sizes)
}
