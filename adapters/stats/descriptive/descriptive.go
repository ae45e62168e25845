package descriptive

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"phenostats/domain/core"
	domainstats "phenostats/domain/stats"
)

// ComputeGroupStats returns summary statistics for one non-empty sample.
//
// StdDev is the population standard deviation (divisor n). Quartiles use the
// nearest-rank method, index = floor(n*p) on the ascending sort. Both choices
// reproduce the published cohort figures and must not be swapped for the
// sample estimator or an interpolated quantile.
func ComputeGroupStats(sample domainstats.Sample) (domainstats.GroupStats, error) {
	if err := sample.Validate(); err != nil {
		return domainstats.GroupStats{}, err
	}

	data := stats.Float64Data(sample)

	mean, err := stats.Mean(data)
	if err != nil {
		return domainstats.GroupStats{}, core.NewInvalidInputError("sample", err.Error())
	}
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviationPopulation(data)
	minVal, _ := stats.Min(data)
	maxVal, _ := stats.Max(data)

	sorted := append([]float64(nil), sample...)
	sort.Float64s(sorted)

	return domainstats.GroupStats{
		Count:  len(sample),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    minVal,
		Max:    maxVal,
		Q1:     nearestRank(sorted, 0.25),
		Q3:     nearestRank(sorted, 0.75),
	}, nil
}

// nearestRank picks the quantile at index floor(n*p) of an ascending-sorted
// sample, clamped to the last element.
func nearestRank(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Distance thresholds for the ordinal classification, in angstroms.
const (
	closeThreshold  = 5.0
	mediumThreshold = 10.0
)

// ClassifyDistance maps a variant-to-DNA distance to its ordinal bucket:
// < 5 close, < 10 medium, >= 10 far. Non-finite input is rejected.
func ClassifyDistance(distance float64) (domainstats.DistanceCategory, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return "", core.NewInvalidInputError("distance", "must be a finite number")
	}

	switch {
	case distance < closeThreshold:
		return domainstats.DistanceClose, nil
	case distance < mediumThreshold:
		return domainstats.DistanceMedium, nil
	default:
		return domainstats.DistanceFar, nil
	}
}
