package testkit

import (
	"math"
	"math/rand"

	"phenostats/adapters/stats/engine"
	"phenostats/domain/core"
	domainstats "phenostats/domain/stats"
)

// CohortConfig controls the synthetic cohort generator. Everything is
// seeded, so a config value pins the whole fixture.
type CohortConfig struct {
	Seed int64

	// Per-group subject counts.
	GroupSize int

	// Mean variant-to-DNA distance per group, in angstroms. Separation of
	// the two means relative to Spread decides how strongly the rank-sum
	// test should fire on the fixture.
	Group1MeanDistance float64
	Group2MeanDistance float64
	Spread             float64

	// Mean survival time per group and the fraction of subjects censored
	// before their event.
	Group1MeanSurvival float64
	Group2MeanSurvival float64
	CensorFraction     float64

	// Phenotype prevalence per group; one PhenotypeCounts row is emitted
	// per entry.
	Phenotypes []PhenotypePrevalence
}

// PhenotypePrevalence is the generating prevalence of one phenotype in the
// two groups.
type PhenotypePrevalence struct {
	Name  core.PhenotypeKey
	Rate1 float64
	Rate2 float64
}

// DefaultCohortConfig returns a well-separated two-group cohort: distances a
// standard deviation apart, survival times halved in the first group, one
// strongly and one weakly differing phenotype.
func DefaultCohortConfig() CohortConfig {
	return CohortConfig{
		Seed:               42,
		GroupSize:          24,
		Group1MeanDistance: 4.0,
		Group2MeanDistance: 9.0,
		Spread:             2.0,
		Group1MeanSurvival: 6.0,
		Group2MeanSurvival: 14.0,
		CensorFraction:     0.2,
		Phenotypes: []PhenotypePrevalence{
			{Name: "seizures", Rate1: 0.8, Rate2: 0.15},
			{Name: "ataxia", Rate1: 0.45, Rate2: 0.4},
		},
	}
}

// GenerateCohort builds a complete synthetic CohortRequest from the config.
// The same config always yields the same request.
func GenerateCohort(cfg CohortConfig) engine.CohortRequest {
	rng := rand.New(rand.NewSource(cfg.Seed))

	req := engine.CohortRequest{
		Group1Name:      core.GroupName("carriers"),
		Group1Distances: distances(rng, cfg.GroupSize, cfg.Group1MeanDistance, cfg.Spread),
		Group2Name:      core.GroupName("controls"),
		Group2Distances: distances(rng, cfg.GroupSize, cfg.Group2MeanDistance, cfg.Spread),
	}

	req.SurvivalGroups = []domainstats.GroupEvents{
		survivalGroup(rng, "carriers", cfg.GroupSize, cfg.Group1MeanSurvival, cfg.CensorFraction),
		survivalGroup(rng, "controls", cfg.GroupSize, cfg.Group2MeanSurvival, cfg.CensorFraction),
	}

	for _, ph := range cfg.Phenotypes {
		req.Phenotypes = append(req.Phenotypes, domainstats.PhenotypeCounts{
			Phenotype:     ph.Name,
			Group1Present: binomial(rng, cfg.GroupSize, ph.Rate1),
			Group1Total:   cfg.GroupSize,
			Group2Present: binomial(rng, cfg.GroupSize, ph.Rate2),
			Group2Total:   cfg.GroupSize,
		})
	}
	return req
}

// distances draws n normal distances clamped to be non-negative.
func distances(rng *rand.Rand, n int, mean, spread float64) domainstats.Sample {
	sample := make(domainstats.Sample, n)
	for i := range sample {
		sample[i] = math.Max(0, mean+rng.NormFloat64()*spread)
	}
	return sample
}

// survivalGroup draws exponential event times with the given mean and
// censors the configured fraction of subjects at a uniform point before
// their event time.
func survivalGroup(rng *rand.Rand, name string, n int, meanTime, censorFraction float64) domainstats.GroupEvents {
	subjects := make([]domainstats.SubjectTime, n)
	for i := range subjects {
		t := rng.ExpFloat64() * meanTime
		if rng.Float64() < censorFraction {
			subjects[i] = domainstats.SubjectTime{Time: t * rng.Float64(), Event: false}
		} else {
			subjects[i] = domainstats.SubjectTime{Time: t, Event: true}
		}
	}
	return domainstats.GroupEvents{Name: core.GroupName(name), Subjects: subjects}
}

func binomial(rng *rand.Rand, n int, rate float64) int {
	count := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < rate {
			count++
		}
	}
	return count
}
