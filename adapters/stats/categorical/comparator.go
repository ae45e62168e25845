package categorical

import (
	"math"

	"phenostats/adapters/stats/correction"
	domainstats "phenostats/domain/stats"
)

// Comparator runs two-cohort phenotype prevalence comparisons.
type Comparator struct {
	alpha float64
}

// NewComparator creates a comparator that flags phenotypes whose
// FDR-adjusted p-value falls below alpha.
func NewComparator(alpha float64) *Comparator {
	return &Comparator{alpha: alpha}
}

// Compare tests each phenotype's prevalence difference between the two
// cohorts with Fisher's exact test and applies Benjamini-Hochberg FDR
// correction once across the whole batch. The correction is a joint
// computation: the adjusted value of one phenotype depends on the raw
// p-values of all the others, so partial batches must not be concatenated.
//
// Phenotypes where either cohort has a zero total are skipped silently;
// that is missing data, not an error. Negative or inconsistent counts are
// rejected.
func (c *Comparator) Compare(counts []domainstats.PhenotypeCounts) ([]domainstats.CategoricalComparisonResult, error) {
	results := make([]domainstats.CategoricalComparisonResult, 0, len(counts))
	pValues := make([]float64, 0, len(counts))

	for _, pc := range counts {
		if err := pc.Validate(); err != nil {
			return nil, err
		}
		if pc.Group1Total == 0 || pc.Group2Total == 0 {
			continue
		}

		p := FisherExact(
			pc.Group1Present, pc.Group1Total-pc.Group1Present,
			pc.Group2Present, pc.Group2Total-pc.Group2Present,
		)

		results = append(results, domainstats.CategoricalComparisonResult{
			Phenotype:     pc.Phenotype,
			Group1Present: pc.Group1Present,
			Group1Total:   pc.Group1Total,
			Group2Present: pc.Group2Present,
			Group2Total:   pc.Group2Total,
			PValue:        p,
			EffectSize:    CohensH(pc),
		})
		pValues = append(pValues, p)
	}

	adjusted := correction.BenjaminiHochberg(pValues)
	for i := range results {
		results[i].PValueFDR = adjusted[i]
		results[i].Significant = adjusted[i] < c.alpha
	}
	return results, nil
}

// CohensH returns the arcsine-transformed proportion difference
// h = 2*asin(sqrt(p1)) - 2*asin(sqrt(p2)), signed. Magnitude buckets are
// provided by stats.MagnitudeOfH.
func CohensH(pc domainstats.PhenotypeCounts) float64 {
	p1 := float64(pc.Group1Present) / float64(pc.Group1Total)
	p2 := float64(pc.Group2Present) / float64(pc.Group2Total)
	return 2*math.Asin(math.Sqrt(p1)) - 2*math.Asin(math.Sqrt(p2))
}
