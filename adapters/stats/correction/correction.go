package correction

import "sort"

// Multiple-testing corrections shared by the survival and categorical
// comparators. Every call site used to re-derive these inline per chart;
// they live here once so a correction change cannot drift between surfaces.

// BenjaminiHochberg returns the FDR-adjusted p-values (q-values) for one
// family of simultaneous tests, in the same order as the input. The whole
// family must be present in a single call: the adjustment of each item
// depends on the ranks of all the others.
//
// Adjusted values satisfy q >= p per item and preserve the raw p-value
// ranking (the step-up enforcement is monotone).
func BenjaminiHochberg(pValues []float64) []float64 {
	m := len(pValues)
	if m == 0 {
		return nil
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return pValues[order[i]] < pValues[order[j]]
	})

	adjusted := make([]float64, m)
	// Step-up: walk from the largest p down, keeping the running minimum of
	// p * m / rank.
	minSoFar := 1.0
	for rank := m; rank >= 1; rank-- {
		idx := order[rank-1]
		q := pValues[idx] * float64(m) / float64(rank)
		if q < minSoFar {
			minSoFar = q
		}
		adjusted[idx] = minSoFar
	}
	return adjusted
}

// Bonferroni returns min(1, p * comparisons).
func Bonferroni(p float64, comparisons int) float64 {
	if comparisons < 1 {
		comparisons = 1
	}
	corrected := p * float64(comparisons)
	if corrected > 1 {
		return 1
	}
	return corrected
}
