package ranksum

import "math"

// Exact null distribution of the Mann-Whitney U statistic for tie-free
// samples, built from the Wilcoxon rank-sum distribution: counts of
// n1-subsets of the ranks 1..N by rank sum. Counts stay well below 2^53 for
// the sample sizes the exact method is used at, so float64 tallies are exact.

// exactPValue returns the two-sided p-value of the smaller U under the exact
// permutation distribution for group sizes n1 and n2.
func exactPValue(u float64, n1, n2 int) float64 {
	mu := float64(n1*n2) / 2
	if u == mu {
		// The distribution is symmetric about the mean; doubling the CDF
		// would double-count the probability mass at u itself.
		return 1
	}
	p := 2 * exactCDF(int(math.Round(u)), n1, n2)
	if p > 1 {
		p = 1
	}
	return p
}

// exactCDF returns P(U <= u) under the null for group sizes n1 and n2.
func exactCDF(u, n1, n2 int) float64 {
	if u < 0 {
		return 0
	}
	if u >= n1*n2 {
		return 1
	}

	bigN := n1 + n2
	minW := n1 * (n1 + 1) / 2 // sum of the n1 smallest ranks
	maxW := minW + n1*n2      // sum of the n1 largest ranks

	// counts[j][w] = number of j-subsets of the ranks consumed so far with
	// rank sum w.
	counts := make([][]float64, n1+1)
	for j := range counts {
		counts[j] = make([]float64, maxW+1)
	}
	counts[0][0] = 1

	for r := 1; r <= bigN; r++ {
		jMax := n1
		if r < jMax {
			jMax = r
		}
		for j := jMax; j >= 1; j-- {
			for w := maxW; w >= r; w-- {
				if c := counts[j-1][w-r]; c != 0 {
					counts[j][w] += c
				}
			}
		}
	}

	var cum, total float64
	for w := minW; w <= maxW; w++ {
		total += counts[n1][w]
		if w-minW <= u {
			cum += counts[n1][w]
		}
	}
	return cum / total
}
