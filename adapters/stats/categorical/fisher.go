package categorical

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// FisherExact returns the two-sided p-value of independence for a 2x2
// contingency table
//
//	a b   (group 1: present, absent)
//	c d   (group 2: present, absent)
//
// computed from the hypergeometric distribution with the table margins
// fixed: the p-value sums the probabilities of every table at least as
// extreme as the observed one, where "as extreme" means probability no
// larger than the observed table's (with a small tolerance for floating
// point, matching the convention of R's fisher.test).
func FisherExact(a, b, c, d int) float64 {
	r1 := a + b
	r2 := c + d
	c1 := a + c
	n := r1 + r2

	if r1 == 0 || r2 == 0 || c1 == 0 || c1 == n {
		// A degenerate margin admits only one table.
		return 1
	}

	logObs := hypergeomLogProb(a, r1, r2, c1)

	lo := 0
	if c1-r2 > lo {
		lo = c1 - r2
	}
	hi := r1
	if c1 < hi {
		hi = c1
	}

	const logTol = 1e-7
	p := 0.0
	for k := lo; k <= hi; k++ {
		if lp := hypergeomLogProb(k, r1, r2, c1); lp <= logObs+logTol {
			p += math.Exp(lp)
		}
	}
	if p > 1 {
		p = 1
	}
	return p
}

// hypergeomLogProb is the log pmf of drawing k "present" subjects into a
// group of size r1 when c1 of the r1+r2 subjects are present overall.
func hypergeomLogProb(k, r1, r2, c1 int) float64 {
	return combin.LogGeneralizedBinomial(float64(r1), float64(k)) +
		combin.LogGeneralizedBinomial(float64(r2), float64(c1-k)) -
		combin.LogGeneralizedBinomial(float64(r1+r2), float64(c1))
}
