package ranksum

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"phenostats/domain/core"
	domainstats "phenostats/domain/stats"
)

// Tester runs two-sample Mann-Whitney U comparisons of variant-to-DNA
// distance distributions.
type Tester struct {
	minGroupSize int
	exactLimit   int
}

// NewTester creates a tester with the given policy. minGroupSize is the
// smallest per-group n accepted; exactLimit is the largest per-group n for
// which the exact permutation p-value is used (tie-free samples only).
func NewTester(minGroupSize, exactLimit int) *Tester {
	return &Tester{
		minGroupSize: minGroupSize,
		exactLimit:   exactLimit,
	}
}

// Compare performs the Mann-Whitney U test of the null hypothesis that both
// samples come from the same distribution.
//
// Tied values receive the average rank of their tied block. For tie-free
// samples with both n below the exact limit the p-value comes from the exact
// permutation distribution of U; otherwise from the normal approximation
// with continuity correction and, when ties exist, tie-corrected variance.
func (t *Tester) Compare(x, y domainstats.Sample) (*domainstats.RankSumResult, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	if err := y.Validate(); err != nil {
		return nil, err
	}
	n1, n2 := len(x), len(y)
	if n1 < t.minGroupSize {
		return nil, core.NewInsufficientDataError("rank-sum test", n1, t.minGroupSize)
	}
	if n2 < t.minGroupSize {
		return nil, core.NewInsufficientDataError("rank-sum test", n2, t.minGroupSize)
	}

	r1, tieBlocks, tieCount := pooledRanks(x, y)

	// U statistics. U1 counts pairs where an x value exceeds a y value
	// (ties as one half); U is the smaller of the two orientations.
	u1 := float64(n1*n2) + float64(n1*(n1+1))/2 - r1
	u2 := float64(n1*n2) - u1
	u := math.Min(u1, u2)

	// Tie-corrected variance of U under the null:
	// sigma^2 = n1*n2/12 * [(N+1) - sum(t^3 - t)/(N(N-1))]
	bigN := float64(n1 + n2)
	tieTerm := 0.0
	for _, size := range tieBlocks {
		s := float64(size)
		tieTerm += s*s*s - s
	}
	sigma2 := float64(n1*n2) / 12 * ((bigN + 1) - tieTerm/(bigN*(bigN-1)))

	mu := float64(n1*n2) / 2
	var z, p float64
	method := domainstats.MethodNormal
	if tieCount > 0 {
		method = domainstats.MethodNormalTieCorrected
	}

	if sigma2 <= 0 {
		// All pooled values equal: the test carries no information.
		z, p = 0, 1
	} else {
		numer := u - mu
		// Continuity correction toward the mean.
		if numer > 0 {
			numer -= 0.5
		} else if numer < 0 {
			numer += 0.5
		}
		z = numer / math.Sqrt(sigma2)
		p = 2 * (1 - stdNormal.CDF(math.Abs(z)))
	}

	if tieCount == 0 && n1 <= t.exactLimit && n2 <= t.exactLimit {
		method = domainstats.MethodExact
		p = exactPValue(u, n1, n2)
	}
	if p > 1 {
		p = 1
	}

	result := &domainstats.RankSumResult{
		N1:           n1,
		N2:           n2,
		U:            u,
		Z:            z,
		PValue:       p,
		Method:       method,
		CohensD:      cohensD(x, y),
		RankBiserial: math.Abs(1 - 2*u/float64(n1*n2)),
		TieCount:     tieCount,
	}
	if err := domainstats.ValidateRankSumResult(result); err != nil {
		return nil, err
	}
	return result, nil
}

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// pooledRanks sorts the pooled samples, assigns mid-ranks to tied blocks and
// returns the rank sum of the first sample, the tie-block sizes, and the
// number of blocks with more than one member.
func pooledRanks(x, y domainstats.Sample) (r1 float64, tieBlocks []int, tieCount int) {
	type labeled struct {
		value float64
		first bool
	}
	pooled := make([]labeled, 0, len(x)+len(y))
	for _, v := range x {
		pooled = append(pooled, labeled{value: v, first: true})
	}
	for _, v := range y {
		pooled = append(pooled, labeled{value: v, first: false})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	for i := 0; i < len(pooled); {
		j := i
		nFirst := 0
		for ; j < len(pooled) && pooled[j].value == pooled[i].value; j++ {
			if pooled[j].first {
				nFirst++
			}
		}
		// Average rank of positions i+1 .. j (1-based).
		rank := float64(i+1+j) / 2
		r1 += rank * float64(nFirst)

		size := j - i
		tieBlocks = append(tieBlocks, size)
		if size > 1 {
			tieCount++
		}
		i = j
	}
	return r1, tieBlocks, tieCount
}

// cohensD computes |mean1 - mean2| / pooled standard deviation using the
// sample (n-1) pooling formula. This intentionally differs from the
// population convention of GroupStats and must stay that way for
// comparability with prior published values. Zero pooled variance yields
// d = 0 rather than an error.
func cohensD(x, y domainstats.Sample) float64 {
	n1, n2 := float64(len(x)), float64(len(y))

	mean1, _ := stats.Mean(stats.Float64Data(x))
	mean2, _ := stats.Mean(stats.Float64Data(y))
	var1, _ := stats.SampleVariance(stats.Float64Data(x))
	var2, _ := stats.SampleVariance(stats.Float64Data(y))

	pooled := ((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2)
	if pooled <= 0 || math.IsNaN(pooled) {
		return 0
	}
	return math.Abs(mean1-mean2) / math.Sqrt(pooled)
}
