// Package statkit is the engine's statistics kernel: proportion tests with
// Laplace smoothing, confidence intervals, and the weighted moments needed
// by the PCA and representativeness stages. Everything here is a pure
// function of its inputs; nothing here touches conversation state.
package statkit

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Significance gates, expressed as z-score magnitude thresholds.
const (
	Z90 = 1.2816
	Z95 = 1.6449
)

// Sig90 reports whether |z| exceeds Z90, the one-sided 90% critical value.
func Sig90(z float64) bool { return math.Abs(z) > Z90 }

// Sig95 reports whether |z| exceeds Z95, the one-sided 95% critical value.
func Sig95(z float64) bool { return math.Abs(z) > Z95 }

// PropTest returns the z-score for H0: p = 0.5 given a Laplace-smoothed
// estimate p_hat = (a+1)/(n+2), SE = sqrt(p_hat*(1-p_hat)/(n+2)).
func PropTest(a, n int) float64 {
	phat, se := smoothedProportion(a, n)
	if se == 0 {
		return 0
	}
	return (phat - 0.5) / se
}

// TwoPropTest compares two Laplace-smoothed proportions under a
// pooled-variance approximation, returning the z-score for
// H0: p1 == p2.
func TwoPropTest(a1, n1, a2, n2 int) float64 {
	p1, _ := smoothedProportion(a1, n1)
	p2, _ := smoothedProportion(a2, n2)
	d1 := float64(n1 + 2)
	d2 := float64(n2 + 2)
	pooled := (float64(a1+1) + float64(a2+1)) / (d1 + d2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/d1 + 1/d2))
	if se == 0 {
		return 0
	}
	return (p1 - p2) / se
}

func smoothedProportion(a, n int) (phat, se float64) {
	denom := float64(n + 2)
	phat = float64(a+1) / denom
	se = math.Sqrt(phat * (1 - phat) / denom)
	return
}

// ZToP converts a two-sided z-score to a p-value using the standard normal
// distribution.
func ZToP(z float64) float64 {
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * norm.CDF(-math.Abs(z))
}

// WeightedMean returns the weighted arithmetic mean of xs, weighted by ws.
func WeightedMean(xs, ws []float64) float64 {
	return stat.Mean(xs, ws)
}

// WeightedStdDev returns the weighted (sample) standard deviation of xs.
func WeightedStdDev(xs, ws []float64) float64 {
	_, variance := stat.MeanVariance(xs, ws)
	return math.Sqrt(variance)
}

// NormalCI95 returns the normal-approximation 95% confidence interval
// (lo, hi) for a sample mean given its standard error.
func NormalCI95(mean, se float64) (lo, hi float64) {
	const z = 1.959964 // two-sided 95% critical value
	return mean - z*se, mean + z*se
}

// WilsonCI95 returns the Wilson-score 95% confidence interval for a binomial
// proportion a/n — the "Bayesian-flavored" interval referenced by the spec
// as preferable to the normal approximation near 0 or 1.
func WilsonCI95(a, n int) (lo, hi float64) {
	if n == 0 {
		return 0, 1
	}
	const z = 1.959964 // two-sided 95% critical value
	nf := float64(n)
	phat := float64(a) / nf
	denom := 1 + z*z/nf
	center := phat + z*z/(2*nf)
	margin := z * math.Sqrt(phat*(1-phat)/nf+z*z/(4*nf*nf))
	lo = (center - margin) / denom
	hi = (center + margin) / denom
	return clamp01(lo), clamp01(hi)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// BootstrapCI95 returns a percentile-bootstrap 95% CI for the mean of xs,
// resampling nIter times with the provided deterministic uniform source
// (caller supplies one driven by a fixed seed so results are reproducible).
func BootstrapCI95(xs []float64, nIter int, uniform func() float64) (lo, hi float64) {
	if len(xs) == 0 || nIter <= 0 {
		return 0, 0
	}
	means := make([]float64, nIter)
	n := len(xs)
	for i := 0; i < nIter; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			idx := int(uniform() * float64(n))
			if idx >= n {
				idx = n - 1
			}
			sum += xs[idx]
		}
		means[i] = sum / float64(n)
	}
	sort.Float64s(means)
	loIdx := int(0.025 * float64(nIter))
	hiIdx := int(0.975 * float64(nIter))
	if hiIdx >= nIter {
		hiIdx = nIter - 1
	}
	return means[loIdx], means[hiIdx]
}

// BinomialTest returns the two-sided exact p-value for observing a
// successes in n trials under H0: p = p0, via the regularized incomplete
// beta function (the standard exact-test identities
// P(X>=a) = I_p0(a, n-a+1) and P(X<=a) = I_(1-p0)(n-a, a+1)).
func BinomialTest(a, n int, p0 float64) float64 {
	if n == 0 {
		return 1
	}
	upper := 1.0 // P(X >= 0)
	if a > 0 {
		upper = mathext.RegIncBeta(float64(a), float64(n-a+1), p0)
	}
	lower := 1.0 // P(X <= n)
	if a < n {
		lower = mathext.RegIncBeta(float64(n-a), float64(a+1), 1-p0)
	}
	tail := math.Min(upper, lower)
	p := 2 * tail
	if p > 1 {
		p = 1
	}
	return p
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// FisherExact returns the two-sided p-value of Fisher's exact test for the
// 2x2 contingency table [[a, b], [c, d]], via direct hypergeometric tail
// summation. Intended for small counts (the representativeness engine's
// hot path uses TwoPropTest instead; this is a slower, exact alternative
// exposed for callers that need it).
func FisherExact(a, b, c, d int) float64 {
	n := a + b + c + d
	row1 := a + b
	col1 := a + c
	pObserved := hypergeom(n, row1, col1, a)
	total := 0.0
	lo := max(0, row1+col1-n)
	hi := min(row1, col1)
	for k := lo; k <= hi; k++ {
		p := hypergeom(n, row1, col1, k)
		if p <= pObserved*(1+1e-9) {
			total += p
		}
	}
	if total > 1 {
		total = 1
	}
	return total
}

func hypergeom(n, row1, col1, k int) float64 {
	return math.Exp(lchoose(col1, k) + lchoose(n-col1, row1-k) - lchoose(n, row1))
}

func lchoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return lgamma(float64(n+1)) - lgamma(float64(k+1)) - lgamma(float64(n-k+1))
}
