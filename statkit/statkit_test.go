package statkit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/statkit"
)

func TestPropTestUnanimousIsSignificant(t *testing.T) {
	z := statkit.PropTest(10, 10)
	require.Greater(t, z, statkit.Z95)
}

func TestPropTestEvenSplitIsNotSignificant(t *testing.T) {
	z := statkit.PropTest(5, 10)
	require.False(t, statkit.Sig90(z))
}

func TestTwoPropTestDirectionality(t *testing.T) {
	// group with higher agree rate should read positive relative to the
	// complement with the lower rate.
	z := statkit.TwoPropTest(9, 10, 1, 10)
	require.Greater(t, z, 0.0)
	require.True(t, statkit.Sig90(z))
}

func TestSignificanceGates(t *testing.T) {
	require.True(t, statkit.Sig90(1.3))
	require.False(t, statkit.Sig90(1.0))
	require.True(t, statkit.Sig95(1.7))
	require.False(t, statkit.Sig95(1.5))
}

func TestZToPMonotone(t *testing.T) {
	require.Greater(t, statkit.ZToP(0), statkit.ZToP(2))
	require.InDelta(t, 1.0, statkit.ZToP(0), 1e-9)
}

func TestWeightedMeanAndStdDev(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ws := []float64{1, 1, 1, 1}
	require.InDelta(t, 2.5, statkit.WeightedMean(xs, ws), 1e-9)
	require.Greater(t, statkit.WeightedStdDev(xs, ws), 0.0)
}

func TestWilsonCI95Bounds(t *testing.T) {
	lo, hi := statkit.WilsonCI95(10, 10)
	require.GreaterOrEqual(t, lo, 0.0)
	require.LessOrEqual(t, hi, 1.0)
	require.Less(t, lo, hi)

	lo, hi = statkit.WilsonCI95(0, 0)
	require.Equal(t, 0.0, lo)
	require.Equal(t, 1.0, hi)
}

func TestBootstrapCI95Deterministic(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	seq := []float64{0.1, 0.5, 0.9, 0.2, 0.8}
	i := 0
	src := func() float64 {
		v := seq[i%len(seq)]
		i++
		return v
	}
	lo, hi := statkit.BootstrapCI95(xs, 100, src)
	require.LessOrEqual(t, lo, hi)
}

func TestBinomialTestUnanimousIsSignificant(t *testing.T) {
	p := statkit.BinomialTest(10, 10, 0.5)
	require.Less(t, p, 0.05)
}

func TestBinomialTestEvenSplitIsNotSignificant(t *testing.T) {
	p := statkit.BinomialTest(5, 10, 0.5)
	require.Greater(t, p, 0.05)
}

func TestFisherExactExtremeTableIsSignificant(t *testing.T) {
	p := statkit.FisherExact(10, 0, 0, 10)
	require.Less(t, p, 0.01)
}

func TestFisherExactBalancedTableIsNotSignificant(t *testing.T) {
	p := statkit.FisherExact(5, 5, 5, 5)
	require.Greater(t, p, 0.5)
}

func TestNormalCI95(t *testing.T) {
	lo, hi := statkit.NormalCI95(0, 1)
	require.True(t, math.Abs(lo+1.959964) < 1e-6)
	require.True(t, math.Abs(hi-1.959964) < 1e-6)
}
