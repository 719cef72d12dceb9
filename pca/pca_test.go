package pca_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/compdemocracy/polismath/config"
	"github.com/compdemocracy/polismath/pca"
)

func TestEmptyInputBelowMinimum(t *testing.T) {
	p := config.Default()
	data := mat.NewDense(1, 5, nil)
	r := pca.Fit(data, p, p.Seed)
	for _, v := range r.Center {
		require.Equal(t, 0.0, v)
	}
	for _, row := range r.Projection {
		for _, v := range row {
			require.Equal(t, 0.0, v)
		}
	}
}

func TestFitShapesAndNonNegativeExtremity(t *testing.T) {
	p := config.New(config.WithComponents(2))
	raw := [][]float64{
		{1, 1, -1},
		{1, 1, -1},
		{1, 1, -1},
		{-1, -1, 1},
		{-1, -1, 1},
		{-1, -1, 1},
	}
	data := denseFrom(raw)
	r := pca.Fit(data, p, p.Seed)

	require.Len(t, r.Center, 3)
	require.Len(t, r.Components, 2)
	for _, comp := range r.Components {
		require.Len(t, comp, 3)
	}
	require.Len(t, r.CommentExtremity, 3)
	for _, e := range r.CommentExtremity {
		require.GreaterOrEqual(t, e, 0.0)
	}
	require.Len(t, r.Projection, 6)

	// the two blocks of participants are perfectly anti-correlated, so
	// their projections onto PC1 must be separated (sign-agnostic: just
	// check the two group centroids differ substantially).
	g1 := mean(r.Projection[0][0], r.Projection[1][0], r.Projection[2][0])
	g2 := mean(r.Projection[3][0], r.Projection[4][0], r.Projection[5][0])
	require.Greater(t, math.Abs(g1-g2), 0.5)
}

func TestFitIsDeterministicGivenSeed(t *testing.T) {
	p := config.New(config.WithComponents(2), config.WithSampleThreshold(4, 4))
	raw := make([][]float64, 10)
	for i := range raw {
		sign := 1.0
		if i%2 == 0 {
			sign = -1.0
		}
		raw[i] = []float64{sign, sign * 0.5, -sign}
	}
	data := denseFrom(raw)

	r1 := pca.Fit(data, p, 123)
	r2 := pca.Fit(data, p, 123)
	require.Equal(t, r1.Center, r2.Center)
	require.Equal(t, r1.CommentExtremity, r2.CommentExtremity)
}

func TestMissingTreatedAsZeroForProjection(t *testing.T) {
	p := config.New(config.WithComponents(1))
	raw := [][]float64{
		{1, math.NaN()},
		{1, math.NaN()},
		{-1, 1},
	}
	data := denseFrom(raw)
	r := pca.Fit(data, p, p.Seed)
	require.Len(t, r.Projection, 3)

	// row 0 is {1, NaN}: its projection is components . ({1, 0} - center)
	want := r.Components[0][0]*(1-r.Center[0]) + r.Components[0][1]*(0-r.Center[1])
	require.InDelta(t, want, r.Projection[0][0], 1e-9)
}

func denseFrom(rows [][]float64) *mat.Dense {
	r := len(rows)
	c := len(rows[0])
	d := mat.NewDense(r, c, nil)
	for i := range rows {
		for j := range rows[i] {
			d.Set(i, j, rows[i][j])
		}
	}
	return d
}

func mean(xs ...float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
