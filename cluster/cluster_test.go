package cluster_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/cluster"
	"github.com/compdemocracy/polismath/config"
	"github.com/compdemocracy/polismath/matrix"
)

func twoBlockPoints() ([]matrix.ID, [][]float64) {
	ids := []matrix.ID{"p1", "p2", "p3", "p4", "p5", "p6"}
	points := [][]float64{
		{10, 10}, {10.1, 9.9}, {9.9, 10.1},
		{-10, -10}, {-10.1, -9.9}, {-9.9, -10.1},
	}
	return ids, points
}

func TestRunFindsTwoWellSeparatedGroups(t *testing.T) {
	ids, points := twoBlockPoints()
	p := config.Default()
	clusters := cluster.Run(ids, points, p, p.Seed)
	require.Len(t, clusters, 2)

	total := 0
	for _, c := range clusters {
		total += len(c.Members)
	}
	require.Equal(t, 6, total)
	// ids assigned by decreasing member count; equal-size clusters here,
	// so just check every member shows up exactly once across groups.
	seen := map[matrix.ID]bool{}
	for _, c := range clusters {
		for _, m := range c.Members {
			require.False(t, seen[m])
			seen[m] = true
		}
	}
	require.Len(t, seen, 6)
}

func TestRunIsDeterministic(t *testing.T) {
	ids, points := twoBlockPoints()
	p := config.Default()
	c1 := cluster.Run(ids, points, p, 99)
	c2 := cluster.Run(ids, points, p, 99)
	require.Equal(t, len(c1), len(c2))
	for i := range c1 {
		require.ElementsMatch(t, c1[i].Members, c2[i].Members)
	}
}

func TestRunEmptyBelowMinimumK(t *testing.T) {
	p := config.New(config.WithCandidateKs(2, 3, 4, 5))
	ids := []matrix.ID{"p1"}
	points := [][]float64{{0, 0}}
	clusters := cluster.Run(ids, points, p, p.Seed)
	require.Empty(t, clusters)
}

func TestClusterIDsOrderedByDecreasingSize(t *testing.T) {
	ids := []matrix.ID{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	points := [][]float64{
		{10, 10}, {10.1, 9.9}, {9.9, 10.1}, {10.2, 10.2}, {9.8, 9.8},
		{-10, -10}, {-10.1, -9.9},
	}
	p := config.Default()
	clusters := cluster.Run(ids, points, p, p.Seed)
	require.NotEmpty(t, clusters)
	for i := 1; i < len(clusters); i++ {
		require.GreaterOrEqual(t, len(clusters[i-1].Members), len(clusters[i].Members))
		require.Equal(t, i-1, clusters[i-1].ID)
	}
}
