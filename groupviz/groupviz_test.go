package groupviz_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/config"
	"github.com/compdemocracy/polismath/groupviz"
	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/repness"
)

func TestGroupAwareConsensusScenario1(t *testing.T) {
	// group0: 3 agree on t1; group1: 3 disagree on t1.
	groupVotes := map[int]groupviz.GroupVoteSummary{
		0: {MemberCount: 3, Votes: map[matrix.ID]repness.GroupCounts{"t1": {Agree: 3, Disagree: 0, Total: 3}}},
		1: {MemberCount: 3, Votes: map[matrix.ID]repness.GroupCounts{"t1": {Agree: 0, Disagree: 3, Total: 3}}},
	}
	out := groupviz.GroupAwareConsensus([]matrix.ID{"t1"}, groupVotes)
	require.InDelta(t, 0.16, out["t1"], 1e-9) // (3+1)/(3+2) * (0+1)/(3+2) = 0.8*0.2
}

func TestGroupAwareConsensusOmitsStatementsWithNoData(t *testing.T) {
	groupVotes := map[int]groupviz.GroupVoteSummary{
		0: {MemberCount: 3, Votes: map[matrix.ID]repness.GroupCounts{}},
	}
	out := groupviz.GroupAwareConsensus([]matrix.ID{"t1"}, groupVotes)
	_, ok := out["t1"]
	require.False(t, ok)
}

func TestGroupAwareConsensusInOpenRange(t *testing.T) {
	groupVotes := map[int]groupviz.GroupVoteSummary{
		0: {MemberCount: 10, Votes: map[matrix.ID]repness.GroupCounts{"t1": {Agree: 10, Disagree: 0, Total: 10}}},
	}
	out := groupviz.GroupAwareConsensus([]matrix.ID{"t1"}, groupVotes)
	require.Greater(t, out["t1"], 0.0)
	require.Less(t, out["t1"], 1.0)
}

func TestPriorityNewCommentFloor(t *testing.T) {
	cfg := config.Default()
	p := groupviz.Priority(false, 2, 1, 6, 0.5, cfg) // S=6 < 7
	require.Equal(t, 49, p)
}

func TestPriorityMetaIsFixed(t *testing.T) {
	cfg := config.Default()
	p := groupviz.Priority(true, 100, 0, 100, 3.0, cfg)
	require.Equal(t, 49, p)
}

func TestPriorityNonNegative(t *testing.T) {
	cfg := config.Default()
	p := groupviz.Priority(false, 0, 20, 20, 0.1, cfg)
	require.GreaterOrEqual(t, p, 0)
}

func TestPriorityPassHeavyStatementIsBoundedAndNonNegative(t *testing.T) {
	cfg := config.Default()
	// 20 passes, 0 agree/disagree, S=20.
	p := groupviz.Priority(false, 0, 20, 20, 0.2, cfg)
	require.GreaterOrEqual(t, p, 0)
	require.Less(t, p, 1000)
}

func TestPrioritiesAggregatesAcrossGroups(t *testing.T) {
	cfg := config.Default()
	groupVotes := map[int]groupviz.GroupVoteSummary{
		0: {MemberCount: 3, Votes: map[matrix.ID]repness.GroupCounts{"t1": {Agree: 3, Disagree: 0, Total: 3}}},
		1: {MemberCount: 3, Votes: map[matrix.ID]repness.GroupCounts{"t1": {Agree: 0, Disagree: 3, Total: 3}}},
	}
	extremity := map[matrix.ID]float64{"t1": 1.0}
	out := groupviz.Priorities([]matrix.ID{"t1"}, map[matrix.ID]bool{}, groupVotes, extremity, cfg)
	// S=6 total observed across both groups, below the floor of 7.
	require.Equal(t, 49, out["t1"])
}
