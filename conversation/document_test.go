package conversation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/conversation"
	"github.com/compdemocracy/polismath/matrix"
)

func TestSummaryClojureViewUsesHyphenatedKeys(t *testing.T) {
	c := scenario1()
	view := c.Summary().ClojureView()
	require.Contains(t, view, "zid")
	require.Contains(t, view, "group-aware-consensus")
	require.Contains(t, view, "base-clusters")
	require.Contains(t, view, "math_tick")
	require.Contains(t, view, "tids")
	require.Contains(t, view, "user-vote-counts")
	require.Contains(t, view, "mod-in")
	require.Contains(t, view, "mod-out")
	require.Contains(t, view, "meta-tids")
	require.Contains(t, view, "proj")
	require.Contains(t, view, "votes-base")
	require.Contains(t, view, "group-votes")
	require.Contains(t, view, "subgroup-votes")
	require.Contains(t, view, "subgroup-repness")
	require.NotContains(t, view, "group_aware_consensus")
	require.NotContains(t, view, "math-tick")
}

func TestSummarySnakeViewRendersDecimalsForFloats(t *testing.T) {
	c := scenario1()
	view := c.Summary().SnakeView()
	consensus, ok := view["group_consensus"].(map[string]decimal.Decimal)
	require.True(t, ok)
	require.NotEmpty(t, consensus)
}

func TestFullDataMatchesSummaryShape(t *testing.T) {
	c := scenario1()
	require.Equal(t, c.Summary(), c.FullData())
}

func TestSummaryBeforeRecomputeIsEmptyNotPanicking(t *testing.T) {
	c := conversation.New("fresh")
	doc := c.Summary()
	require.Empty(t, doc.GroupClusters)
	require.Empty(t, doc.Repness)
}

func TestSummaryExposesModerationSetsAndVotesBase(t *testing.T) {
	c := scenario1()
	c.UpdateModeration(conversation.ModerationDelta{ModOutTids: []matrix.ID{"t3"}}, true)
	doc := c.Summary()

	require.Contains(t, doc.ModOutTids, matrix.ID("t3"))
	require.NotContains(t, doc.Tids, matrix.ID("t3"))
	require.Contains(t, doc.VotesBase, matrix.ID("t1"))
	require.NotContains(t, doc.VotesBase, matrix.ID("t3"))
	require.Equal(t, 6, doc.UserVoteCounts["p1"]+doc.UserVoteCounts["p2"]+doc.UserVoteCounts["p3"])
}
