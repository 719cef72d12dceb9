package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/conversation"
	"github.com/compdemocracy/polismath/matrix"
)

func TestSnapshotRestoreRoundTripsRatingMatrix(t *testing.T) {
	c := scenario1()
	snap := c.ToSnapshot()

	restored := conversation.Restore(snap)
	require.ElementsMatch(t, c.RawMatrix.Rows(), restored.RawMatrix.Rows())
	require.ElementsMatch(t, c.RawMatrix.Cols(), restored.RawMatrix.Cols())
	for _, pid := range c.RawMatrix.Rows() {
		for _, sid := range c.RawMatrix.Cols() {
			require.Equal(t, c.RawMatrix.At(pid, sid), restored.RawMatrix.At(pid, sid))
		}
	}
}

func TestSnapshotRestorePreservesModerationAndRecomputesIdentically(t *testing.T) {
	c := scenario1()
	c.UpdateModeration(conversation.ModerationDelta{ModOutTids: []matrix.ID{"t3"}}, true)

	snap := c.ToSnapshot()
	restored := conversation.Restore(snap)
	restored.Recompute()

	require.False(t, restored.RatingMatrix.HasCol("t3"))
	require.Equal(t, len(c.GroupAwareConsensus), len(restored.GroupAwareConsensus))
	for sid, v := range c.GroupAwareConsensus {
		require.InDelta(t, v, restored.GroupAwareConsensus[sid], 1e-9)
	}
}
