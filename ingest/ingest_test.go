package ingest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/conversation"
	"github.com/compdemocracy/polismath/ingest"
	"github.com/compdemocracy/polismath/matrix"
)

type fakeVoteSource struct{ delta conversation.VoteDelta }

func (f fakeVoteSource) FetchVoteDelta(context.Context, matrix.ID, int64) (conversation.VoteDelta, error) {
	return f.delta, nil
}

type fakeModerationSource struct{ delta conversation.ModerationDelta }

func (f fakeModerationSource) FetchModerationDelta(context.Context, matrix.ID) (conversation.ModerationDelta, error) {
	return f.delta, nil
}

type capturingSink struct {
	got conversation.ResultDocument
}

func (s *capturingSink) PutDocument(_ context.Context, _ matrix.ID, doc conversation.ResultDocument) error {
	s.got = doc
	return nil
}

func TestSyncAppliesDeltasAndWritesDocument(t *testing.T) {
	c := conversation.New("conv1")
	src := fakeVoteSource{delta: conversation.VoteDelta{Votes: []conversation.VoteRecord{
		{PID: "p1", TID: "t1", Vote: "agree"},
		{PID: "p2", TID: "t1", Vote: "disagree"},
	}}}
	mod := fakeModerationSource{}
	sink := &capturingSink{}

	err := ingest.Sync(context.Background(), c, src, mod, sink)
	require.NoError(t, err)
	require.Equal(t, 2, sink.got.NumParticipants)
	require.Equal(t, 1, sink.got.NumStatements)
}
