// Package ingest defines the adapter-facing seams between a host
// application and the engine: where vote and moderation deltas come from,
// and where a rendered ResultDocument goes. No transport, database, or
// HTTP code lives here — only the interfaces a host implements, per
// SPEC_FULL.md §6's boundary.
package ingest

import (
	"context"

	"github.com/compdemocracy/polismath/conversation"
	"github.com/compdemocracy/polismath/matrix"
)

// VoteSource fetches every vote recorded for conversationID since the
// given unix-millis watermark.
type VoteSource interface {
	FetchVoteDelta(ctx context.Context, conversationID matrix.ID, since int64) (conversation.VoteDelta, error)
}

// ModerationSource fetches the current moderation state for a conversation
// (statement exclusions, meta flags, participant exclusions).
type ModerationSource interface {
	FetchModerationDelta(ctx context.Context, conversationID matrix.ID) (conversation.ModerationDelta, error)
}

// DocumentSink persists a result document. PutDocument receives the
// ResultDocument itself; which of its two views (ClojureView, SnakeView)
// gets written is up to the implementation.
type DocumentSink interface {
	PutDocument(ctx context.Context, conversationID matrix.ID, doc conversation.ResultDocument) error
}

// Sync pulls one round of vote and moderation deltas through src/mod,
// applies them to c, recomputes, and writes the resulting document to
// sink. It is the one piece of orchestration glue this package provides;
// everything else is left to the host, per the package's seam-only scope.
func Sync(ctx context.Context, c *conversation.Conversation, src VoteSource, mod ModerationSource, sink DocumentSink) error {
	votes, err := src.FetchVoteDelta(ctx, c.ConversationID, c.LastUpdated)
	if err != nil {
		return err
	}
	modDelta, err := mod.FetchModerationDelta(ctx, c.ConversationID)
	if err != nil {
		return err
	}
	c.UpdateVotes(votes, false)
	c.UpdateModeration(modDelta, false)
	c.Recompute()
	return sink.PutDocument(ctx, c.ConversationID, c.Summary())
}
