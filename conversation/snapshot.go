package conversation

import "github.com/compdemocracy/polismath/matrix"

// Snapshot is the serializable form of a Conversation's input state: raw
// votes and moderation flags, everything needed to rebuild RawMatrix and
// RatingMatrix and reproduce identical derived output via Recompute. It
// deliberately excludes PCA/cluster/repness output: those are always
// recomputed, never persisted and restored directly, per spec.md §9's
// idempotence property.
type Snapshot struct {
	ConversationID       matrix.ID
	LastUpdated          int64
	LastModTimestamp     int64
	Votes                []matrix.Triple
	ExcludedStatements   []matrix.ID
	FeaturedStatements   []matrix.ID
	MetaStatements       []matrix.ID
	ExcludedParticipants []matrix.ID
}

// ToSnapshot exports c's input state. Calling Restore(ToSnapshot(c)) then
// Recompute reproduces c's derived fields exactly, since the derivation is
// a pure function of rating_matrix and the moderation sets.
func (c *Conversation) ToSnapshot() Snapshot {
	return Snapshot{
		ConversationID:       c.ConversationID,
		LastUpdated:          c.LastUpdated,
		LastModTimestamp:     c.LastModTimestamp,
		Votes:                c.RawMatrix.Triples(),
		ExcludedStatements:   setKeys(c.ExcludedStatements),
		FeaturedStatements:   setKeys(c.FeaturedStatements),
		MetaStatements:       setKeys(c.MetaStatements),
		ExcludedParticipants: setKeys(c.ExcludedParticipants),
	}
}

// Restore rebuilds a Conversation's input state from a Snapshot. The
// result has no derived output populated; call Recompute to fill it in.
func Restore(s Snapshot, opts ...Option) *Conversation {
	c := New(s.ConversationID, opts...)
	c.LastUpdated = s.LastUpdated
	c.LastModTimestamp = s.LastModTimestamp
	c.RawMatrix.BatchUpdate(s.Votes)
	for _, tid := range s.ExcludedStatements {
		c.ExcludedStatements[tid] = true
	}
	for _, tid := range s.FeaturedStatements {
		c.FeaturedStatements[tid] = true
	}
	for _, tid := range s.MetaStatements {
		c.MetaStatements[tid] = true
	}
	for _, pid := range s.ExcludedParticipants {
		c.ExcludedParticipants[pid] = true
	}
	for _, t := range s.Votes {
		c.VoteStats.TotalVotes++
		c.VoteStats.ParticipantVoteCounts[t.Row]++
		c.VoteStats.StatementVoteCounts[t.Col]++
	}
	c.deriveRatingMatrix()
	return c
}

func setKeys(m map[matrix.ID]bool) []matrix.ID {
	out := make([]matrix.ID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
