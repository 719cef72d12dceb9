// Package conversation implements the pipeline orchestrator (spec.md's
// component G): it owns all mutable state for one conversation, applies
// vote and moderation deltas, drives PCA -> clustering -> representativeness
// -> consensus/priority in order, and assembles the result document.
package conversation

import (
	"time"

	"github.com/compdemocracy/polismath/cluster"
	"github.com/compdemocracy/polismath/config"
	"github.com/compdemocracy/polismath/groupviz"
	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/pca"
	"github.com/compdemocracy/polismath/repness"
	"github.com/compdemocracy/polismath/telemetry"
	"github.com/compdemocracy/polismath/vote"
)

// ParticipantInfo summarizes one participant's voting activity and, once
// clustering has run, their assigned group and correlation to every
// group's aggregate vote profile.
type ParticipantInfo struct {
	NAgree            int
	NDisagree         int
	NPass             int
	NVotes            int
	Group             int
	HasGroup          bool
	GroupCorrelations map[int]float64
}

// VoteStats is the aggregate and per-entity vote-count summary.
type VoteStats struct {
	TotalVotes            int
	InvalidVotes          int
	ParticipantVoteCounts map[matrix.ID]int
	StatementVoteCounts   map[matrix.ID]int
}

// VoteRecord is one incoming vote in a delta.
type VoteRecord struct {
	PID     matrix.ID
	TID     matrix.ID
	Vote    any // coerced via vote.Coerce
	Created int64
}

// VoteDelta is the `{votes, lastVoteTimestamp}` input envelope.
type VoteDelta struct {
	Votes             []VoteRecord
	LastVoteTimestamp int64
}

// ModerationDelta is the `{mod_out_tids, mod_in_tids, meta_tids,
// mod_out_ptpts}` input envelope.
type ModerationDelta struct {
	ModOutTids  []matrix.ID
	ModInTids   []matrix.ID
	MetaTids    []matrix.ID
	ModOutPtpts []matrix.ID
}

// Conversation holds every field spec.md §3 names. The zero value is not
// usable; construct with New.
type Conversation struct {
	ConversationID    matrix.ID
	LastUpdated       int64
	LastModTimestamp  int64
	MathTick          int

	RawMatrix    *matrix.Matrix
	RatingMatrix *matrix.Matrix

	ExcludedStatements   map[matrix.ID]bool
	FeaturedStatements   map[matrix.ID]bool
	MetaStatements       map[matrix.ID]bool
	ExcludedParticipants map[matrix.ID]bool

	PCA        pca.Result
	Projection map[matrix.ID][]float64

	BaseClusters  []cluster.Cluster
	GroupClusters []cluster.Cluster

	Repness           []repness.Record
	ConsensusAgree    []repness.ConsensusRecord
	ConsensusDisagree []repness.ConsensusRecord

	ParticipantInfo map[matrix.ID]ParticipantInfo
	VoteStats       VoteStats

	GroupVotes           map[int]groupviz.GroupVoteSummary
	GroupAwareConsensus  map[matrix.ID]float64
	CommentPriorities    map[matrix.ID]int

	cfg     config.Parameters
	logger  *telemetry.Logger
	metrics *telemetry.Metrics
}

// Option configures a Conversation at construction time.
type Option func(*Conversation)

// WithParameters overrides the pipeline's default config.Parameters.
func WithParameters(p config.Parameters) Option {
	return func(c *Conversation) { c.cfg = p }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

// WithMetrics attaches a Prometheus-backed Metrics instance. Without this
// option instrumentation is a no-op.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Conversation) { c.metrics = m }
}

// New creates an empty conversation ready to accept vote/moderation deltas.
func New(id matrix.ID, opts ...Option) *Conversation {
	c := &Conversation{
		ConversationID:       id,
		RawMatrix:            matrix.New(),
		RatingMatrix:         matrix.New(),
		ExcludedStatements:   map[matrix.ID]bool{},
		FeaturedStatements:   map[matrix.ID]bool{},
		MetaStatements:       map[matrix.ID]bool{},
		ExcludedParticipants: map[matrix.ID]bool{},
		ParticipantInfo:      map[matrix.ID]ParticipantInfo{},
		VoteStats: VoteStats{
			ParticipantVoteCounts: map[matrix.ID]int{},
			StatementVoteCounts:   map[matrix.ID]int{},
		},
		GroupAwareConsensus: map[matrix.ID]float64{},
		CommentPriorities:   map[matrix.ID]int{},
		cfg:                 config.Default(),
		logger:              telemetry.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone returns a deep-enough copy that mutating the clone never affects
// the original's matrices or moderation sets. Per spec.md §9, copy-on-write
// is not required; an explicit clone suffices.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.RawMatrix = c.RawMatrix.Clone()
	clone.RatingMatrix = c.RatingMatrix.Clone()
	clone.ExcludedStatements = cloneSet(c.ExcludedStatements)
	clone.FeaturedStatements = cloneSet(c.FeaturedStatements)
	clone.MetaStatements = cloneSet(c.MetaStatements)
	clone.ExcludedParticipants = cloneSet(c.ExcludedParticipants)
	clone.ParticipantInfo = make(map[matrix.ID]ParticipantInfo, len(c.ParticipantInfo))
	for k, v := range c.ParticipantInfo {
		clone.ParticipantInfo[k] = v
	}
	clone.GroupAwareConsensus = make(map[matrix.ID]float64, len(c.GroupAwareConsensus))
	for k, v := range c.GroupAwareConsensus {
		clone.GroupAwareConsensus[k] = v
	}
	clone.CommentPriorities = make(map[matrix.ID]int, len(c.CommentPriorities))
	for k, v := range c.CommentPriorities {
		clone.CommentPriorities[k] = v
	}
	return &clone
}

func cloneSet(m map[matrix.ID]bool) map[matrix.ID]bool {
	out := make(map[matrix.ID]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UpdateVotes validates and normalizes delta, folds it into RawMatrix,
// re-derives RatingMatrix from the current moderation sets, and updates
// vote_stats. Malformed records (vote.Coerce rejects) are counted as
// InputValidation failures and skipped, never raised. If recompute is
// true, runs the full pipeline afterward.
func (c *Conversation) UpdateVotes(delta VoteDelta, recompute bool) {
	triples := make([]matrix.Triple, 0, len(delta.Votes))
	rejected := 0
	for _, rec := range delta.Votes {
		v, ok := vote.Coerce(rec.Vote)
		if !ok {
			rejected++
			continue
		}
		triples = append(triples, matrix.Triple{Row: rec.PID, Col: rec.TID, Value: v.Numeric()})
	}
	c.RawMatrix.BatchUpdate(triples)
	c.VoteStats.TotalVotes += len(triples)
	c.VoteStats.InvalidVotes += rejected
	for _, t := range triples {
		c.VoteStats.ParticipantVoteCounts[t.Row]++
		c.VoteStats.StatementVoteCounts[t.Col]++
	}
	if delta.LastVoteTimestamp > c.LastUpdated {
		c.LastUpdated = delta.LastVoteTimestamp
	}
	c.metrics.IncRejectedVotes(rejected)
	c.deriveRatingMatrix()

	if recompute {
		c.Recompute()
	}
}

// UpdateModeration applies a moderation delta to the exclusion/meta/featured
// sets, re-derives RatingMatrix, and optionally recomputes. Featuring a
// statement (ModInTids) also clears it from ExcludedStatements: a host
// cannot feature a statement it has simultaneously excluded.
func (c *Conversation) UpdateModeration(delta ModerationDelta, recompute bool) {
	for _, tid := range delta.ModOutTids {
		c.ExcludedStatements[tid] = true
	}
	for _, tid := range delta.ModInTids {
		delete(c.ExcludedStatements, tid)
		c.FeaturedStatements[tid] = true
	}
	for _, tid := range delta.MetaTids {
		c.MetaStatements[tid] = true
	}
	for _, pid := range delta.ModOutPtpts {
		c.ExcludedParticipants[pid] = true
	}
	c.LastModTimestamp = nowMillis()
	c.deriveRatingMatrix()

	if recompute {
		c.Recompute()
	}
}

// deriveRatingMatrix rebuilds RatingMatrix as RawMatrix with moderated-out
// rows/columns removed, per spec.md §3's rating_matrix invariant, then
// refreshes each participant's vote tally against that post-moderation
// matrix: original_source/delphi/polismath/conversation/conversation.py
// computes participant_info's vote counts from self.rating_mat, not the
// raw history, so a moderated-out statement's votes drop out of them too.
func (c *Conversation) deriveRatingMatrix() {
	keepRows := make([]matrix.ID, 0, c.RawMatrix.NumRows())
	for _, r := range c.RawMatrix.Rows() {
		if !c.ExcludedParticipants[r] {
			keepRows = append(keepRows, r)
		}
	}
	keepCols := make([]matrix.ID, 0, c.RawMatrix.NumCols())
	for _, col := range c.RawMatrix.Cols() {
		if !c.ExcludedStatements[col] {
			keepCols = append(keepCols, col)
		}
	}
	c.RatingMatrix = c.RawMatrix.RowSubset(keepRows).ColSubset(keepCols)
	c.metrics.SetMatrixShape(len(keepRows), len(keepCols))
	c.refreshParticipantVoteCounts()
}

func (c *Conversation) refreshParticipantVoteCounts() {
	for _, pid := range c.RatingMatrix.Rows() {
		row := c.RatingMatrix.RowByName(pid)
		info := c.ParticipantInfo[pid]
		info.NAgree, info.NDisagree, info.NPass, info.NVotes = 0, 0, 0, 0
		for _, v := range row {
			switch {
			case v > 0:
				info.NAgree++
				info.NVotes++
			case v < 0:
				info.NDisagree++
				info.NVotes++
			case v == 0:
				info.NPass++
				info.NVotes++
			}
		}
		c.ParticipantInfo[pid] = info
	}
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// groupMembership returns group id -> member ids from GroupClusters, and a
// flat participant -> group id index.
func (c *Conversation) groupMembership() (map[int][]matrix.ID, map[matrix.ID]int) {
	groups := make(map[int][]matrix.ID, len(c.GroupClusters))
	index := make(map[matrix.ID]int, len(c.RatingMatrix.Rows()))
	for _, cl := range c.GroupClusters {
		groups[cl.ID] = cl.Members
		for _, m := range cl.Members {
			index[m] = cl.ID
		}
	}
	return groups, index
}

// sortedStatementIDs returns RatingMatrix's column order (already
// insertion-ordered, but named for readability at call sites).
func (c *Conversation) sortedStatementIDs() []matrix.ID {
	return c.RatingMatrix.Cols()
}
