package conversation

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/compdemocracy/polismath/cluster"
	"github.com/compdemocracy/polismath/groupviz"
	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/repness"
)

// ResultDocument is an immutable snapshot of a Conversation's derived
// output, assembled after Recompute. It exists so callers can render the
// two wire shapes spec.md §6 names without holding a reference into the
// live, mutable Conversation.
type ResultDocument struct {
	ConversationID   matrix.ID
	MathTick         int
	LastUpdated      int64
	LastModTimestamp int64

	NumParticipants int
	NumStatements   int

	Tids           []matrix.ID
	UserVoteCounts map[matrix.ID]int
	InConv         []matrix.ID

	ModOutTids []matrix.ID
	ModInTids  []matrix.ID
	MetaTids   []matrix.ID

	PCACenter     []float64
	PCAComponents [][]float64
	Extremity     map[matrix.ID]float64
	Projection    map[matrix.ID][]float64

	BaseClusters  []clusterView
	GroupClusters []clusterView

	VotesBase  map[matrix.ID]voteBaseView
	GroupVotes map[int]groupVotesView

	Repness           []repnessView
	ConsensusAgree    []consensusView
	ConsensusDisagree []consensusView
	CommentStats      map[matrix.ID]commentStatsView

	GroupAwareConsensus map[matrix.ID]float64
	CommentPriorities   map[matrix.ID]int
}

type clusterView struct {
	ID      int
	Center  []float64
	Members []matrix.ID
}

type repnessView struct {
	GroupID     int
	StatementID matrix.ID
	NAgree      int
	NDisagree   int
	NTotal      int
	R           float64
	Z           float64
	Side        string
}

type consensusView struct {
	StatementID matrix.ID
	Z           float64
	Side        string
}

// voteBaseView is the whole-conversation (votes-base) or per-group
// (group-votes) agree/disagree/total-observed tally for one statement.
type voteBaseView struct {
	Agree    int
	Disagree int
	Total    int
}

type groupVotesView struct {
	MemberCount int
	Votes       map[matrix.ID]voteBaseView
}

// commentStatsView is the consensus.comment-stats entry original_source's
// conversation.py computes per statement over the rating matrix.
type commentStatsView struct {
	NVotes     int
	NAgree     int
	NDisagree  int
	AgreeRatio float64
}

// Summary produces a ResultDocument from the conversation's current
// derived state. Call it after Recompute; calling it before the first
// recompute leaves the math-result fields (PCA, projection, clusters,
// repness, consensus, priorities) empty/zero, mirroring how a freshly
// opened conversation reports no math results yet. The vote tallies (tids,
// user-vote-counts, in-conv, votes-base, comment-stats) are read from the
// rating matrix either way.
func (c *Conversation) Summary() ResultDocument {
	tids := c.RatingMatrix.Cols()
	extremity := extremityByStatement(tids, c.PCA.CommentExtremity)
	userVoteCounts := userVoteCountsByParticipant(c.RatingMatrix)

	doc := ResultDocument{
		ConversationID:      c.ConversationID,
		MathTick:            c.MathTick,
		LastUpdated:         c.LastUpdated,
		LastModTimestamp:    c.LastModTimestamp,
		NumParticipants:     c.RatingMatrix.NumRows(),
		NumStatements:       c.RatingMatrix.NumCols(),
		Tids:                tids,
		UserVoteCounts:      userVoteCounts,
		InConv:              inConvParticipants(c.RatingMatrix.Rows(), userVoteCounts, len(tids)),
		ModOutTids:          setKeys(c.ExcludedStatements),
		ModInTids:           setKeys(c.FeaturedStatements),
		MetaTids:            setKeys(c.MetaStatements),
		PCACenter:           c.PCA.Center,
		PCAComponents:       c.PCA.Components,
		Extremity:           extremity,
		Projection:          c.Projection,
		BaseClusters:        viewClusters(c.BaseClusters),
		GroupClusters:       viewClusters(c.GroupClusters),
		VotesBase:           votesBaseByStatement(c.RatingMatrix),
		GroupVotes:          viewGroupVotes(c.GroupVotes),
		Repness:             viewRepness(c.Repness),
		ConsensusAgree:      viewConsensus(c.ConsensusAgree),
		ConsensusDisagree:   viewConsensus(c.ConsensusDisagree),
		CommentStats:        commentStatsByStatement(c.RatingMatrix),
		GroupAwareConsensus: c.GroupAwareConsensus,
		CommentPriorities:   c.CommentPriorities,
	}
	return doc
}

// userVoteCountsByParticipant tallies each participant's total observed
// (non-missing) votes over the rating matrix.
func userVoteCountsByParticipant(rating *matrix.Matrix) map[matrix.ID]int {
	out := make(map[matrix.ID]int, rating.NumRows())
	for _, pid := range rating.Rows() {
		n := 0
		for _, v := range rating.RowByName(pid) {
			if !math.IsNaN(v) {
				n++
			}
		}
		out[pid] = n
	}
	return out
}

// inConvParticipants returns the participant ids that clear the
// min(7, n_statements) vote-count floor spec.md's `in-conv` key names, in
// rating-matrix row order.
func inConvParticipants(rows []matrix.ID, userVoteCounts map[matrix.ID]int, numStatements int) []matrix.ID {
	floor := 7
	if numStatements < floor {
		floor = numStatements
	}
	var out []matrix.ID
	for _, pid := range rows {
		if userVoteCounts[pid] >= floor {
			out = append(out, pid)
		}
	}
	return out
}

// votesBaseByStatement tallies whole-conversation agree/disagree/total
// counts per statement over the rating matrix, matching
// original_source/delphi/polismath/conversation/conversation.py's
// votes-base computation.
func votesBaseByStatement(rating *matrix.Matrix) map[matrix.ID]voteBaseView {
	out := make(map[matrix.ID]voteBaseView, rating.NumCols())
	for _, sid := range rating.Cols() {
		out[sid] = tallyColumn(rating.ColByName(sid))
	}
	return out
}

// commentStatsByStatement is votesBaseByStatement's data reshaped into the
// consensus.comment-stats view, which additionally carries the agree ratio.
func commentStatsByStatement(rating *matrix.Matrix) map[matrix.ID]commentStatsView {
	out := make(map[matrix.ID]commentStatsView, rating.NumCols())
	for _, sid := range rating.Cols() {
		v := tallyColumn(rating.ColByName(sid))
		ratio := 0.0
		if v.Total > 0 {
			ratio = float64(v.Agree) / float64(v.Total)
		}
		out[sid] = commentStatsView{NVotes: v.Total, NAgree: v.Agree, NDisagree: v.Disagree, AgreeRatio: ratio}
	}
	return out
}

func tallyColumn(col []float64) voteBaseView {
	var v voteBaseView
	for _, x := range col {
		if math.IsNaN(x) {
			continue
		}
		v.Total++
		switch {
		case x > 0:
			v.Agree++
		case x < 0:
			v.Disagree++
		}
	}
	return v
}

func viewGroupVotes(gv map[int]groupviz.GroupVoteSummary) map[int]groupVotesView {
	out := make(map[int]groupVotesView, len(gv))
	for gid, summary := range gv {
		votes := make(map[matrix.ID]voteBaseView, len(summary.Votes))
		for sid, c := range summary.Votes {
			votes[sid] = voteBaseView{Agree: c.Agree, Disagree: c.Disagree, Total: c.Total}
		}
		out[gid] = groupVotesView{MemberCount: summary.MemberCount, Votes: votes}
	}
	return out
}

// FullData is an alias for Summary kept distinct at the call-site level:
// spec.md §6 names both a lightweight "summary" view and a "full data"
// view, but this engine's document fields are cheap enough that both
// return the same ResultDocument. Heavier per-participant vote-level data
// lives on Conversation itself (ParticipantInfo, VoteStats), not on the
// document, since it is never written to wide-column storage.
func (c *Conversation) FullData() ResultDocument { return c.Summary() }

func viewClusters(cs []cluster.Cluster) []clusterView {
	out := make([]clusterView, len(cs))
	for i, c := range cs {
		out[i] = clusterView{ID: c.ID, Center: c.Center, Members: c.Members}
	}
	return out
}

func viewRepness(rs []repness.Record) []repnessView {
	out := make([]repnessView, len(rs))
	for i, r := range rs {
		out[i] = repnessView{
			GroupID: r.GroupID, StatementID: r.StatementID,
			NAgree: r.NAgree, NDisagree: r.NDisagree, NTotal: r.NTotal,
			R: r.R, Z: r.Z, Side: string(r.Side),
		}
	}
	return out
}

func viewConsensus(cs []repness.ConsensusRecord) []consensusView {
	out := make([]consensusView, len(cs))
	for i, c := range cs {
		out[i] = consensusView{StatementID: c.StatementID, Z: c.Z, Side: string(c.Side)}
	}
	return out
}

// idKey renders a matrix.ID the way spec.md's Clojure-flavored wire shape
// expects: as an integer when the name parses as one (the common case for
// participant/statement ids minted by the reference platform), falling
// back to the raw string otherwise.
func idKey(id matrix.ID) any {
	if n, ok := id.AsInt(); ok {
		return n
	}
	return string(id)
}

// ClojureView renders the document with hyphenated keys and integer-
// coerced ids, matching the original platform's in-memory/API shape. Every
// top-level key spec.md §6 lists is present, including `math_tick` which
// deliberately keeps its underscore unlike every other key here.
func (d ResultDocument) ClojureView() map[string]any {
	return map[string]any{
		"zid":                   idKey(d.ConversationID),
		"lastVoteTimestamp":     d.LastUpdated,
		"lastModTimestamp":      d.LastModTimestamp,
		"n":                     d.NumParticipants,
		"n-cmts":                d.NumStatements,
		"tids":                  idKeyList(d.Tids),
		"user-vote-counts":      clojureIntIDMap(d.UserVoteCounts),
		"in-conv":               idKeyList(d.InConv),
		"mod-in":                idKeyList(d.ModInTids),
		"mod-out":               idKeyList(d.ModOutTids),
		"meta-tids":             idKeyList(d.MetaTids),
		"pca":                   map[string]any{"center": d.PCACenter, "comps": d.PCAComponents, "comment-extremity": clojureFloatMap(d.Extremity)},
		"base-clusters":         clojureClusterList(d.BaseClusters),
		"group-clusters":        clojureClusterList(d.GroupClusters),
		"proj":                  clojureProjectionMap(d.Projection),
		"repness":               map[string]any{"comment-repness": clojureRepnessList(d.Repness)},
		"votes-base":            clojureVoteBaseMap(d.VotesBase),
		"group-votes":           clojureGroupVotesMap(d.GroupVotes),
		"subgroup-votes":        map[string]any{},
		"subgroup-repness":      map[string]any{},
		"group-aware-consensus": clojureFloatMap(d.GroupAwareConsensus),
		"consensus": map[string]any{
			"agree":         clojureConsensusList(d.ConsensusAgree),
			"disagree":      clojureConsensusList(d.ConsensusDisagree),
			"comment-stats": clojureCommentStatsMap(d.CommentStats),
		},
		"priorities": clojureIntMap(d.CommentPriorities),
		"math_tick":  d.MathTick,
	}
}

// SnakeView renders the document with snake_case keys and
// shopspring/decimal values for every float, for the wide-column
// persistence path named in SPEC_FULL.md §6.
func (d ResultDocument) SnakeView() map[string]any {
	return map[string]any{
		"zid":                   idKey(d.ConversationID),
		"last_vote_timestamp":   d.LastUpdated,
		"last_mod_timestamp":    d.LastModTimestamp,
		"n_participants":        d.NumParticipants,
		"n_statements":          d.NumStatements,
		"comment_ids":           idKeyList(d.Tids),
		"user_vote_counts":      clojureIntIDMap(d.UserVoteCounts),
		"in_conv":               idKeyList(d.InConv),
		"mod_in":                idKeyList(d.ModInTids),
		"moderated_out":         idKeyList(d.ModOutTids),
		"meta_tids":             idKeyList(d.MetaTids),
		"pca":                   map[string]any{"center": decimalList(d.PCACenter), "components": decimalMatrix(d.PCAComponents)},
		"base_clusters":         snakeClusterList(d.BaseClusters),
		"group_clusters":        snakeClusterList(d.GroupClusters),
		"proj":                  snakeProjectionMap(d.Projection),
		"repness":               map[string]any{"comment_repness": snakeRepnessList(d.Repness)},
		"votes_base":            snakeVoteBaseMap(d.VotesBase),
		"group_votes":           snakeGroupVotesMap(d.GroupVotes),
		"subgroup_votes":        map[string]any{},
		"subgroup_repness":      map[string]any{},
		"group_consensus":       snakeDecimalMap(d.GroupAwareConsensus),
		"consensus_agree":       snakeConsensusList(d.ConsensusAgree),
		"consensus_disagree":    snakeConsensusList(d.ConsensusDisagree),
		"comment_stats":         snakeCommentStatsMap(d.CommentStats),
		"comment_priorities":    clojureIntMap(d.CommentPriorities),
		"math_tick":             d.MathTick,
	}
}

// idKeyList renders a list of statement/participant ids the Clojure-style
// way: integer-coerced where the name parses as one.
func idKeyList(ids []matrix.ID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = idKey(id)
	}
	return out
}

func clojureIntIDMap(m map[matrix.ID]int) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func clojureProjectionMap(m map[matrix.ID][]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func snakeProjectionMap(m map[matrix.ID][]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = decimalList(v)
	}
	return out
}

func decimalList(xs []float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(xs))
	for i, x := range xs {
		out[i] = decimal.NewFromFloat(x)
	}
	return out
}

func decimalMatrix(rows [][]float64) [][]decimal.Decimal {
	out := make([][]decimal.Decimal, len(rows))
	for i, r := range rows {
		out[i] = decimalList(r)
	}
	return out
}

func clojureVoteBaseMap(m map[matrix.ID]voteBaseView) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = map[string]any{"A": v.Agree, "D": v.Disagree, "S": v.Total}
	}
	return out
}

func snakeVoteBaseMap(m map[matrix.ID]voteBaseView) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = map[string]any{"agree": v.Agree, "disagree": v.Disagree, "total": v.Total}
	}
	return out
}

func clojureGroupVotesMap(m map[int]groupVotesView) map[string]any {
	out := make(map[string]any, len(m))
	for gid, g := range m {
		out[strconv.Itoa(gid)] = map[string]any{"n-members": g.MemberCount, "votes": clojureVoteBaseMap(g.Votes)}
	}
	return out
}

func snakeGroupVotesMap(m map[int]groupVotesView) map[string]any {
	out := make(map[string]any, len(m))
	for gid, g := range m {
		out[strconv.Itoa(gid)] = map[string]any{"member_count": g.MemberCount, "votes": snakeVoteBaseMap(g.Votes)}
	}
	return out
}

func clojureCommentStatsMap(m map[matrix.ID]commentStatsView) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = map[string]any{
			"n-votes": v.NVotes, "n-agree": v.NAgree, "n-disagree": v.NDisagree, "agree-ratio": v.AgreeRatio,
		}
	}
	return out
}

func snakeCommentStatsMap(m map[matrix.ID]commentStatsView) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[string(k)] = map[string]any{
			"n_votes": v.NVotes, "n_agree": v.NAgree, "n_disagree": v.NDisagree,
			"agree_ratio": decimal.NewFromFloat(v.AgreeRatio),
		}
	}
	return out
}

func clojureClusterList(cs []clusterView) []map[string]any {
	out := make([]map[string]any, len(cs))
	for i, c := range cs {
		members := make([]any, len(c.Members))
		for j, m := range c.Members {
			members[j] = idKey(m)
		}
		out[i] = map[string]any{"id": c.ID, "center": c.Center, "members": members}
	}
	return out
}

func snakeClusterList(cs []clusterView) []map[string]any {
	out := make([]map[string]any, len(cs))
	for i, c := range cs {
		center := make([]decimal.Decimal, len(c.Center))
		for j, v := range c.Center {
			center[j] = decimal.NewFromFloat(v)
		}
		members := make([]any, len(c.Members))
		for j, m := range c.Members {
			members[j] = idKey(m)
		}
		out[i] = map[string]any{"id": c.ID, "center": center, "members": members}
	}
	return out
}

func clojureRepnessList(rs []repnessView) []map[string]any {
	out := make([]map[string]any, len(rs))
	for i, r := range rs {
		out[i] = map[string]any{
			"group-id": r.GroupID, "tid": idKey(r.StatementID),
			"n-agree": r.NAgree, "n-disagree": r.NDisagree, "n-total": r.NTotal,
			"repness": r.R, "repness-test": r.Z, "repful-for": r.Side,
		}
	}
	return out
}

func snakeRepnessList(rs []repnessView) []map[string]any {
	out := make([]map[string]any, len(rs))
	for i, r := range rs {
		out[i] = map[string]any{
			"group_id": r.GroupID, "statement_id": idKey(r.StatementID),
			"n_agree": r.NAgree, "n_disagree": r.NDisagree, "n_total": r.NTotal,
			"repness": decimal.NewFromFloat(r.R), "repness_test": decimal.NewFromFloat(r.Z),
			"repful_for": r.Side,
		}
	}
	return out
}

func clojureConsensusList(cs []consensusView) []map[string]any {
	out := make([]map[string]any, len(cs))
	for i, c := range cs {
		out[i] = map[string]any{"tid": idKey(c.StatementID), "z": c.Z, "repful-for": c.Side}
	}
	return out
}

func snakeConsensusList(cs []consensusView) []map[string]any {
	out := make([]map[string]any, len(cs))
	for i, c := range cs {
		out[i] = map[string]any{"statement_id": idKey(c.StatementID), "z": decimal.NewFromFloat(c.Z), "repful_for": c.Side}
	}
	return out
}

func clojureFloatMap(m map[matrix.ID]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func snakeDecimalMap(m map[matrix.ID]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[string(k)] = decimal.NewFromFloat(v)
	}
	return out
}

func clojureIntMap(m map[matrix.ID]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
