// Package groupviz computes the group-aware consensus score and the
// per-statement routing priority, per spec.md §4.F.
package groupviz

import (
	"math"

	"github.com/compdemocracy/polismath/config"
	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/repness"
)

// GroupVoteSummary is spec.md's group_votes[gid]: member count plus the
// per-statement {A, D, S} tally.
type GroupVoteSummary struct {
	MemberCount int
	Votes       map[matrix.ID]repness.GroupCounts
}

// BuildGroupVotes assembles the group_votes document field from the shared
// repness.GroupCounts table.
func BuildGroupVotes(groups map[int][]matrix.ID, gv map[int]map[matrix.ID]repness.GroupCounts) map[int]GroupVoteSummary {
	out := make(map[int]GroupVoteSummary, len(groups))
	for gid, members := range groups {
		out[gid] = GroupVoteSummary{MemberCount: len(members), Votes: gv[gid]}
	}
	return out
}

// GroupAwareConsensus computes, per statement, the product across groups of
// each group's Laplace-smoothed agree probability. Statements with no data
// in any group are omitted from the result, per spec.md §4.F.
func GroupAwareConsensus(statements []matrix.ID, groupVotes map[int]GroupVoteSummary) map[matrix.ID]float64 {
	out := make(map[matrix.ID]float64)
	for _, sid := range statements {
		product := 1.0
		contributed := false
		for _, g := range groupVotes {
			c, ok := g.Votes[sid]
			if !ok || c.Total == 0 {
				continue
			}
			contributed = true
			product *= float64(c.Agree+1) / float64(c.Total+2)
		}
		if contributed {
			out[sid] = product
		}
	}
	return out
}

// Priority computes the per-statement routing priority for one statement
// given whether it's flagged meta, its agree/pass/total-observed counts,
// and its PCA extremity.
//
//	importance = (1 - (P+1)/(S+2)) * (E+1) * ((A+1)/(S+2))
//	priority   = NewCommentPriority           if is_meta or S < floor
//	           = (importance * (1+8*2^(-S/5)))^2   otherwise
func Priority(isMeta bool, a, p, s int, extremity float64, cfg config.Parameters) int {
	if isMeta || s < cfg.NewCommentVoteFloor {
		return cfg.NewCommentPriority
	}
	engagement := 1 - float64(p+1)/float64(s+2)
	agreement := float64(a+1) / float64(s+2)
	importance := engagement * (extremity + 1) * agreement
	scaled := importance * (1 + 8*math.Pow(2, -float64(s)/5))
	return int(math.Round(scaled * scaled))
}

// Priorities computes Priority for every statement, deriving A/P/S from
// groupVotes (summed across groups) and extremity from the per-statement
// map built from pca's comment_extremity.
func Priorities(statements []matrix.ID, metaSet map[matrix.ID]bool, groupVotes map[int]GroupVoteSummary, extremity map[matrix.ID]float64, cfg config.Parameters) map[matrix.ID]int {
	out := make(map[matrix.ID]int, len(statements))
	for _, sid := range statements {
		var a, d, s int
		for _, g := range groupVotes {
			c := g.Votes[sid]
			a += c.Agree
			d += c.Disagree
			s += c.Total
		}
		p := s - a - d
		out[sid] = Priority(metaSet[sid], a, p, s, extremity[sid], cfg)
	}
	return out
}
