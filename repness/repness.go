// Package repness computes per-(group, statement) representativeness:
// which groups agree or disagree with a statement significantly more than
// the rest of the conversation does, per spec.md §4.E.
package repness

import (
	"math"
	"sort"

	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/statkit"
)

// Side is which direction a statement is representative in.
type Side string

const (
	Agree    Side = "agree"
	Disagree Side = "disagree"
)

// Record is one (group, statement) representativeness entry.
type Record struct {
	GroupID     int
	StatementID matrix.ID
	NAgree      int
	NDisagree   int
	NTotal      int
	R           float64 // representativeness ratio
	Z           float64 // two_prop_test z-score (p_test / repness_test)
	Side        Side
}

// ConsensusRecord is a single-sample significance result over the whole
// conversation (spec.md §4.E's "second pass").
type ConsensusRecord struct {
	StatementID matrix.ID
	Z           float64
	Side        Side
}

// GroupCounts is the agree/disagree/total-observed tally for one statement
// within one group; shared with the groupviz package so both consume the
// same precomputed table (SPEC_FULL.md §4.E).
type GroupCounts struct {
	Agree    int
	Disagree int
	Total    int // agree + disagree + pass (observed, not just A+D)
}

// BuildGroupVotes tallies agree/disagree/total-observed per (group,
// statement) from the rating matrix and group membership. groups maps
// group id to its member participant ids.
func BuildGroupVotes(rating *matrix.Matrix, groups map[int][]matrix.ID) map[int]map[matrix.ID]GroupCounts {
	out := make(map[int]map[matrix.ID]GroupCounts, len(groups))
	for gid, members := range groups {
		tally := make(map[matrix.ID]GroupCounts, len(rating.Cols()))
		for _, sid := range rating.Cols() {
			var c GroupCounts
			for _, pid := range members {
				v := rating.At(pid, sid)
				if math.IsNaN(v) {
					continue
				}
				c.Total++
				switch {
				case v > 0:
					c.Agree++
				case v < 0:
					c.Disagree++
				}
			}
			tally[sid] = c
		}
		out[gid] = tally
	}
	return out
}

// Compute returns the full comment_repness sequence (one record per
// (group, statement) with any data) plus the consensus-agree/disagree
// lists, per spec.md §4.E. Use TopPerGroup separately to derive the
// visual-layer top-N ranking.
func Compute(rating *matrix.Matrix, groupVotes map[int]map[matrix.ID]GroupCounts) ([]Record, []ConsensusRecord, []ConsensusRecord) {
	gids := sortedGroupIDs(groupVotes)
	var all []Record

	for _, gid := range gids {
		for _, sid := range rating.Cols() {
			own := groupVotes[gid][sid]
			other := complementCounts(groupVotes, gid, sid)

			rA, zA := representativeness(own.Agree, own.Total, other.Agree, other.Total)
			rD, zD := representativeness(own.Disagree, own.Total, other.Disagree, other.Total)

			rec := Record{
				GroupID: gid, StatementID: sid,
				NAgree: own.Agree, NDisagree: own.Disagree, NTotal: own.Total,
			}
			agreeSig := rA > 1 && statkit.Sig90(zA)
			disagreeSig := rD > 1 && statkit.Sig90(zD)
			switch {
			case agreeSig && (!disagreeSig || math.Abs(zA) >= math.Abs(zD)):
				rec.R, rec.Z, rec.Side = rA, zA, Agree
			case disagreeSig:
				rec.R, rec.Z, rec.Side = rD, zD, Disagree
			default:
				// no significant side; still emit the raw counts so the
				// full comment_repness sequence lists one record per
				// (g, tid) where data exists, per spec.md §8.
				rec.R, rec.Z = rA, zA
			}
			if own.Total > 0 || other.Total > 0 {
				all = append(all, rec)
			}
		}
	}

	consensusAgree, consensusDisagree := consensusPass(rating, groupVotes)
	return all, consensusAgree, consensusDisagree
}

// representativeness returns (r, z) for a group's a/s proportion against
// the complement's a'/s' proportion, per spec.md §4.E.
func representativeness(a, s, aOther, sOther int) (r, z float64) {
	own := float64(a+1) / float64(s+2)
	other := float64(aOther+1) / float64(sOther+2)
	if other == 0 {
		return 0, 0
	}
	r = own / other
	z = statkit.TwoPropTest(a, s, aOther, sOther)
	return
}

func complementCounts(groupVotes map[int]map[matrix.ID]GroupCounts, excludeGID int, sid matrix.ID) GroupCounts {
	var out GroupCounts
	for gid, tally := range groupVotes {
		if gid == excludeGID {
			continue
		}
		c := tally[sid]
		out.Agree += c.Agree
		out.Disagree += c.Disagree
		out.Total += c.Total
	}
	return out
}

func sortedGroupIDs(groupVotes map[int]map[matrix.ID]GroupCounts) []int {
	ids := make([]int, 0, len(groupVotes))
	for gid := range groupVotes {
		ids = append(ids, gid)
	}
	sort.Ints(ids)
	return ids
}

// topNPerGroup ranks each group's records by |r-1|*|z| and returns the
// keys (group,statement) of the top N, for flagging in the merged output.
func topNPerGroup(records []Record, n int) map[[2]any]bool {
	byGroup := map[int][]Record{}
	for _, r := range records {
		if r.Side == "" {
			continue
		}
		byGroup[r.GroupID] = append(byGroup[r.GroupID], r)
	}
	keep := map[[2]any]bool{}
	for gid, recs := range byGroup {
		sort.SliceStable(recs, func(i, j int) bool {
			return rank(recs[i]) > rank(recs[j])
		})
		limit := n
		if limit > len(recs) {
			limit = len(recs)
		}
		for i := 0; i < limit; i++ {
			keep[[2]any{gid, recs[i].StatementID}] = true
		}
	}
	return keep
}

func rank(r Record) float64 {
	return math.Abs(r.R-1) * math.Abs(r.Z)
}

// TopPerGroup filters records down to each group's top-N by |r-1|*|z|,
// restricted to records with a significant side, for the visual layer.
func TopPerGroup(records []Record, n int) []Record {
	keep := topNPerGroup(records, n)
	out := make([]Record, 0, len(keep))
	for _, r := range records {
		if keep[[2]any{r.GroupID, r.StatementID}] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		return rank(out[i]) > rank(out[j])
	})
	return out
}

// consensusPass identifies statements whose whole-conversation agree (or
// disagree) proportion is significantly above 0.5, via a one-sample
// PropTest, per spec.md §4.E's second pass.
func consensusPass(rating *matrix.Matrix, groupVotes map[int]map[matrix.ID]GroupCounts) ([]ConsensusRecord, []ConsensusRecord) {
	var agree, disagree []ConsensusRecord
	for _, sid := range rating.Cols() {
		var a, d, total int
		for _, tally := range groupVotes {
			c := tally[sid]
			a += c.Agree
			d += c.Disagree
			total += c.Total
		}
		if total == 0 {
			continue
		}
		zA := statkit.PropTest(a, total)
		if statkit.Sig90(zA) && zA > 0 {
			agree = append(agree, ConsensusRecord{StatementID: sid, Z: zA, Side: Agree})
		}
		zD := statkit.PropTest(d, total)
		if statkit.Sig90(zD) && zD > 0 {
			disagree = append(disagree, ConsensusRecord{StatementID: sid, Z: zD, Side: Disagree})
		}
	}
	return agree, disagree
}
