package conversation

import (
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/compdemocracy/polismath/cluster"
	"github.com/compdemocracy/polismath/groupviz"
	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/pca"
	"github.com/compdemocracy/polismath/repness"
)

func zapStage(stage string) zap.Field { return zap.String("stage", stage) }

// degrade runs fn and times it under stage's name. If fn fails to produce
// a usable result it returns empty and marks the stage as degraded, per
// SPEC_FULL.md §7's fail-soft rule: a later stage's malfunction must never
// take down the stages that already succeeded.
func degrade[T any](c *Conversation, stage string, fn func() (T, bool), empty T) T {
	start := time.Now()
	defer func() {
		c.metrics.ObserveStage(stage, time.Since(start))
	}()
	out, ok := fn()
	if !ok {
		c.logger.Warn("pipeline stage degraded to empty state", zapStage(stage))
		c.metrics.IncDegraded(stage)
		return empty
	}
	return out
}

// Recompute runs the full PCA -> clustering -> representativeness ->
// consensus/priority pipeline against the current RatingMatrix, in the
// fixed order spec.md §4 requires. Each stage degrades independently: a
// PCA failure still leaves clustering able to run against the previous
// projection's shape, and so on, rather than aborting the whole recompute.
func (c *Conversation) Recompute() {
	c.MathTick = computeMathTick()

	rowIDs := c.RatingMatrix.Rows()
	dense := c.RatingMatrix.Dense()

	result := degrade(c, "pca", func() (pca.Result, bool) {
		r := pca.Fit(dense, c.cfg, c.cfg.Seed)
		return r, true
	}, pca.Empty(c.RatingMatrix.NumRows(), c.RatingMatrix.NumCols(), c.cfg.NComponents))
	c.PCA = result
	c.Projection = projectionByParticipant(rowIDs, result.Projection)

	c.GroupClusters = degrade(c, "cluster", func() ([]cluster.Cluster, bool) {
		pts := make([][]float64, len(rowIDs))
		for i, pid := range rowIDs {
			pts[i] = c.Projection[pid]
		}
		cs := cluster.Run(rowIDs, pts, c.cfg, c.cfg.Seed)
		return cs, cs != nil
	}, nil)
	// base_clusters and group_clusters share the same underlying k-means
	// result: nothing in this engine's scope performs a separate
	// finer-grained sub-clustering pass before the group merge.
	c.BaseClusters = c.GroupClusters

	groups, participantGroup := c.groupMembership()
	for pid, gid := range participantGroup {
		info := c.ParticipantInfo[pid]
		info.Group, info.HasGroup = gid, true
		c.ParticipantInfo[pid] = info
	}

	groupCounts := degrade(c, "repness", func() (map[int]map[matrix.ID]repness.GroupCounts, bool) {
		return repness.BuildGroupVotes(c.RatingMatrix, groups), true
	}, map[int]map[matrix.ID]repness.GroupCounts{})

	c.Repness, c.ConsensusAgree, c.ConsensusDisagree = degrade(c, "repness", func() (repnessTriple, bool) {
		recs, ca, cd := repness.Compute(c.RatingMatrix, groupCounts)
		return repnessTriple{recs, ca, cd}, true
	}, repnessTriple{}).unpack()

	c.GroupVotes = degrade(c, "groupviz", func() (map[int]groupviz.GroupVoteSummary, bool) {
		return groupviz.BuildGroupVotes(groups, groupCounts), true
	}, map[int]groupviz.GroupVoteSummary{})

	statements := c.sortedStatementIDs()
	c.GroupAwareConsensus = degrade(c, "groupviz", func() (map[matrix.ID]float64, bool) {
		return groupviz.GroupAwareConsensus(statements, c.GroupVotes), true
	}, map[matrix.ID]float64{})

	extremity := extremityByStatement(c.RatingMatrix.Cols(), result.CommentExtremity)
	c.CommentPriorities = degrade(c, "groupviz", func() (map[matrix.ID]int, bool) {
		return groupviz.Priorities(statements, c.MetaStatements, c.GroupVotes, extremity, c.cfg), true
	}, map[matrix.ID]int{})

	c.refreshGroupCorrelations(rowIDs, groups)
}

type repnessTriple struct {
	records []repness.Record
	agree   []repness.ConsensusRecord
	disagree []repness.ConsensusRecord
}

func (t repnessTriple) unpack() ([]repness.Record, []repness.ConsensusRecord, []repness.ConsensusRecord) {
	return t.records, t.agree, t.disagree
}

func projectionByParticipant(rowIDs []matrix.ID, projection [][]float64) map[matrix.ID][]float64 {
	out := make(map[matrix.ID][]float64, len(rowIDs))
	for i, pid := range rowIDs {
		if i < len(projection) {
			out[pid] = projection[i]
		}
	}
	return out
}

func extremityByStatement(colIDs []matrix.ID, extremity []float64) map[matrix.ID]float64 {
	out := make(map[matrix.ID]float64, len(colIDs))
	for i, sid := range colIDs {
		if i < len(extremity) {
			out[sid] = extremity[i]
		}
	}
	return out
}

// computeMathTick derives the per-recompute cache-bust tick spec.md §3
// names: 25000 + (unix seconds mod 10000).
func computeMathTick() int {
	return 25000 + int(time.Now().Unix()%10000)
}

// refreshGroupCorrelations fills in each participant's Pearson correlation
// between their own rating vector and every group's mean rating vector,
// restricted to statements both have observed values for.
func (c *Conversation) refreshGroupCorrelations(rowIDs []matrix.ID, groups map[int][]matrix.ID) {
	if len(groups) == 0 {
		return
	}
	groupMeans := make(map[int][]float64, len(groups))
	cols := c.RatingMatrix.Cols()
	for gid, members := range groups {
		groupMeans[gid] = meanVector(c.RatingMatrix, members, cols)
	}
	for _, pid := range rowIDs {
		row := c.RatingMatrix.RowByName(pid)
		corr := make(map[int]float64, len(groups))
		for gid, mean := range groupMeans {
			corr[gid] = maskedCorrelation(row, mean)
		}
		info := c.ParticipantInfo[pid]
		info.GroupCorrelations = corr
		c.ParticipantInfo[pid] = info
	}
}

func meanVector(rating *matrix.Matrix, members []matrix.ID, cols []matrix.ID) []float64 {
	sums := make([]float64, len(cols))
	counts := make([]int, len(cols))
	for _, pid := range members {
		row := rating.RowByName(pid)
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sums[j] += v
			counts[j]++
		}
	}
	out := make([]float64, len(cols))
	for j := range out {
		if counts[j] == 0 {
			out[j] = math.NaN()
			continue
		}
		out[j] = sums[j] / float64(counts[j])
	}
	return out
}

// maskedCorrelation computes Pearson's r over the indices where both
// vectors have an observed (non-NaN) value. Returns 0 if fewer than two
// shared observations exist.
func maskedCorrelation(a, b []float64) float64 {
	var xs, ys []float64
	for i := range a {
		if i >= len(b) {
			break
		}
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
