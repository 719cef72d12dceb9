package repness_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/matrix"
	"github.com/compdemocracy/polismath/repness"
)

// buildScenario1 reproduces spec.md §8 Scenario 1: P1-P3 agree on T1/T2,
// disagree on T3; P4-P6 mirror it.
func buildScenario1() (*matrix.Matrix, map[int][]matrix.ID) {
	m := matrix.New()
	var triples []matrix.Triple
	group0 := []matrix.ID{"p1", "p2", "p3"}
	group1 := []matrix.ID{"p4", "p5", "p6"}
	for _, p := range group0 {
		triples = append(triples,
			matrix.Triple{Row: p, Col: "t1", Value: 1},
			matrix.Triple{Row: p, Col: "t2", Value: 1},
			matrix.Triple{Row: p, Col: "t3", Value: -1},
		)
	}
	for _, p := range group1 {
		triples = append(triples,
			matrix.Triple{Row: p, Col: "t1", Value: -1},
			matrix.Triple{Row: p, Col: "t2", Value: -1},
			matrix.Triple{Row: p, Col: "t3", Value: 1},
		)
	}
	m.BatchUpdate(triples)
	return m, map[int][]matrix.ID{0: group0, 1: group1}
}

func TestComputeScenario1ProducesExpectedSignificantRecords(t *testing.T) {
	m, groups := buildScenario1()
	gv := repness.BuildGroupVotes(m, groups)
	records, _, _ := repness.Compute(m, gv)

	find := func(gid int, sid matrix.ID) *repness.Record {
		for i := range records {
			if records[i].GroupID == gid && records[i].StatementID == sid {
				return &records[i]
			}
		}
		return nil
	}

	g0t1 := find(0, "t1")
	require.NotNil(t, g0t1)
	require.Equal(t, repness.Agree, g0t1.Side)
	require.Greater(t, math.Abs(g0t1.Z), 1.2816)

	g0t3 := find(0, "t3")
	require.NotNil(t, g0t3)
	require.Equal(t, repness.Disagree, g0t3.Side)

	g1t1 := find(1, "t1")
	require.NotNil(t, g1t1)
	require.Equal(t, repness.Disagree, g1t1.Side)

	g1t3 := find(1, "t3")
	require.NotNil(t, g1t3)
	require.Equal(t, repness.Agree, g1t3.Side)
}

func TestEverySignificantRecordClearsTheGate(t *testing.T) {
	m, groups := buildScenario1()
	gv := repness.BuildGroupVotes(m, groups)
	records, _, _ := repness.Compute(m, gv)
	for _, r := range records {
		if r.Side != "" {
			require.Greater(t, math.Abs(r.Z), 1.2816)
		}
	}
}

func TestFullSetListsOneRecordPerGroupStatementPairWithData(t *testing.T) {
	m, groups := buildScenario1()
	gv := repness.BuildGroupVotes(m, groups)
	records, _, _ := repness.Compute(m, gv)
	// 2 groups x 3 statements = 6 possible pairs, all have data here.
	require.Len(t, records, 6)
}

func TestTopPerGroupRespectsCap(t *testing.T) {
	m, groups := buildScenario1()
	gv := repness.BuildGroupVotes(m, groups)
	records, _, _ := repness.Compute(m, gv)
	top := repness.TopPerGroup(records, 1)
	countByGroup := map[int]int{}
	for _, r := range top {
		countByGroup[r.GroupID]++
	}
	for _, c := range countByGroup {
		require.LessOrEqual(t, c, 1)
	}
}

func TestStatementWithZeroVotesHasZeroGroupTally(t *testing.T) {
	m := matrix.New()
	m.BatchUpdate([]matrix.Triple{
		{Row: "p1", Col: "t1", Value: 1},
	})
	m.BatchUpdate([]matrix.Triple{{Row: "p1", Col: "t2", Value: math.NaN()}})
	groups := map[int][]matrix.ID{0: {"p1"}}
	gv := repness.BuildGroupVotes(m, groups)
	require.Equal(t, 0, gv[0]["t2"].Total)
}

func TestConsensusPassUnanimousAgreement(t *testing.T) {
	m := matrix.New()
	var triples []matrix.Triple
	for i := 0; i < 10; i++ {
		triples = append(triples, matrix.Triple{Row: matrix.ID(rune('a' + i)), Col: "t1", Value: 1})
	}
	m.BatchUpdate(triples)
	groups := map[int][]matrix.ID{}
	var members []matrix.ID
	for i := 0; i < 10; i++ {
		members = append(members, matrix.ID(rune('a'+i)))
	}
	groups[0] = members
	gv := repness.BuildGroupVotes(m, groups)
	_, agree, _ := repness.Compute(m, gv)
	found := false
	for _, a := range agree {
		if a.StatementID == "t1" {
			found = true
		}
	}
	require.True(t, found)
}
