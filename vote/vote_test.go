package vote_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/vote"
)

func TestCoerce(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want vote.Vote
		ok   bool
	}{
		{"agree string", "agree", vote.Agree, true},
		{"disagree mixed case", "DisAgree", vote.Disagree, true},
		{"pass string", " pass ", vote.Pass, true},
		{"positive int", 1, vote.Agree, true},
		{"negative int", -3, vote.Disagree, true},
		{"zero int", 0, vote.Pass, true},
		{"positive float", 0.5, vote.Agree, true},
		{"negative float", -0.5, vote.Disagree, true},
		{"nil", nil, vote.Missing, false},
		{"nan", math.NaN(), vote.Missing, false},
		{"garbage string", "maybe", vote.Missing, false},
		{"bool rejected", true, vote.Missing, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := vote.Coerce(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNumericEncoding(t *testing.T) {
	require.Equal(t, 1.0, vote.Agree.Numeric())
	require.Equal(t, -1.0, vote.Disagree.Numeric())
	require.Equal(t, 0.0, vote.Pass.Numeric())
	require.True(t, math.IsNaN(vote.Missing.Numeric()))
}

func TestObserved(t *testing.T) {
	require.True(t, vote.Agree.Observed())
	require.True(t, vote.Disagree.Observed())
	require.True(t, vote.Pass.Observed())
	require.False(t, vote.Missing.Observed())
}
