package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/compdemocracy/polismath/config"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestOptionsOverrideDefaults(t *testing.T) {
	p := config.New(
		config.WithComponents(3),
		config.WithCandidateKs(2, 3),
		config.WithSeed(7),
	)
	require.Equal(t, 3, p.NComponents)
	require.Equal(t, []int{2, 3}, p.CandidateKs)
	require.Equal(t, uint64(7), p.Seed)
	require.NoError(t, p.Validate())
}

func TestValidateRejectsBadCandidateKs(t *testing.T) {
	p := config.New(config.WithCandidateKs(1, 2))
	require.ErrorIs(t, p.Validate(), config.ErrInvalidCandidateK)

	p = config.New(config.WithCandidateKs())
	require.ErrorIs(t, p.Validate(), config.ErrEmptyCandidateKs)
}

func TestValidateRejectsZeroComponents(t *testing.T) {
	p := config.New(config.WithComponents(0))
	require.ErrorIs(t, p.Validate(), config.ErrInvalidComponents)
}
