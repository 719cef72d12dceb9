// Package config defines the engine's pipeline parameters: the knobs that
// control PCA component count, k-means candidate selection, significance
// gates, and the visual-layer ranking caps. It follows the functional-
// options builder idiom so callers construct a Parameters value once per
// conversation and the pipeline stages never reach for ad hoc constants.
package config

import "errors"

// Sentinel validation errors, one per invariant Validate checks.
var (
	ErrInvalidComponents    = errors.New("config: n components must be >= 1")
	ErrEmptyCandidateKs     = errors.New("config: candidate k set must be non-empty")
	ErrInvalidCandidateK    = errors.New("config: every candidate k must be >= 2")
	ErrInvalidMaxIter       = errors.New("config: max iterations must be >= 1")
	ErrInvalidMinClusterSz  = errors.New("config: min cluster size must be >= 1")
	ErrInvalidSampleThresh  = errors.New("config: sample threshold must be >= 1")
	ErrInvalidTopN          = errors.New("config: repness top-N must be >= 1")
	ErrInvalidNewCommentMin = errors.New("config: new-comment vote floor must be >= 0")
)

// Parameters holds every tunable of the C->D->E->F pipeline. The zero value
// is not meaningful; use Default() or New() with Options.
type Parameters struct {
	// NComponents is the number of principal components PCA retains
	// (spec default: 2).
	NComponents int

	// CandidateKs are the k values the clustering engine tries before
	// picking the best by silhouette score.
	CandidateKs []int

	// MaxIter bounds k-means iterations per candidate k.
	MaxIter int

	// ConvergenceEpsilon is the centroid-shift threshold below which
	// k-means is considered converged even if assignments are still
	// settling.
	ConvergenceEpsilon float64

	// MinClusterSize: a candidate k is rejected (and k-1 is tried
	// instead) if any resulting cluster has fewer members than this.
	MinClusterSize int

	// SampleThreshold is the participant count above which PCA fits on
	// a uniform random sample instead of the full matrix.
	SampleThreshold int

	// SampleSize is how many participants are sampled when
	// SampleThreshold is exceeded.
	SampleSize int

	// RepnessTopN is the per-group count of top representative
	// statements for the visual layer. Recompute does not apply it:
	// comment_repness always holds the full set, and
	// repness.TopPerGroup takes its cap as an argument.
	RepnessTopN int

	// NewCommentVoteFloor is the observed-vote count S below which a
	// statement's priority is fixed at NewCommentPriority rather than
	// computed from the importance formula.
	NewCommentVoteFloor int

	// NewCommentPriority is the fixed priority for statements under the
	// new-comment floor, and for meta statements (both use
	// META_PRIORITY^2 = 49).
	NewCommentPriority int

	// Seed drives every deterministic-but-pseudorandom choice in the
	// pipeline: k-means++ init and the SVD sampling draw. statkit's
	// bootstrap takes its own caller-supplied uniform source instead.
	Seed uint64
}

// Option mutates a Parameters value during construction.
type Option func(*Parameters)

// WithComponents overrides the number of principal components.
func WithComponents(n int) Option {
	return func(p *Parameters) { p.NComponents = n }
}

// WithCandidateKs overrides the k-means candidate set.
func WithCandidateKs(ks ...int) Option {
	return func(p *Parameters) { p.CandidateKs = append([]int(nil), ks...) }
}

// WithMaxIter overrides the k-means iteration cap.
func WithMaxIter(n int) Option {
	return func(p *Parameters) { p.MaxIter = n }
}

// WithMinClusterSize overrides the minimum acceptable cluster size.
func WithMinClusterSize(n int) Option {
	return func(p *Parameters) { p.MinClusterSize = n }
}

// WithSampleThreshold overrides the sparsity-aware-projection trigger and
// the sample size drawn once it's exceeded.
func WithSampleThreshold(threshold, size int) Option {
	return func(p *Parameters) {
		p.SampleThreshold = threshold
		p.SampleSize = size
	}
}

// WithRepnessTopN overrides the per-group representative-statement cap.
func WithRepnessTopN(n int) Option {
	return func(p *Parameters) { p.RepnessTopN = n }
}

// WithSeed overrides the deterministic seed used by every pseudorandom
// stage of the pipeline.
func WithSeed(seed uint64) Option {
	return func(p *Parameters) { p.Seed = seed }
}

// Default returns the engine's production parameters, matching the spec's
// defaults throughout: 2 components, k in {2,3,4,5}, min cluster size 3,
// sampling above 1000 participants, top 5 repness per group, new-comment
// floor at S<7 with priority 49.
func Default() Parameters {
	return Parameters{
		NComponents:         2,
		CandidateKs:         []int{2, 3, 4, 5},
		MaxIter:             100,
		ConvergenceEpsilon:  1e-6,
		MinClusterSize:      3,
		SampleThreshold:     1000,
		SampleSize:          1000,
		RepnessTopN:         5,
		NewCommentVoteFloor: 7,
		NewCommentPriority:  49,
		Seed:                42,
	}
}

// New builds Parameters starting from Default() and applying opts in order.
func New(opts ...Option) Parameters {
	p := Default()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Validate checks every structural invariant New()/Default() are expected
// to uphold, surfacing a caller's misconfiguration (e.g. a hand-built
// Parameters from a test, or a future config-file loader) before it
// reaches the pipeline stages.
func (p Parameters) Validate() error {
	if p.NComponents < 1 {
		return ErrInvalidComponents
	}
	if len(p.CandidateKs) == 0 {
		return ErrEmptyCandidateKs
	}
	for _, k := range p.CandidateKs {
		if k < 2 {
			return ErrInvalidCandidateK
		}
	}
	if p.MaxIter < 1 {
		return ErrInvalidMaxIter
	}
	if p.MinClusterSize < 1 {
		return ErrInvalidMinClusterSz
	}
	if p.SampleThreshold < 1 {
		return ErrInvalidSampleThresh
	}
	if p.RepnessTopN < 1 {
		return ErrInvalidTopN
	}
	if p.NewCommentVoteFloor < 0 {
		return ErrInvalidNewCommentMin
	}
	return nil
}
