// Package pca computes a mean-centered principal-component projection of
// the rating matrix: the column means and top principal directions
// ("components"), a per-statement extremity derived from those components,
// and a 2-D (by default) projection of every participant.
package pca

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/compdemocracy/polismath/config"
)

// Result is the PCA engine's output: spec.md's `pca` conversation field
// plus the derived projection.
type Result struct {
	// Center is the per-statement column mean over observed votes,
	// length = number of statements.
	Center []float64

	// Components holds the top-k right singular vectors as rows,
	// shape k x N(statements).
	Components [][]float64

	// CommentExtremity[j] is the Euclidean norm of column j of
	// Components: how much statement j spreads participants across the
	// retained principal directions.
	CommentExtremity []float64

	// Projection maps each participant row index (matching the input
	// matrix's row order) to its k-dimensional coordinates.
	Projection [][]float64
}

// Empty returns the canonical zero-state result for P<2 or N<2 inputs, or
// for numeric failure fallback: zero center/components, zero projections.
func Empty(numParticipants, numStatements, k int) Result {
	center := make([]float64, numStatements)
	components := make([][]float64, k)
	for i := range components {
		components[i] = make([]float64, numStatements)
	}
	extremity := make([]float64, numStatements)
	projection := make([][]float64, numParticipants)
	for i := range projection {
		projection[i] = make([]float64, k)
	}
	return Result{
		Center:           center,
		Components:       components,
		CommentExtremity: extremity,
		Projection:       projection,
	}
}

// Fit runs the PCA engine over data (participants x statements, NaN for
// missing), per the spec: replace NaN with 0 for the SVD, mean-center on
// observed entries, take the top p.NComponents singular vectors, and
// project every participant (including, for large conversations, ones
// excluded from the sampled fit).
//
// seed must be deterministic per conversation+tick so the sampled path
// (for conversations above p.SampleThreshold participants) is reproducible.
func Fit(data *mat.Dense, p config.Parameters, seed uint64) Result {
	numParticipants, numStatements := data.Dims()
	k := p.NComponents
	if numParticipants < 2 || numStatements < 2 {
		return Empty(numParticipants, numStatements, k)
	}

	fitRows := allRowIndices(numParticipants)
	if numParticipants > p.SampleThreshold {
		fitRows = sampleRowIndices(numParticipants, p.SampleSize, seed)
	}

	center := columnMeans(data, fitRows)
	fitMatrix := centeredZeroFilled(data, fitRows, center)

	components, singularOK := topComponents(fitMatrix, k, numStatements)
	if !singularOK {
		return Empty(numParticipants, numStatements, k)
	}

	extremity := make([]float64, numStatements)
	for j := 0; j < numStatements; j++ {
		sum := 0.0
		for i := range components {
			sum += components[i][j] * components[i][j]
		}
		extremity[j] = math.Sqrt(sum)
	}

	projection := make([][]float64, numParticipants)
	for i := 0; i < numParticipants; i++ {
		projection[i] = projectRow(data, i, center, components)
	}

	return Result{
		Center:           center,
		Components:       components,
		CommentExtremity: extremity,
		Projection:       projection,
	}
}

func allRowIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// sampleRowIndices draws size distinct row indices out of n, uniformly
// without replacement, using a seed-derived PCG source so the same
// conversation at the same tick always samples the same rows.
func sampleRowIndices(n, size int, seed uint64) []int {
	if size >= n {
		return allRowIndices(n)
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pool := allRowIndices(n)
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	out := append([]int(nil), pool[:size]...)
	return out
}

// columnMeans computes the per-column mean over rows in rowIdx, treating
// NaN cells as unobserved (excluded from both the sum and the count).
func columnMeans(data *mat.Dense, rowIdx []int) []float64 {
	_, cols := data.Dims()
	sums := make([]float64, cols)
	counts := make([]float64, cols)
	for _, r := range rowIdx {
		for c := 0; c < cols; c++ {
			v := data.At(r, c)
			if math.IsNaN(v) {
				continue
			}
			sums[c] += v
			counts[c]++
		}
	}
	means := make([]float64, cols)
	for c := range means {
		if counts[c] > 0 {
			means[c] = sums[c] / counts[c]
		}
	}
	return means
}

// centeredZeroFilled builds the |rowIdx| x cols matrix used to fit the SVD:
// NaN -> 0 (per spec.md §4.C / §9), then mean-centered by subtracting
// center from every row.
func centeredZeroFilled(data *mat.Dense, rowIdx []int, center []float64) *mat.Dense {
	_, cols := data.Dims()
	out := mat.NewDense(len(rowIdx), cols, nil)
	for i, r := range rowIdx {
		for c := 0; c < cols; c++ {
			v := data.At(r, c)
			if math.IsNaN(v) {
				v = 0
			}
			out.Set(i, c, v-center[c])
		}
	}
	return out
}

// topComponents returns the top-k right singular vectors of X as rows
// (k x cols), padding with zero rows if the SVD yields fewer than k
// directions (e.g. cols < k). The bool return is false on SVD
// non-convergence (NumericFailure), signaling the caller to degrade.
func topComponents(x *mat.Dense, k, cols int) ([][]float64, bool) {
	var svd mat.SVD
	ok := svd.Factorize(x, mat.SVDThin)
	if !ok {
		return nil, false
	}
	var v mat.Dense
	svd.VTo(&v)
	_, available := v.Dims()
	components := make([][]float64, k)
	for i := 0; i < k; i++ {
		components[i] = make([]float64, cols)
		if i >= available {
			continue // fewer singular directions than requested components
		}
		for c := 0; c < cols; c++ {
			components[i][c] = v.At(c, i)
		}
	}
	return components, true
}

// projectRow computes components . (row - center), treating NaN as 0 per
// the spec's projection rule.
func projectRow(data *mat.Dense, row int, center []float64, components [][]float64) []float64 {
	cols := len(center)
	centered := make([]float64, cols)
	for c := 0; c < cols; c++ {
		v := data.At(row, c)
		if math.IsNaN(v) {
			v = 0
		}
		centered[c] = v - center[c]
	}
	out := make([]float64, len(components))
	for i, comp := range components {
		sum := 0.0
		for c := 0; c < cols; c++ {
			sum += comp[c] * centered[c]
		}
		out[i] = sum
	}
	return out
}
