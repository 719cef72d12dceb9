// Package cluster runs k-means over participant projections with
// automatic selection of k by mean silhouette score, per spec.md §4.D.
package cluster

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/compdemocracy/polismath/config"
	"github.com/compdemocracy/polismath/matrix"
)

// Cluster is one opinion group: a centroid and its member participant ids.
// IDs are assigned by decreasing member count, per spec.md §9's adopted
// convention for stabilizing downstream consumers.
type Cluster struct {
	ID      int
	Center  []float64
	Members []matrix.ID
}

// Run selects k automatically from p.CandidateKs and returns the resulting
// clusters, or an empty slice if there are too few points to cluster
// (fewer than the smallest candidate k, per the EmptyInput rule).
func Run(ids []matrix.ID, points [][]float64, p config.Parameters, seed uint64) []Cluster {
	n := len(points)
	minK := p.CandidateKs[0]
	for _, k := range p.CandidateKs {
		if k < minK {
			minK = k
		}
	}
	if n < minK {
		return nil
	}

	type candidateResult struct {
		k          int
		assign     []int
		centers    [][]float64
		silhouette float64
		ok         bool
	}

	results := make([]candidateResult, len(p.CandidateKs))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for idx, k := range p.CandidateKs {
		idx, k := idx, k
		g.Go(func() error {
			assign, centers, ok := fitWithMinSize(points, k, p, seed)
			if !ok {
				results[idx] = candidateResult{k: k}
				return nil
			}
			sil := meanSilhouette(points, assign, len(centers))
			results[idx] = candidateResult{k: len(centers), assign: assign, centers: centers, silhouette: sil, ok: true}
			return nil
		})
	}
	_ = g.Wait() // fitWithMinSize/meanSilhouette never return errors

	best := -1
	for i, r := range results {
		if !r.ok {
			continue
		}
		if best == -1 {
			best = i
			continue
		}
		cur := results[best]
		if r.silhouette > cur.silhouette+1e-12 {
			best = i
		} else if math.Abs(r.silhouette-cur.silhouette) <= 1e-12 && r.k < cur.k {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	chosen := results[best]
	return buildClusters(ids, chosen.assign, chosen.centers)
}

// fitWithMinSize runs k-means for k, and if any resulting cluster falls
// below MinClusterSize, retries with k-1 down to a floor of 2, per
// spec.md §4.D. At the k=2 floor the fit is kept even below MinClusterSize
// as long as neither cluster is empty. Returns ok=false only if even k=2
// can't be fit (fewer points than 2, or points so coincident that one of
// the two clusters stays empty).
func fitWithMinSize(points [][]float64, k int, p config.Parameters, seed uint64) ([]int, [][]float64, bool) {
	for attemptK := k; attemptK >= 2; attemptK-- {
		if attemptK > len(points) {
			continue
		}
		assign, centers := kmeans(points, attemptK, p, seed+uint64(attemptK))
		size := minClusterSize(assign, attemptK)
		if size >= p.MinClusterSize || (attemptK == 2 && size > 0) {
			return assign, centers, true
		}
	}
	return nil, nil, false
}

func minClusterSize(assign []int, k int) int {
	counts := make([]int, k)
	for _, a := range assign {
		counts[a]++
	}
	min := counts[0]
	for _, c := range counts[1:] {
		if c < min {
			min = c
		}
	}
	return min
}

// kmeans runs k-means++-initialized Lloyd's algorithm to convergence or
// p.MaxIter iterations, whichever comes first.
func kmeans(points [][]float64, k int, p config.Parameters, seed uint64) ([]int, [][]float64) {
	r := rand.New(rand.NewPCG(seed, seed^0xd1b54a32d192ed03))
	centers := kmeansPlusPlusInit(points, k, r)
	assign := make([]int, len(points))

	for iter := 0; iter < p.MaxIter; iter++ {
		changed := false
		for i, pt := range points {
			best, bestDist := 0, math.Inf(1)
			for c, center := range centers {
				d := sqDist(pt, center)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		newCenters := recomputeCenters(points, assign, centers, len(points[0]))
		shift := 0.0
		for c := range centers {
			shift += math.Sqrt(sqDist(centers[c], newCenters[c]))
		}
		centers = newCenters
		if !changed || shift < p.ConvergenceEpsilon {
			break
		}
	}
	return assign, centers
}

func kmeansPlusPlusInit(points [][]float64, k int, r *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := points[r.IntN(len(points))]
	centers = append(centers, append([]float64(nil), first...))

	for len(centers) < k {
		weights := make([]float64, len(points))
		total := 0.0
		for i, pt := range points {
			minD := math.Inf(1)
			for _, c := range centers {
				d := sqDist(pt, c)
				if d < minD {
					minD = d
				}
			}
			weights[i] = minD
			total += minD
		}
		if total == 0 {
			// all remaining points coincide with an existing center
			centers = append(centers, append([]float64(nil), points[r.IntN(len(points))]...))
			continue
		}
		target := r.Float64() * total
		cum := 0.0
		chosen := len(points) - 1
		for i, w := range weights {
			cum += w
			if cum >= target {
				chosen = i
				break
			}
		}
		centers = append(centers, append([]float64(nil), points[chosen]...))
	}
	return centers
}

func recomputeCenters(points [][]float64, assign []int, prev [][]float64, dim int) [][]float64 {
	k := len(prev)
	sums := make([][]float64, k)
	counts := make([]int, k)
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for i, pt := range points {
		a := assign[i]
		counts[a]++
		for d := 0; d < dim; d++ {
			sums[a][d] += pt[d]
		}
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			copy(sums[c], prev[c]) // keep the stale center; k-means++ keeps it from recurring empty
			continue
		}
		for d := 0; d < dim; d++ {
			sums[c][d] /= float64(counts[c])
		}
	}
	return sums
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// meanSilhouette computes the standard silhouette coefficient averaged
// over every point. O(n^2); acceptable at the conversation sizes this
// engine targets (thousands of participants at most, and only within the
// k-means candidate search).
func meanSilhouette(points [][]float64, assign []int, k int) float64 {
	n := len(points)
	if n <= k {
		return -1
	}
	sizes := make([]int, k)
	for _, a := range assign {
		sizes[a]++
	}
	sum := 0.0
	for i := range points {
		if sizes[assign[i]] == 1 {
			continue // a singleton cluster's member scores 0 by definition
		}
		a := meanDistToCluster(points, assign, i, assign[i])
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == assign[i] {
				continue
			}
			d := meanDistToCluster(points, assign, i, c)
			if d < b {
				b = d
			}
		}
		denom := math.Max(a, b)
		if denom == 0 {
			continue
		}
		sum += (b - a) / denom
	}
	return sum / float64(n)
}

func meanDistToCluster(points [][]float64, assign []int, i, cluster int) float64 {
	sum, count := 0.0, 0
	for j, pt := range points {
		if j == i || assign[j] != cluster {
			continue
		}
		sum += math.Sqrt(sqDist(points[i], pt))
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func buildClusters(ids []matrix.ID, assign []int, centers [][]float64) []Cluster {
	k := len(centers)
	members := make([][]matrix.ID, k)
	for i, a := range assign {
		members[a] = append(members[a], ids[i])
	}
	clusters := make([]Cluster, 0, k)
	for c := 0; c < k; c++ {
		if len(members[c]) == 0 {
			continue
		}
		clusters = append(clusters, Cluster{Center: centers[c], Members: members[c]})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].Members) > len(clusters[j].Members)
	})
	for i := range clusters {
		clusters[i].ID = i
	}
	return clusters
}
