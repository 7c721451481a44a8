package algorithms

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// KatzOptions configures Katz centrality
type KatzOptions struct {
	// Alpha is the attenuation factor. Zero derives it from the spectrum as
	// 1/lambdaMax - AlphaOffset.
	Alpha         float64
	AlphaOffset   float64 // Usually 0.01
	Beta          float64 // Weight attributed to the immediate neighbourhood
	MaxIterations int
	Tolerance     float64 // Convergence threshold per node
	Normalized    bool    // Scale the result to unit Euclidean norm

	// ExtendIterations raises the budget above MaxIterations when the
	// contraction ratio alpha*lambdaMax needs more steps to reach Tolerance,
	// up to 100*MaxIterations. Small components such as a single edge have
	// ratio 0.99 and need about 1400 steps.
	ExtendIterations bool
}

// DefaultKatzOptions returns default Katz configuration
func DefaultKatzOptions() KatzOptions {
	return KatzOptions{
		AlphaOffset:   0.01,
		Beta:          1.0,
		MaxIterations: 1000,
		Tolerance:     1e-6,
		Normalized:    true,

		ExtendIterations: true,
	}
}

// KatzResult contains Katz scores and the parameters that produced them.
type KatzResult struct {
	Scores        map[string]float64
	Alpha         float64
	LargestLambda float64
	Iterations    int
}

// LargestEigenvalue returns the largest eigenvalue of the adjacency matrix of
// ix by power iteration on A+I. The shift keeps bipartite components from
// oscillating; the Rayleigh quotient gives the estimate.
func LargestEigenvalue(ix *graph.Indexed, maxIterations int, tolerance float64) (float64, error) {
	n := ix.Len()
	if n == 0 {
		return 0, ErrEmptyGraph
	}
	if ix.Edges == 0 {
		return 0, nil
	}

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = 1 / math.Sqrt(float64(n))
	}

	prev := math.Inf(-1)
	for iter := 0; iter < maxIterations; iter++ {
		mu := 0.0
		for i := range y {
			sum := x[i]
			for _, j := range ix.Adj[i] {
				sum += x[j]
			}
			y[i] = sum
			mu += x[i] * sum
		}

		norm := 0.0
		for _, v := range y {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		for i := range x {
			x[i] = y[i] / norm
		}

		if math.Abs(mu-prev) <= tolerance*math.Max(1, math.Abs(mu)) {
			return mu - 1, nil
		}
		prev = mu
	}
	return 0, fmt.Errorf("largest eigenvalue: %w after %d iterations", ErrNotConverged, maxIterations)
}

// KatzCentrality computes Katz centrality x = alpha*A*x + beta by power
// iteration. Without an explicit alpha it uses 1/lambdaMax - AlphaOffset,
// which keeps the series convergent. Graphs without edges have no spectrum
// to derive alpha from and fail with ErrUndefinedCentrality.
func KatzCentrality(g *graph.Graph, opts KatzOptions) (*KatzResult, error) {
	ix := g.Index()
	n := ix.Len()
	if n == 0 {
		return nil, fmt.Errorf("katz: %w", ErrEmptyGraph)
	}
	if ix.Edges == 0 {
		return nil, fmt.Errorf("katz: %w: graph has no edges", ErrUndefinedCentrality)
	}

	lambda, err := LargestEigenvalue(ix, 10*opts.MaxIterations, 1e-12)
	if err != nil {
		return nil, fmt.Errorf("katz: %w", err)
	}

	alpha := opts.Alpha
	if alpha == 0 {
		alpha = 1/lambda - opts.AlphaOffset
		if alpha <= 0 {
			// Offset larger than the reciprocal itself on dense graphs
			alpha = 0.9 / lambda
		}
	}

	maxIter := opts.MaxIterations
	if opts.ExtendIterations {
		maxIter = katzIterationBudget(alpha*lambda, opts.Beta, opts.Tolerance, n, opts.MaxIterations)
	}

	x := make([]float64, n)
	last := make([]float64, n)
	for iter := 1; iter <= maxIter; iter++ {
		x, last = last, x
		for i := range x {
			sum := 0.0
			for _, j := range ix.Adj[i] {
				sum += last[j]
			}
			x[i] = alpha*sum + opts.Beta
		}

		diff := 0.0
		for i := range x {
			diff += math.Abs(x[i] - last[i])
		}
		if diff < float64(n)*opts.Tolerance {
			scale := 1.0
			if opts.Normalized {
				norm := 0.0
				for _, v := range x {
					norm += v * v
				}
				if norm > 0 {
					scale = 1 / math.Sqrt(norm)
				}
			}
			scores := make(map[string]float64, n)
			for i, id := range ix.IDs {
				scores[id] = x[i] * scale
			}
			return &KatzResult{Scores: scores, Alpha: alpha, LargestLambda: lambda, Iterations: iter}, nil
		}
	}

	return nil, fmt.Errorf("katz (alpha %.4f): %w after %d iterations", alpha, ErrNotConverged, maxIter)
}

// katzIterationBudget returns the number of steps after which the per-step
// change, bounded by n*|beta|*ratio^(k-1), falls below n*tol. Divergent
// ratios keep the floor.
func katzIterationBudget(ratio, beta, tol float64, n, floor int) int {
	if ratio <= 0 || ratio >= 1 || tol <= 0 || floor <= 0 {
		return floor
	}
	scale := math.Max(math.Abs(beta), 1) * float64(n)
	needed := math.Ceil(math.Log(tol/scale)/math.Log(ratio)) + 1
	ceiling := 100 * float64(floor)
	switch {
	case needed <= float64(floor):
		return floor
	case needed >= ceiling:
		return int(ceiling)
	default:
		return int(needed)
	}
}
