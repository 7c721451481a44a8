package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// PageRankOptions configures PageRank algorithm
type PageRankOptions struct {
	DampingFactor float64 // Usually 0.85
	MaxIterations int
	Tolerance     float64 // Convergence threshold
}

// DefaultPageRankOptions returns default PageRank configuration
func DefaultPageRankOptions() PageRankOptions {
	return PageRankOptions{
		DampingFactor: 0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// PageRankResult contains PageRank scores for all nodes
type PageRankResult struct {
	Scores     map[string]float64 // Node ID -> PageRank score
	Iterations int                // Number of iterations performed
	Converged  bool               // Whether algorithm converged
}

// PageRank computes PageRank scores on the co-appearance graph. Each edge is
// followed in both directions; isolated actors spread their rank uniformly.
func PageRank(g *graph.Graph, opts PageRankOptions) (*PageRankResult, error) {
	ix := g.Index()
	n := ix.Len()
	if n == 0 {
		return &PageRankResult{
			Scores:    make(map[string]float64),
			Converged: true,
		}, nil
	}

	// Initialize PageRank scores (uniform distribution)
	scores := make([]float64, n)
	initialScore := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initialScore
	}

	newScores := make([]float64, n)
	converged := false
	iterations := 0

	for iterations < opts.MaxIterations {
		iterations++

		dangling := 0.0
		for v := 0; v < n; v++ {
			if len(ix.Adj[v]) == 0 {
				dangling += scores[v]
			}
		}

		// Random jump plus the rank held by isolated nodes
		base := (1.0-opts.DampingFactor)/float64(n) + opts.DampingFactor*dangling/float64(n)
		for v := 0; v < n; v++ {
			newScore := base
			for _, u := range ix.Adj[v] {
				newScore += opts.DampingFactor * (scores[u] / float64(len(ix.Adj[u])))
			}
			newScores[v] = newScore
		}

		// Check for convergence
		maxDiff := 0.0
		for v := range scores {
			diff := math.Abs(newScores[v] - scores[v])
			if diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, newScores = newScores, scores
		if maxDiff < opts.Tolerance {
			converged = true
			break
		}
	}

	// Normalize scores to sum to 1
	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	result := make(map[string]float64, n)
	for v, id := range ix.IDs {
		if sum > 0 {
			result[id] = scores[v] / sum
		} else {
			result[id] = scores[v]
		}
	}

	return &PageRankResult{
		Scores:     result,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

// Top returns the n highest PageRank scores
func (pr *PageRankResult) Top(n int) []RankedNode {
	return TopNodes(pr.Scores, n, nil)
}

// GetNodeRank returns the PageRank score for a specific node
func (pr *PageRankResult) GetNodeRank(id string) float64 {
	return pr.Scores[id]
}
