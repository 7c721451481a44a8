package algorithms

import (
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// TriangleCountResult holds triangle counting results including per-node
// counts, the global count and local clustering coefficients.
type TriangleCountResult struct {
	PerNode                map[string]int
	GlobalCount            int
	ClusteringCoefficients map[string]float64
	// AverageClustering is the mean local coefficient over all nodes.
	AverageClustering float64
}

// CountTriangles counts triangles in g. For each node u, it iterates over
// pairs (v,w) of u's neighbours; if v and w are adjacent that's a triangle.
// Each triangle is counted once per participating node, so
// GlobalCount = sum(PerNode) / 3.
func CountTriangles(g *graph.Graph) *TriangleCountResult {
	ix := g.Index()
	n := ix.Len()

	perNodeCounts := make([]int, n)
	for u := 0; u < n; u++ {
		count := 0
		for i, v := range ix.Adj[u] {
			for _, w := range ix.Adj[u][i+1:] {
				// Adjacency lists are sorted
				if _, ok := slices.BinarySearch(ix.Adj[v], w); ok {
					count++
				}
			}
		}
		perNodeCounts[u] = count
	}

	perNode := make(map[string]int, n)
	coefficients := make(map[string]float64, n)
	total := 0
	sumCoefficients := 0.0
	for u, id := range ix.IDs {
		perNode[id] = perNodeCounts[u]
		total += perNodeCounts[u]

		k := len(ix.Adj[u])
		if k < 2 {
			coefficients[id] = 0.0
			continue
		}
		possible := k * (k - 1) / 2
		coefficients[id] = float64(perNodeCounts[u]) / float64(possible)
		sumCoefficients += coefficients[id]
	}

	result := &TriangleCountResult{
		PerNode:                perNode,
		GlobalCount:            total / 3,
		ClusteringCoefficients: coefficients,
	}
	if n > 0 {
		result.AverageClustering = sumCoefficients / float64(n)
	}
	return result
}
