package algorithms

import (
	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// brandesCentrality runs a single O(VE) Brandes pass over the undirected
// graph and returns raw, unnormalised node betweenness indexed like ix.IDs.
// Every unordered pair is visited from both ends.
func brandesCentrality(ix *graph.Indexed) []float64 {
	n := ix.Len()
	betweenness := make([]float64, n)

	stack := make([]int, 0, n)
	queue := make([]int, 0, n)
	predecessors := make([][]int, n)
	sigma := make([]float64, n)
	distance := make([]int, n)
	delta := make([]float64, n)

	for source := 0; source < n; source++ {
		stack = stack[:0]
		queue = queue[:0]
		for i := 0; i < n; i++ {
			predecessors[i] = predecessors[i][:0]
			sigma[i] = 0
			distance[i] = -1
			delta[i] = 0
		}

		sigma[source] = 1
		distance[source] = 0
		queue = append(queue, source)

		for head := 0; head < len(queue); head++ {
			v := queue[head]
			stack = append(stack, v)

			for _, w := range ix.Adj[v] {
				if distance[w] < 0 {
					queue = append(queue, w)
					distance[w] = distance[v] + 1
				}
				if distance[w] == distance[v]+1 {
					sigma[w] += sigma[v]
					predecessors[w] = append(predecessors[w], v)
				}
			}
		}

		// Back-propagation of pair dependencies
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range predecessors[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1.0 + delta[w])
			}
			if w != source {
				betweenness[w] += delta[w]
			}
		}
	}

	return betweenness
}

// BetweennessCentrality computes normalised betweenness for all nodes.
// Measures how often a node lies on shortest paths between two other nodes;
// endpoints do not score for their own paths.
func BetweennessCentrality(g *graph.Graph) map[string]float64 {
	ix := g.Index()
	raw := brandesCentrality(ix)

	n := ix.Len()
	scale := 1.0
	if n > 2 {
		scale = 1.0 / float64((n-1)*(n-2))
	}

	scores := make(map[string]float64, n)
	for i, id := range ix.IDs {
		scores[id] = raw[i] * scale
	}
	return scores
}

// ClosenessOptions configures closeness centrality.
type ClosenessOptions struct {
	// WassermanFaust scales each score by the fraction of the graph the node
	// can reach, so nodes in small components do not dominate.
	WassermanFaust bool
}

// DefaultClosenessOptions returns default closeness configuration
func DefaultClosenessOptions() ClosenessOptions {
	return ClosenessOptions{WassermanFaust: true}
}

// ClosenessCentrality computes closeness centrality for all nodes: the
// reciprocal of the average distance to the nodes reachable from it.
// Unreachable nodes are excluded; isolated nodes score 0.
func ClosenessCentrality(g *graph.Graph, opts ClosenessOptions) map[string]float64 {
	ix := g.Index()
	n := ix.Len()
	closeness := make(map[string]float64, n)

	distance := make([]int, n)
	queue := make([]int, 0, n)

	for source := 0; source < n; source++ {
		for i := range distance {
			distance[i] = -1
		}
		distance[source] = 0
		queue = append(queue[:0], source)

		totalDistance := 0
		for head := 0; head < len(queue); head++ {
			v := queue[head]
			totalDistance += distance[v]
			for _, w := range ix.Adj[v] {
				if distance[w] < 0 {
					distance[w] = distance[v] + 1
					queue = append(queue, w)
				}
			}
		}

		reachable := len(queue) - 1
		score := 0.0
		if totalDistance > 0 && n > 1 {
			score = float64(reachable) / float64(totalDistance)
			if opts.WassermanFaust {
				score *= float64(reachable) / float64(n-1)
			}
		}
		closeness[ix.IDs[source]] = score
	}

	return closeness
}

// DegreeCentrality computes degree centrality for all nodes: the fraction of
// other nodes each node is connected to.
func DegreeCentrality(g *graph.Graph) map[string]float64 {
	n := g.NodeCount()
	degree := make(map[string]float64, n)
	for _, id := range g.Nodes() {
		if n > 1 {
			degree[id] = float64(g.Degree(id)) / float64(n-1)
		} else {
			degree[id] = 0.0
		}
	}
	return degree
}
