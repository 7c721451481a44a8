package algorithms

import (
	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/partition"
)

// ConnectedComponents finds all connected components in the graph. Components
// are ordered by their smallest member; members are in BFS order.
func ConnectedComponents(g *graph.Graph) partition.Partition {
	ix := g.Index()
	visited := make([]bool, ix.Len())
	components := make(partition.Partition, 0)

	// BFS to find each component
	for start := range ix.IDs {
		if visited[start] {
			continue
		}

		component := make(partition.Community, 0)
		queue := []int{start}
		visited[start] = true

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			component = append(component, ix.IDs[v])

			for _, w := range ix.Adj[v] {
				if !visited[w] {
					visited[w] = true
					queue = append(queue, w)
				}
			}
		}

		components = append(components, component)
	}

	return components
}
