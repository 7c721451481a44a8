package algorithms

import (
	"strings"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// buildGraph creates an undirected graph from "a-b" edge specs. Specs
// without a dash add an isolated node.
func buildGraph(specs ...string) *graph.Graph {
	g := graph.New()
	for _, s := range specs {
		if a, b, ok := strings.Cut(s, "-"); ok {
			g.AddEdge(a, b)
		} else {
			g.AddNode(s)
		}
	}
	return g
}

// clique adds a complete subgraph over ids.
func clique(g *graph.Graph, ids ...string) {
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			g.AddEdge(ids[i], ids[j])
		}
	}
}

// twoCliques returns two K4s {a,b,c,d} and {e,f,g,h} joined by d-e.
func twoCliques() *graph.Graph {
	g := graph.New()
	clique(g, "a", "b", "c", "d")
	clique(g, "e", "f", "g", "h")
	g.AddEdge("d", "e")
	return g
}

// cliqueWithPendant returns K5 over a..e with a pendant p attached to a.
func cliqueWithPendant() *graph.Graph {
	g := graph.New()
	clique(g, "a", "b", "c", "d", "e")
	g.AddEdge("a", "p")
	return g
}
