// Package graph holds the undirected actor co-appearance graph.
package graph

import (
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/table"
)

// Graph is an undirected simple graph keyed by actor id. It carries the
// provenance of the tables it was built from. Graph is not safe for
// concurrent mutation.
type Graph struct {
	ids   []string
	index map[string]int
	adj   []map[int]struct{}
	edges int

	metadata table.Provenance
}

// Edge is an unordered pair stored with From < To.
type Edge struct {
	From string
	To   string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode inserts id if absent and returns its internal slot.
func (g *Graph) AddNode(id string) int {
	if slot, ok := g.index[id]; ok {
		return slot
	}
	slot := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = slot
	g.adj = append(g.adj, make(map[int]struct{}))
	return slot
}

// AddEdge connects a and b, adding missing nodes. Self loops and repeated
// pairs are ignored; the return value reports whether a new edge was added.
func (g *Graph) AddEdge(a, b string) bool {
	if a == b {
		return false
	}
	sa, sb := g.AddNode(a), g.AddNode(b)
	if _, ok := g.adj[sa][sb]; ok {
		return false
	}
	g.adj[sa][sb] = struct{}{}
	g.adj[sb][sa] = struct{}{}
	g.edges++
	return true
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.ids) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return g.edges }

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b string) bool {
	sa, ok := g.index[a]
	if !ok {
		return false
	}
	sb, ok := g.index[b]
	if !ok {
		return false
	}
	_, ok = g.adj[sa][sb]
	return ok
}

// Degree returns the number of neighbours of id, or 0 if id is unknown.
func (g *Graph) Degree(id string) int {
	slot, ok := g.index[id]
	if !ok {
		return 0
	}
	return len(g.adj[slot])
}

// Nodes returns all node ids in sorted order.
func (g *Graph) Nodes() []string {
	out := slices.Clone(g.ids)
	slices.Sort(out)
	return out
}

// Neighbors returns the neighbours of id in sorted order.
func (g *Graph) Neighbors(id string) []string {
	slot, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.adj[slot]))
	for n := range g.adj[slot] {
		out = append(out, g.ids[n])
	}
	slices.Sort(out)
	return out
}

// Edges returns every edge once, sorted by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for slot, nbrs := range g.adj {
		for n := range nbrs {
			a, b := g.ids[slot], g.ids[n]
			if a < b {
				out = append(out, Edge{From: a, To: b})
			}
		}
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if x.From != y.From {
			if x.From < y.From {
				return -1
			}
			return 1
		}
		if x.To < y.To {
			return -1
		}
		if x.To > y.To {
			return 1
		}
		return 0
	})
	return out
}

// Metadata returns a copy of the provenance the graph was built from.
func (g *Graph) Metadata() table.Provenance {
	return g.metadata.Clone()
}

// SetMetadata replaces the provenance with a copy of p.
func (g *Graph) SetMetadata(p table.Provenance) {
	g.metadata = p.Clone()
}

// Subgraph returns the graph induced by ids. Unknown ids are skipped. The
// provenance is copied.
func (g *Graph) Subgraph(ids []string) *Graph {
	sub := New()
	keep := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if slot, ok := g.index[id]; ok {
			keep[slot] = struct{}{}
			sub.AddNode(id)
		}
	}
	for slot := range keep {
		for n := range g.adj[slot] {
			if _, ok := keep[n]; ok {
				sub.AddEdge(g.ids[slot], g.ids[n])
			}
		}
	}
	sub.metadata = g.metadata.Clone()
	return sub
}
