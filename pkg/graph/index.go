package graph

import "slices"

// Indexed is a dense, read-only snapshot of a graph for algorithms. Nodes are
// numbered 0..n-1 in sorted id order and every adjacency list is sorted, so
// any traversal over it is deterministic.
type Indexed struct {
	IDs []string
	Adj [][]int
	// Edges is the number of undirected edges.
	Edges int
}

// Index builds an Indexed snapshot of g.
func (g *Graph) Index() *Indexed {
	ids := g.Nodes()
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}

	adj := make([][]int, len(ids))
	for i, id := range ids {
		slot := g.index[id]
		nbrs := make([]int, 0, len(g.adj[slot]))
		for n := range g.adj[slot] {
			nbrs = append(nbrs, pos[g.ids[n]])
		}
		slices.Sort(nbrs)
		adj[i] = nbrs
	}

	return &Indexed{IDs: ids, Adj: adj, Edges: g.edges}
}

// Len returns the number of nodes.
func (ix *Indexed) Len() int { return len(ix.IDs) }

// Position returns a lookup from id to dense index.
func (ix *Indexed) Position() map[string]int {
	pos := make(map[string]int, len(ix.IDs))
	for i, id := range ix.IDs {
		pos[id] = i
	}
	return pos
}
