package algorithms

import "errors"

var (
	// ErrEmptyGraph is returned when an algorithm needs at least one node.
	ErrEmptyGraph = errors.New("graph has no nodes")
	// ErrUndefinedCentrality is returned for degenerate graphs where a
	// centrality measure has no meaning, e.g. Katz on a graph without edges.
	ErrUndefinedCentrality = errors.New("centrality undefined for graph")
	// ErrNotConverged is returned when a power iteration exhausts its budget.
	ErrNotConverged = errors.New("power iteration did not converge")
)
