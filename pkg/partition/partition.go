// Package partition defines community partitions of the co-appearance graph
// and their on-disk form.
package partition

import (
	"fmt"
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// Community is a set of actor ids.
type Community []string

// Partition is a collection of disjoint communities covering a graph.
type Partition []Community

// Len returns the number of communities.
func (p Partition) Len() int { return len(p) }

// NodeCount returns the total number of members across communities.
func (p Partition) NodeCount() int {
	n := 0
	for _, c := range p {
		n += len(c)
	}
	return n
}

// Sorted returns a copy ordered by descending size. Ties keep their original
// relative order. This is the canonical report order.
func (p Partition) Sorted() Partition {
	out := slices.Clone(p)
	slices.SortStableFunc(out, func(a, b Community) int {
		return len(b) - len(a)
	})
	return out
}

// Sizes returns the size of every community in order.
func (p Partition) Sizes() []int {
	out := make([]int, len(p))
	for i, c := range p {
		out[i] = len(c)
	}
	return out
}

// Membership maps every member to the index of its community.
func (p Partition) Membership() map[string]int {
	m := make(map[string]int, p.NodeCount())
	for i, c := range p {
		for _, id := range c {
			m[id] = i
		}
	}
	return m
}

// Canonical returns a copy with members sorted within each community and
// communities sorted by descending size, then by first member. Two
// partitions with the same grouping have equal canonical forms.
func (p Partition) Canonical() Partition {
	out := make(Partition, len(p))
	for i, c := range p {
		cc := slices.Clone(c)
		slices.Sort(cc)
		out[i] = cc
	}
	slices.SortFunc(out, func(a, b Community) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return slices.Compare(a, b)
	})
	return out
}

// Equal reports whether p and other group the same nodes together,
// regardless of order.
func (p Partition) Equal(other Partition) bool {
	a, b := p.Canonical(), other.Canonical()
	return slices.EqualFunc(a, b, func(x, y Community) bool { return slices.Equal(x, y) })
}

// Validate checks that p is a partition of g's nodes: non-empty, no empty
// community, pairwise disjoint, and covering every node.
func (p Partition) Validate(g *graph.Graph) error {
	if len(p) == 0 {
		return ErrEmptyPartition
	}
	seen := make(map[string]int, g.NodeCount())
	for i, c := range p {
		if len(c) == 0 {
			return fmt.Errorf("%w: community %d is empty", ErrNotAPartition, i)
		}
		for _, id := range c {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("%w: node %s is in communities %d and %d", ErrNotAPartition, id, prev, i)
			}
			if !g.HasNode(id) {
				return fmt.Errorf("%w: node %s is not in the graph", ErrNotAPartition, id)
			}
			seen[id] = i
		}
	}
	if len(seen) != g.NodeCount() {
		return fmt.Errorf("%w: covers %d of %d nodes", ErrNotAPartition, len(seen), g.NodeCount())
	}
	return nil
}
