package algorithms

import (
	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/partition"
)

// intraEdges counts edges whose endpoints share a community.
func intraEdges(g *graph.Graph, membership map[string]int) int {
	intra := 0
	for _, e := range g.Edges() {
		if membership[e.From] == membership[e.To] {
			intra++
		}
	}
	return intra
}

// Modularity computes Newman modularity of p over g with resolution 1.
// A graph without edges has modularity 0.
func Modularity(g *graph.Graph, p partition.Partition) (float64, error) {
	if err := p.Validate(g); err != nil {
		return 0, err
	}
	m := float64(g.EdgeCount())
	if m == 0 {
		return 0, nil
	}

	membership := p.Membership()
	internal := make([]float64, len(p))
	degree := make([]float64, len(p))
	for _, e := range g.Edges() {
		cf, ct := membership[e.From], membership[e.To]
		if cf == ct {
			internal[cf]++
		}
	}
	for i, c := range p {
		for _, id := range c {
			degree[i] += float64(g.Degree(id))
		}
	}

	q := 0.0
	for i := range p {
		frac := degree[i] / (2 * m)
		q += internal[i]/m - frac*frac
	}
	return q, nil
}

// PartitionQuality returns the coverage and performance of p over g.
//
// Coverage is the fraction of edges that fall inside a community.
// Performance is the fraction of node pairs classified correctly: intra
// community pairs that are edges plus inter community pairs that are not.
// A graph without edges has coverage 1; a graph with fewer than two nodes
// has performance 1.
func PartitionQuality(g *graph.Graph, p partition.Partition) (coverage, performance float64, err error) {
	if err := p.Validate(g); err != nil {
		return 0, 0, err
	}

	membership := p.Membership()
	intra := intraEdges(g, membership)
	m := g.EdgeCount()
	inter := m - intra

	coverage = 1.0
	if m > 0 {
		coverage = float64(intra) / float64(m)
	}

	n := g.NodeCount()
	totalPairs := n * (n - 1) / 2
	if totalPairs == 0 {
		return coverage, 1.0, nil
	}

	intraPairs := 0
	for _, c := range p {
		intraPairs += len(c) * (len(c) - 1) / 2
	}
	possibleInter := totalPairs - intraPairs
	interNonEdges := possibleInter - inter

	performance = float64(intra+interNonEdges) / float64(totalPairs)
	return coverage, performance, nil
}
