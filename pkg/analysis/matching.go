package analysis

import (
	"fmt"
	"math"
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/partition"
)

// Match pairs a source community with its best target community.
type Match struct {
	Target   int     // -1 when nothing unclaimed overlaps
	Fraction float64 // matched members / source community size
}

// MapCommunities greedily matches every source community, in order, to the
// unclaimed target community holding most of its members. Ties go to the
// lowest target index. A claimed target cannot be matched again.
func MapCommunities(source partition.Partition, target map[string]int) []Match {
	claimed := make(map[int]struct{})
	out := make([]Match, len(source))

	for i, community := range source {
		counts := make(map[int]int)
		for _, id := range community {
			t, ok := target[id]
			if !ok {
				continue
			}
			if _, used := claimed[t]; !used {
				counts[t]++
			}
		}

		best, bestCount := -1, 0
		for t, n := range counts {
			if n > bestCount || (n == bestCount && t < best) {
				best, bestCount = t, n
			}
		}

		out[i] = Match{Target: -1}
		if best >= 0 {
			out[i] = Match{Target: best, Fraction: float64(bestCount) / float64(len(community))}
			claimed[best] = struct{}{}
		}
	}
	return out
}

// RunSet holds partitions of the same actors from independent detection
// runs, each sorted by descending community size.
type RunSet struct {
	runs       []partition.Partition
	membership []map[string]int
}

// NewRunSet sorts every run and checks that all runs cover the same nodes.
func NewRunSet(runs []partition.Partition) (*RunSet, error) {
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}

	rs := &RunSet{
		runs:       make([]partition.Partition, len(runs)),
		membership: make([]map[string]int, len(runs)),
	}
	for i, p := range runs {
		if len(p) == 0 {
			return nil, fmt.Errorf("run %d: %w", i, partition.ErrEmptyPartition)
		}
		sorted := p.Sorted()
		rs.runs[i] = sorted
		rs.membership[i] = sorted.Membership()
		if sorted.NodeCount() != len(rs.membership[i]) {
			return nil, fmt.Errorf("run %d: %w: overlapping communities", i, partition.ErrNotAPartition)
		}
	}

	base := rs.membership[0]
	for i := 1; i < len(runs); i++ {
		m := rs.membership[i]
		if len(m) != len(base) {
			return nil, fmt.Errorf("run %d has %d nodes, run 0 has %d: %w", i, len(m), len(base), ErrNodeSetMismatch)
		}
		for id := range m {
			if _, ok := base[id]; !ok {
				return nil, fmt.Errorf("run %d: node %s missing from run 0: %w", i, id, ErrNodeSetMismatch)
			}
		}
	}
	return rs, nil
}

// Len returns the number of runs.
func (rs *RunSet) Len() int { return len(rs.runs) }

// Run returns run i, sorted by descending community size.
func (rs *RunSet) Run(i int) partition.Partition { return rs.runs[i] }

func (rs *RunSet) checkIndex(i int) error {
	if i < 0 || i >= len(rs.runs) {
		return fmt.Errorf("run %d of %d: %w", i, len(rs.runs), ErrRunIndex)
	}
	return nil
}

// Map matches the communities of run i against run j.
func (rs *RunSet) Map(i, j int) ([]Match, error) {
	if err := rs.checkIndex(i); err != nil {
		return nil, err
	}
	if err := rs.checkIndex(j); err != nil {
		return nil, err
	}
	return MapCommunities(rs.runs[i], rs.membership[j]), nil
}

// MatchingOptions filters the edges of a matching graph.
type MatchingOptions struct {
	Threshold        float64 // keep edges with weight strictly above
	FirstCommunities int     // only the first K source communities; 0 for all
	OnlyRun          int     // only edges touching this run; -1 for all
	MinRank          int     // drop edges where either rank is below; 0 keeps all
}

// DefaultMatchingOptions returns default matching configuration
func DefaultMatchingOptions() MatchingOptions {
	return MatchingOptions{
		Threshold: 0.8,
		OnlyRun:   -1,
	}
}

// MatchingNode identifies community Community of run Run.
type MatchingNode struct {
	Run       int
	Community int
}

// String renders the node as "run;community".
func (n MatchingNode) String() string {
	return fmt.Sprintf("%d;%d", n.Run, n.Community)
}

// MatchingEdge says From corresponds to To with overlap Weight.
type MatchingEdge struct {
	From   MatchingNode
	To     MatchingNode
	Weight float64
}

// RoundedWeight returns Weight rounded to places decimals for display.
func (e MatchingEdge) RoundedWeight(places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(e.Weight*scale) / scale
}

// MatchingGraph is the directed graph of confident community
// correspondences across runs.
type MatchingGraph struct {
	edges []MatchingEdge
	index map[[2]MatchingNode]int
}

func newMatchingGraph() *MatchingGraph {
	return &MatchingGraph{index: make(map[[2]MatchingNode]int)}
}

func (m *MatchingGraph) add(e MatchingEdge) {
	key := [2]MatchingNode{e.From, e.To}
	if i, ok := m.index[key]; ok {
		m.edges[i] = e
		return
	}
	m.index[key] = len(m.edges)
	m.edges = append(m.edges, e)
}

// Edges returns the edges in insertion order: source run, target run, then
// source rank.
func (m *MatchingGraph) Edges() []MatchingEdge { return slices.Clone(m.edges) }

// EdgeCount returns the number of edges.
func (m *MatchingGraph) EdgeCount() int { return len(m.edges) }

// Weight returns the weight of from -> to.
func (m *MatchingGraph) Weight(from, to MatchingNode) (float64, bool) {
	i, ok := m.index[[2]MatchingNode{from, to}]
	if !ok {
		return 0, false
	}
	return m.edges[i].Weight, true
}

// Nodes returns every node touched by an edge, ordered by run then rank.
func (m *MatchingGraph) Nodes() []MatchingNode {
	seen := make(map[MatchingNode]struct{})
	for _, e := range m.edges {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	out := make([]MatchingNode, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b MatchingNode) int {
		if a.Run != b.Run {
			return a.Run - b.Run
		}
		return a.Community - b.Community
	})
	return out
}

// MatchingGraph matches every ordered pair of distinct runs and keeps the
// correspondences that pass opts.
func (rs *RunSet) MatchingGraph(opts MatchingOptions) (*MatchingGraph, error) {
	if opts.OnlyRun != -1 {
		if err := rs.checkIndex(opts.OnlyRun); err != nil {
			return nil, fmt.Errorf("only run: %w", err)
		}
	}

	mg := newMatchingGraph()
	for i := range rs.runs {
		for j := range rs.runs {
			if i == j {
				continue
			}
			if opts.OnlyRun != -1 && i != opts.OnlyRun && j != opts.OnlyRun {
				continue
			}

			mapping := MapCommunities(rs.runs[i], rs.membership[j])
			if opts.FirstCommunities > 0 && len(mapping) > opts.FirstCommunities {
				mapping = mapping[:opts.FirstCommunities]
			}
			for k, match := range mapping {
				if match.Target < 0 || !(match.Fraction > opts.Threshold) {
					continue
				}
				if k < opts.MinRank || match.Target < opts.MinRank {
					continue
				}
				mg.add(MatchingEdge{
					From:   MatchingNode{Run: i, Community: k},
					To:     MatchingNode{Run: j, Community: match.Target},
					Weight: match.Fraction,
				})
			}
		}
	}
	return mg, nil
}
