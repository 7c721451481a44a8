package algorithms

import (
	"math/rand"
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/partition"
)

// weightedGraph is one aggregation level of the Louvain hierarchy. Adjacency
// lists are sorted and exclude self loops, which live in loops.
type weightedGraph struct {
	nbrs  [][]int
	wts   [][]float64
	loops []float64
}

func (wg *weightedGraph) size() int { return len(wg.nbrs) }

func levelZero(ix *graph.Indexed) *weightedGraph {
	n := ix.Len()
	wg := &weightedGraph{
		nbrs:  make([][]int, n),
		wts:   make([][]float64, n),
		loops: make([]float64, n),
	}
	for i, nbrs := range ix.Adj {
		wg.nbrs[i] = slices.Clone(nbrs)
		wg.wts[i] = make([]float64, len(nbrs))
		for j := range nbrs {
			wg.wts[i][j] = 1.0
		}
	}
	return wg
}

// louvainState tracks community aggregates for one level.
type louvainState struct {
	node2com    []int
	internals   []float64 // internal edge weight per community, each edge once
	degrees     []float64 // total degree per community
	gdegrees    []float64 // weighted degree per node, loops counted twice
	totalWeight float64
	resolution  float64
}

func newLouvainState(wg *weightedGraph, resolution float64) *louvainState {
	n := wg.size()
	s := &louvainState{
		node2com:   make([]int, n),
		internals:  make([]float64, n),
		degrees:    make([]float64, n),
		gdegrees:   make([]float64, n),
		resolution: resolution,
	}
	for i := 0; i < n; i++ {
		deg := 2 * wg.loops[i]
		for _, w := range wg.wts[i] {
			deg += w
		}
		s.totalWeight += deg
		s.node2com[i] = i
		s.gdegrees[i] = deg
		s.degrees[i] = deg
		s.internals[i] = wg.loops[i]
	}
	s.totalWeight /= 2
	return s
}

func (s *louvainState) modularity() float64 {
	if s.totalWeight == 0 {
		return 0
	}
	m := s.totalWeight
	q := 0.0
	for c := range s.degrees {
		if s.degrees[c] == 0 && s.internals[c] == 0 {
			continue
		}
		frac := s.degrees[c] / (2 * m)
		q += s.internals[c]*s.resolution/m - frac*frac
	}
	return q
}

func (s *louvainState) remove(node, com int, weight, loop float64) {
	s.degrees[com] -= s.gdegrees[node]
	s.internals[com] -= weight + loop
	s.node2com[node] = -1
}

func (s *louvainState) insert(node, com int, weight, loop float64) {
	s.node2com[node] = com
	s.degrees[com] += s.gdegrees[node]
	s.internals[com] += weight + loop
}

// neighborCommunities returns the communities adjacent to node, in order of
// first appearance over the sorted adjacency list, with the edge weight
// linking node to each.
func (s *louvainState) neighborCommunities(wg *weightedGraph, node int) ([]int, map[int]float64) {
	order := make([]int, 0, len(wg.nbrs[node]))
	weights := make(map[int]float64, len(wg.nbrs[node]))
	for j, nbr := range wg.nbrs[node] {
		com := s.node2com[nbr]
		if _, ok := weights[com]; !ok {
			order = append(order, com)
		}
		weights[com] += wg.wts[node][j]
	}
	return order, weights
}

// oneLevel moves nodes between neighbouring communities until no move gains
// more than opts.MinGain. Node order and candidate order are shuffled by rng.
func (s *louvainState) oneLevel(wg *weightedGraph, rng *rand.Rand, opts LouvainOptions) {
	n := wg.size()
	order := make([]int, n)
	curMod := s.modularity()
	newMod := curMod

	for pass := 0; opts.MaxPasses == 0 || pass < opts.MaxPasses; pass++ {
		curMod = newMod
		modified := false

		for i := range order {
			order[i] = i
		}
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		for _, node := range order {
			comNode := s.node2com[node]
			degcTotw := s.gdegrees[node] / (s.totalWeight * 2)
			candidates, weights := s.neighborCommunities(wg, node)

			removeCost := -weights[comNode] + s.resolution*(s.degrees[comNode]-s.gdegrees[node])*degcTotw
			s.remove(node, comNode, weights[comNode], wg.loops[node])

			rng.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})
			bestCom := comNode
			bestIncrease := 0.0
			for _, com := range candidates {
				incr := removeCost + weights[com] - s.resolution*s.degrees[com]*degcTotw
				if incr > bestIncrease {
					bestIncrease = incr
					bestCom = com
				}
			}

			s.insert(node, bestCom, weights[bestCom], wg.loops[node])
			if bestCom != comNode {
				modified = true
			}
		}

		newMod = s.modularity()
		if !modified || newMod-curMod < opts.MinGain {
			break
		}
	}
}

// renumber maps community labels to 0..k-1 in order of first appearance.
func renumber(node2com []int) ([]int, int) {
	labels := make(map[int]int)
	out := make([]int, len(node2com))
	for i, c := range node2com {
		l, ok := labels[c]
		if !ok {
			l = len(labels)
			labels[c] = l
		}
		out[i] = l
	}
	return out, len(labels)
}

// induce collapses every community into one node. Internal edges become a
// self loop carrying their summed weight.
func induce(wg *weightedGraph, membership []int, k int) *weightedGraph {
	agg := make([]map[int]float64, k)
	for c := range agg {
		agg[c] = make(map[int]float64)
	}
	loops := make([]float64, k)

	for u := 0; u < wg.size(); u++ {
		cu := membership[u]
		loops[cu] += wg.loops[u]
		for j, v := range wg.nbrs[u] {
			if v < u {
				continue // each undirected edge once
			}
			cv := membership[v]
			w := wg.wts[u][j]
			if cu == cv {
				loops[cu] += w
				continue
			}
			agg[cu][cv] += w
			agg[cv][cu] += w
		}
	}

	next := &weightedGraph{
		nbrs:  make([][]int, k),
		wts:   make([][]float64, k),
		loops: loops,
	}
	for c := 0; c < k; c++ {
		nbrs := make([]int, 0, len(agg[c]))
		for d := range agg[c] {
			nbrs = append(nbrs, d)
		}
		slices.Sort(nbrs)
		wts := make([]float64, len(nbrs))
		for j, d := range nbrs {
			wts[j] = agg[c][d]
		}
		next.nbrs[c] = nbrs
		next.wts[c] = wts
	}
	return next
}

// Louvain partitions g by greedy modularity optimisation with aggregation
// (Blondel et al.). All randomness comes from seed, so the result is a pure
// function of (g, seed, opts): the same inputs always give the same
// communities in the same order.
func Louvain(g *graph.Graph, seed int64, opts LouvainOptions) (*CommunityDetectionResult, error) {
	if opts.Resolution == 0 {
		opts.Resolution = 1.0
	}
	ix := g.Index()
	if ix.Len() == 0 {
		return nil, ErrEmptyGraph
	}

	rng := rand.New(rand.NewSource(seed))

	// node -> community at the current top level
	membership := make([]int, ix.Len())
	for i := range membership {
		membership[i] = i
	}

	levels := 0
	if ix.Edges > 0 {
		wg := levelZero(ix)
		state := newLouvainState(wg, opts.Resolution)
		state.oneLevel(wg, rng, opts)
		mod := state.modularity()
		labels, k := renumber(state.node2com)
		membership = labels
		levels = 1
		wg = induce(wg, labels, k)

		for opts.MaxLevels == 0 || levels < opts.MaxLevels {
			state = newLouvainState(wg, opts.Resolution)
			state.oneLevel(wg, rng, opts)
			newMod := state.modularity()
			if newMod-mod < opts.MinGain {
				break
			}
			labels, k = renumber(state.node2com)
			for i, c := range membership {
				membership[i] = labels[c]
			}
			mod = newMod
			levels++
			wg = induce(wg, labels, k)
		}
	}

	p := groupMembership(ix.IDs, membership)
	q, err := Modularity(g, p)
	if err != nil {
		return nil, err
	}
	return &CommunityDetectionResult{
		Partition:  p,
		Modularity: q,
		Levels:     levels,
		Seed:       seed,
	}, nil
}

// groupMembership builds communities ordered by label, members in id order.
func groupMembership(ids []string, membership []int) partition.Partition {
	k := 0
	for _, c := range membership {
		if c+1 > k {
			k = c + 1
		}
	}
	p := make(partition.Partition, k)
	for i, c := range membership {
		p[c] = append(p[c], ids[i])
	}
	out := p[:0]
	for _, c := range p {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}
