package algorithms

import (
	"container/heap"
	"fmt"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// CentralityScores holds every score computed for one graph. Values are
// recomputed on request and never persisted.
type CentralityScores struct {
	Katz        map[string]float64
	Closeness   map[string]float64
	Betweenness map[string]float64
	Composite   map[string]float64
	Alpha       float64 // Katz attenuation actually used
}

// CentralityOptions configures ComputeCentrality
type CentralityOptions struct {
	Katz      KatzOptions
	Closeness ClosenessOptions
}

// DefaultCentralityOptions returns default centrality configuration
func DefaultCentralityOptions() CentralityOptions {
	return CentralityOptions{
		Katz:      DefaultKatzOptions(),
		Closeness: DefaultClosenessOptions(),
	}
}

// ComputeCentrality runs Katz, closeness and betweenness over g and combines
// them into the composite importance score.
func ComputeCentrality(g *graph.Graph, opts CentralityOptions) (*CentralityScores, error) {
	if g.NodeCount() == 0 {
		return nil, fmt.Errorf("centrality: %w", ErrEmptyGraph)
	}

	katz, err := KatzCentrality(g, opts.Katz)
	if err != nil {
		return nil, err
	}

	scores := &CentralityScores{
		Katz:        katz.Scores,
		Closeness:   ClosenessCentrality(g, opts.Closeness),
		Betweenness: BetweennessCentrality(g),
		Alpha:       katz.Alpha,
	}
	scores.Composite = Importance(scores.Katz, scores.Closeness, scores.Betweenness)
	return scores, nil
}

// Importance averages the given score maps per node and rescales the result
// so the largest value is 1. All-zero input stays zero.
func Importance(measures ...map[string]float64) map[string]float64 {
	composite := make(map[string]float64)
	if len(measures) == 0 {
		return composite
	}

	for id := range measures[0] {
		sum := 0.0
		for _, m := range measures {
			sum += m[id]
		}
		composite[id] = sum / float64(len(measures))
	}

	maxScore := 0.0
	for _, v := range composite {
		if v > maxScore {
			maxScore = v
		}
	}
	if maxScore > 0 {
		for id := range composite {
			composite[id] /= maxScore
		}
	}
	return composite
}

// MergeInto writes every score into attrs under the standard keys.
func (s *CentralityScores) MergeInto(attrs *graph.Attributes) {
	attrs.SetScores(graph.AttrKatz, s.Katz)
	attrs.SetScores(graph.AttrCloseness, s.Closeness)
	attrs.SetScores(graph.AttrBetweenness, s.Betweenness)
	attrs.SetScores(graph.AttrCentrality, s.Composite)
}

// ByKey returns the score map stored under an attribute key.
func (s *CentralityScores) ByKey(key string) (map[string]float64, bool) {
	switch key {
	case graph.AttrKatz:
		return s.Katz, true
	case graph.AttrCloseness:
		return s.Closeness, true
	case graph.AttrBetweenness:
		return s.Betweenness, true
	case graph.AttrCentrality:
		return s.Composite, true
	}
	return nil, false
}

// Top returns the k best nodes by key with display names from attrs.
func (s *CentralityScores) Top(k int, key string, attrs *graph.Attributes) ([]RankedNode, error) {
	scores, ok := s.ByKey(key)
	if !ok {
		return nil, fmt.Errorf("unknown centrality %q", key)
	}
	return TopNodes(scores, k, attrs), nil
}

// RankedNode represents a node with its rank
type RankedNode struct {
	ID    string
	Name  string
	Score float64
}

// rankedNodeHeap is a min-heap on (score, reversed id) so the root is always
// the entry to evict when a better node arrives.
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].ID > h[j].ID
}
func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopNodes returns the k highest scores, sorted descending with ties broken
// by ascending id. Names are resolved through attrs when it is non-nil.
// Time complexity: O(n log k)
func TopNodes(scores map[string]float64, k int, attrs *graph.Attributes) []RankedNode {
	if k <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, k)
	heap.Init(&h)

	for id, score := range scores {
		rn := RankedNode{ID: id, Score: score}
		if h.Len() < k {
			heap.Push(&h, rn)
		} else if (rankedNodeHeap{h[0], rn}).Less(0, 1) {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	// Pops come out worst first
	result := make([]RankedNode, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}

	for i := range result {
		if attrs != nil {
			result[i].Name = attrs.Name(result[i].ID)
		} else {
			result[i].Name = result[i].ID
		}
	}
	return result
}
