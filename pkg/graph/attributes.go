package graph

import "slices"

// Common attribute keys.
const (
	AttrName        = "name"
	AttrKatz        = "katz"
	AttrCloseness   = "closeness"
	AttrBetweenness = "betweenness"
	AttrCentrality  = "centrality"
)

// Attributes is a caller-owned store of per-node values. Analyses write into
// it explicitly instead of mutating the graph. Not safe for concurrent use.
type Attributes struct {
	names  map[string]string
	scores map[string]map[string]float64
}

// NewAttributes creates an empty store.
func NewAttributes() *Attributes {
	return &Attributes{
		names:  make(map[string]string),
		scores: make(map[string]map[string]float64),
	}
}

// SetName records the display name of a node.
func (a *Attributes) SetName(id, name string) {
	a.names[id] = name
}

// Name returns the display name of id, falling back to the id itself.
func (a *Attributes) Name(id string) string {
	if name, ok := a.names[id]; ok && name != "" {
		return name
	}
	return id
}

// SetScore records a numeric attribute key for id.
func (a *Attributes) SetScore(id, key string, value float64) {
	m, ok := a.scores[key]
	if !ok {
		m = make(map[string]float64)
		a.scores[key] = m
	}
	m[id] = value
}

// Score returns the numeric attribute key of id.
func (a *Attributes) Score(id, key string) (float64, bool) {
	v, ok := a.scores[key][id]
	return v, ok
}

// SetScores records every value of scores under key.
func (a *Attributes) SetScores(key string, scores map[string]float64) {
	for id, v := range scores {
		a.SetScore(id, key, v)
	}
}

// Keys returns the numeric attribute keys present, sorted.
func (a *Attributes) Keys() []string {
	keys := make([]string, 0, len(a.scores))
	for k := range a.scores {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
