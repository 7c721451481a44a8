package analysis

import (
	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

// ActorIndex resolves actor ids against the characters table.
type ActorIndex struct {
	names  map[string]string
	movies map[string][]int64
}

// NewActorIndex indexes every credited actor. The name of an actor is the
// one on their first row.
func NewActorIndex(characters *table.CharacterTable) *ActorIndex {
	idx := &ActorIndex{
		names:  make(map[string]string),
		movies: make(map[string][]int64),
	}
	for _, row := range characters.Rows {
		if row.ActorID == "" {
			continue
		}
		if _, ok := idx.names[row.ActorID]; !ok {
			idx.names[row.ActorID] = row.ActorName
		}
		idx.movies[row.ActorID] = append(idx.movies[row.ActorID], row.WikipediaID)
	}
	return idx
}

// Name returns the display name of id.
func (a *ActorIndex) Name(id string) (string, bool) {
	name, ok := a.names[id]
	return name, ok
}

// MovieIDs returns the Wikipedia ids of every movie id is credited in.
func (a *ActorIndex) MovieIDs(id string) []int64 {
	return a.movies[id]
}

// Annotate records the display name of every node of g in attrs.
func (a *ActorIndex) Annotate(g *graph.Graph, attrs *graph.Attributes) {
	for _, id := range g.Nodes() {
		if name, ok := a.names[id]; ok {
			attrs.SetName(id, name)
		}
	}
}
