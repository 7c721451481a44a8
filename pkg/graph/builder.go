package graph

import (
	"slices"

	"github.com/dd0wney/cluso-costar/pkg/table"
)

// Build turns the joined appearance table into a co-appearance graph. Actors
// credited in the same movie are connected; every credited actor is a node
// even without co-stars. Rows with an empty actor id never create an edge.
func Build(t *table.AppearanceTable) (*Graph, error) {
	if t == nil || len(t.Rows) == 0 {
		return nil, table.IntegrityError("build", "appearances", "", "table is empty")
	}

	casts := make(map[string][]string)
	order := make([]string, 0)
	for i, row := range t.Rows {
		if row.MovieID == "" {
			return nil, &table.DataIntegrityError{
				Op: "build", Table: "appearances", Column: "FreebaseId", Row: i,
				Reason: "movie id is missing",
			}
		}
		if _, ok := casts[row.MovieID]; !ok {
			order = append(order, row.MovieID)
		}
		casts[row.MovieID] = append(casts[row.MovieID], row.ActorID)
	}

	g := New()
	for _, movieID := range order {
		cast := uniqueActors(casts[movieID])
		for i, left := range cast {
			for _, right := range cast[i+1:] {
				g.AddEdge(left, right)
			}
			g.AddNode(left)
		}
	}

	g.SetMetadata(t.Provenance)
	return g, nil
}

// uniqueActors returns the distinct non-empty ids in sorted order.
func uniqueActors(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
