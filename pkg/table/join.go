package table

// MovieIndex looks movies up by WikipediaId. Build it once to join many
// character subsets against the same movies table. A repeated WikipediaId
// resolves to its last row.
type MovieIndex struct {
	movies *MovieTable
	pos    map[int64]int
}

// NewMovieIndex indexes movies by WikipediaId.
func NewMovieIndex(movies *MovieTable) *MovieIndex {
	pos := make(map[int64]int, len(movies.Rows))
	for i := range movies.Rows {
		pos[movies.Rows[i].WikipediaID] = i
	}
	return &MovieIndex{movies: movies, pos: pos}
}

// Movies returns the indexed table.
func (ix *MovieIndex) Movies() *MovieTable { return ix.movies }

// Position returns the row index of the movie with WikipediaId wiki.
func (ix *MovieIndex) Position(wiki int64) (int, bool) {
	i, ok := ix.pos[wiki]
	return i, ok
}

// Join inner-joins the indexed movies with characters. See Join.
func (ix *MovieIndex) Join(characters *CharacterTable) *AppearanceTable {
	out := &AppearanceTable{
		Rows: make([]Appearance, 0, len(characters.Rows)),
		Provenance: Provenance{
			Movies:     ix.movies.Filters.Clone(),
			Characters: characters.Filters.Clone(),
		},
	}
	for i := range characters.Rows {
		c := &characters.Rows[i]
		p, ok := ix.pos[c.WikipediaID]
		if !ok {
			continue
		}
		m := &ix.movies.Rows[p]
		out.Rows = append(out.Rows, Appearance{
			MovieWikipediaID: m.WikipediaID,
			MovieID:          m.FreebaseID,
			MovieName:        m.Name,
			ActorID:          c.ActorID,
			ActorName:        c.ActorName,
			Gender:           c.ActorGender,
			AgeAtRelease:     c.ActorAgeAtRelease,
			Ethnicity:        c.ActorEthnicity,
			Revenue:          m.Revenue,
			Genres:           m.Genres,
			Released:         m.Released,
		})
	}
	return out
}

// Join inner-joins movies and characters on WikipediaId. The result carries
// both filter chains as its provenance; row order follows the characters
// table.
func Join(movies *MovieTable, characters *CharacterTable) *AppearanceTable {
	return NewMovieIndex(movies).Join(characters)
}

// FilterActors returns the rows credited to one of ids, keeping provenance.
func (t *AppearanceTable) FilterActors(ids []string) *AppearanceTable {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := &AppearanceTable{Provenance: t.Provenance.Clone()}
	for _, row := range t.Rows {
		if _, ok := keep[row.ActorID]; ok {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
