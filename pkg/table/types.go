package table

import (
	"slices"
	"time"
)

// Categories maps a category key (a Freebase id in the CMU corpus) to its
// display name. Semantically a set of names.
type Categories map[string]string

// Has reports whether name is one of the category names.
func (c Categories) Has(name string) bool {
	for _, v := range c {
		if v == name {
			return true
		}
	}
	return false
}

// Names returns the distinct category names in sorted order.
func (c Categories) Names() []string {
	names := make([]string, 0, len(c))
	for _, v := range c {
		names = append(names, v)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Movie is one row of the movies table.
type Movie struct {
	WikipediaID int64
	FreebaseID  string
	Name        string
	ReleaseDate string
	Released    time.Time // zero until FixDate parses ReleaseDate
	Revenue     *float64
	Runtime     *float64
	Languages   Categories
	Countries   Categories
	Genres      Categories
}

// Character is one row of the characters table: one actor credited for one
// role in one movie.
type Character struct {
	WikipediaID         int64
	MovieFreebaseID     string
	ReleaseDate         string
	CharacterName       string
	ActorDateOfBirth    string
	ActorGender         string
	ActorHeight         *float64
	ActorEthnicity      string
	ActorName           string
	ActorAgeAtRelease   *float64
	CharacterActorMapID string
	CharacterID         string
	ActorID             string
}

// FilterMetadata is the ordered list of filter descriptors applied to a table.
type FilterMetadata []string

// Equal reports whether both chains hold the same descriptors in the same order.
func (f FilterMetadata) Equal(other FilterMetadata) bool {
	return slices.Equal(f, other)
}

// Clone returns an independent copy. A nil chain clones to an empty one so
// serialized provenance is always a list.
func (f FilterMetadata) Clone() FilterMetadata {
	out := make(FilterMetadata, len(f))
	copy(out, f)
	return out
}

// Provenance records the filter chains of both source tables of a join.
type Provenance struct {
	Movies     FilterMetadata `json:"movies_filter_metadata"`
	Characters FilterMetadata `json:"characters_filter_metadata"`
}

// Clone returns a deep copy.
func (p Provenance) Clone() Provenance {
	return Provenance{Movies: p.Movies.Clone(), Characters: p.Characters.Clone()}
}

// Equal reports whether both chains match.
func (p Provenance) Equal(other Provenance) bool {
	return p.Movies.Equal(other.Movies) && p.Characters.Equal(other.Characters)
}

// MovieTable is a filtered view of the movies table.
type MovieTable struct {
	Rows    []Movie
	Filters FilterMetadata
}

// NewMovieTable wraps rows with an empty filter chain.
func NewMovieTable(rows []Movie) *MovieTable {
	return &MovieTable{Rows: rows, Filters: FilterMetadata{}}
}

// Len returns the number of rows.
func (t *MovieTable) Len() int { return len(t.Rows) }

// ByFreebaseID indexes the rows by movie Freebase id.
func (t *MovieTable) ByFreebaseID() map[string]*Movie {
	idx := make(map[string]*Movie, len(t.Rows))
	for i := range t.Rows {
		idx[t.Rows[i].FreebaseID] = &t.Rows[i]
	}
	return idx
}

// CharacterTable is a filtered view of the characters table.
type CharacterTable struct {
	Rows    []Character
	Filters FilterMetadata
}

// NewCharacterTable wraps rows with an empty filter chain.
func NewCharacterTable(rows []Character) *CharacterTable {
	return &CharacterTable{Rows: rows, Filters: FilterMetadata{}}
}

// Len returns the number of rows.
func (t *CharacterTable) Len() int { return len(t.Rows) }

// Appearance is one (movie, role, actor) row of the joined table.
type Appearance struct {
	MovieWikipediaID int64
	MovieID          string // movie Freebase id, the grouping key for the graph
	MovieName        string
	ActorID          string
	ActorName        string
	Gender           string
	AgeAtRelease     *float64
	Ethnicity        string
	Revenue          *float64
	Genres           Categories
	Released         time.Time
}

// AppearanceTable is the joined actor-appearance table.
type AppearanceTable struct {
	Rows       []Appearance
	Provenance Provenance
}

// Len returns the number of rows.
func (t *AppearanceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// CreditCounts returns, per movie id, the number of credited rows. Multiple
// roles of one actor are counted separately.
func (t *AppearanceTable) CreditCounts() map[string]int {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if row.ActorID == "" {
			continue
		}
		counts[row.MovieID]++
	}
	return counts
}
