package table

import (
	"fmt"
	"strings"
	"time"
)

// describe renders a filter descriptor as name(k=v k=v), the format stored in
// partition files.
func describe(name string, kv ...string) string {
	args := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		args = append(args, kv[i]+"="+kv[i+1])
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, " "))
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// filterMovies returns a new table holding the rows keep accepts, with
// descriptor appended to the chain. The receiver is not modified.
func (t *MovieTable) filterMovies(descriptor string, keep func(*Movie) bool) *MovieTable {
	out := &MovieTable{
		Rows:    make([]Movie, 0, len(t.Rows)),
		Filters: append(t.Filters.Clone(), descriptor),
	}
	for i := range t.Rows {
		if keep(&t.Rows[i]) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// FilterByCountry keeps movies released in country.
func (t *MovieTable) FilterByCountry(country string) *MovieTable {
	return t.filterMovies(describe("filter_by_country", "country", country), func(m *Movie) bool {
		return m.Countries.Has(country)
	})
}

// FilterByLanguage keeps movies available in language.
func (t *MovieTable) FilterByLanguage(language string) *MovieTable {
	return t.filterMovies(describe("filter_by_language", "language", language), func(m *Movie) bool {
		return m.Languages.Has(language)
	})
}

// FilterByGenre keeps movies tagged with genre.
func (t *MovieTable) FilterByGenre(genre string) *MovieTable {
	return t.filterMovies(describe("filter_by_genre", "genre", genre), func(m *Movie) bool {
		return m.Genres.Has(genre)
	})
}

// movieMissing reports whether column is absent on m.
func movieMissing(m *Movie, column string) (bool, error) {
	switch column {
	case "WikipediaId":
		return m.WikipediaID == 0, nil
	case "FreebaseId":
		return m.FreebaseID == "", nil
	case "MovieName":
		return m.Name == "", nil
	case "ReleaseDate":
		return m.ReleaseDate == "", nil
	case "Revenue":
		return m.Revenue == nil, nil
	case "Runtime":
		return m.Runtime == nil, nil
	case "Languages":
		return len(m.Languages) == 0, nil
	case "Countries":
		return len(m.Countries) == 0, nil
	case "Genres":
		return len(m.Genres) == 0, nil
	default:
		return false, IntegrityError("drop_nans", "movies", column, "unknown column")
	}
}

// DropMissing keeps movies where column is present.
func (t *MovieTable) DropMissing(column string) (*MovieTable, error) {
	if _, err := movieMissing(&Movie{}, column); err != nil {
		return nil, err
	}
	return t.filterMovies(describe("drop_nans", "column", column), func(m *Movie) bool {
		missing, _ := movieMissing(m, column)
		return !missing
	}), nil
}

// DropMissingSubset keeps movies where every column in subset is present.
func (t *MovieTable) DropMissingSubset(subset ...string) (*MovieTable, error) {
	for _, column := range subset {
		if _, err := movieMissing(&Movie{}, column); err != nil {
			return nil, err
		}
	}
	return t.filterMovies(describe("drop_nans_subset", "subset", quoteList(subset)), func(m *Movie) bool {
		for _, column := range subset {
			if missing, _ := movieMissing(m, column); missing {
				return false
			}
		}
		return true
	}), nil
}

var releaseLayouts = []string{"2006-01-02", "2006-01", "2006", time.RFC3339}

// ParseReleaseDate parses the mixed date formats of the corpus. It returns
// the zero time when s does not parse.
func ParseReleaseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range releaseLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// FixDate parses the release date column into Released. Unparseable dates
// stay zero; no rows are removed.
func (t *MovieTable) FixDate(column string) (*MovieTable, error) {
	if column != "ReleaseDate" {
		return nil, IntegrityError("fix_date", "movies", column, "not a date column")
	}
	out := t.filterMovies(describe("fix_date", "column", column), func(*Movie) bool { return true })
	for i := range out.Rows {
		out.Rows[i].Released = ParseReleaseDate(out.Rows[i].ReleaseDate)
	}
	return out, nil
}

func characterMissing(c *Character, column string) (bool, error) {
	switch column {
	case "WikipediaId":
		return c.WikipediaID == 0, nil
	case "FreebaseId":
		return c.MovieFreebaseID == "", nil
	case "CharacterName":
		return c.CharacterName == "", nil
	case "ActorDateOfBirth":
		return c.ActorDateOfBirth == "", nil
	case "ActorGender":
		return c.ActorGender == "", nil
	case "ActorHeight":
		return c.ActorHeight == nil, nil
	case "ActorEthnicity":
		return c.ActorEthnicity == "", nil
	case "ActorName":
		return c.ActorName == "", nil
	case "ActorAgeAtRelease":
		return c.ActorAgeAtRelease == nil, nil
	case "FreebaseActorId":
		return c.ActorID == "", nil
	default:
		return false, IntegrityError("drop_nans", "characters", column, "unknown column")
	}
}

// DropMissing keeps characters where column is present.
func (t *CharacterTable) DropMissing(column string) (*CharacterTable, error) {
	if _, err := characterMissing(&Character{}, column); err != nil {
		return nil, err
	}
	out := &CharacterTable{
		Rows:    make([]Character, 0, len(t.Rows)),
		Filters: append(t.Filters.Clone(), describe("drop_nans", "column", column)),
	}
	for i := range t.Rows {
		if missing, _ := characterMissing(&t.Rows[i], column); !missing {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out, nil
}
