// Package dataset loads the CMU MovieSummaries flat files into tables.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-costar/pkg/table"
)

// File names inside the MovieSummaries directory.
const (
	MoviesFile     = "movie.metadata.tsv"
	CharactersFile = "character.metadata.tsv"
)

var movieColumns = []string{
	"WikipediaId", "FreebaseId", "MovieName", "ReleaseDate", "Revenue",
	"Runtime", "Languages", "Countries", "Genres",
}

var characterColumns = []string{
	"WikipediaId", "FreebaseId", "ReleaseDate", "CharacterName", "ActorDateOfBirth",
	"ActorGender", "ActorHeight", "ActorEthnicity", "ActorName", "ActorAgeAtRelease",
	"FreebaseCharacterActorMapId", "FreebaseCharId", "FreebaseActorId",
}

// maxLine bounds a single TSV record.
const maxLine = 1 << 20

// Corpus holds both source tables, unfiltered.
type Corpus struct {
	Movies     *table.MovieTable
	Characters *table.CharacterTable
}

// Load reads both tables from dir.
func Load(dir string) (*Corpus, error) {
	movies, err := LoadMovies(filepath.Join(dir, MoviesFile))
	if err != nil {
		return nil, err
	}
	characters, err := LoadCharacters(filepath.Join(dir, CharactersFile))
	if err != nil {
		return nil, err
	}
	return &Corpus{Movies: movies, Characters: characters}, nil
}

// LoadMovies reads movie.metadata.tsv through a memory map.
func LoadMovies(path string) (*table.MovieTable, error) {
	var t *table.MovieTable
	err := withMapped(path, func(r io.Reader) error {
		var err error
		t, err = ParseMovies(r)
		return err
	})
	return t, err
}

// LoadCharacters reads character.metadata.tsv through a memory map.
func LoadCharacters(path string) (*table.CharacterTable, error) {
	var t *table.CharacterTable
	err := withMapped(path, func(r io.Reader) error {
		var err error
		t, err = ParseCharacters(r)
		return err
	})
	return t, err
}

func withMapped(path string, fn func(io.Reader) error) error {
	r, err := mmap.Open(path)
	if err != nil {
		return fmt.Errorf("failed to map %s: %w", path, err)
	}
	defer r.Close()

	if err := fn(io.NewSectionReader(r, 0, int64(r.Len()))); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// ParseMovies decodes movie rows, one per line, tab separated, no header.
func ParseMovies(r io.Reader) (*table.MovieTable, error) {
	rows := make([]table.Movie, 0)
	err := eachRecord(r, "movies", movieColumns, func(_ int, f fields) error {
		m := table.Movie{
			FreebaseID:  f.text(1),
			Name:        f.text(2),
			ReleaseDate: f.text(3),
		}
		var err error
		if m.WikipediaID, err = f.integer(0); err != nil {
			return err
		}
		if m.Revenue, err = f.number(4); err != nil {
			return err
		}
		if m.Runtime, err = f.number(5); err != nil {
			return err
		}
		if m.Languages, err = f.categories(6); err != nil {
			return err
		}
		if m.Countries, err = f.categories(7); err != nil {
			return err
		}
		if m.Genres, err = f.categories(8); err != nil {
			return err
		}
		rows = append(rows, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table.NewMovieTable(rows), nil
}

// ParseCharacters decodes character rows, one per line, tab separated, no
// header.
func ParseCharacters(r io.Reader) (*table.CharacterTable, error) {
	rows := make([]table.Character, 0)
	err := eachRecord(r, "characters", characterColumns, func(_ int, f fields) error {
		c := table.Character{
			MovieFreebaseID:     f.text(1),
			ReleaseDate:         f.text(2),
			CharacterName:       f.text(3),
			ActorDateOfBirth:    f.text(4),
			ActorGender:         f.text(5),
			ActorEthnicity:      f.text(7),
			ActorName:           f.text(8),
			CharacterActorMapID: f.text(10),
			CharacterID:         f.text(11),
			ActorID:             f.text(12),
		}
		var err error
		if c.WikipediaID, err = f.integer(0); err != nil {
			return err
		}
		if c.ActorHeight, err = f.number(6); err != nil {
			return err
		}
		if c.ActorAgeAtRelease, err = f.number(9); err != nil {
			return err
		}
		rows = append(rows, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table.NewCharacterTable(rows), nil
}

// fields is one split record with enough context to report bad values.
type fields struct {
	values  []string
	table   string
	columns []string
	row     int
}

func (f fields) text(i int) string { return strings.TrimSpace(f.values[i]) }

func (f fields) fail(i int, reason string) error {
	return &table.DataIntegrityError{
		Op: "load", Table: f.table, Column: f.columns[i], Row: f.row, Reason: reason,
	}
}

func (f fields) integer(i int) (int64, error) {
	v, err := strconv.ParseInt(f.text(i), 10, 64)
	if err != nil {
		return 0, f.fail(i, fmt.Sprintf("invalid integer %q", f.values[i]))
	}
	return v, nil
}

// number returns nil for an empty value.
func (f fields) number(i int) (*float64, error) {
	s := f.text(i)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, f.fail(i, fmt.Sprintf("invalid number %q", s))
	}
	return &v, nil
}

// categories decodes a Freebase {"id": "name"} object.
func (f fields) categories(i int) (table.Categories, error) {
	s := f.text(i)
	out := make(table.Categories)
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, f.fail(i, fmt.Sprintf("invalid category map: %v", err))
	}
	return out, nil
}

func eachRecord(r io.Reader, name string, columns []string, fn func(int, fields) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	row := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		values := strings.Split(line, "\t")
		if len(values) != len(columns) {
			return &table.DataIntegrityError{
				Op: "load", Table: name, Row: row,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(columns), len(values)),
			}
		}
		if err := fn(row, fields{values: values, table: name, columns: columns, row: row}); err != nil {
			return err
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}
