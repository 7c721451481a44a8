package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-costar/pkg/table"
)

const movieRows = "975900\t/m/03vyhn\tGhosts of Mars\t2001-08-24\t14010832\t98.0\t{\"/m/02h40lc\": \"English Language\"}\t{\"/m/09c7w0\": \"United States of America\"}\t{\"/m/01jfsb\": \"Thriller\", \"/m/06n90\": \"Science Fiction\"}\n" +
	"3196793\t/m/08yl5d\tGetting Away with Murder\t2000-02-16\t\t95.0\t{\"/m/02h40lc\": \"English Language\"}\t{}\t{}\n"

const characterRows = "975900\t/m/03vyhn\t2001-08-24\tAkooshay\t1958-08-26\tF\t1.62\t\tWanda De Jesus\t42\t/m/0bgchxw\t/m/0bgcj3x\t/m/03wcfv7\n" +
	"975900\t/m/03vyhn\t2001-08-24\tLieutenant Melanie Ballard\t1974-08-15\tF\t1.78\t/m/044038p\tNatasha Henstridge\t\t/m/0jys3m\t/m/0bgchn4\t/m/0346l4\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, MoviesFile, movieRows)
	writeFile(t, dir, CharactersFile, characterRows)

	corpus, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if corpus.Movies.Len() != 2 {
		t.Fatalf("Expected 2 movies, got %d", corpus.Movies.Len())
	}
	m := corpus.Movies.Rows[0]
	if m.WikipediaID != 975900 || m.FreebaseID != "/m/03vyhn" || m.Name != "Ghosts of Mars" {
		t.Errorf("Unexpected movie %+v", m)
	}
	if m.Revenue == nil || *m.Revenue != 14010832 {
		t.Errorf("Expected revenue 14010832, got %v", m.Revenue)
	}
	if !m.Countries.Has("United States of America") {
		t.Errorf("Expected US country, got %v", m.Countries)
	}
	if names := m.Genres.Names(); len(names) != 2 || names[0] != "Science Fiction" {
		t.Errorf("Expected sorted genres, got %v", names)
	}
	if corpus.Movies.Rows[1].Revenue != nil {
		t.Errorf("Expected missing revenue, got %v", *corpus.Movies.Rows[1].Revenue)
	}
	if len(corpus.Movies.Filters) != 0 {
		t.Errorf("Expected empty filter chain, got %v", corpus.Movies.Filters)
	}

	if corpus.Characters.Len() != 2 {
		t.Fatalf("Expected 2 characters, got %d", corpus.Characters.Len())
	}
	c := corpus.Characters.Rows[1]
	if c.ActorID != "/m/0346l4" || c.ActorName != "Natasha Henstridge" || c.ActorEthnicity != "/m/044038p" {
		t.Errorf("Unexpected character %+v", c)
	}
	if c.ActorAgeAtRelease != nil {
		t.Errorf("Expected missing age, got %v", *c.ActorAgeAtRelease)
	}
	if h := corpus.Characters.Rows[0].ActorHeight; h == nil || *h != 1.62 {
		t.Errorf("Expected height 1.62, got %v", h)
	}
}

func TestLoad_Joinable(t *testing.T) {
	dir := t.TempDir()
	movies, err := LoadMovies(writeFile(t, dir, MoviesFile, movieRows))
	if err != nil {
		t.Fatalf("LoadMovies failed: %v", err)
	}
	characters, err := LoadCharacters(writeFile(t, dir, CharactersFile, characterRows))
	if err != nil {
		t.Fatalf("LoadCharacters failed: %v", err)
	}

	joined := table.Join(movies, characters)
	if joined.Len() != 2 {
		t.Errorf("Expected 2 joined rows, got %d", joined.Len())
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), MoviesFile, "")

	movies, err := LoadMovies(path)
	if err != nil {
		t.Fatalf("LoadMovies failed: %v", err)
	}
	if movies.Len() != 0 {
		t.Errorf("Expected no rows, got %d", movies.Len())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Expected error for missing files")
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		parse  func(string) error
		input  string
		column string
	}{
		{
			name:   "bad wikipedia id",
			parse:  func(s string) error { _, err := ParseMovies(strings.NewReader(s)); return err },
			input:  "x\t/m/1\tName\t\t\t\t{}\t{}\t{}\n",
			column: "WikipediaId",
		},
		{
			name:   "bad revenue",
			parse:  func(s string) error { _, err := ParseMovies(strings.NewReader(s)); return err },
			input:  "1\t/m/1\tName\t\tlots\t\t{}\t{}\t{}\n",
			column: "Revenue",
		},
		{
			name:   "bad genres",
			parse:  func(s string) error { _, err := ParseMovies(strings.NewReader(s)); return err },
			input:  "1\t/m/1\tName\t\t\t\t{}\t{}\t[\n",
			column: "Genres",
		},
		{
			name:   "short row",
			parse:  func(s string) error { _, err := ParseMovies(strings.NewReader(s)); return err },
			input:  "1\t/m/1\n",
			column: "",
		},
		{
			name:   "bad age",
			parse:  func(s string) error { _, err := ParseCharacters(strings.NewReader(s)); return err },
			input:  "1\t/m/1\t\t\t\t\t\t\t\told\t\t\t/m/a\n",
			column: "ActorAgeAtRelease",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse(tt.input)
			if !errors.Is(err, table.ErrDataIntegrity) {
				t.Fatalf("Expected ErrDataIntegrity, got %v", err)
			}
			var die *table.DataIntegrityError
			if !errors.As(err, &die) {
				t.Fatalf("Expected DataIntegrityError, got %T", err)
			}
			if die.Column != tt.column || die.Row != 0 {
				t.Errorf("Expected column %q row 0, got %q row %d", tt.column, die.Column, die.Row)
			}
		})
	}
}
