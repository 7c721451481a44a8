package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/partition"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

func credit(movie, actor, ethnicity string) table.Appearance {
	return table.Appearance{MovieID: movie, ActorID: actor, Ethnicity: ethnicity}
}

// qualityFixture returns three movies and their credits. e plays two roles
// in m3.
func qualityFixture(t *testing.T) (*graph.Graph, *table.MovieTable, *table.AppearanceTable) {
	t.Helper()

	movies := table.NewMovieTable([]table.Movie{
		{WikipediaID: 1, FreebaseID: "m1", Name: "One"},
		{WikipediaID: 2, FreebaseID: "m2", Name: "Two"},
		{WikipediaID: 3, FreebaseID: "m3", Name: "Three"},
	})
	appearances := &table.AppearanceTable{Rows: []table.Appearance{
		credit("m1", "a", "X"),
		credit("m1", "b", "X"),
		credit("m1", "c", ""),
		credit("m2", "a", "X"),
		credit("m2", "d", "Y"),
		credit("m3", "d", "Y"),
		credit("m3", "e", ""),
		credit("m3", "e", ""),
	}}

	g, err := graph.Build(appearances)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g, movies, appearances
}

func TestEvaluate(t *testing.T) {
	g, movies, appearances := qualityFixture(t)
	p := partition.Partition{{"d", "e"}, {"a", "b", "c"}}

	report, err := Evaluate(g, p, movies, appearances, 0.5)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if math.Abs(report.Coverage-0.8) > 1e-12 {
		t.Errorf("Expected coverage 0.8, got %f", report.Coverage)
	}
	if math.Abs(report.Performance-0.9) > 1e-12 {
		t.Errorf("Expected performance 0.9, got %f", report.Performance)
	}

	expected := []CommunitySummary{
		{Index: 0, Size: 3, DominantEthnicity: "X", MissingEthnicity: 1.0 / 3.0},
		{Index: 1, Size: 2, DominantEthnicity: "Y", MissingEthnicity: 0.5},
	}
	if len(report.Communities) != len(expected) {
		t.Fatalf("Expected %d communities, got %d", len(expected), len(report.Communities))
	}
	for i, want := range expected {
		if report.Communities[i] != want {
			t.Errorf("Community %d: expected %+v, got %+v", i, want, report.Communities[i])
		}
	}

	// m2 is split evenly, which is not above the threshold
	if len(report.PopularFilms) != 2 {
		t.Fatalf("Expected 2 popular films, got %+v", report.PopularFilms)
	}
	if f := report.PopularFilms[0]; f.PartitionIndex != 0 || f.Movie.FreebaseID != "m1" || f.Fraction != 1.0 {
		t.Errorf("Expected m1 in community 0, got %+v", f)
	}
	if f := report.PopularFilms[1]; f.PartitionIndex != 1 || f.Movie.FreebaseID != "m3" || f.Fraction != 1.0 {
		t.Errorf("Expected m3 in community 1, got %+v", f)
	}
}

func TestEvaluate_LowerThreshold(t *testing.T) {
	g, movies, appearances := qualityFixture(t)
	p := partition.Partition{{"a", "b", "c"}, {"d", "e"}}

	report, err := Evaluate(g, p, movies, appearances, 0.4)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	got := make([]string, 0)
	for _, f := range report.PopularFilms {
		got = append(got, f.Movie.FreebaseID)
	}
	expected := []string{"m1", "m2", "m2", "m3"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, got)
			break
		}
	}
	if n := len(report.PopularFilmsOf(1)); n != 2 {
		t.Errorf("Expected 2 popular films in community 1, got %d", n)
	}
}

// TestEvaluate_WholeGraph tests that one community containing everything has full coverage
func TestEvaluate_WholeGraph(t *testing.T) {
	g, movies, appearances := qualityFixture(t)

	report, err := Evaluate(g, partition.Partition{g.Nodes()}, movies, appearances, 1.0)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if report.Coverage != 1.0 {
		t.Errorf("Expected coverage 1, got %f", report.Coverage)
	}
	if len(report.PopularFilms) != 0 {
		t.Errorf("Expected no film above fraction 1, got %d", len(report.PopularFilms))
	}
}

func TestEvaluate_Errors(t *testing.T) {
	g, movies, appearances := qualityFixture(t)
	valid := partition.Partition{g.Nodes()}

	tests := []struct {
		name     string
		p        partition.Partition
		fraction float64
		expected error
	}{
		{"empty partition", partition.Partition{}, 0.5, partition.ErrEmptyPartition},
		{"zero fraction", valid, 0, ErrInvalidFraction},
		{"fraction above one", valid, 1.5, ErrInvalidFraction},
		{"missing nodes", partition.Partition{{"a"}}, 0.5, partition.ErrNotAPartition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Evaluate(g, tt.p, movies, appearances, tt.fraction); !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestDominantEthnicity_Tie(t *testing.T) {
	ethnicity := map[string]string{"a": "Z", "b": "A"}

	dominant, missing := dominantEthnicity(partition.Community{"a", "b", "c", "d"}, ethnicity)

	if dominant != "A" {
		t.Errorf("Expected lexicographic tiebreak to A, got %q", dominant)
	}
	if missing != 0.5 {
		t.Errorf("Expected missing fraction 0.5, got %f", missing)
	}
}
