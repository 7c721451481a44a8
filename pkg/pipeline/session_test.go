package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/analysis"
	"github.com/dd0wney/cluso-costar/pkg/config"
	"github.com/dd0wney/cluso-costar/pkg/dataset"
	"github.com/dd0wney/cluso-costar/pkg/logging"
	"github.com/dd0wney/cluso-costar/pkg/metrics"
	"github.com/dd0wney/cluso-costar/pkg/partition"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

func revenue(v float64) *float64 { return &v }

func role(wiki int64, actor string) table.Character {
	return table.Character{WikipediaID: wiki, ActorID: actor, ActorName: "Actor " + strings.ToUpper(actor)}
}

// testCorpus holds two US box-office movies with disjoint casts. The
// French movie and the movie without revenue are filtered out, so their
// credits never link the two casts.
func testCorpus() *dataset.Corpus {
	us := table.Categories{"/m/09c7w0": "United States of America"}
	movies := table.NewMovieTable([]table.Movie{
		{WikipediaID: 1, FreebaseID: "/m/m1", Name: "One", Countries: us, Revenue: revenue(100)},
		{WikipediaID: 2, FreebaseID: "/m/m2", Name: "Two", Countries: us, Revenue: revenue(200)},
		{WikipediaID: 3, FreebaseID: "/m/m3", Name: "Trois", Countries: table.Categories{"/m/0f8l9c": "France"}, Revenue: revenue(50)},
		{WikipediaID: 4, FreebaseID: "/m/m4", Name: "Four", Countries: us},
	})
	characters := table.NewCharacterTable([]table.Character{
		role(1, "a"), role(1, "b"), role(1, "c"), role(1, ""),
		role(2, "d"), role(2, "e"), role(2, "f"),
		role(3, "a"), role(3, "d"),
		role(4, "c"), role(4, "d"),
	})
	return &dataset.Corpus{Movies: movies, Characters: characters}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Dir = t.TempDir()
	cfg.Detection.Seeds = []int64{1, 2, 3}
	cfg.Centrality.KatzAlpha = 0.1
	cfg.Centrality.TopK = 2
	cfg.Stability.Iterations = 50
	return cfg
}

func newSession(t *testing.T, cfg *config.Config, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{
		WithCorpus(testCorpus()),
		WithLogger(logging.NewNopLogger()),
		WithMetrics(metrics.NewRegistry()),
	}, opts...)
	s, err := New(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func gauge(t *testing.T, g interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if m.Gauge != nil {
		return m.Gauge.GetValue()
	}
	return m.Counter.GetValue()
}

func TestSessionGraph(t *testing.T) {
	var buf bytes.Buffer
	s := newSession(t, testConfig(t), WithLogger(logging.NewJSONLogger(&buf, logging.InfoLevel)))

	if _, err := uuid.Parse(s.ID()); err != nil {
		t.Errorf("Session id %q is not a uuid: %v", s.ID(), err)
	}

	g, err := s.Graph(context.Background())
	if err != nil {
		t.Fatalf("Graph failed: %v", err)
	}
	if g.NodeCount() != 6 || g.EdgeCount() != 6 {
		t.Errorf("Expected 6 nodes and 6 edges, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
	if g.HasEdge("a", "d") || g.HasEdge("c", "d") {
		t.Error("Filtered movies should not link the casts")
	}

	want := table.FilterMetadata{
		"filter_by_country(country=United States of America)",
		"drop_nans(column=Revenue)",
	}
	if !g.Metadata().Movies.Equal(want) {
		t.Errorf("Movies provenance = %v, want %v", g.Metadata().Movies, want)
	}
	if !g.Metadata().Characters.Equal(table.FilterMetadata{"drop_nans(column=FreebaseActorId)"}) {
		t.Errorf("Unexpected characters provenance %v", g.Metadata().Characters)
	}

	if got := gauge(t, s.Metrics().GraphNodesTotal); got != 6 {
		t.Errorf("Nodes gauge = %v, want 6", got)
	}
	if !strings.Contains(buf.String(), `"session_id":"`+s.ID()+`"`) {
		t.Errorf("Logs should carry the session id:\n%s", buf.String())
	}

	// Cached
	again, _ := s.Graph(context.Background())
	if again != g {
		t.Error("Graph should be built once per session")
	}
}

func TestDetectAllAndLoadRuns(t *testing.T) {
	cfg := testConfig(t)
	s := newSession(t, cfg)
	ctx := context.Background()

	results, err := s.DetectAll(ctx)
	if err != nil {
		t.Fatalf("DetectAll failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	for _, seed := range cfg.Detection.Seeds {
		if _, err := os.Stat(filepath.Join(cfg.Store.Dir, partition.FileName(partition.DefaultPrefix, seed))); err != nil {
			t.Errorf("Expected partition file for seed %d: %v", seed, err)
		}
	}

	rs, err := s.LoadRuns(ctx)
	if err != nil {
		t.Fatalf("LoadRuns failed: %v", err)
	}
	expected := partition.Partition{{"a", "b", "c"}, {"d", "e", "f"}}
	for i := 0; i < rs.Len(); i++ {
		if !rs.Run(i).Equal(expected) {
			t.Errorf("Run %d = %v, want %v", i, rs.Run(i), expected)
		}
	}

	written, err := s.Metrics().PartitionsWrittenTotal.GetMetricWithLabelValues(config.StoreFile, metrics.StatusSuccess)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := gauge(t, written); got != 3 {
		t.Errorf("Partitions written = %v, want 3", got)
	}
}

func TestDetectAll_Workers(t *testing.T) {
	for _, workers := range []int{0, 1, 3} {
		cfg := testConfig(t)
		cfg.Detection.Seeds = []int64{5, 1, 9, 2}
		cfg.Detection.Workers = workers

		results, err := newSession(t, cfg).DetectAll(context.Background())
		if err != nil {
			t.Fatalf("workers=%d: DetectAll failed: %v", workers, err)
		}
		for i, res := range results {
			if res.Seed != cfg.Detection.Seeds[i] {
				t.Errorf("workers=%d: result %d has seed %d, want %d", workers, i, res.Seed, cfg.Detection.Seeds[i])
			}
		}
	}
}

func TestSavedRecordCarriesSession(t *testing.T) {
	cfg := testConfig(t)
	s := newSession(t, cfg)
	ctx := context.Background()

	res, err := s.Detect(ctx, 2)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	name, err := s.Save(ctx, res)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Store.Dir, name))
	if err != nil {
		t.Fatalf("Failed to read %s: %v", name, err)
	}
	if !strings.Contains(string(data), s.ID()) || !strings.Contains(string(data), `"seed": 2`) {
		t.Errorf("Record should name its seed and session:\n%s", data)
	}
}

func TestProvenanceMismatch(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	if _, err := newSession(t, cfg).DetectAll(ctx); err != nil {
		t.Fatalf("DetectAll failed: %v", err)
	}

	french := *cfg
	french.Dataset.Country = "France"
	s := newSession(t, &french)

	_, err := s.LoadRuns(ctx)
	if !errors.Is(err, partition.ErrProvenanceMismatch) {
		t.Fatalf("Expected ErrProvenanceMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "run 0 (seed 1)") {
		t.Errorf("Error should name the run: %v", err)
	}

	counter, err := s.Metrics().ProvenanceMismatchesTotal.GetMetricWithLabelValues("movies")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := gauge(t, counter); got != 1 {
		t.Errorf("Mismatch counter = %v, want 1", got)
	}
}

func TestQuality(t *testing.T) {
	cfg := testConfig(t)
	s := newSession(t, cfg)
	ctx := context.Background()
	if _, err := s.DetectAll(ctx); err != nil {
		t.Fatalf("DetectAll failed: %v", err)
	}

	report, err := s.Quality(ctx, 1)
	if err != nil {
		t.Fatalf("Quality failed: %v", err)
	}
	if report.Coverage != 1 || report.Performance != 1 {
		t.Errorf("Expected perfect coverage and performance, got %v and %v", report.Coverage, report.Performance)
	}
	if len(report.PopularFilms) != 2 {
		t.Errorf("Expected one popular film per community, got %v", report.PopularFilms)
	}

	clusters, err := s.Clusters(ctx, 1)
	if err != nil {
		t.Fatalf("Clusters failed: %v", err)
	}
	if len(clusters) != 2 || clusters[0].Size() != 3 {
		t.Fatalf("Unexpected clusters %v", clusters)
	}
	if total := clusters[0].TotalRevenue() + clusters[1].TotalRevenue(); total != 300 {
		t.Errorf("Total revenue = %v, want 300", total)
	}

	if _, err := s.Quality(ctx, 99); !errors.Is(err, partition.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unsaved seed, got %v", err)
	}
}

func TestCentrality(t *testing.T) {
	s := newSession(t, testConfig(t))
	ctx := context.Background()

	report, err := s.Centrality(ctx, nil)
	if err != nil {
		t.Fatalf("Centrality failed: %v", err)
	}
	if report.Nodes != 6 {
		t.Errorf("Expected 6 nodes, got %d", report.Nodes)
	}
	// Every actor is symmetric; ties break on id
	if len(report.Top) != 2 || report.Top[0].ID != "a" || report.Top[1].ID != "b" {
		t.Fatalf("Unexpected top actors %+v", report.Top)
	}
	if report.Top[0].Name != "Actor A" {
		t.Errorf("Expected resolved name, got %q", report.Top[0].Name)
	}

	sub, err := s.Centrality(ctx, []string{"d", "e", "f"})
	if err != nil {
		t.Fatalf("Subgraph centrality failed: %v", err)
	}
	if sub.Nodes != 3 || sub.Top[0].ID != "d" {
		t.Errorf("Unexpected subgraph report %+v", sub)
	}
}

func TestCentrality_DerivedAlphaPair(t *testing.T) {
	cfg := testConfig(t)
	cfg.Centrality.KatzAlpha = 0

	report, err := newSession(t, cfg).Centrality(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Centrality of a pair failed: %v", err)
	}
	if report.Nodes != 2 {
		t.Errorf("Expected 2 nodes, got %d", report.Nodes)
	}
	if report.Scores.Composite["a"] != report.Scores.Composite["b"] {
		t.Errorf("Expected equal composite scores, got %v", report.Scores.Composite)
	}
}

func TestSummary(t *testing.T) {
	sum, err := newSession(t, testConfig(t)).Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if sum.Nodes != 6 || sum.Edges != 6 {
		t.Errorf("Expected 6 nodes and 6 edges, got %d and %d", sum.Nodes, sum.Edges)
	}
	if sum.Components != 2 || sum.LargestComponent != 3 || sum.Isolated != 0 {
		t.Errorf("Expected two triangles, got %+v", sum)
	}
	if sum.Triangles != 2 || sum.AverageClustering != 1.0 {
		t.Errorf("Expected 2 triangles with clustering 1, got %d and %f", sum.Triangles, sum.AverageClustering)
	}
	if !sum.PageRankConverged {
		t.Error("Expected PageRank to converge")
	}
	for _, top := range [][]algorithms.RankedNode{sum.TopPageRank, sum.TopDegree} {
		if len(top) != 2 || top[0].ID != "a" || top[1].ID != "b" || top[0].Name != "Actor A" {
			t.Errorf("Unexpected top actors %+v", top)
		}
	}
}

func TestCommunityCentrality(t *testing.T) {
	s := newSession(t, testConfig(t))
	ctx := context.Background()
	if _, err := s.DetectAll(ctx); err != nil {
		t.Fatalf("DetectAll failed: %v", err)
	}

	report, err := s.CommunityCentrality(ctx, 1, 0)
	if err != nil {
		t.Fatalf("CommunityCentrality failed: %v", err)
	}
	if report.Nodes != 3 {
		t.Errorf("Expected a 3-actor community, got %d", report.Nodes)
	}

	if _, err := s.CommunityCentrality(ctx, 1, 2); !errors.Is(err, analysis.ErrRunIndex) {
		t.Errorf("Expected ErrRunIndex, got %v", err)
	}
}

func TestMatchAndStability(t *testing.T) {
	s := newSession(t, testConfig(t))
	ctx := context.Background()
	if _, err := s.DetectAll(ctx); err != nil {
		t.Fatalf("DetectAll failed: %v", err)
	}

	mg, err := s.Match(ctx)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	// 3 runs give 6 ordered pairs, each matching both communities exactly
	if mg.EdgeCount() != 12 {
		t.Errorf("Expected 12 edges, got %d", mg.EdgeCount())
	}
	for _, e := range mg.Edges() {
		if e.Weight != 1 {
			t.Errorf("Edge %v -> %v weight = %v, want 1", e.From, e.To, e.Weight)
		}
	}
	if got := gauge(t, s.Metrics().MatchingEdgesTotal); got != 12 {
		t.Errorf("Matching edges gauge = %v, want 12", got)
	}

	stability, err := s.Stability(ctx)
	if err != nil {
		t.Fatalf("Stability failed: %v", err)
	}
	if stability != 1 {
		t.Errorf("Identical runs should be perfectly stable, got %v", stability)
	}
}

func TestPath(t *testing.T) {
	s := newSession(t, testConfig(t))
	ctx := context.Background()

	path, err := s.Path(ctx, "a", "c")
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}
	if !slices.Equal(path, []string{"a", "c"}) {
		t.Errorf("Path = %v, want [a c]", path)
	}

	path, err = s.Path(ctx, "a", "d")
	if err != nil || path != nil {
		t.Errorf("Expected no path between casts, got %v, %v", path, err)
	}

	if _, err := s.Path(ctx, "a", "zz"); err == nil {
		t.Error("Expected error for unknown actor")
	}
	if s.ActorName("b") != "Actor B" || s.ActorName("zz") != "zz" {
		t.Error("ActorName should resolve names and fall back to the id")
	}
}

func TestCloseWritesMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "costar.prom")
	s := newSession(t, cfg)

	if _, err := s.Graph(context.Background()); err != nil {
		t.Fatalf("Graph failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(cfg.MetricsTextfile)
	if err != nil {
		t.Fatalf("Failed to read metrics: %v", err)
	}
	if !strings.Contains(string(data), "costar_graph_nodes_total 6") {
		t.Errorf("Metrics textfile missing graph size:\n%s", data)
	}
}

func TestCancelledContext(t *testing.T) {
	s := newSession(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Detect(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
