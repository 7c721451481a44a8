// Package pipeline runs the co-appearance analysis end to end: load and
// filter the corpus, build the graph, detect and persist communities, and
// evaluate them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/analysis"
	"github.com/dd0wney/cluso-costar/pkg/config"
	"github.com/dd0wney/cluso-costar/pkg/dataset"
	"github.com/dd0wney/cluso-costar/pkg/graph"
	"github.com/dd0wney/cluso-costar/pkg/logging"
	"github.com/dd0wney/cluso-costar/pkg/metrics"
	"github.com/dd0wney/cluso-costar/pkg/parallel"
	"github.com/dd0wney/cluso-costar/pkg/partition"
	"github.com/dd0wney/cluso-costar/pkg/table"
)

// Session holds the state shared by the steps of one analysis. The
// filtered tables and the graph are built once, on first use. Not safe for
// concurrent use; DetectAll does its own fan-out.
type Session struct {
	id      string
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	store   partition.Store

	corpus      *dataset.Corpus
	movies      *table.MovieTable
	characters  *table.CharacterTable
	appearances *table.AppearanceTable
	graph       *graph.Graph
	actors      *analysis.ActorIndex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Session) { s.metrics = r }
}

// WithStore replaces the store named by the config.
func WithStore(store partition.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithCorpus supplies the raw tables instead of reading the data dir.
func WithCorpus(c *dataset.Corpus) Option {
	return func(s *Session) { s.corpus = c }
}

// New creates a session for cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	s := &Session{
		id:  uuid.NewString(),
		cfg: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}
	s.logger = s.logger.With(logging.SessionID(s.id))
	if s.metrics == nil {
		s.metrics = metrics.DefaultRegistry()
	}
	if s.store == nil {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	s.store = &instrumentedStore{Store: s.store, kind: cfg.Store.Kind, metrics: s.metrics}
	s.metrics.MarkSessionStart(time.Now())
	return s, nil
}

// ID returns the session id stamped on logs and saved records.
func (s *Session) ID() string { return s.id }

// Metrics returns the session's registry.
func (s *Session) Metrics() *metrics.Registry { return s.metrics }

// step times fn and records its outcome under algorithm.
func (s *Session) step(algorithm string, fn func() error, fields ...logging.Field) error {
	timer := logging.StartTimer(s.logger, algorithm, append(fields, logging.Algorithm(algorithm))...)
	err := fn()
	var elapsed time.Duration
	if err != nil {
		elapsed = timer.EndError(err)
	} else {
		elapsed = timer.End()
	}
	s.metrics.RecordAlgorithm(algorithm, elapsed, err)
	return err
}

// Tables returns the filtered movie and character tables and their join.
func (s *Session) Tables(ctx context.Context) (*table.MovieTable, *table.CharacterTable, *table.AppearanceTable, error) {
	if s.appearances != nil {
		return s.movies, s.characters, s.appearances, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	if s.corpus == nil {
		var corpus *dataset.Corpus
		err := s.step("load", func() error {
			var err error
			corpus, err = dataset.Load(s.cfg.DataDir)
			return err
		}, logging.Path(s.cfg.DataDir))
		if err != nil {
			return nil, nil, nil, err
		}
		s.corpus = corpus
	}

	movies, characters, err := applyFilters(s.cfg.Dataset, s.corpus)
	if err != nil {
		return nil, nil, nil, err
	}
	s.movies, s.characters = movies, characters
	s.appearances = table.Join(movies, characters)
	s.actors = analysis.NewActorIndex(characters)

	s.metrics.SetTableRows("movies", movies.Len())
	s.metrics.SetTableRows("characters", characters.Len())
	s.metrics.SetTableRows("appearances", s.appearances.Len())
	s.logger.Info("tables prepared",
		logging.Int("movies", movies.Len()),
		logging.Int("characters", characters.Len()),
		logging.Int("appearances", s.appearances.Len()))
	return s.movies, s.characters, s.appearances, nil
}

// applyFilters runs the configured filter chain. Empty filters are skipped.
func applyFilters(cfg config.DatasetConfig, corpus *dataset.Corpus) (*table.MovieTable, *table.CharacterTable, error) {
	movies := corpus.Movies
	if cfg.Country != "" {
		movies = movies.FilterByCountry(cfg.Country)
	}
	if cfg.Language != "" {
		movies = movies.FilterByLanguage(cfg.Language)
	}
	if cfg.Genre != "" {
		movies = movies.FilterByGenre(cfg.Genre)
	}
	for _, column := range cfg.MovieRequired {
		var err error
		if movies, err = movies.DropMissing(column); err != nil {
			return nil, nil, err
		}
	}
	if cfg.FixDates {
		var err error
		if movies, err = movies.FixDate("ReleaseDate"); err != nil {
			return nil, nil, err
		}
	}

	characters := corpus.Characters
	for _, column := range cfg.CharacterRequired {
		var err error
		if characters, err = characters.DropMissing(column); err != nil {
			return nil, nil, err
		}
	}
	return movies, characters, nil
}

// Graph returns the co-appearance graph of the filtered tables.
func (s *Session) Graph(ctx context.Context) (*graph.Graph, error) {
	if s.graph != nil {
		return s.graph, nil
	}
	_, _, appearances, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	g, err := graph.Build(appearances)
	if err != nil {
		return nil, err
	}
	s.metrics.GraphBuildDuration.Observe(time.Since(start).Seconds())
	s.metrics.SetGraphSize(g.NodeCount(), g.EdgeCount())
	s.logger.Info("graph built", logging.Nodes(g.NodeCount()), logging.Edges(g.EdgeCount()))
	s.graph = g
	return g, nil
}

// Detect runs Louvain with seed on the graph.
func (s *Session) Detect(ctx context.Context, seed int64) (*algorithms.CommunityDetectionResult, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var res *algorithms.CommunityDetectionResult
	err = s.step("louvain", func() error {
		var err error
		res, err = algorithms.Louvain(g, seed, s.cfg.Louvain())
		return err
	}, logging.Seed(seed))
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	s.metrics.RecordDetection(seed, res.Partition.Len(), res.Levels, res.Modularity)
	s.logger.Info("communities detected",
		logging.Seed(seed),
		logging.Count(res.Partition.Len()),
		logging.Float64("modularity", res.Modularity))
	return res, nil
}

// Save persists a detection result under the configured name for its seed
// and returns that name.
func (s *Session) Save(ctx context.Context, res *algorithms.CommunityDetectionResult) (string, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return "", err
	}
	rec := partition.NewRecord(g, res.Partition)
	seed := res.Seed
	rec.Seed = &seed
	rec.SessionID = s.id

	name := s.cfg.Naming().Name(seed)
	if err := partition.Save(ctx, s.store, name, rec); err != nil {
		return "", fmt.Errorf("seed %d: %w", seed, err)
	}
	s.logger.Info("partition saved", logging.Seed(seed), logging.Path(name))
	return name, nil
}

// DetectAll detects and saves one partition per configured seed, running
// up to Detection.Workers seeds at once. Results are in seed order.
func (s *Session) DetectAll(ctx context.Context) ([]*algorithms.CommunityDetectionResult, error) {
	// Build the graph before fanning out so workers only read it
	if _, err := s.Graph(ctx); err != nil {
		return nil, err
	}

	seeds := s.cfg.Detection.Seeds
	results := make([]*algorithms.CommunityDetectionResult, len(seeds))
	err := parallel.ForEach(ctx, s.cfg.Detection.Workers, len(seeds), func(ctx context.Context, i int) error {
		res, err := s.Detect(ctx, seeds[i])
		if err != nil {
			return err
		}
		if _, err := s.Save(ctx, res); err != nil {
			return err
		}
		results[i] = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// recordMismatch counts provenance failures before handing err back.
func (s *Session) recordMismatch(err error) error {
	var pme *partition.ProvenanceMismatchError
	if errors.As(err, &pme) {
		s.metrics.RecordProvenanceMismatch(pme.Side)
		s.logger.Warn("partition provenance mismatch",
			logging.Path(pme.Name),
			logging.String("side", pme.Side))
	}
	return err
}

// LoadPartition reads the saved partition of seed.
func (s *Session) LoadPartition(ctx context.Context, seed int64) (partition.Partition, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := partition.Load(ctx, s.store, s.cfg.Naming().Name(seed), g)
	if err != nil {
		return nil, s.recordMismatch(fmt.Errorf("seed %d: %w", seed, err))
	}
	return rec.Partition(), nil
}

// LoadRuns reads the saved partition of every configured seed, in seed
// order, as a run set.
func (s *Session) LoadRuns(ctx context.Context) (*analysis.RunSet, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	runs, err := partition.LoadRuns(ctx, s.store, g, s.cfg.Naming(), s.cfg.Detection.Seeds)
	if err != nil {
		return nil, s.recordMismatch(err)
	}
	rs, err := analysis.NewRunSet(runs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("runs loaded", logging.Count(rs.Len()))
	return rs, nil
}

// Quality evaluates the saved partition of seed.
func (s *Session) Quality(ctx context.Context, seed int64) (*analysis.QualityReport, error) {
	p, err := s.LoadPartition(ctx, seed)
	if err != nil {
		return nil, err
	}
	movies, _, appearances, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}

	var report *analysis.QualityReport
	err = s.step("quality", func() error {
		var err error
		report, err = analysis.Evaluate(s.graph, p, movies, appearances, s.cfg.Quality.TakeFilmFraction)
		return err
	}, logging.Seed(seed))
	if err != nil {
		return nil, err
	}
	s.logger.Info("partition evaluated",
		logging.Seed(seed),
		logging.Float64("coverage", report.Coverage),
		logging.Float64("performance", report.Performance))
	return report, nil
}

// Clusters returns the per-community views of the saved partition of seed,
// largest community first.
func (s *Session) Clusters(ctx context.Context, seed int64) (analysis.ClusterSet, error) {
	p, err := s.LoadPartition(ctx, seed)
	if err != nil {
		return nil, err
	}
	movies, characters, _, err := s.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return analysis.NewClusterSet(characters, movies, p.Sorted()), nil
}

// CentralityReport holds the scores of one centrality run and the
// top-ranked actors by composite importance.
type CentralityReport struct {
	Scores *algorithms.CentralityScores
	Top    []algorithms.RankedNode
	Nodes  int
}

// Centrality scores the whole graph, or the subgraph induced by ids when
// ids is non-empty.
func (s *Session) Centrality(ctx context.Context, ids []string) (*CentralityReport, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		g = g.Subgraph(ids)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var scores *algorithms.CentralityScores
	err = s.step("centrality", func() error {
		var err error
		scores, err = algorithms.ComputeCentrality(g, s.cfg.CentralityOptions())
		return err
	}, logging.Nodes(g.NodeCount()))
	if err != nil {
		return nil, err
	}

	attrs := graph.NewAttributes()
	s.actors.Annotate(g, attrs)
	scores.MergeInto(attrs)
	top, err := scores.Top(s.cfg.Centrality.TopK, graph.AttrCentrality, attrs)
	if err != nil {
		return nil, err
	}
	return &CentralityReport{Scores: scores, Top: top, Nodes: g.NodeCount()}, nil
}

// CommunityCentrality scores the subgraph of one community of the saved
// partition of seed. rank indexes the size-sorted communities.
func (s *Session) CommunityCentrality(ctx context.Context, seed int64, rank int) (*CentralityReport, error) {
	p, err := s.LoadPartition(ctx, seed)
	if err != nil {
		return nil, err
	}
	sorted := p.Sorted()
	if rank < 0 || rank >= sorted.Len() {
		return nil, fmt.Errorf("seed %d: community %d of %d: %w", seed, rank, sorted.Len(), analysis.ErrRunIndex)
	}
	s.logger.Debug("scoring community", logging.Seed(seed), logging.Community(rank))
	return s.Centrality(ctx, sorted[rank])
}

// Match builds the matching graph over every saved run.
func (s *Session) Match(ctx context.Context) (*analysis.MatchingGraph, error) {
	rs, err := s.LoadRuns(ctx)
	if err != nil {
		return nil, err
	}

	var mg *analysis.MatchingGraph
	err = s.step("matching", func() error {
		var err error
		mg, err = rs.MatchingGraph(s.cfg.MatchingOptions())
		return err
	}, logging.Count(rs.Len()))
	if err != nil {
		return nil, err
	}
	s.metrics.SetMatchingEdges(mg.EdgeCount())
	s.logger.Info("matching graph built", logging.Edges(mg.EdgeCount()))
	return mg, nil
}

// Stability estimates the co-occurrence stability of the saved runs.
func (s *Session) Stability(ctx context.Context) (float64, error) {
	rs, err := s.LoadRuns(ctx)
	if err != nil {
		return 0, err
	}

	skipped := 0
	for i := 0; i < rs.Len(); i++ {
		if !hasPairs(rs.Run(i)) {
			s.logger.Warn("run has no actor pairs to sample", logging.Run(i))
			skipped++
		}
	}
	s.metrics.RecordSkippedRuns(skipped)

	var stability float64
	err = s.step("stability", func() error {
		var err error
		stability, err = analysis.CoOccurrenceStability(rs, s.cfg.Stability.Iterations, s.cfg.Stability.Seed)
		return err
	}, logging.Seed(s.cfg.Stability.Seed))
	if err != nil {
		return 0, err
	}
	s.logger.Info("stability estimated", logging.Float64("stability", stability))
	return stability, nil
}

// hasPairs reports whether the sampler can draw from p.
func hasPairs(p partition.Partition) bool {
	if p.Len() < 2 {
		return false
	}
	for _, c := range p {
		if len(c) > 1 {
			return true
		}
	}
	return false
}

// Path returns a shortest chain of co-stars from one actor to another, or
// nil when they are not connected.
func (s *Session) Path(ctx context.Context, from, to string) ([]string, error) {
	g, err := s.Graph(ctx)
	if err != nil {
		return nil, err
	}
	var path []string
	err = s.step("shortest_path", func() error {
		var err error
		path, err = algorithms.ShortestPath(g, from, to)
		return err
	}, logging.ActorID(from))
	return path, err
}

// ActorName resolves an actor id, falling back to the id itself.
func (s *Session) ActorName(id string) string {
	if s.actors != nil {
		if name, ok := s.actors.Name(id); ok {
			return name
		}
	}
	return id
}

// Close samples runtime statistics and writes the metrics textfile when one
// is configured.
func (s *Session) Close() error {
	s.metrics.UpdateSystemMetrics()
	if s.cfg.MetricsTextfile == "" {
		return nil
	}
	if err := s.metrics.WriteTextfile(s.cfg.MetricsTextfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
