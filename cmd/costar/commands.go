package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dd0wney/cluso-costar/pkg/config"
	"github.com/dd0wney/cluso-costar/pkg/logging"
	"github.com/dd0wney/cluso-costar/pkg/pipeline"
)

var errUsage = errors.New("invalid usage")

// commonFlags are accepted by every analysis command.
type commonFlags struct {
	configFile string
	envFile    string
	dataDir    string
	storeDir   string
	seeds      string
	logLevel   string
	metrics    string
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cf := &commonFlags{}
	fs.StringVar(&cf.configFile, "config", "", "YAML config file")
	fs.StringVar(&cf.envFile, "env", "", "file of environment variables to load")
	fs.StringVar(&cf.dataDir, "data-dir", "", "MovieSummaries directory")
	fs.StringVar(&cf.storeDir, "store-dir", "", "partition directory for the file store")
	fs.StringVar(&cf.seeds, "seeds", "", "comma-separated seeds or ranges")
	fs.StringVar(&cf.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&cf.metrics, "metrics", "", "Prometheus textfile written on exit")
	return fs, cf
}

// load builds the config from file, environment and flags, in that order
// of precedence from lowest to highest.
func (cf *commonFlags) load() (*config.Config, error) {
	var err error
	if cf.envFile != "" {
		err = config.LoadDotEnv(cf.envFile)
	} else {
		err = config.LoadDotEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg, err := config.Load(cf.configFile)
	if err != nil {
		return nil, err
	}
	if cf.dataDir != "" {
		cfg.DataDir = cf.dataDir
	}
	if cf.storeDir != "" {
		cfg.Store.Dir = cf.storeDir
	}
	if cf.seeds != "" {
		if cfg.Detection.Seeds, err = config.ParseSeeds(cf.seeds); err != nil {
			return nil, err
		}
	}
	if cf.logLevel != "" {
		cfg.LogLevel = cf.logLevel
	}
	if cf.metrics != "" {
		cfg.MetricsTextfile = cf.metrics
	}
	return cfg, nil
}

// openSession validates cfg and starts a session logging to stderr.
func openSession(ctx context.Context, cfg *config.Config, stderr io.Writer) (*pipeline.Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(stderr, level).With(logging.Component("cli"))
	return pipeline.New(ctx, cfg, pipeline.WithLogger(logger))
}

// withSession runs fn in a session and always flushes its metrics.
func withSession(ctx context.Context, cfg *config.Config, stderr io.Writer, fn func(*pipeline.Session) error) (err error) {
	s, err := openSession(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func handleDetect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("detect", stderr)
	resolution := fs.Float64("resolution", 0, "Louvain resolution (default from config)")
	compress := fs.Bool("compress", false, "save snappy-compressed partitions")
	workers := fs.Int("workers", -1, "seeds detected at once; 0 means one per CPU")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *resolution > 0 {
		cfg.Detection.Resolution = *resolution
	}
	if *compress {
		cfg.Store.Compress = true
	}
	if *workers >= 0 {
		cfg.Detection.Workers = *workers
	}

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		results, err := s.DetectAll(ctx)
		if err != nil {
			return err
		}
		names := make([]string, len(results))
		for i, res := range results {
			names[i] = cfg.Naming().Name(res.Seed)
		}
		fmt.Fprintln(stdout, renderDetection(results, names))
		return nil
	})
}

func handleQuality(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("quality", stderr)
	seed := fs.Int64("seed", 0, "seed of the saved run (default: first configured seed)")
	fraction := fs.Float64("take-film-fraction", 0, "share of credits that makes a film popular in a community")
	limit := fs.Int("limit", 20, "communities to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *fraction != 0 {
		cfg.Quality.TakeFilmFraction = *fraction
	}
	chosen := pickSeed(fs, "seed", *seed, cfg)

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		report, err := s.Quality(ctx, chosen)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderQuality(chosen, report, *limit))
		return nil
	})
}

func handleClusters(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("clusters", stderr)
	seed := fs.Int64("seed", 0, "seed of the saved run (default: first configured seed)")
	limit := fs.Int("limit", 20, "clusters to list")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	chosen := pickSeed(fs, "seed", *seed, cfg)

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		set, err := s.Clusters(ctx, chosen)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderClusters(chosen, set, *limit))
		return nil
	})
}

func handleGraph(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("graph", stderr)
	top := fs.Int("top", 0, "actors to list (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *top > 0 {
		cfg.Centrality.TopK = *top
	}

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		sum, err := s.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderSummary(sum))
		return nil
	})
}

func handleCentrality(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("centrality", stderr)
	seed := fs.Int64("seed", 0, "seed of the saved run holding -community")
	community := fs.Int("community", -1, "rank of the community to score; -1 scores the whole graph")
	top := fs.Int("top", 0, "actors to list (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *top > 0 {
		cfg.Centrality.TopK = *top
	}
	chosen := pickSeed(fs, "seed", *seed, cfg)

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		var (
			report *pipeline.CentralityReport
			err    error
		)
		if *community >= 0 {
			report, err = s.CommunityCentrality(ctx, chosen, *community)
		} else {
			report, err = s.Centrality(ctx, nil)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderCentrality(report))
		return nil
	})
}

func handleMatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("match", stderr)
	threshold := fs.Float64("threshold", -1, "keep matches with weight strictly above (default from config)")
	first := fs.Int("first", -1, "only the first K communities of each source run")
	minRank := fs.Int("min-rank", -1, "drop matches involving a community ranked below")
	onlyRun := fs.Int("only-run", -2, "only matches touching this run index")
	round := fs.Int("round", -1, "decimal places shown for weights")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *threshold >= 0 {
		cfg.Matching.Threshold = *threshold
	}
	if *first >= 0 {
		cfg.Matching.FirstCommunities = *first
	}
	if *minRank >= 0 {
		cfg.Matching.MinRank = *minRank
	}
	if *onlyRun >= -1 {
		cfg.Matching.OnlyRun = *onlyRun
	}
	if *round >= 0 {
		cfg.Matching.Rounding = *round
	}

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		mg, err := s.Match(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderMatching(mg, cfg.Detection.Seeds, cfg.Matching.Rounding))
		return nil
	})
}

func handleStability(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("stability", stderr)
	iterations := fs.Int("iterations", 0, "samples drawn per run (default from config)")
	sampleSeed := fs.Int64("sample-seed", 0, "seed of the pair sampler")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}
	if *iterations > 0 {
		cfg.Stability.Iterations = *iterations
	}
	if isSet(fs, "sample-seed") {
		cfg.Stability.Seed = *sampleSeed
	}

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		stability, err := s.Stability(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderStability(stability, len(cfg.Detection.Seeds), cfg.Stability.Iterations))
		return nil
	})
}

func handlePath(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, cf := newFlagSet("path", stderr)
	from := fs.String("from", "", "Freebase id of the first actor")
	to := fs.String("to", "", "Freebase id of the second actor")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return fmt.Errorf("%w: -from and -to are required", errUsage)
	}
	cfg, err := cf.load()
	if err != nil {
		return err
	}

	return withSession(ctx, cfg, stderr, func(s *pipeline.Session) error {
		path, err := s.Path(ctx, *from, *to)
		if err != nil {
			return err
		}
		names := make([]string, len(path))
		for i, id := range path {
			names[i] = s.ActorName(id)
		}
		fmt.Fprintln(stdout, renderPath(names))
		return nil
	})
}

// pickSeed returns the flag value when given, else the first configured seed.
func pickSeed(fs *flag.FlagSet, name string, value int64, cfg *config.Config) int64 {
	if isSet(fs, name) {
		return value
	}
	return cfg.Detection.Seeds[0]
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
