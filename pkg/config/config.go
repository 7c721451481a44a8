// Package config loads analysis settings from YAML, an optional .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/analysis"
	"github.com/dd0wney/cluso-costar/pkg/logging"
	"github.com/dd0wney/cluso-costar/pkg/partition"
	"github.com/dd0wney/cluso-costar/pkg/validation"
)

// Store kinds
const (
	StoreFile = "file"
	StoreS3   = "s3"
)

// Config holds every setting of an analysis session.
type Config struct {
	DataDir         string `yaml:"data_dir" validate:"required"`
	LogLevel        string `yaml:"log_level"`
	MetricsTextfile string `yaml:"metrics_textfile"`

	Dataset    DatasetConfig    `yaml:"dataset"`
	Store      StoreConfig      `yaml:"store"`
	Detection  DetectionConfig  `yaml:"detection"`
	Centrality CentralityConfig `yaml:"centrality"`
	Quality    QualityConfig    `yaml:"quality"`
	Matching   MatchingConfig   `yaml:"matching"`
	Stability  StabilityConfig  `yaml:"stability"`
}

// DatasetConfig selects the filter chain applied before the join. Empty
// filters are skipped.
type DatasetConfig struct {
	Country           string   `yaml:"country"`
	Language          string   `yaml:"language"`
	Genre             string   `yaml:"genre"`
	FixDates          bool     `yaml:"fix_dates"`
	MovieRequired     []string `yaml:"movie_required"`
	CharacterRequired []string `yaml:"character_required"`
}

// StoreConfig selects where partitions live.
type StoreConfig struct {
	Kind       string `yaml:"kind" validate:"required,oneof=file s3"`
	Dir        string `yaml:"dir"`
	Bucket     string `yaml:"bucket"`
	KeyPrefix  string `yaml:"key_prefix"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	PathStyle  bool   `yaml:"path_style"`
	FilePrefix string `yaml:"file_prefix" validate:"prefix"`
	Compress   bool   `yaml:"compress"`

	// Credentials come from the environment only
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// DetectionConfig configures Louvain runs.
type DetectionConfig struct {
	Seeds      []int64 `yaml:"seeds" validate:"required,min=1,unique"`
	Resolution float64 `yaml:"resolution" validate:"gt=0"`
	MinGain    float64 `yaml:"min_gain" validate:"gte=0"`
	MaxPasses  int     `yaml:"max_passes" validate:"gte=0"`
	MaxLevels  int     `yaml:"max_levels" validate:"gte=0"`
	Workers    int     `yaml:"workers" validate:"gte=0"` // seeds detected at once; 0 means one per CPU
}

// CentralityConfig configures the centrality engine.
type CentralityConfig struct {
	KatzAlpha      float64 `yaml:"katz_alpha" validate:"gte=0"`
	AlphaOffset    float64 `yaml:"alpha_offset" validate:"gte=0"`
	MaxIterations  int     `yaml:"max_iterations" validate:"gt=0"`
	Tolerance      float64 `yaml:"tolerance" validate:"gt=0"`
	TopK           int     `yaml:"top_k" validate:"gt=0"`
	WassermanFaust bool    `yaml:"wasserman_faust"`
}

// QualityConfig configures partition evaluation.
type QualityConfig struct {
	TakeFilmFraction float64 `yaml:"take_film_fraction" validate:"fraction"`
}

// MatchingConfig configures the cross-run matching graph.
type MatchingConfig struct {
	Threshold        float64 `yaml:"threshold" validate:"gte=0,lte=1"`
	FirstCommunities int     `yaml:"first_communities" validate:"gte=0"`
	MinRank          int     `yaml:"min_rank" validate:"gte=0"`
	OnlyRun          int     `yaml:"only_run" validate:"gte=-1"`
	Rounding         int     `yaml:"rounding" validate:"gte=0,lte=15"`
}

// StabilityConfig configures co-occurrence stability sampling.
type StabilityConfig struct {
	Iterations int   `yaml:"iterations" validate:"gt=0"`
	Seed       int64 `yaml:"seed"`
}

// Default returns the settings of the US box-office analysis.
func Default() *Config {
	louvain := algorithms.DefaultLouvainOptions()
	katz := algorithms.DefaultKatzOptions()
	matching := analysis.DefaultMatchingOptions()
	return &Config{
		DataDir:  "MovieSummaries",
		LogLevel: "info",
		Dataset: DatasetConfig{
			Country:           "United States of America",
			MovieRequired:     []string{"Revenue"},
			CharacterRequired: []string{"FreebaseActorId"},
		},
		Store: StoreConfig{
			Kind:       StoreFile,
			Dir:        "data/processed",
			FilePrefix: partition.DefaultPrefix,
		},
		Detection: DetectionConfig{
			Seeds:      []int64{1, 2, 3, 4, 5},
			Resolution: louvain.Resolution,
			MinGain:    louvain.MinGain,
		},
		Centrality: CentralityConfig{
			AlphaOffset:    katz.AlphaOffset,
			MaxIterations:  katz.MaxIterations,
			Tolerance:      katz.Tolerance,
			TopK:           10,
			WassermanFaust: algorithms.DefaultClosenessOptions().WassermanFaust,
		},
		Quality: QualityConfig{TakeFilmFraction: 0.5},
		Matching: MatchingConfig{
			Threshold: matching.Threshold,
			OnlyRun:   matching.OnlyRun,
			Rounding:  2,
		},
		Stability: StabilityConfig{Iterations: 1000, Seed: 1},
	}
}

// LoadDotEnv loads environment files without overriding variables that are
// already set. With no paths it reads .env and ignores a missing file.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(paths...)
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks field constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	cv := validation.NewConfigValidator("config")
	cv.Custom("log_level", func() error {
		_, err := logging.ParseLevel(c.LogLevel)
		return err
	})
	cv.Custom("detection.seeds", func() error {
		return validation.ValidateSeeds(c.Detection.Seeds)
	})
	cv.When(c.Store.Kind == StoreFile, func(v *validation.ConfigValidator) {
		v.Required("store.dir", c.Store.Dir)
	})
	cv.When(c.Store.Kind == StoreS3, func(v *validation.ConfigValidator) {
		v.Required("store.bucket", c.Store.Bucket)
	})
	cv.When(c.Matching.OnlyRun >= 0, func(v *validation.ConfigValidator) {
		v.RangeInt("matching.only_run", c.Matching.OnlyRun, 0, len(c.Detection.Seeds)-1)
	})
	return cv.Validate()
}

// ApplyEnv overrides settings from COSTAR_* and AWS_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("COSTAR_LOG_LEVEL", &c.LogLevel)
	str("COSTAR_DATA_DIR", &c.DataDir)
	str("COSTAR_METRICS_TEXTFILE", &c.MetricsTextfile)
	str("COSTAR_COUNTRY", &c.Dataset.Country)
	str("COSTAR_LANGUAGE", &c.Dataset.Language)
	str("COSTAR_GENRE", &c.Dataset.Genre)

	str("COSTAR_STORE", &c.Store.Kind)
	str("COSTAR_STORE_DIR", &c.Store.Dir)
	str("COSTAR_PARTITION_PREFIX", &c.Store.FilePrefix)
	flag("COSTAR_COMPRESS", &c.Store.Compress)
	str("COSTAR_S3_BUCKET", &c.Store.Bucket)
	str("COSTAR_S3_PREFIX", &c.Store.KeyPrefix)
	flag("COSTAR_S3_PATH_STYLE", &c.Store.PathStyle)
	str("AWS_REGION", &c.Store.Region)
	str("AWS_ENDPOINT_URL", &c.Store.Endpoint)
	str("COSTAR_S3_ENDPOINT", &c.Store.Endpoint)
	str("AWS_ACCESS_KEY_ID", &c.Store.AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &c.Store.SecretKey)

	if v, ok := lookup("COSTAR_SEEDS"); ok && v != "" {
		seeds, err := ParseSeeds(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("COSTAR_SEEDS: %w", err))
		} else {
			c.Detection.Seeds = seeds
		}
	}
	num("COSTAR_RESOLUTION", &c.Detection.Resolution)
	integer("COSTAR_WORKERS", &c.Detection.Workers)
	integer("COSTAR_TOP_K", &c.Centrality.TopK)
	num("COSTAR_TAKE_FILM_FRACTION", &c.Quality.TakeFilmFraction)
	num("COSTAR_MATCH_THRESHOLD", &c.Matching.Threshold)
	integer("COSTAR_STABILITY_ITERATIONS", &c.Stability.Iterations)

	return errors.Join(errs...)
}

// ParseSeeds parses a comma-separated seed list. A range such as 1-5 expands
// to every seed in it.
func ParseSeeds(s string) ([]int64, error) {
	var seeds []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok && lo != "" {
			from, err := strconv.ParseInt(lo, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid seed range %q", part)
			}
			to, err := strconv.ParseInt(hi, 10, 64)
			if err != nil || to < from {
				return nil, fmt.Errorf("invalid seed range %q", part)
			}
			for seed := from; seed <= to; seed++ {
				seeds = append(seeds, seed)
			}
			continue
		}
		seed, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", part)
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		return nil, errors.New("no seeds given")
	}
	return seeds, nil
}
