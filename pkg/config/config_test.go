package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, cfg.Detection.Seeds)
	assert.Equal(t, "new_communities_US", cfg.Store.FilePrefix)
	assert.Equal(t, 0.8, cfg.Matching.Threshold)
	assert.Equal(t, -1, cfg.Matching.OnlyRun)
	assert.True(t, cfg.Centrality.WassermanFaust)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "costar.yaml", `
data_dir: /srv/MovieSummaries
log_level: debug
dataset:
  country: France
detection:
  seeds: [7, 8]
  resolution: 0.5
matching:
  threshold: 0.6
  min_rank: 2
store:
  kind: file
  dir: /tmp/runs
  compress: true
`)

	cfg, err := LoadWithEnv(path, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "/srv/MovieSummaries", cfg.DataDir)
	assert.Equal(t, "France", cfg.Dataset.Country)
	assert.Equal(t, []int64{7, 8}, cfg.Detection.Seeds)
	assert.Equal(t, 0.5, cfg.Louvain().Resolution)
	assert.Equal(t, 0.6, cfg.MatchingOptions().Threshold)
	assert.Equal(t, 2, cfg.MatchingOptions().MinRank)
	assert.Equal(t, "new_communities_US_7.json.sz", cfg.Naming().Name(7))
	// Untouched keys keep their defaults
	assert.Equal(t, 0.5, cfg.Quality.TakeFilmFraction)
	assert.Equal(t, []string{"Revenue"}, cfg.Dataset.MovieRequired)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := LoadWithEnv(writeFile(t, "empty.yaml", ""), envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "costar.yaml", "detection:\n  seed: 3\n")
	_, err := LoadWithEnv(path, envMap(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"), envMap(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverrides(t *testing.T) {
	cfg, err := LoadWithEnv("", envMap(map[string]string{
		"COSTAR_DATA_DIR":           "/data",
		"COSTAR_SEEDS":              "1-3,9",
		"COSTAR_STORE":              "s3",
		"COSTAR_S3_BUCKET":          "costar-runs",
		"COSTAR_S3_PREFIX":          "us",
		"AWS_REGION":                "eu-west-1",
		"AWS_ACCESS_KEY_ID":         "AKIA",
		"AWS_SECRET_ACCESS_KEY":     "secret",
		"COSTAR_TAKE_FILM_FRACTION": "0.25",
		"COSTAR_WORKERS":            "2",
		"LOG_LEVEL":                 "warn",
		"COSTAR_LOG_LEVEL":          "error",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, []int64{1, 2, 3, 9}, cfg.Detection.Seeds)
	assert.Equal(t, StoreS3, cfg.Store.Kind)
	assert.Equal(t, 0.25, cfg.Quality.TakeFilmFraction)
	assert.Equal(t, 2, cfg.Detection.Workers)
	// The prefixed variable wins
	assert.Equal(t, "error", cfg.LogLevel)

	s3 := cfg.S3Options()
	assert.Equal(t, "eu-west-1", s3.Region)
	assert.Equal(t, "AKIA", s3.AccessKey)
	assert.Equal(t, "secret", s3.SecretKey)
}

func TestEnvOverrideParseErrors(t *testing.T) {
	_, err := LoadWithEnv("", envMap(map[string]string{
		"COSTAR_TOP_K":           "ten",
		"COSTAR_MATCH_THRESHOLD": "high",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COSTAR_TOP_K")
	assert.Contains(t, err.Error(), "COSTAR_MATCH_THRESHOLD")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"s3 without bucket", func(c *Config) { c.Store.Kind = StoreS3 }, "store.bucket"},
		{"file without dir", func(c *Config) { c.Store.Dir = "" }, "store.dir"},
		{"unknown store", func(c *Config) { c.Store.Kind = "ftp" }, "store.kind"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"no seeds", func(c *Config) { c.Detection.Seeds = nil }, "detection.seeds"},
		{"duplicate seeds", func(c *Config) { c.Detection.Seeds = []int64{2, 2} }, "detection.seeds"},
		{"zero fraction", func(c *Config) { c.Quality.TakeFilmFraction = 0 }, "quality.take_film_fraction"},
		{"threshold above one", func(c *Config) { c.Matching.Threshold = 1.5 }, "matching.threshold"},
		{"only run out of range", func(c *Config) { c.Matching.OnlyRun = 5 }, "matching.only_run"},
		{"bad prefix", func(c *Config) { c.Store.FilePrefix = "a b" }, "store.file_prefix"},
		{"zero resolution", func(c *Config) { c.Detection.Resolution = 0 }, "detection.resolution"},
		{"negative workers", func(c *Config) { c.Detection.Workers = -1 }, "detection.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSeeds(t *testing.T) {
	tests := []struct {
		input   string
		want    []int64
		wantErr bool
	}{
		{"1,2,3", []int64{1, 2, 3}, false},
		{" 4 , 5 ", []int64{4, 5}, false},
		{"1-5", []int64{1, 2, 3, 4, 5}, false},
		{"-2", []int64{-2}, false},
		{"3-1", nil, true},
		{"a", nil, true},
		{",", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSeeds(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCentralityOptions(t *testing.T) {
	cfg := Default()
	cfg.Centrality.KatzAlpha = 0.05
	cfg.Centrality.WassermanFaust = false

	opts := cfg.CentralityOptions()
	assert.Equal(t, 0.05, opts.Katz.Alpha)
	assert.Equal(t, 1.0, opts.Katz.Beta)
	assert.True(t, opts.Katz.Normalized)
	assert.False(t, opts.Closeness.WassermanFaust)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "COSTAR_DOTENV_PROBE"
	path := writeFile(t, ".env", key+"=from-file\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
