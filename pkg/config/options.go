package config

import (
	"github.com/dd0wney/cluso-costar/pkg/algorithms"
	"github.com/dd0wney/cluso-costar/pkg/analysis"
	"github.com/dd0wney/cluso-costar/pkg/partition"
)

// Louvain returns the detection options.
func (c *Config) Louvain() algorithms.LouvainOptions {
	return algorithms.LouvainOptions{
		Resolution: c.Detection.Resolution,
		MinGain:    c.Detection.MinGain,
		MaxPasses:  c.Detection.MaxPasses,
		MaxLevels:  c.Detection.MaxLevels,
	}
}

// CentralityOptions returns the Katz and closeness options.
func (c *Config) CentralityOptions() algorithms.CentralityOptions {
	opts := algorithms.DefaultCentralityOptions()
	opts.Katz.Alpha = c.Centrality.KatzAlpha
	opts.Katz.AlphaOffset = c.Centrality.AlphaOffset
	opts.Katz.MaxIterations = c.Centrality.MaxIterations
	opts.Katz.Tolerance = c.Centrality.Tolerance
	opts.Closeness.WassermanFaust = c.Centrality.WassermanFaust
	return opts
}

// MatchingOptions returns the matching graph filters.
func (c *Config) MatchingOptions() analysis.MatchingOptions {
	return analysis.MatchingOptions{
		Threshold:        c.Matching.Threshold,
		FirstCommunities: c.Matching.FirstCommunities,
		OnlyRun:          c.Matching.OnlyRun,
		MinRank:          c.Matching.MinRank,
	}
}

// Naming returns the partition object naming.
func (c *Config) Naming() partition.Naming {
	return partition.Naming{Prefix: c.Store.FilePrefix, Compress: c.Store.Compress}
}

// S3Options returns the S3 client settings.
func (c *Config) S3Options() partition.S3Options {
	return partition.S3Options{
		Region:    c.Store.Region,
		Endpoint:  c.Store.Endpoint,
		AccessKey: c.Store.AccessKey,
		SecretKey: c.Store.SecretKey,
		PathStyle: c.Store.PathStyle,
	}
}
