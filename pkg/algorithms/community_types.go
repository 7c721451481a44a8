package algorithms

import "github.com/dd0wney/cluso-costar/pkg/partition"

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Partition  partition.Partition
	Modularity float64 // Quality measure of the partitioning
	Levels     int     // Number of aggregation levels kept
	Seed       int64
}

// LouvainOptions configures Louvain community detection
type LouvainOptions struct {
	Resolution float64 // Usually 1.0
	MinGain    float64 // Minimum modularity gain to start another pass or level
	MaxPasses  int     // Per level; 0 means until no node moves
	MaxLevels  int     // 0 means until modularity stops improving
}

// DefaultLouvainOptions returns default Louvain configuration
func DefaultLouvainOptions() LouvainOptions {
	return LouvainOptions{
		Resolution: 1.0,
		MinGain:    1e-7,
	}
}
