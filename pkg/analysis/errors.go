package analysis

import "errors"

var (
	// ErrInvalidFraction is returned when a fraction threshold lies outside (0,1].
	ErrInvalidFraction = errors.New("fraction must be in (0,1]")
	// ErrNodeSetMismatch is returned when runs do not partition the same actors.
	ErrNodeSetMismatch = errors.New("runs cover different node sets")
	// ErrRunIndex is returned for a run index outside the run set.
	ErrRunIndex = errors.New("run index out of range")
	// ErrNoRuns is returned when a run set is built from nothing.
	ErrNoRuns = errors.New("no runs")
	// ErrNoSamples is returned when no run has a community with two members.
	ErrNoSamples = errors.New("no actor pairs to sample")
)
