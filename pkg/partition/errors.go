package partition

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-costar/pkg/table"
)

var (
	// ErrEmptyPartition is returned for a partition with zero communities.
	ErrEmptyPartition = errors.New("partition has no communities")
	// ErrNotAPartition is returned when communities overlap, are empty or do
	// not cover the graph.
	ErrNotAPartition = errors.New("communities do not partition the graph")
	// ErrProvenanceMismatch is returned when a stored partition was computed
	// from differently filtered tables.
	ErrProvenanceMismatch = errors.New("partition provenance mismatch")
	// ErrMalformedRecord is returned when a stored record cannot be decoded.
	ErrMalformedRecord = errors.New("malformed partition record")
)

// ProvenanceMismatchError reports which filter chain of a stored partition
// differs from the current graph.
type ProvenanceMismatchError struct {
	Name     string // stored object name, empty for in-memory decodes
	Side     string // "movies" or "characters"
	Expected table.FilterMetadata
	Found    table.FilterMetadata
}

// Error implements the error interface.
func (e *ProvenanceMismatchError) Error() string {
	where := ""
	if e.Name != "" {
		where = " in " + e.Name
	}
	return fmt.Sprintf("%s filter metadata mismatch%s: expected %q, found %q",
		e.Side, where, []string(e.Expected), []string(e.Found))
}

// Unwrap returns ErrProvenanceMismatch.
func (e *ProvenanceMismatchError) Unwrap() error {
	return ErrProvenanceMismatch
}

// IsProvenanceMismatch reports whether err is a provenance mismatch.
func IsProvenanceMismatch(err error) bool {
	return errors.Is(err, ErrProvenanceMismatch)
}
