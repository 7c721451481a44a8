package partition

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-costar/pkg/graph"
)

// DefaultPrefix is the object name prefix used for per-seed partitions.
const DefaultPrefix = "new_communities_US"

// FileName returns the conventional object name for a seed, for example
// new_communities_US_3.json.
func FileName(prefix string, seed int64) string {
	return fmt.Sprintf("%s_%d.json", prefix, seed)
}

// Naming maps seeds to object names.
type Naming struct {
	Prefix   string
	Compress bool // append CompressedSuffix
}

// Name returns the object name for seed.
func (n Naming) Name(seed int64) string {
	prefix := n.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	name := FileName(prefix, seed)
	if n.Compress {
		name += CompressedSuffix
	}
	return name
}

// Save encodes rec and writes it under name.
func Save(ctx context.Context, store Store, name string, rec *Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, encodeObject(name, data))
}

// Load reads name and returns its record once provenance matches g.
func Load(ctx context.Context, store Store, name string, g *graph.Graph) (*Record, error) {
	raw, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := decodeObject(name, raw)
	if err != nil {
		return nil, err
	}
	return DecodeRecord(g, data, name)
}

// LoadRuns loads one partition per seed. It fails on the first seed that
// cannot be loaded, naming the run index and seed.
func LoadRuns(ctx context.Context, store Store, g *graph.Graph, naming Naming, seeds []int64) ([]Partition, error) {
	runs := make([]Partition, 0, len(seeds))
	for run, seed := range seeds {
		rec, err := Load(ctx, store, naming.Name(seed), g)
		if err != nil {
			return nil, fmt.Errorf("run %d (seed %d): %w", run, seed, err)
		}
		runs = append(runs, rec.Partition())
	}
	return runs, nil
}
