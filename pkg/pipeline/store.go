package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-costar/pkg/config"
	"github.com/dd0wney/cluso-costar/pkg/metrics"
	"github.com/dd0wney/cluso-costar/pkg/partition"
)

// instrumentedStore records every object moved through a partition store.
type instrumentedStore struct {
	partition.Store
	kind    string
	metrics *metrics.Registry
}

func (s *instrumentedStore) Put(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := s.Store.Put(ctx, name, data)
	s.metrics.RecordPartitionWrite(s.kind, len(data), time.Since(start), err)
	return err
}

func (s *instrumentedStore) Get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.Store.Get(ctx, name)
	s.metrics.RecordPartitionRead(s.kind, len(data), time.Since(start), err)
	return data, err
}

// openStore builds the partition store named by cfg.
func openStore(ctx context.Context, cfg *config.Config) (partition.Store, error) {
	switch cfg.Store.Kind {
	case config.StoreFile:
		return partition.NewFileStore(cfg.Store.Dir)
	case config.StoreS3:
		client, err := partition.NewS3Client(ctx, cfg.S3Options())
		if err != nil {
			return nil, err
		}
		return &partition.S3Store{Client: client, Bucket: cfg.Store.Bucket, Prefix: cfg.Store.KeyPrefix}, nil
	default:
		return nil, fmt.Errorf("unknown partition store %q", cfg.Store.Kind)
	}
}
