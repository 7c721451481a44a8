package partition

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

const filePermissions = 0o644

// ErrNotFound is returned by a Store when the named object does not exist.
var ErrNotFound = errors.New("partition object not found")

// Store reads and writes whole partition objects by name. Implementations
// must make Put all-or-nothing.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// CompressedSuffix marks objects stored as snappy-compressed JSON.
const CompressedSuffix = ".sz"

// encodeObject applies the codec implied by name.
func encodeObject(name string, data []byte) []byte {
	if strings.HasSuffix(name, CompressedSuffix) {
		return snappy.Encode(nil, data)
	}
	return data
}

// decodeObject reverses encodeObject.
func decodeObject(name string, data []byte) ([]byte, error) {
	if !strings.HasSuffix(name, CompressedSuffix) {
		return data, nil
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: snappy: %v", ErrMalformedRecord, name, err)
	}
	return out, nil
}

// FileStore keeps partitions as files in a directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create partition dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.Dir, filepath.Base(name))
}

// Put writes data to a uniquely named temporary file in the store
// directory, syncs it and renames it into place. Concurrent writers of the
// same name never share a temporary file.
func (fs *FileStore) Put(ctx context.Context, name string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := fs.path(name)

	f, err := os.CreateTemp(fs.Dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err = os.Chmod(tmpPath, filePermissions); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err = os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("failed to rename %s: %w", name, err)
	}
	syncDir(fs.Dir)
	return nil
}

// syncDir flushes the rename to disk where the platform supports it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

// Get reads the whole file.
func (fs *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fs.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
