package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/types"
	"github.com/lehoangvu/docchat-be/utils"
)

// BlobStore keeps uploaded originals keyed by an opaque pathname. Put returns
// the pathname the file can later be fetched with; pathnames are stable for
// the life of the blob.
type BlobStore interface {
	Put(ctx context.Context, fileName string, data []byte) (string, error)
	Get(ctx context.Context, pathname string) ([]byte, error)
}

// LocalBlobStore writes blobs under a single directory on the local disk,
// selected with storage_driver: "local".
type LocalBlobStore struct {
	dir string
	log *zap.SugaredLogger
}

func NewLocalBlobStore(dir string, log *zap.SugaredLogger) (*LocalBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalBlobStore{
		dir: dir,
		log: log,
	}, nil
}

func (s *LocalBlobStore) Put(_ context.Context, fileName string, data []byte) (string, error) {
	pathname := utils.TimestampedName(fileName)
	if err := os.WriteFile(filepath.Join(s.dir, pathname), data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write blob: %v", types.ErrStoreUnavailable, err)
	}
	s.log.Infow("blob stored", "pathname", pathname, "size", len(data))
	return pathname, nil
}

func (s *LocalBlobStore) Get(_ context.Context, pathname string) ([]byte, error) {
	// Pathnames are produced by Put from sanitized names, but never trust
	// a stored value enough to let it escape the blob directory.
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(pathname)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: blob %s", types.ErrNotFound, pathname)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read blob: %v", types.ErrStoreUnavailable, err)
	}
	return data, nil
}
