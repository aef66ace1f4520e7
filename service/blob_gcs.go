package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/lehoangvu/docchat-be/types"
	"github.com/lehoangvu/docchat-be/utils"
)

// GCSBlobStore keeps blobs in a Google Cloud Storage bucket, selected with
// storage_driver: "gcs".
type GCSBlobStore struct {
	client *storage.Client
	bucket string
	log    *zap.SugaredLogger
}

func NewGCSBlobStore(ctx context.Context, bucket string, log *zap.SugaredLogger) (*GCSBlobStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSBlobStore{
		client: client,
		bucket: bucket,
		log:    log,
	}, nil
}

func (s *GCSBlobStore) Put(ctx context.Context, fileName string, data []byte) (string, error) {
	pathname := utils.TimestampedName(fileName)
	w := s.client.Bucket(s.bucket).Object(pathname).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("%w: write object: %v", types.ErrStoreUnavailable, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: close object: %v", types.ErrStoreUnavailable, err)
	}
	s.log.Infow("blob stored", "bucket", s.bucket, "pathname", pathname, "size", len(data))
	return pathname, nil
}

func (s *GCSBlobStore) Get(ctx context.Context, pathname string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(pathname).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: blob %s", types.ErrNotFound, pathname)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open object: %v", types.ErrStoreUnavailable, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read object: %v", types.ErrStoreUnavailable, err)
	}
	return data, nil
}

func (s *GCSBlobStore) Close() error {
	return s.client.Close()
}
