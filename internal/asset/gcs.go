// AngelaMos | 2026
// gcs.go

package asset

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/carterperez-dev/templates/classifieds/internal/core"
)

// GCSStore keeps blobs in one Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore falls back to application default credentials when
// credentialsFile is empty.
func NewGCSStore(
	ctx context.Context,
	bucket string,
	credentialsFile string,
) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(
	ctx context.Context,
	key Key,
	data []byte,
	contentType string,
) (Ref, error) {
	p := key.Path()

	w := s.client.Bucket(s.bucket).Object(p).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close() //nolint:errcheck // write error takes precedence
		return Ref{}, fmt.Errorf("put gs://%s/%s: %w", s.bucket, p, err)
	}

	if err := w.Close(); err != nil {
		return Ref{}, fmt.Errorf("put gs://%s/%s: %w", s.bucket, p, err)
	}

	return Ref{
		Path:        p,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *GCSStore) Open(ctx context.Context, key Key) (*Object, error) {
	p := key.Path()

	r, err := s.client.Bucket(s.bucket).Object(p).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.bucket, p, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.bucket, p, err)
	}

	return &Object{
		Body:        r,
		ContentType: r.Attrs.ContentType,
		Size:        r.Attrs.Size,
	}, nil
}

func (s *GCSStore) Delete(ctx context.Context, key Key) error {
	p := key.Path()

	err := s.client.Bucket(s.bucket).Object(p).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gs://%s/%s: %w", s.bucket, p, err)
	}

	return nil
}

func (s *GCSStore) Ping(ctx context.Context) error {
	if _, err := s.client.Bucket(s.bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket attrs %s: %w", s.bucket, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ Store = (*GCSStore)(nil)
