package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"video-library/entities"
)

type gcsStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore uses Application Default Credentials.
func NewGCSStore(ctx context.Context, bucket string) (ObjectStore, *storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &gcsStore{
		client: client,
		bucket: bucket,
	}, client, nil
}

func (s *gcsStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	// Cancelling the writer's context aborts the upload instead of committing a truncated object.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		cancel()
		_ = wc.Close()
		return "", fmt.Errorf("failed to stream data to GCS: %w", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return s.PublicURL(key), nil
}

func (s *gcsStore) List(ctx context.Context, prefix string) ([]entities.ObjectInfo, error) {
	var query *storage.Query
	if prefix != "" {
		query = &storage.Query{Prefix: prefix}
	}

	var objects []entities.ObjectInfo
	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		objects = append(objects, entities.ObjectInfo{
			Key:         attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			CreatedAt:   attrs.Created,
		})
	}
	return objects, nil
}

func (s *gcsStore) GetText(ctx context.Context, key string) (string, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), nil
}

func (s *gcsStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, mapGCSError(key, err)
	}
	return rc, nil
}

func (s *gcsStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return mapGCSError(key, err)
	}
	return nil
}

func (s *gcsStore) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}

func (s *gcsStore) Reference(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, key)
}

func mapGCSError(key string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Join(ErrObjectNotFound, fmt.Errorf("%s: %w", key, err))
	}
	return fmt.Errorf("%s: %w", key, err)
}
