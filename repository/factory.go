package repository

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"video-library/config"
	"video-library/constant"
)

// MediaURLPrefix is where the web server exposes objects of backends without public URLs of their own.
const MediaURLPrefix = "/media"

// NewFromConfig builds the backend selected in cfg. The returned close function releases the underlying client.
func NewFromConfig(ctx context.Context, cfg *config.Config) (ObjectStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case constant.StorageBackendGCS:
		store, client, err := NewGCSStore(ctx, cfg.Storage.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return store, client.Close, nil
	case constant.StorageBackendMinIO:
		store, err := NewMinIOStore(ctx, cfg.MinIO, cfg.Storage.Bucket)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case constant.StorageBackendLocal:
		return NewLocalStore(afero.NewOsFs(), cfg.Storage.LocalDir, MediaURLPrefix), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}
