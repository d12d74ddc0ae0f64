package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"video-library/entities"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
	ErrBadReference   = errors.New("malformed object reference")
)

// ObjectStore is a flat key space of byte objects. Keys are "/"-joined segments, the first one being the video id.
type ObjectStore interface {
	// Put stores r under key and returns the object's public URL. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	List(ctx context.Context, prefix string) ([]entities.ObjectInfo, error)
	GetText(ctx context.Context, key string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	// Reference returns a scheme://bucket/key URI that external services can use to address the object.
	Reference(key string) string
}

// ObjectKey joins an id with an object name.
func ObjectKey(id, name string) string {
	return id + "/" + name
}

// SplitKey returns the first path segment of key and the remainder.
func SplitKey(key string) (id, name string, ok bool) {
	id, name, ok = strings.Cut(key, "/")
	if !ok || id == "" || name == "" {
		return "", "", false
	}
	return id, name, true
}

// ParseReference extracts the bucket and key of a reference produced by ObjectStore.Reference.
func ParseReference(ref string) (scheme, bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", "", errors.Join(ErrBadReference, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Scheme == "" || u.Host == "" || key == "" {
		return "", "", "", fmt.Errorf("%w: %q", ErrBadReference, ref)
	}
	return u.Scheme, u.Host, key, nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key || strings.HasPrefix(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// DeleteFolder removes every object whose key starts with prefix. It keeps going after a failed delete and
// returns the joined errors.
func DeleteFolder(ctx context.Context, store ObjectStore, prefix string) (int, error) {
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	var errs []error
	deleted := 0
	for _, obj := range objects {
		if err := store.Delete(ctx, obj.Key); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("key", obj.Key).Msg("failed to delete object")
			errs = append(errs, fmt.Errorf("delete %s: %w", obj.Key, err))
			continue
		}
		deleted++
	}

	zerolog.Ctx(ctx).Info().Str("prefix", prefix).Int("deleted", deleted).Msg("deleted objects with prefix")
	return deleted, errors.Join(errs...)
}
