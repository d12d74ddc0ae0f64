package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"video-library/entities"
)

// LocalBucket is the bucket segment used in references to objects of the local backend.
const LocalBucket = "local"

type localStore struct {
	fs        afero.Fs
	baseDir   string
	urlPrefix string
}

// NewLocalStore keeps objects as files under baseDir. Public URLs point at urlPrefix, which the web server
// serves by streaming the object back through Open.
func NewLocalStore(fsys afero.Fs, baseDir, urlPrefix string) ObjectStore {
	return &localStore{
		fs:        fsys,
		baseDir:   baseDir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

func (s *localStore) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

func (s *localStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", key, err)
	}

	f, err := s.fs.Create(p)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = s.fs.Remove(p)
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}

	return s.PublicURL(key), nil
}

func (s *localStore) List(_ context.Context, prefix string) ([]entities.ObjectInfo, error) {
	exists, err := afero.DirExists(s.fs, s.baseDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	var objects []entities.ObjectInfo
	err = afero.Walk(s.fs, s.baseDir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		objects = append(objects, entities.ObjectInfo{
			Key:         key,
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			CreatedAt:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}
	return objects, nil
}

func (s *localStore) GetText(_ context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return "", mapFSError(key, err)
	}
	return string(data), nil
}

func (s *localStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, mapFSError(key, err)
	}
	return f, nil
}

func (s *localStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		return mapFSError(key, err)
	}
	return nil
}

func (s *localStore) PublicURL(key string) string {
	return s.urlPrefix + "/" + key
}

func (s *localStore) Reference(key string) string {
	return fmt.Sprintf("file://%s/%s", LocalBucket, key)
}

func mapFSError(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrObjectNotFound, fmt.Errorf("%s: %w", key, err))
	}
	return fmt.Errorf("%s: %w", key, err)
}
