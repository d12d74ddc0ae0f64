package service

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/mock"
	"video-library/dto"
	"video-library/entities"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	args := m.Called(ctx, key, data, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, prefix string) ([]entities.ObjectInfo, error) {
	args := m.Called(ctx, prefix)
	objects, _ := args.Get(0).([]entities.ObjectInfo)
	return objects, args.Error(1)
}

func (m *mockStore) GetText(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) PublicURL(key string) string {
	return "https://storage.example.com/bucket/" + key
}

func (m *mockStore) Reference(key string) string {
	return "gs://bucket/" + key
}

// mockExtractor writes a fake frame into outputDir under the returned name, like ffmpeg would.
type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) ExtractFirstFrame(ctx context.Context, videoPath, outputDir string) (string, error) {
	args := m.Called(ctx, videoPath, outputDir)
	if err := args.Error(1); err != nil {
		return "", err
	}
	out := filepath.Join(outputDir, args.String(0))
	if err := os.WriteFile(out, []byte("jpeg bytes"), 0o600); err != nil {
		return "", err
	}
	return out, nil
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, videoRef string) (*entities.Metadata, error) {
	args := m.Called(ctx, videoRef)
	metadata, _ := args.Get(0).(*entities.Metadata)
	return metadata, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) PublishUpload(ctx context.Context, event dto.UploadEvent) error {
	return m.Called(ctx, event).Error(0)
}
