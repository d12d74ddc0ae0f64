package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-library/constant"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "develop", cfg.App.Environment)
	assert.Equal(t, "8080", cfg.Server.HttpPort)
	assert.Equal(t, int64(100<<20), cfg.Server.MaxUploadSize)
	assert.Equal(t, constant.StorageBackendGCS, cfg.Storage.Backend)
	assert.Equal(t, "jorgenogales-agiles-video-upload", cfg.Storage.Bucket)
	assert.Equal(t, "us-central1", cfg.AI.Location)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.True(t, cfg.AI.Enabled)
	assert.False(t, cfg.Queue.Enabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_CONTENT_LENGTH", "2048")
	t.Setenv("STORAGE_BACKEND", "LOCAL")
	t.Setenv("LOCAL_STORAGE_DIR", "/var/videos")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")
	t.Setenv("AI_ENABLED", "false")
	t.Setenv("RABBITMQ_HOST", "rabbit")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Server.HttpPort)
	assert.Equal(t, int64(2048), cfg.Server.MaxUploadSize)
	assert.Equal(t, constant.StorageBackendLocal, cfg.Storage.Backend)
	assert.Equal(t, "/var/videos", cfg.Storage.LocalDir)
	assert.Equal(t, "my-project", cfg.AI.Project)
	assert.False(t, cfg.AI.Enabled)
	assert.True(t, cfg.Queue.Enabled())
	assert.Equal(t, "amqp://:@rabbit:5672/", cfg.Queue.URL())
}

func TestLoadConfigFileAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
storage:
  backend: minio
  bucket: from-yaml
minio:
  url: minio:9000
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MINIO_ACCESS_ID=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("MINIO_ACCESS_ID") })

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, constant.StorageBackendMinIO, cfg.Storage.Backend)
	assert.Equal(t, "from-yaml", cfg.Storage.Bucket)
	assert.Equal(t, "minio:9000", cfg.MinIO.URL)
	assert.Equal(t, "from-dotenv", cfg.MinIO.AccessID)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "ftp")
		_, err := Load(t.TempDir())
		require.ErrorContains(t, err, "unsupported storage backend")
	})
	t.Run("non-positive upload size", func(t *testing.T) {
		t.Setenv("MAX_CONTENT_LENGTH", "0")
		_, err := Load(t.TempDir())
		require.ErrorContains(t, err, "max upload size")
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:  Server{MaxUploadSize: 1},
		Storage: Storage{Backend: constant.StorageBackendGCS, Bucket: "b"},
	}
	require.NoError(t, valid.Validate())

	noBucket := valid
	noBucket.Storage = Storage{Backend: constant.StorageBackendMinIO}
	require.ErrorContains(t, noBucket.Validate(), "bucket is required")

	noDir := valid
	noDir.Storage = Storage{Backend: constant.StorageBackendLocal}
	require.ErrorContains(t, noDir.Validate(), "local storage directory")
}
