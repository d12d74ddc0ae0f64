package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"video-library/constant"
)

type Config struct {
	App     App       `yaml:"app"`
	Server  Server    `yaml:"server"`
	Storage Storage   `yaml:"storage"`
	MinIO   MinIO     `yaml:"minio"`
	AI      AI        `yaml:"ai"`
	Queue   *RabbitMQ `yaml:"rabbitmq"`
}

type App struct {
	Environment string `yaml:"environment"`
	Name        string `yaml:"name"`
}

type Server struct {
	HttpPort      string `yaml:"port"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
	SecretKey     string `yaml:"secret_key"`
	ScratchDir    string `yaml:"scratch_dir"`
}

type Storage struct {
	Backend  constant.StorageBackend `yaml:"backend"`
	Bucket   string                  `yaml:"bucket"`
	LocalDir string                  `yaml:"local_dir"`
}

type MinIO struct {
	URL             string `yaml:"url"`
	AccessID        string `yaml:"access_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UseSSL          bool   `yaml:"use_ssl"`
}

type AI struct {
	Enabled  bool   `yaml:"enabled"`
	Project  string `yaml:"project"`
	Location string `yaml:"location"`
	Model    string `yaml:"model"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
	RoutingKey   string `json:"routing_key"`
}

// Enabled reports whether upload events should be published at all.
func (r *RabbitMQ) Enabled() bool {
	return r != nil && r.Host != ""
}

var envBindings = map[string]string{
	"app.environment":         "ENVIRONMENT",
	"server.port":             "PORT",
	"server.max_upload_size":  "MAX_CONTENT_LENGTH",
	"server.secret_key":       "SECRET_KEY",
	"server.scratch_dir":      "SCRATCH_DIR",
	"storage.backend":         "STORAGE_BACKEND",
	"storage.bucket":          "GCS_BUCKET_NAME",
	"storage.local_dir":       "LOCAL_STORAGE_DIR",
	"minio.url":               "MINIO_URL",
	"minio.access_id":         "MINIO_ACCESS_ID",
	"minio.secret_access_key": "MINIO_SECRET_ACCESS_KEY",
	"minio.use_ssl":           "MINIO_USE_SSL",
	"ai.enabled":              "AI_ENABLED",
	"ai.project":              "GOOGLE_CLOUD_PROJECT",
	"ai.location":             "GOOGLE_CLOUD_LOCATION",
	"ai.model":                "AI_MODEL",
	"rabbitmq.host":           "RABBITMQ_HOST",
	"rabbitmq.port":           "RABBITMQ_PORT",
	"rabbitmq.user":           "RABBITMQ_USER",
	"rabbitmq.pass":           "RABBITMQ_PASS",
	"rabbitmq.exchange_name":  "RABBITMQ_EXCHANGE",
	"rabbitmq.kind":           "RABBITMQ_KIND",
	"rabbitmq.routing_key":    "RABBITMQ_ROUTING_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", constant.EnvironmentDevelop.String())
	v.SetDefault("app.name", "video-library")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_size", 100<<20)
	v.SetDefault("server.secret_key", "super-secret-key-for-dev")
	v.SetDefault("server.scratch_dir", os.TempDir())
	v.SetDefault("storage.backend", constant.StorageBackendGCS.String())
	v.SetDefault("storage.bucket", "jorgenogales-agiles-video-upload")
	v.SetDefault("storage.local_dir", "tmp")
	v.SetDefault("minio.url", "localhost:9000")
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.location", "us-central1")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.exchange_name", "video_exchange")
	v.SetDefault("rabbitmq.kind", "topic")
	v.SetDefault("rabbitmq.routing_key", "video.uploaded")
}

// Load reads an optional .env and config.yaml from path, then lets environment variables override both.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		App: App{
			Environment: v.GetString("app.environment"),
			Name:        v.GetString("app.name"),
		},
		Server: Server{
			HttpPort:      v.GetString("server.port"),
			MaxUploadSize: v.GetInt64("server.max_upload_size"),
			SecretKey:     v.GetString("server.secret_key"),
			ScratchDir:    v.GetString("server.scratch_dir"),
		},
		Storage: Storage{
			Backend:  constant.StorageBackend(strings.ToLower(v.GetString("storage.backend"))),
			Bucket:   v.GetString("storage.bucket"),
			LocalDir: v.GetString("storage.local_dir"),
		},
		MinIO: MinIO{
			URL:             v.GetString("minio.url"),
			AccessID:        v.GetString("minio.access_id"),
			SecretAccessKey: v.GetString("minio.secret_access_key"),
			UseSSL:          v.GetBool("minio.use_ssl"),
		},
		AI: AI{
			Enabled:  v.GetBool("ai.enabled"),
			Project:  v.GetString("ai.project"),
			Location: v.GetString("ai.location"),
			Model:    v.GetString("ai.model"),
		},
		Queue: &RabbitMQ{
			Host:         v.GetString("rabbitmq.host"),
			Port:         v.GetInt("rabbitmq.port"),
			User:         v.GetString("rabbitmq.user"),
			Pass:         v.GetString("rabbitmq.pass"),
			ExchangeName: v.GetString("rabbitmq.exchange_name"),
			Kind:         v.GetString("rabbitmq.kind"),
			RoutingKey:   v.GetString("rabbitmq.routing_key"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case constant.StorageBackendGCS, constant.StorageBackendMinIO:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage bucket is required for backend %q", c.Storage.Backend)
		}
	case constant.StorageBackendLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("local storage directory is required")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}

	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.Server.MaxUploadSize)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == constant.EnvironmentProduction.String()
}
