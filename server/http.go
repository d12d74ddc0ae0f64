package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"video-library/config"
	"video-library/constant"
	"video-library/handler"
	"video-library/pkg/analyzer"
	"video-library/pkg/metrics"
	"video-library/pkg/rabbitmq"
	"video-library/repository"
	"video-library/service"
)

const shutdownTimeout = 10 * time.Second

func RunHttp(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.IsProduction()).Send()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store, closeStore, err := repository.NewFromConfig(ctx, cfg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("backend", cfg.Storage.Backend.String()).Msg("failed to create object store")
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close object store")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	uploadService := service.NewUploadService(
		store,
		service.NewFFmpegExtractor(""),
		newAnalyzer(ctx, cfg, store),
		newNotifier(ctx, cfg),
		cfg.Server.ScratchDir,
		m,
	)
	catalogService := service.NewCatalogService(store, m)

	h := handler.New(handler.ServiceDependencies{
		UploadService:  uploadService,
		CatalogService: catalogService,
		Store:          store,
		MaxUploadSize:  cfg.Server.MaxUploadSize,
	})

	r := handler.NewRouter(h, *zerolog.Ctx(ctx), cfg.Server.SecretKey)
	addHealth(r, store)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Str("addr", srv.Addr).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to shut down http server")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
	return nil
}

// newAnalyzer returns nil when metadata generation is disabled or the client cannot be built; uploads then skip
// the metadata step.
func newAnalyzer(ctx context.Context, cfg *config.Config, store repository.ObjectStore) analyzer.Analyzer {
	if !cfg.AI.Enabled {
		zerolog.Ctx(ctx).Info().Msg("metadata generation disabled")
		return nil
	}
	client, err := analyzer.NewVertexClient(ctx, cfg.AI.Project, cfg.AI.Location)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("metadata generation unavailable")
		return nil
	}
	return analyzer.NewGemini(client.Models, cfg.AI.Model, store)
}

func newNotifier(ctx context.Context, cfg *config.Config) service.Notifier {
	if !cfg.Queue.Enabled() {
		return nil
	}
	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("upload events disabled")
		return nil
	}
	return rabbitmq.NewPublisher(conn, cfg.Queue)
}

func addHealth(r *gin.Engine, store repository.ObjectStore) {
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	r.GET("/health", health)
	r.GET("/healthz", health)
	r.GET("/readyz", func(c *gin.Context) {
		if _, err := store.List(c.Request.Context(), "readyz/"); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("object store not ready")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.App.Name).Logger()
	return logger.WithContext(context.Background())
}
