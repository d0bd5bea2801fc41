package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mhiraki-dev/mediacore/internal/api/handler"
	"github.com/mhiraki-dev/mediacore/internal/api/middleware"
	"github.com/mhiraki-dev/mediacore/internal/config"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/cache"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/postgres"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/queue"
	"github.com/mhiraki-dev/mediacore/internal/infrastructure/storage"
	"github.com/mhiraki-dev/mediacore/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	// View events are best-effort: a broker outage must not keep the API
	// from serving, so a failed connect only disables publishing.
	var publisher repository.EventPublisher
	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		logger.Warn("RabbitMQ unavailable, view events disabled", slog.String("error", err.Error()))
	} else {
		defer queueClient.Close()
		publisher = queueClient
		logger.Info("connected to RabbitMQ")
	}

	// The shared cache tier is lazy: a Redis outage degrades reads to the
	// in-process tier and the database instead of failing them.
	redisClient := cache.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	tiered := cache.NewTiered(cache.NewMemoryStore(), cache.NewRedisStore(redisClient))

	progressRepo := postgres.NewProgressRepository(pgClient.Pool())
	progressSvc := usecase.NewProgressService(progressRepo, tiered, publisher, usecase.ProgressServiceConfig{
		ReadPolicy: cache.TTLPolicy{Fresh: cfg.Cache.PrivateTTL},
	})
	uploadSvc := usecase.NewUploadService(storageClient, tiered)
	assetSvc := usecase.NewAssetService(storageClient, tiered, usecase.AssetServiceConfig{
		ReadPolicy: cache.TTLPolicy{Fresh: cfg.Cache.AggregateTTL, Stale: cfg.Cache.AggregateStaleTTL},
	})

	readiness := handler.NewReadinessHandler(map[string]handler.Pinger{
		"postgres": pgClient,
		"storage":  storageClient,
	})

	verifier := middleware.NewStaticVerifier(cfg.Auth.StaticTokens)
	r := setupRouter(logger, verifier, readiness, handler.NewProgressHandler(progressSvc), handler.NewUploadHandler(uploadSvc), handler.NewAssetHandler(assetSvc))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(
	logger *slog.Logger,
	verifier middleware.TokenVerifier,
	readiness *handler.ReadinessHandler,
	progressHandler *handler.ProgressHandler,
	uploadHandler *handler.UploadHandler,
	assetHandler *handler.AssetHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Get("/ready", readiness.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))

		r.Post("/progress", progressHandler.Save)
		r.Post("/upload", uploadHandler.Upload)
		r.Delete("/upload", uploadHandler.Delete)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/progress", progressHandler.List)
			r.Get("/progress/{assetID}", progressHandler.Get)
			r.Get("/assets", assetHandler.List)
		})
	})

	return r
}
