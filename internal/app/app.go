// Package app assembles the configured stores, clients and services. Both the
// HTTP server and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"joyex-backend/internal/config"
	"joyex-backend/internal/database"
	"joyex-backend/internal/fal"
	"joyex-backend/internal/jobs"
	"joyex-backend/internal/logger"
	"joyex-backend/internal/metrics"
	"joyex-backend/internal/quality"
	"joyex-backend/internal/services"
	"joyex-backend/internal/store"
	"joyex-backend/internal/supabase"
	"joyex-backend/internal/upload"
)

const metricsNamespace = "joyex"

// App holds the long-lived services built from one Config.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Generator *fal.Client
	Jobs      *jobs.Service
	Uploads   *upload.Service
	Quality   *quality.Monitor
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry

	closers []func() error
}

// New wires every component. reg may be nil, in which case a fresh registry
// is created.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, reg *prometheus.Registry) (*App, error) {
	log = logger.OrNop(log)
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	a := &App{
		Config:   cfg,
		Logger:   log,
		Quality:  quality.NewMonitor(quality.DefaultCapacity),
		Metrics:  metrics.New(metricsNamespace, reg),
		Registry: reg,
	}

	jobStore, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	backend, err := NewUploadBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Uploads = upload.NewService(backend, cfg.UploadMaxFileSize, cfg.UploadMaxFiles, a.Quality, log.Named("upload"))

	a.Generator = fal.NewClient(fal.Options{
		Endpoint: cfg.FALEndpoint,
		APIKey:   cfg.FALKey,
		DemoMode: cfg.FALDemoMode,
		Timeout:  cfg.FALTimeout,
		Logger:   log.Named("fal"),
	})

	opts := jobs.Options{
		DefaultPreset:  cfg.AccuracyPreset,
		StrictAccuracy: cfg.AccuracyStrict,
		PublicBaseURL:  cfg.BaseURL,
		Quality:        a.Quality,
		Metrics:        a.Metrics,
		Logger:         log.Named("jobs"),
	}

	switch {
	case cfg.RealtimeEnabled():
		client, err := supabase.NewClient(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts.Publisher = supabase.NewRealtimeClient(client.Supabase)
	case cfg.SupabaseURL != "":
		log.Info("job events disabled: SUPABASE_SERVICE_ROLE_KEY is not set")
	}

	if cfg.ArchiveResults {
		opts.Archiver = services.NewArchiveService(backend, &http.Client{Timeout: cfg.FALTimeout}, cfg.BaseURL, log.Named("archive"))
	}

	a.Jobs = jobs.NewService(jobStore, a.Generator, opts)

	log.Info("application ready",
		zap.String("job_store", cfg.JobStore),
		zap.String("upload_backend", cfg.UploadBackend),
		zap.String("generation_mode", a.Generator.Mode()),
		zap.Bool("realtime", opts.Publisher != nil),
		zap.Bool("archive_results", opts.Archiver != nil),
	)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (store.JobStore, error) {
	cfg := a.Config

	switch cfg.JobStore {
	case config.JobStoreMemory:
		return store.NewMemoryStore(cfg.HistoryLimit), nil

	case config.JobStoreSQLite:
		s, err := store.NewSQLiteStore(cfg.SQLitePath, cfg.HistoryLimit)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil

	case config.JobStorePostgres:
		if err := Migrate(ctx, cfg.DatabaseURL, a.Logger); err != nil {
			return nil, err
		}
		db, err := supabase.NewDatabaseClient(cfg.DatabaseURL, cfg.HistoryLimit)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil

	case config.JobStoreRedis:
		client, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return store.NewRedisStore(client, cfg.HistoryLimit), nil
	}

	return nil, fmt.Errorf("unknown job store %q", cfg.JobStore)
}

// Migrate applies pending Postgres migrations.
func Migrate(ctx context.Context, databaseURL string, log *zap.Logger) error {
	migrator, err := database.NewMigrator(databaseURL, log.Named("migrate"))
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	applied, err := migrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations complete", zap.Int("applied", applied))
	return nil
}

// NewUploadBackend returns the storage configured by UPLOAD_BACKEND.
func NewUploadBackend(ctx context.Context, cfg *config.Config) (upload.Backend, error) {
	switch cfg.UploadBackend {
	case config.UploadBackendLocal:
		backend, err := upload.NewLocalBackend(cfg.UploadDir, cfg.UploadPublicPath)
		if err != nil {
			return nil, err
		}
		return backend, nil

	case config.UploadBackendSupabase:
		backend, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServerKey(), cfg.SupabaseStorageBucket)
		if err != nil {
			return nil, err
		}
		return backend, nil

	case config.UploadBackendS3:
		backend, err := upload.NewS3Backend(ctx, upload.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return backend, nil
	}
	return nil, fmt.Errorf("unknown upload backend %q", cfg.UploadBackend)
}

// Close releases store connections in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
