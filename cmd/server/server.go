package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/form"
	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/infrastructure/auth"
	"github.com/folioworks/media-ingest/internal/infrastructure/database"
	"github.com/folioworks/media-ingest/internal/infrastructure/logger"
	"github.com/folioworks/media-ingest/internal/infrastructure/observability"
	repo "github.com/folioworks/media-ingest/internal/infrastructure/repository/draft"
	"github.com/folioworks/media-ingest/internal/infrastructure/storage"
	"github.com/folioworks/media-ingest/internal/infrastructure/transcode"
	"github.com/folioworks/media-ingest/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(ctx, database.Config{
		DSN:             cfg.DatabaseDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	blobStore, err := provideBlobStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth")
	}

	transcodeClient := transcode.NewClient(cfg, log)
	images := ingest.NewImageIngestor(blobStore, ingest.ImageOptions{
		MaxBytes: cfg.MaxImageBytes,
	}, log)
	videos := ingest.NewVideoIngestor(transcodeClient, ingest.VideoOptions{
		MaxBytes:        cfg.MaxVideoBytes,
		CORSOrigin:      cfg.TranscodeCORS,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
	}, log)
	registry := form.NewRegistry(images, videos, log)

	draftRepository := repo.NewRepository(db)
	draftService := draft.NewService(draftRepository, log)

	httpServer := httpserver.New(cfg, log, draftService, registry, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideBlobStore creates the configured image storage backend.
func provideBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ingest.BlobStore, error) {
	if cfg.IsCDNStorage() {
		return storage.NewCDNStorage(cfg, log), nil
	}
	return storage.NewS3Storage(ctx, cfg, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
