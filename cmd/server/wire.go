//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/form"
	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/infrastructure/auth"
	"github.com/folioworks/media-ingest/internal/infrastructure/database"
	"github.com/folioworks/media-ingest/internal/infrastructure/logger"
	repo "github.com/folioworks/media-ingest/internal/infrastructure/repository/draft"
	"github.com/folioworks/media-ingest/internal/infrastructure/transcode"
	"github.com/folioworks/media-ingest/internal/interfaces/httpserver"
)

var draftSet = wire.NewSet(
	repo.NewRepository,
	wire.Bind(new(draft.Repository), new(*repo.Repository)),
	draft.NewService,
)

var ingestSet = wire.NewSet(
	provideWireBlobStore,
	provideTranscodeClient,
	provideImageIngestor,
	provideVideoIngestor,
	form.NewRegistry,
)

// BuildApplication assembles the media ingestion service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newDatabaseConfig,
		newGormDB,
		draftSet,
		ingestSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseDSN,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func provideWireBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ingest.BlobStore, error) {
	return provideBlobStore(ctx, cfg, log)
}

func provideTranscodeClient(cfg *config.Config, log zerolog.Logger) ingest.TranscodeClient {
	return transcode.NewClient(cfg, log)
}

func provideImageIngestor(store ingest.BlobStore, cfg *config.Config, log zerolog.Logger) *ingest.ImageIngestor {
	return ingest.NewImageIngestor(store, ingest.ImageOptions{MaxBytes: cfg.MaxImageBytes}, log)
}

func provideVideoIngestor(client ingest.TranscodeClient, cfg *config.Config, log zerolog.Logger) *ingest.VideoIngestor {
	return ingest.NewVideoIngestor(client, ingest.VideoOptions{
		MaxBytes:        cfg.MaxVideoBytes,
		CORSOrigin:      cfg.TranscodeCORS,
		PollInterval:    cfg.PollInterval,
		PollMaxAttempts: cfg.PollMaxAttempts,
	}, log)
}
