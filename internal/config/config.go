package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the media
// ingestion service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"media-ingest"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MEDIA_INGEST_PORT" envDefault:"8290"`
	LogLevel        string        `env:"MEDIA_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"MEDIA_LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseDSN    string        `env:"DB_POSTGRESQL_DSN,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Image Storage Backend Selection
	StorageBackend string `env:"MEDIA_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "cdn"

	// S3 Storage Configuration
	S3Endpoint       string `env:"MEDIA_S3_ENDPOINT"`
	S3PublicEndpoint string `env:"MEDIA_S3_PUBLIC_ENDPOINT"`
	S3Region         string `env:"MEDIA_S3_REGION" envDefault:"us-west-2"`
	S3Bucket         string `env:"MEDIA_S3_BUCKET"`
	S3AccessKeyID    string `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`

	// CDN Upload Endpoint Configuration
	CDNUploadURL string `env:"MEDIA_CDN_UPLOAD_URL"`
	CDNAuthToken string `env:"MEDIA_CDN_AUTH_TOKEN"`

	// Transcoding Service Configuration
	TranscodeBaseURL string        `env:"TRANSCODE_BASE_URL"`
	TranscodeToken   string        `env:"TRANSCODE_API_TOKEN"`
	TranscodeCORS    string        `env:"TRANSCODE_CORS_ORIGIN" envDefault:"*"`
	TranscodeTimeout time.Duration `env:"TRANSCODE_HTTP_TIMEOUT" envDefault:"30s"`
	TransferTimeout  time.Duration `env:"TRANSCODE_TRANSFER_TIMEOUT" envDefault:"10m"`
	PollInterval     time.Duration `env:"TRANSCODE_POLL_INTERVAL" envDefault:"2s"`
	PollMaxAttempts  int           `env:"TRANSCODE_POLL_MAX_ATTEMPTS" envDefault:"30"`

	// Playback URL Construction
	StreamBaseURL string `env:"PLAYBACK_STREAM_BASE_URL" envDefault:"https://stream.folioworks.dev"`
	ImageBaseURL  string `env:"PLAYBACK_IMAGE_BASE_URL" envDefault:"https://image.folioworks.dev"`

	// Media Limits
	MaxImageBytes int64 `env:"MEDIA_MAX_IMAGE_BYTES" envDefault:"20971520"`
	MaxVideoBytes int64 `env:"MEDIA_MAX_VIDEO_BYTES" envDefault:"524288000"`

	// Authentication
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer  string `env:"AUTH_ISSUER"`
	Account     string `env:"ACCOUNT"`
	AuthJWKSURL string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicEndpoint = strings.TrimSpace(cfg.S3PublicEndpoint)
	cfg.TranscodeBaseURL = strings.TrimSpace(cfg.TranscodeBaseURL)
	cfg.CDNUploadURL = strings.TrimSpace(cfg.CDNUploadURL)

	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 20 * 1024 * 1024
	}
	if cfg.MaxVideoBytes <= 0 {
		cfg.MaxVideoBytes = 500 * 1024 * 1024
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollMaxAttempts <= 0 {
		cfg.PollMaxAttempts = 30
	}
	if cfg.IsCDNStorage() && cfg.CDNUploadURL == "" {
		return nil, fmt.Errorf("MEDIA_CDN_UPLOAD_URL is required when MEDIA_STORAGE_BACKEND is cdn")
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsCDNStorage returns true if the HTTP CDN upload backend is configured.
func (c *Config) IsCDNStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "cdn"
}

// IsS3Storage returns true if S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "s3"
}
