package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/infrastructure/metrics"
)

// CDNStorage stores image objects through an HTTP upload endpoint that
// accepts a multipart POST and answers with the object's public URL and
// a deletable key. Deletion is a DELETE by key against the same
// endpoint.
type CDNStorage struct {
	uploadURL string
	client    *req.Client
	log       zerolog.Logger
}

type cdnUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func NewCDNStorage(cfg *config.Config, log zerolog.Logger) *CDNStorage {
	client := req.C().
		SetTimeout(cfg.TransferTimeout)
	if cfg.CDNAuthToken != "" {
		client.SetCommonBearerAuthToken(cfg.CDNAuthToken)
	}
	return &CDNStorage{
		uploadURL: strings.TrimSuffix(cfg.CDNUploadURL, "/"),
		client:    client,
		log:       log.With().Str("component", "cdn-storage").Logger(),
	}
}

// Put uploads the payload as a multipart file field. The endpoint
// assigns the canonical key; the suggested key only names the part.
func (c *CDNStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (ingest.StoredObject, error) {
	var result cdnUploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", key, body).
		SetSuccessResult(&result).
		Post(c.uploadURL)
	if err != nil {
		metrics.RecordStorageOperation("put", "error")
		return ingest.StoredObject{}, fmt.Errorf("cdn upload failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		metrics.RecordStorageOperation("put", "error")
		return ingest.StoredObject{}, fmt.Errorf("cdn upload returned status %d: %s", resp.StatusCode, resp.String())
	}
	if result.URL == "" || result.Key == "" {
		metrics.RecordStorageOperation("put", "error")
		return ingest.StoredObject{}, fmt.Errorf("cdn upload response is missing url or key")
	}

	metrics.RecordStorageOperation("put", "success")
	c.log.Debug().Str("key", result.Key).Msg("cdn object stored")
	return ingest.StoredObject{URL: result.URL, Key: result.Key}, nil
}

// Delete removes the object by key.
func (c *CDNStorage) Delete(ctx context.Context, key string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(c.uploadURL + "/" + url.PathEscape(key))
	if err != nil {
		metrics.RecordStorageOperation("delete", "error")
		return fmt.Errorf("cdn delete failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		metrics.RecordStorageOperation("delete", "error")
		return fmt.Errorf("cdn delete returned status %d", resp.StatusCode)
	}
	metrics.RecordStorageOperation("delete", "success")
	return nil
}
