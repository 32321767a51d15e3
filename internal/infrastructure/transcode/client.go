package transcode

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/domain/media"
)

// Client talks to the remote transcoding service: upload sessions, raw
// binary transfers, job status polls and job deletion.
type Client struct {
	baseURL  string
	api      *req.Client
	transfer *req.Client
	log      zerolog.Logger
}

type createSessionRequest struct {
	CORSOrigin string `json:"cors_origin,omitempty"`
}

type createSessionResponse struct {
	JobID        string `json:"job_id"`
	UploadTarget string `json:"upload_target"`
}

type jobStatusResponse struct {
	Status          string   `json:"status"`
	PlayableIDs     []string `json:"playable_ids"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	AspectRatio     string   `json:"aspect_ratio,omitempty"`
}

// NewClient creates a transcoding service client. Returns nil when the
// service endpoint is not configured; video uploads are then disabled.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	if cfg.TranscodeBaseURL == "" {
		log.Warn().Msg("TRANSCODE_BASE_URL not configured, video uploads disabled")
		return nil
	}

	api := req.C().
		SetTimeout(cfg.TranscodeTimeout).
		SetCommonContentType("application/json")
	if cfg.TranscodeToken != "" {
		api.SetCommonBearerAuthToken(cfg.TranscodeToken)
	}

	// The binary transfer goes to a presigned target with its own, much
	// longer deadline, and no auth header.
	transfer := req.C().
		SetTimeout(cfg.TransferTimeout)

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.TranscodeBaseURL, "/"),
		api:      api,
		transfer: transfer,
		log:      log.With().Str("component", "transcode-client").Logger(),
	}
}

// CreateUploadSession opens a new direct upload and returns the job id
// with the target the bytes must be PUT to.
func (c *Client) CreateUploadSession(ctx context.Context, corsOrigin string) (ingest.UploadSession, error) {
	if c == nil {
		return ingest.UploadSession{}, fmt.Errorf("transcode client not configured")
	}

	var result createSessionResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetBody(createSessionRequest{CORSOrigin: corsOrigin}).
		SetSuccessResult(&result).
		Post(c.baseURL + "/v1/uploads")
	if err != nil {
		return ingest.UploadSession{}, fmt.Errorf("create upload session: %w", err)
	}
	if resp.StatusCode >= 400 {
		return ingest.UploadSession{}, fmt.Errorf("create upload session returned status %d: %s", resp.StatusCode, resp.String())
	}
	if result.JobID == "" || result.UploadTarget == "" {
		return ingest.UploadSession{}, fmt.Errorf("upload session response is missing job_id or upload_target")
	}

	c.log.Debug().Str("job_id", result.JobID).Msg("upload session created")
	return ingest.UploadSession{JobID: result.JobID, UploadTarget: result.UploadTarget}, nil
}

// Transfer PUTs the raw file bytes to the upload target, reporting
// cumulative progress as the transport consumes the reader.
func (c *Client) Transfer(ctx context.Context, target string, body io.Reader, size int64, contentType string, onProgress func(sent, total int64)) error {
	if c == nil {
		return fmt.Errorf("transcode client not configured")
	}

	counted := &progressReader{r: body, total: size, report: onProgress}
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetContentType(contentType).
		SetBody(counted).
		Put(target)
	if err != nil {
		return fmt.Errorf("binary transfer: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("binary transfer returned status %d", resp.StatusCode)
	}
	if onProgress != nil {
		onProgress(size, size)
	}
	return nil
}

// GetJobStatus polls the job once.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (ingest.JobStatus, error) {
	if c == nil {
		return ingest.JobStatus{}, fmt.Errorf("transcode client not configured")
	}

	var result jobStatusResponse
	resp, err := c.api.R().
		SetContext(ctx).
		SetSuccessResult(&result).
		Get(c.baseURL + "/v1/jobs/" + jobID)
	if err != nil {
		return ingest.JobStatus{}, fmt.Errorf("get job status: %w", err)
	}
	if resp.StatusCode >= 400 {
		return ingest.JobStatus{}, fmt.Errorf("get job status returned %d: %s", resp.StatusCode, resp.String())
	}

	status, err := parseStatus(result.Status)
	if err != nil {
		return ingest.JobStatus{}, err
	}
	return ingest.JobStatus{
		Status:          status,
		PlayableIDs:     result.PlayableIDs,
		DurationSeconds: result.DurationSeconds,
		AspectRatio:     result.AspectRatio,
	}, nil
}

// DeleteJob removes the job and its renditions.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if c == nil {
		return fmt.Errorf("transcode client not configured")
	}

	resp, err := c.api.R().
		SetContext(ctx).
		Delete(c.baseURL + "/v1/jobs/" + jobID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("delete job returned status %d", resp.StatusCode)
	}
	return nil
}

// parseStatus accepts both the service's CamelCase tokens (AwaitingUpload,
// Preparing, Ready, Errored) and the snake_case aliases older deployments
// emit.
func parseStatus(raw string) (media.VideoStatus, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "")
	switch norm {
	case "awaitingupload", "waiting":
		return media.VideoStatusAwaitingUpload, nil
	case "preparing", "processing":
		return media.VideoStatusPreparing, nil
	case "ready":
		return media.VideoStatusReady, nil
	case "errored", "failed":
		return media.VideoStatusErrored, nil
	default:
		return "", fmt.Errorf("unknown job status %q", raw)
	}
}

type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report func(sent, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		if p.report != nil {
			p.report(p.sent, p.total)
		}
	}
	return n, err
}
