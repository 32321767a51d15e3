package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/infrastructure/metrics"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

// VideoOptions bound what the video ingestor accepts and how long it
// waits on the remote transcoder.
type VideoOptions struct {
	MaxBytes        int64
	CORSOrigin      string
	PollInterval    time.Duration
	PollMaxAttempts int
}

// VideoIngestor drives the asynchronous two-phase protocol: obtain an
// upload session, stream the bytes with progress, then poll job status
// until a terminal state. A failed transfer is retried by re-invoking
// Upload; a slow transcode is only waited on or abandoned.
type VideoIngestor struct {
	client TranscodeClient
	opts   VideoOptions
	log    zerolog.Logger
}

func NewVideoIngestor(client TranscodeClient, opts VideoOptions, log zerolog.Logger) *VideoIngestor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.PollMaxAttempts <= 0 {
		opts.PollMaxAttempts = 30
	}
	return &VideoIngestor{
		client: client,
		opts:   opts,
		log:    log.With().Str("component", "video-ingestor").Logger(),
	}
}

// Upload runs the full state machine to a terminal state. Every
// invocation starts a fresh job; a stalled one is never resumed.
func (v *VideoIngestor) Upload(ctx context.Context, f File, onProgress ProgressFunc) (media.Binding, error) {
	asset, err := v.Start(ctx, f, onProgress)
	if err != nil {
		return media.NoBinding(), err
	}
	final, err := v.Await(ctx, asset.JobID, onProgress)
	if err != nil {
		return media.NoBinding(), err
	}
	return media.BindVideo(final), nil
}

// Start performs the caller-controlled fast phase: validation, session
// request and binary transfer. On success the returned asset is bound
// but not yet playable; Await completes it.
func (v *VideoIngestor) Start(ctx context.Context, f File, onProgress ProgressFunc) (media.VideoAsset, error) {
	emit := func(p media.UploadProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	progress := media.NewProgress()

	if err := v.validate(ctx, f); err != nil {
		emit(progress.Fail(err.Error()))
		return media.VideoAsset{}, err
	}

	progress = progress.Advance(media.PhaseRequesting, 0)
	emit(progress)

	session, err := v.client.CreateUploadSession(ctx, v.opts.CORSOrigin)
	if err != nil {
		perr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeSession,
			"failed to create upload session", err, "e81d4a6f-09c2-47b5-8d3e-1f65a0c92b84")
		emit(progress.Fail(perr.Message))
		return media.VideoAsset{}, perr
	}

	log := v.log.With().Str("job_id", session.JobID).Logger()
	log.Info().Msg("upload session created")

	progress = progress.Advance(media.PhaseTransferring, 0)
	emit(progress)

	err = v.client.Transfer(ctx, session.UploadTarget, f.Content, f.Size, f.ContentType, func(sent, total int64) {
		progress = progress.Advance(media.PhaseTransferring, percentOf(sent, total))
		emit(progress)
	})
	if err != nil {
		// The job is abandoned, not deleted; its id stays visible for
		// support diagnostics.
		metrics.RecordUpload("video", "error", 0)
		perr := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTransfer,
			"video transfer failed", err, "0a73c5e2-418d-46fb-92a6-d5e08b1c74f3",
			map[string]any{"job_id": session.JobID})
		emit(progress.Fail(perr.Message))
		return media.VideoAsset{}, perr
	}

	metrics.RecordUpload("video", "success", f.Size)
	log.Info().Int64("bytes", f.Size).Msg("video transferred")

	emit(progress.Advance(media.PhaseProcessing, 100))
	return media.VideoAsset{JobID: session.JobID, Status: media.VideoStatusPreparing}, nil
}

// Await polls job status at a fixed interval until the remote reaches a
// terminal state or the attempt budget runs out. A failed poll request
// is transient and never terminal on its own.
func (v *VideoIngestor) Await(ctx context.Context, jobID string, onProgress ProgressFunc) (media.VideoAsset, error) {
	emit := func(p media.UploadProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	progress := media.UploadProgress{Phase: media.PhaseProcessing, Percent: 100}
	log := v.log.With().Str("job_id", jobID).Logger()

	timer := time.NewTimer(v.opts.PollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= v.opts.PollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			perr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTransfer,
				"polling cancelled", ctx.Err(), "6b9f2d05-e7a4-4c81-b3f0-28c61d59a407")
			emit(progress.Fail(perr.Message))
			return media.VideoAsset{JobID: jobID, Status: media.VideoStatusPreparing}, perr
		case <-timer.C:
		}

		status, err := v.client.GetJobStatus(ctx, jobID)
		if err != nil {
			metrics.RecordPoll("error")
			log.Debug().Err(err).Int("attempt", attempt).Msg("status poll failed, retrying")
			timer.Reset(v.opts.PollInterval)
			continue
		}
		metrics.RecordPoll("ok")

		asset, terminal, err := mapJobStatus(ctx, jobID, status)
		if err != nil {
			log.Warn().Int("attempt", attempt).Msg("remote reported processing failure")
			emit(progress.Fail("video processing failed"))
			return asset, err
		}
		if terminal {
			log.Info().Str("playable_id", asset.PlayableID).Int("attempts", attempt).Msg("video ready")
			emit(progress.Advance(media.PhaseReady, 100))
			return asset, nil
		}

		timer.Reset(v.opts.PollInterval)
	}

	perr := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout,
		"video is still processing, check back later", nil, "4c2e8b71-d3f6-490a-85c4-7a1d09e63b28",
		map[string]any{"job_id": jobID, "attempts": v.opts.PollMaxAttempts})
	log.Warn().Int("attempts", v.opts.PollMaxAttempts).Msg("poll budget exhausted")
	emit(progress.Fail(perr.Message))
	return media.VideoAsset{JobID: jobID, Status: media.VideoStatusPreparing}, perr
}

// CheckAgain issues one fresh status poll for a job that previously
// timed out, without restarting the upload.
func (v *VideoIngestor) CheckAgain(ctx context.Context, jobID string) (media.VideoAsset, error) {
	status, err := v.client.GetJobStatus(ctx, jobID)
	if err != nil {
		return media.VideoAsset{JobID: jobID, Status: media.VideoStatusPreparing},
			platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTransfer,
				"job status poll failed", err, "d5a01f38-64bc-42e9-9571-0cf38e2a6d94")
	}
	asset, _, err := mapJobStatus(ctx, jobID, status)
	return asset, err
}

// Remove deletes the remote job and its renditions, best effort.
func (v *VideoIngestor) Remove(ctx context.Context, jobID string) error {
	if err := v.client.DeleteJob(ctx, jobID); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDeletion,
			"job deletion failed", err, "82e6c9b4-1d07-4fa3-ba58-396f04d18ce2")
	}
	v.log.Info().Str("job_id", jobID).Msg("transcoding job removed")
	return nil
}

func (v *VideoIngestor) validate(ctx context.Context, f File) error {
	contentType := strings.ToLower(strings.TrimSpace(f.ContentType))
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	if !strings.HasPrefix(contentType, "video/") {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported video mime type %q", f.ContentType), nil,
			"f93b7a50-28ed-4c16-ad02-b64c8f1e5d73")
	}
	if f.Size <= 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"video file is empty", nil, "17d4e8c6-b95a-403f-8e21-d70a52c9f6b8")
	}
	if f.Size > v.opts.MaxBytes {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("video exceeds max size of %d bytes", v.opts.MaxBytes), nil,
			"a6f0d2b9-7c31-45e8-9b64-e82c5d10a397")
	}
	return nil
}

// mapJobStatus translates one poll result. terminal is true only for a
// usable ready asset; an explicit remote failure returns an error.
func mapJobStatus(ctx context.Context, jobID string, status JobStatus) (media.VideoAsset, bool, error) {
	switch status.Status {
	case media.VideoStatusErrored:
		return media.VideoAsset{JobID: jobID, Status: media.VideoStatusErrored}, false,
			platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeProcessing,
				"remote transcoding failed", nil, "2c8ba1e5-f946-4d70-a3b8-50e619c47d2f",
				map[string]any{"job_id": jobID})
	case media.VideoStatusReady:
		if len(status.PlayableIDs) == 0 {
			return media.VideoAsset{JobID: jobID, Status: media.VideoStatusErrored}, false,
				platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeProcessing,
					"job is ready but has no playable rendition", nil, "70e3d591-a82c-4b46-bf17-c94058e2a6d1")
		}
		return media.VideoAsset{
			JobID:           jobID,
			PlayableID:      status.PlayableIDs[0],
			Status:          media.VideoStatusReady,
			DurationSeconds: status.DurationSeconds,
			AspectRatio:     status.AspectRatio,
		}, true, nil
	default:
		return media.VideoAsset{JobID: jobID, Status: media.VideoStatusPreparing}, false, nil
	}
}
