package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/infrastructure/metrics"
	"github.com/folioworks/media-ingest/internal/utils/assetid"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

var allowedImageMIMEs = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
	"image/tiff": "tiff",
}

// ImageOptions bound what the image ingestor accepts.
type ImageOptions struct {
	MaxBytes int64
}

// ImageIngestor uploads a single image to the blob store and returns a
// stable public URL plus a deletable key. The upload is
// synchronous-complete: when it returns, the media is usable.
type ImageIngestor struct {
	store BlobStore
	opts  ImageOptions
	log   zerolog.Logger
}

func NewImageIngestor(store BlobStore, opts ImageOptions, log zerolog.Logger) *ImageIngestor {
	return &ImageIngestor{
		store: store,
		opts:  opts,
		log:   log.With().Str("component", "image-ingestor").Logger(),
	}
}

// Upload validates the file locally, then performs exactly one remote
// write. Validation failures never reach the network.
func (i *ImageIngestor) Upload(ctx context.Context, f File, onProgress ProgressFunc) (media.Binding, error) {
	emit := func(p media.UploadProgress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	progress := media.NewProgress()

	data, mimeType, err := i.validate(ctx, f)
	if err != nil {
		emit(progress.Fail(err.Error()))
		return media.NoBinding(), err
	}

	key := fmt.Sprintf("images/%s.%s", assetid.NewUpload(), allowedImageMIMEs[mimeType])

	progress = progress.Advance(media.PhaseTransferring, 0)
	emit(progress)

	body := &countingReader{
		r:     bytes.NewReader(data),
		total: int64(len(data)),
		report: func(sent, total int64) {
			progress = progress.Advance(media.PhaseTransferring, percentOf(sent, total))
			emit(progress)
		},
	}

	stored, err := i.store.Put(ctx, key, body, int64(len(data)), mimeType)
	if err != nil {
		metrics.RecordUpload("image", "error", 0)
		perr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTransfer,
			"image upload failed", err, "3f6c1b9e-8a42-4d17-9c5b-0e7d2a84f316")
		emit(progress.Fail(perr.Message))
		return media.NoBinding(), perr
	}

	metrics.RecordUpload("image", "success", int64(len(data)))
	i.log.Info().Str("key", stored.Key).Int("bytes", len(data)).Msg("image stored")

	emit(progress.Advance(media.PhaseReady, 100))
	return media.BindImage(media.ImageAsset{URL: stored.URL, StorageKey: stored.Key}), nil
}

// Remove deletes the remote object. Callers treat failure as best
// effort; an orphaned object is preferable to a blocked edit.
func (i *ImageIngestor) Remove(ctx context.Context, key string) error {
	if err := i.store.Delete(ctx, key); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDeletion,
			"image deletion failed", err, "b2d94e07-51c3-4f68-a0d9-6c8e13b75a42")
	}
	i.log.Info().Str("key", key).Msg("image removed")
	return nil
}

// validate reads the payload and checks size and sniffed MIME type
// before any network call.
func (i *ImageIngestor) validate(ctx context.Context, f File) ([]byte, string, error) {
	if f.Size > 0 && f.Size > i.opts.MaxBytes {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("image exceeds max size of %d bytes", i.opts.MaxBytes), nil,
			"9e1f7c24-3db8-4a50-b6e1-57a20c4d983f")
	}

	data, err := io.ReadAll(io.LimitReader(f.Content, i.opts.MaxBytes+1))
	if err != nil {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"failed to read image payload", err, "c47a02e9-6f15-4b3d-8827-e95d01cb6a70")
	}
	if len(data) == 0 {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"image file is empty", nil, "5d38b6f1-0a92-44c7-bd04-82f6e9317c5d")
	}
	if int64(len(data)) > i.opts.MaxBytes {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("image exceeds max size of %d bytes", i.opts.MaxBytes), nil,
			"9e1f7c24-3db8-4a50-b6e1-57a20c4d983f")
	}

	mimeType := mimetype.Detect(data).String()
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if _, ok := allowedImageMIMEs[mimeType]; !ok {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported image mime type %s", mimeType), nil,
			"71c5e8a3-2b94-4f06-ae1d-c03b58d27f19")
	}
	return data, mimeType, nil
}
