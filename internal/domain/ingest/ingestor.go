package ingest

import (
	"context"
	"io"

	"github.com/folioworks/media-ingest/internal/domain/media"
)

// File describes a user-selected local file queued for ingestion.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ProgressFunc receives progress snapshots as the transfer advances.
// Callbacks fire on the uploading goroutine; consumers that care about
// ordering route them through their own scheduler.
type ProgressFunc func(media.UploadProgress)

// Ingestor moves a local file to durable remote storage and reports a
// terminal asset reference or failure. Remove releases the remote
// object or job by its opaque handle.
type Ingestor interface {
	Upload(ctx context.Context, f File, onProgress ProgressFunc) (media.Binding, error)
	Remove(ctx context.Context, id string) error
}

// StoredObject is the durable result of a blob upload.
type StoredObject struct {
	URL string
	Key string
}

// BlobStore is the contract the image path requires from object
// storage. Implementations may assign their own key; the returned
// StoredObject is authoritative.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// UploadSession is the result of opening a transcoding upload session.
type UploadSession struct {
	JobID        string
	UploadTarget string
}

// JobStatus is one poll result from the transcoding service.
type JobStatus struct {
	Status          media.VideoStatus
	PlayableIDs     []string
	DurationSeconds float64
	AspectRatio     string
}

// TranscodeClient is the contract the video path requires from the
// remote transcoding service: open an upload session, stream the bytes
// with byte-level progress, poll job status, delete a job.
type TranscodeClient interface {
	CreateUploadSession(ctx context.Context, corsOrigin string) (UploadSession, error)
	Transfer(ctx context.Context, target string, body io.Reader, size int64, contentType string, onProgress func(sent, total int64)) error
	GetJobStatus(ctx context.Context, jobID string) (JobStatus, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// countingReader reports cumulative bytes read to a callback.
type countingReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report func(sent, total int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.report != nil {
			c.report(c.sent, c.total)
		}
	}
	return n, err
}

func percentOf(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(sent * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct
}
