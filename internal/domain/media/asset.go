package media

import "errors"

// ImageAsset references an image stored on the object storage CDN.
// It is created atomically on a successful upload; there is no partial
// persisted state.
type ImageAsset struct {
	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`
}

// VideoStatus mirrors the remote transcoding job state. It is polled,
// never locally authoritative.
type VideoStatus string

const (
	VideoStatusAwaitingUpload VideoStatus = "awaiting_upload"
	VideoStatusPreparing      VideoStatus = "preparing"
	VideoStatusReady          VideoStatus = "ready"
	VideoStatusErrored        VideoStatus = "errored"
)

// IsTerminal reports whether the remote job can no longer change state.
func (s VideoStatus) IsTerminal() bool {
	return s == VideoStatusReady || s == VideoStatusErrored
}

// VideoAsset references a transcoding job and, once ready, a playable
// rendition. PlayableID is set if and only if Status is ready. An errored
// asset keeps its JobID for support diagnostics.
type VideoAsset struct {
	JobID           string      `json:"job_id"`
	PlayableID      string      `json:"playable_id,omitempty"`
	Status          VideoStatus `json:"status"`
	DurationSeconds float64     `json:"duration_seconds,omitempty"`
	AspectRatio     string      `json:"aspect_ratio,omitempty"`
}

var (
	errMissingPlayable = errors.New("ready video asset has no playable id")
	errStrayPlayable   = errors.New("non-ready video asset carries a playable id")
)

// Validate enforces the ready-implies-playable invariant.
func (v VideoAsset) Validate() error {
	if v.Status == VideoStatusReady && v.PlayableID == "" {
		return errMissingPlayable
	}
	if v.Status != VideoStatusReady && v.PlayableID != "" {
		return errStrayPlayable
	}
	return nil
}

// Playable reports whether the asset can be rendered right now.
func (v VideoAsset) Playable() bool {
	return v.Status == VideoStatusReady && v.PlayableID != ""
}
