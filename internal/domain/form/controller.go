package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/infrastructure/metrics"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

// SlotKind names a media slot on a content draft. The slots are
// independent; a draft can hold both.
type SlotKind string

const (
	SlotFeaturedImage SlotKind = "featured_image"
	SlotVideo         SlotKind = "video"
)

// Valid reports whether the slot kind is known.
func (s SlotKind) Valid() bool {
	return s == SlotFeaturedImage || s == SlotVideo
}

// Snapshot is what the surrounding form reads: the current binding, the
// progress of any in-flight operation and the last recorded error.
type Snapshot struct {
	Binding  media.Binding        `json:"binding"`
	Progress media.UploadProgress `json:"progress"`
	Error    string               `json:"error,omitempty"`
}

type imageIngestor interface {
	Upload(ctx context.Context, f ingest.File, onProgress ingest.ProgressFunc) (media.Binding, error)
	Remove(ctx context.Context, key string) error
}

type videoIngestor interface {
	Start(ctx context.Context, f ingest.File, onProgress ingest.ProgressFunc) (media.VideoAsset, error)
	Await(ctx context.Context, jobID string, onProgress ingest.ProgressFunc) (media.VideoAsset, error)
	CheckAgain(ctx context.Context, jobID string) (media.VideoAsset, error)
	Remove(ctx context.Context, jobID string) error
}

type slotState struct {
	gen      uint64
	binding  media.Binding
	progress media.UploadProgress
	lastErr  string
	cancel   context.CancelFunc
}

// Controller coordinates the per-slot MediaBinding and UploadProgress
// for one content draft. All slot mutation is funneled through a single
// scheduler goroutine; every operation carries the generation it was
// started under, so events from a superseded operation are discarded
// instead of guarded by scattered flags.
type Controller struct {
	images imageIngestor
	videos videoIngestor
	log    zerolog.Logger

	tasks chan func()
	done  chan struct{}

	mu    sync.RWMutex
	slots map[SlotKind]*slotState
}

func NewController(images imageIngestor, videos videoIngestor, log zerolog.Logger) *Controller {
	c := &Controller{
		images: images,
		videos: videos,
		log:    log.With().Str("component", "media-form").Logger(),
		tasks:  make(chan func(), 32),
		done:   make(chan struct{}),
		slots: map[SlotKind]*slotState{
			SlotFeaturedImage: {binding: media.NoBinding(), progress: media.NewProgress()},
			SlotVideo:         {binding: media.NoBinding(), progress: media.NewProgress()},
		},
	}
	go c.run()
	return c
}

// Close stops the scheduler and cancels in-flight operations.
func (c *Controller) Close() {
	c.dispatchWait(func() {
		for _, slot := range c.slots {
			if slot.cancel != nil {
				slot.cancel()
			}
		}
	})
	close(c.done)
}

func (c *Controller) run() {
	for {
		select {
		case <-c.done:
			return
		case task := <-c.tasks:
			c.mu.Lock()
			task()
			c.mu.Unlock()
		}
	}
}

func (c *Controller) dispatch(task func()) {
	select {
	case <-c.done:
	case c.tasks <- task:
	}
}

func (c *Controller) dispatchWait(task func()) {
	applied := make(chan struct{})
	c.dispatch(func() {
		task()
		close(applied)
	})
	select {
	case <-c.done:
	case <-applied:
	}
}

// busy reports whether any slot has an operation in flight.
func (c *Controller) busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, slot := range c.slots {
		switch slot.progress.Phase {
		case media.PhaseRequesting, media.PhaseTransferring, media.PhaseProcessing:
			return true
		}
	}
	return false
}

// Snapshot returns the slot's current state.
func (c *Controller) Snapshot(kind SlotKind) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slot := c.slots[kind]
	return Snapshot{Binding: slot.binding, Progress: slot.progress, Error: slot.lastErr}
}

// Select routes the file to the matching ingestor. Validation, session
// and transfer errors are returned to the caller; for video the
// transcoding wait continues in the background and lands on the slot
// when it terminates. A Select while a previous upload is in flight
// supersedes it.
func (c *Controller) Select(ctx context.Context, kind SlotKind, f ingest.File) (Snapshot, error) {
	if !kind.Valid() {
		return Snapshot{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown media slot %q", kind), nil, "38c50f9a-e217-4d6b-80a5-9be4d1c62f07")
	}

	// Operations outlive the originating request but keep its values.
	opCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	var gen uint64
	c.dispatchWait(func() {
		slot := c.slots[kind]
		if slot.cancel != nil {
			slot.cancel()
		}
		slot.gen++
		slot.cancel = cancel
		slot.progress = media.NewProgress()
		slot.lastErr = ""
		gen = slot.gen
	})

	onProgress := func(p media.UploadProgress) {
		c.dispatch(func() {
			slot := c.slots[kind]
			if slot.gen != gen {
				return
			}
			slot.progress = p
		})
	}

	if kind == SlotFeaturedImage {
		return c.selectImage(opCtx, kind, gen, f, onProgress)
	}
	return c.selectVideo(opCtx, kind, gen, f, onProgress)
}

func (c *Controller) selectImage(ctx context.Context, kind SlotKind, gen uint64, f ingest.File, onProgress ingest.ProgressFunc) (Snapshot, error) {
	binding, err := c.images.Upload(ctx, f, onProgress)
	if err != nil {
		c.dispatchWait(func() {
			slot := c.slots[kind]
			if slot.gen != gen {
				return
			}
			slot.lastErr = err.Error()
		})
		return c.Snapshot(kind), err
	}

	c.dispatchWait(func() {
		slot := c.slots[kind]
		if slot.gen != gen {
			return
		}
		slot.binding = binding
		slot.cancel = nil
	})
	metrics.RecordOutcome("image", "ready")
	return c.Snapshot(kind), nil
}

func (c *Controller) selectVideo(ctx context.Context, kind SlotKind, gen uint64, f ingest.File, onProgress ingest.ProgressFunc) (Snapshot, error) {
	asset, err := c.videos.Start(ctx, f, onProgress)
	if err != nil {
		c.dispatchWait(func() {
			slot := c.slots[kind]
			if slot.gen != gen {
				return
			}
			slot.lastErr = err.Error()
		})
		return c.Snapshot(kind), err
	}

	// Bound but not yet playable is a legitimate state; a draft saved
	// now persists the job id without a playable rendition.
	c.dispatchWait(func() {
		slot := c.slots[kind]
		if slot.gen != gen {
			return
		}
		slot.binding = media.BindVideo(asset)
	})

	go c.awaitVideo(ctx, kind, gen, asset.JobID, onProgress)
	return c.Snapshot(kind), nil
}

func (c *Controller) awaitVideo(ctx context.Context, kind SlotKind, gen uint64, jobID string, onProgress ingest.ProgressFunc) {
	final, err := c.videos.Await(ctx, jobID, onProgress)
	c.dispatch(func() {
		slot := c.slots[kind]
		if slot.gen != gen {
			return
		}
		slot.cancel = nil
		switch {
		case err == nil:
			slot.binding = media.BindVideo(final)
			metrics.RecordOutcome("video", "ready")
		case platformerrors.IsType(err, platformerrors.ErrorTypeTimeout):
			// The remote may still finish; the binding stays pending and
			// Recheck can pick the result up later.
			slot.lastErr = err.Error()
			metrics.RecordOutcome("video", "timed_out")
		case platformerrors.IsType(err, platformerrors.ErrorTypeProcessing):
			slot.binding = media.BindVideo(final)
			slot.lastErr = err.Error()
			metrics.RecordOutcome("video", "errored")
		default:
			slot.lastErr = err.Error()
		}
	})
}

// Recheck issues one fresh status poll for a pending video slot and
// applies the result if this slot has not been superseded meanwhile.
func (c *Controller) Recheck(ctx context.Context) (Snapshot, error) {
	var (
		gen   uint64
		jobID string
	)
	c.dispatchWait(func() {
		slot := c.slots[SlotVideo]
		gen = slot.gen
		if slot.binding.Kind == media.BindingVideo && !slot.binding.Video.Playable() {
			jobID = slot.binding.Video.JobID
		}
	})
	if jobID == "" {
		return c.Snapshot(SlotVideo), platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"video slot has no pending job to recheck", nil, "ea5d20c8-7b63-4f91-a4d2-08c15f79e3b6")
	}

	asset, err := c.videos.CheckAgain(ctx, jobID)
	c.dispatchWait(func() {
		slot := c.slots[SlotVideo]
		if slot.gen != gen {
			return
		}
		switch {
		case err == nil && asset.Playable():
			slot.binding = media.BindVideo(asset)
			slot.progress = media.UploadProgress{Phase: media.PhaseReady, Percent: 100}
			slot.lastErr = ""
		case platformerrors.IsType(err, platformerrors.ErrorTypeProcessing):
			slot.binding = media.BindVideo(asset)
			slot.lastErr = err.Error()
		}
	})
	if err != nil {
		return c.Snapshot(SlotVideo), err
	}
	return c.Snapshot(SlotVideo), nil
}

// Clear supersedes any in-flight upload, releases the remote asset best
// effort and empties the slot. Local state never stays bound because a
// remote deletion failed.
func (c *Controller) Clear(ctx context.Context, kind SlotKind) (Snapshot, error) {
	if !kind.Valid() {
		return Snapshot{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown media slot %q", kind), nil, "38c50f9a-e217-4d6b-80a5-9be4d1c62f07")
	}

	var (
		removalKey string
		hadKey     bool
		wasVideo   bool
	)
	c.dispatchWait(func() {
		slot := c.slots[kind]
		if slot.cancel != nil {
			slot.cancel()
			slot.cancel = nil
		}
		slot.gen++
		removalKey, hadKey = slot.binding.RemovalKey()
		wasVideo = slot.binding.Kind == media.BindingVideo
		slot.binding = media.NoBinding()
		slot.progress = media.NewProgress()
		slot.lastErr = ""
	})

	if hadKey {
		go c.removeRemote(context.WithoutCancel(ctx), wasVideo, removalKey)
	}
	return c.Snapshot(kind), nil
}

func (c *Controller) removeRemote(ctx context.Context, isVideo bool, key string) {
	var err error
	if isVideo {
		err = c.videos.Remove(ctx, key)
	} else {
		err = c.images.Remove(ctx, key)
	}
	if err != nil {
		// Deletion is best effort; an orphaned remote object must not
		// block the user's edit.
		c.log.Warn().Err(err).Str("key", key).Msg("remote deletion failed")
	}
}
