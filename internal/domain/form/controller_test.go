package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

type fakeImages struct {
	mu      sync.Mutex
	binding media.Binding
	err     error
	removed []string
	delErr  error
}

func (f *fakeImages) Upload(ctx context.Context, file ingest.File, onProgress ingest.ProgressFunc) (media.Binding, error) {
	if f.err != nil {
		return media.NoBinding(), f.err
	}
	if onProgress != nil {
		onProgress(media.UploadProgress{Phase: media.PhaseTransferring, Percent: 50})
	}
	return f.binding, nil
}

func (f *fakeImages) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, key)
	return f.delErr
}

func (f *fakeImages) removedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

type awaitOutcome struct {
	asset media.VideoAsset
	err   error
}

// fakeVideos parks every Await call on a channel the test feeds, so
// terminal events can be released in a chosen order.
type fakeVideos struct {
	mu         sync.Mutex
	startErr   error
	jobSeq     int
	awaitCalls chan chan awaitOutcome
	checkAsset media.VideoAsset
	checkErr   error
	removed    []string
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{awaitCalls: make(chan chan awaitOutcome, 8)}
}

func (f *fakeVideos) Start(ctx context.Context, file ingest.File, onProgress ingest.ProgressFunc) (media.VideoAsset, error) {
	if f.startErr != nil {
		return media.VideoAsset{}, f.startErr
	}
	f.mu.Lock()
	f.jobSeq++
	jobID := "job-" + strings.Repeat("x", f.jobSeq)
	f.mu.Unlock()
	return media.VideoAsset{JobID: jobID, Status: media.VideoStatusPreparing}, nil
}

func (f *fakeVideos) Await(ctx context.Context, jobID string, onProgress ingest.ProgressFunc) (media.VideoAsset, error) {
	outcome := make(chan awaitOutcome, 1)
	f.awaitCalls <- outcome
	o := <-outcome
	return o.asset, o.err
}

func (f *fakeVideos) CheckAgain(ctx context.Context, jobID string) (media.VideoAsset, error) {
	return f.checkAsset, f.checkErr
}

func (f *fakeVideos) Remove(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, jobID)
	return nil
}

func (f *fakeVideos) nextAwait(t *testing.T) chan awaitOutcome {
	t.Helper()
	select {
	case ch := <-f.awaitCalls:
		return ch
	case <-time.After(2 * time.Second):
		t.Fatal("no await call arrived")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func testFile() ingest.File {
	return ingest.File{Name: "clip.mp4", ContentType: "video/mp4", Size: 64, Content: strings.NewReader(strings.Repeat("x", 64))}
}

func timeoutErr() error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeTimeout, "video is still processing, check back later", nil,
		"4c2e8b71-d3f6-490a-85c4-7a1d09e63b28")
}

func TestControllerImageSelect(t *testing.T) {
	images := &fakeImages{binding: media.BindImage(media.ImageAsset{URL: "https://cdn.example.com/a.jpg", StorageKey: "images/a.jpg"})}
	c := NewController(images, newFakeVideos(), zerolog.Nop())
	defer c.Close()

	snap, err := c.Select(context.Background(), SlotFeaturedImage, testFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Binding.Kind != media.BindingImage {
		t.Fatalf("expected image binding, got %s", snap.Binding.Kind)
	}
	if snap.Error != "" {
		t.Fatalf("unexpected error on snapshot: %q", snap.Error)
	}
}

func TestControllerImageSelectFailure(t *testing.T) {
	images := &fakeImages{err: errors.New("upload failed")}
	c := NewController(images, newFakeVideos(), zerolog.Nop())
	defer c.Close()

	snap, err := c.Select(context.Background(), SlotFeaturedImage, testFile())
	if err == nil {
		t.Fatal("expected error")
	}
	if snap.Binding.IsBound() {
		t.Fatal("failed upload left the slot bound")
	}
	if snap.Error == "" {
		t.Fatal("expected the failure recorded on the snapshot")
	}
}

func TestControllerUnknownSlot(t *testing.T) {
	c := NewController(&fakeImages{}, newFakeVideos(), zerolog.Nop())
	defer c.Close()

	_, err := c.Select(context.Background(), SlotKind("audio"), testFile())
	if !platformerrors.IsType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestControllerVideoBecomesReady(t *testing.T) {
	videos := newFakeVideos()
	c := NewController(&fakeImages{}, videos, zerolog.Nop())
	defer c.Close()

	snap, err := c.Select(context.Background(), SlotVideo, testFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Binding.Kind != media.BindingVideo || snap.Binding.Video.Playable() {
		t.Fatalf("expected a pending video binding, got %+v", snap.Binding)
	}
	jobID := snap.Binding.Video.JobID

	videos.nextAwait(t) <- awaitOutcome{asset: media.VideoAsset{
		JobID: jobID, PlayableID: "pl-1", Status: media.VideoStatusReady,
	}}

	waitFor(t, func() bool {
		s := c.Snapshot(SlotVideo)
		return s.Binding.Kind == media.BindingVideo && s.Binding.Video.Playable()
	})
}

func TestControllerVideoTimeoutThenRecheck(t *testing.T) {
	videos := newFakeVideos()
	c := NewController(&fakeImages{}, videos, zerolog.Nop())
	defer c.Close()

	snap, err := c.Select(context.Background(), SlotVideo, testFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jobID := snap.Binding.Video.JobID

	videos.nextAwait(t) <- awaitOutcome{
		asset: media.VideoAsset{JobID: jobID, Status: media.VideoStatusPreparing},
		err:   timeoutErr(),
	}

	// The binding must survive the timeout so a later recheck can still
	// complete it.
	waitFor(t, func() bool { return c.Snapshot(SlotVideo).Error != "" })
	s := c.Snapshot(SlotVideo)
	if s.Binding.Kind != media.BindingVideo || s.Binding.Video.JobID != jobID {
		t.Fatalf("timeout dropped the pending binding: %+v", s.Binding)
	}

	videos.checkAsset = media.VideoAsset{JobID: jobID, PlayableID: "pl-9", Status: media.VideoStatusReady}
	snap, err = c.Recheck(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snap.Binding.Video.Playable() || snap.Binding.Video.PlayableID != "pl-9" {
		t.Fatalf("recheck did not complete the binding: %+v", snap.Binding)
	}
	if snap.Error != "" {
		t.Fatalf("recheck left a stale error: %q", snap.Error)
	}
}

func TestControllerRecheckWithoutPendingJob(t *testing.T) {
	c := NewController(&fakeImages{}, newFakeVideos(), zerolog.Nop())
	defer c.Close()

	_, err := c.Recheck(context.Background())
	if !platformerrors.IsType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestControllerSupersededResultIsDiscarded(t *testing.T) {
	videos := newFakeVideos()
	c := NewController(&fakeImages{}, videos, zerolog.Nop())
	defer c.Close()

	if _, err := c.Select(context.Background(), SlotVideo, testFile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firstAwait := videos.nextAwait(t)

	snap, err := c.Select(context.Background(), SlotVideo, testFile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	secondJob := snap.Binding.Video.JobID
	secondAwait := videos.nextAwait(t)

	// The first attempt completes after being superseded; its result must
	// not land on the slot.
	firstAwait <- awaitOutcome{asset: media.VideoAsset{
		JobID: "job-x", PlayableID: "pl-stale", Status: media.VideoStatusReady,
	}}
	secondAwait <- awaitOutcome{asset: media.VideoAsset{
		JobID: secondJob, PlayableID: "pl-live", Status: media.VideoStatusReady,
	}}

	waitFor(t, func() bool {
		s := c.Snapshot(SlotVideo)
		return s.Binding.Kind == media.BindingVideo && s.Binding.Video.Playable()
	})
	s := c.Snapshot(SlotVideo)
	if s.Binding.Video.PlayableID != "pl-live" {
		t.Fatalf("stale result landed on the slot: %+v", s.Binding.Video)
	}
}

func TestControllerClearAlwaysClears(t *testing.T) {
	images := &fakeImages{
		binding: media.BindImage(media.ImageAsset{URL: "https://cdn.example.com/a.jpg", StorageKey: "images/a.jpg"}),
		delErr:  errors.New("bucket unavailable"),
	}
	c := NewController(images, newFakeVideos(), zerolog.Nop())
	defer c.Close()

	if _, err := c.Select(context.Background(), SlotFeaturedImage, testFile()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := c.Clear(context.Background(), SlotFeaturedImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The slot empties even though the remote deletion fails.
	if snap.Binding.IsBound() {
		t.Fatalf("clear left the slot bound: %+v", snap.Binding)
	}
	if snap.Error != "" {
		t.Fatalf("clear left an error: %q", snap.Error)
	}
	waitFor(t, func() bool {
		keys := images.removedKeys()
		return len(keys) == 1 && keys[0] == "images/a.jpg"
	})
}

func TestControllerClearEmptySlot(t *testing.T) {
	images := &fakeImages{}
	c := NewController(images, newFakeVideos(), zerolog.Nop())
	defer c.Close()

	snap, err := c.Clear(context.Background(), SlotFeaturedImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Binding.IsBound() {
		t.Fatal("empty slot reported bound after clear")
	}
	time.Sleep(20 * time.Millisecond)
	if len(images.removedKeys()) != 0 {
		t.Fatal("clear of an empty slot attempted a remote deletion")
	}
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(nil, nil, zerolog.Nop())

	if _, ok := r.Peek("dft_1"); ok {
		t.Fatal("peek created a controller")
	}
	c1 := r.For("dft_1")
	c2 := r.For("dft_1")
	if c1 != c2 {
		t.Fatal("expected the same controller per draft")
	}
	if got, ok := r.Peek("dft_1"); !ok || got != c1 {
		t.Fatal("peek did not return the live controller")
	}
	r.Drop("dft_1")
	if _, ok := r.Peek("dft_1"); ok {
		t.Fatal("controller survived drop")
	}
}

func TestRegistryRetiresIdleControllers(t *testing.T) {
	r := NewRegistry(nil, nil, zerolog.Nop())
	r.For("dft_idle")
	active := r.For("dft_active")
	active.dispatchWait(func() {
		active.slots[SlotVideo].progress = media.UploadProgress{Phase: media.PhaseProcessing, Percent: 50}
	})

	stale := time.Now().Add(-2 * controllerIdleTTL)
	r.mu.Lock()
	for _, e := range r.controllers {
		e.lastUsed = stale
	}
	r.lastSweep = time.Time{}
	retired := r.retireIdle(time.Now())
	r.mu.Unlock()
	for _, c := range retired {
		c.Close()
	}

	if _, ok := r.Peek("dft_idle"); ok {
		t.Fatal("idle controller not retired")
	}
	if _, ok := r.Peek("dft_active"); !ok {
		t.Fatal("controller with an operation in flight must survive the sweep")
	}
	if len(retired) != 1 {
		t.Fatalf("retired %d controllers, want 1", len(retired))
	}
}
