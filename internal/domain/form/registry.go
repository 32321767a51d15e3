package form

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/domain/ingest"
)

const (
	// Controllers from editing sessions that were simply abandoned are
	// retired once they sit unused this long with nothing in flight.
	controllerIdleTTL = 30 * time.Minute
	sweepInterval     = time.Minute
)

type entry struct {
	ctrl     *Controller
	lastUsed time.Time
}

// Registry hands out one Controller per content draft being edited and
// retires it when the draft goes away or the session goes idle.
type Registry struct {
	images *ingest.ImageIngestor
	videos *ingest.VideoIngestor
	log    zerolog.Logger

	mu          sync.Mutex
	controllers map[string]*entry
	lastSweep   time.Time
}

func NewRegistry(images *ingest.ImageIngestor, videos *ingest.VideoIngestor, log zerolog.Logger) *Registry {
	return &Registry{
		images:      images,
		videos:      videos,
		log:         log,
		controllers: make(map[string]*entry),
	}
}

// For returns the draft's controller, creating it on first use. Stale
// idle controllers are swept opportunistically on the way.
func (r *Registry) For(draftID string) *Controller {
	now := time.Now()

	r.mu.Lock()
	retired := r.retireIdle(now)
	e, ok := r.controllers[draftID]
	if !ok {
		e = &entry{ctrl: NewController(r.images, r.videos, r.log)}
		r.controllers[draftID] = e
	}
	e.lastUsed = now
	ctrl := e.ctrl
	r.mu.Unlock()

	for _, c := range retired {
		c.Close()
	}
	return ctrl
}

// Peek returns the draft's controller without creating one.
func (r *Registry) Peek(draftID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.controllers[draftID]
	if !ok {
		return nil, false
	}
	e.lastUsed = time.Now()
	return e.ctrl, true
}

// Drop closes and forgets the draft's controller.
func (r *Registry) Drop(draftID string) {
	r.mu.Lock()
	e, ok := r.controllers[draftID]
	delete(r.controllers, draftID)
	r.mu.Unlock()
	if ok {
		e.ctrl.Close()
	}
}

// retireIdle removes controllers that have been unused past the TTL and
// have no operation in flight. Caller holds r.mu; the returned
// controllers must be closed after the lock is released.
func (r *Registry) retireIdle(now time.Time) []*Controller {
	if now.Sub(r.lastSweep) < sweepInterval {
		return nil
	}
	r.lastSweep = now

	var retired []*Controller
	for id, e := range r.controllers {
		if now.Sub(e.lastUsed) < controllerIdleTTL || e.ctrl.busy() {
			continue
		}
		delete(r.controllers, id)
		retired = append(retired, e.ctrl)
		r.log.Debug().Str("draft_id", id).Msg("retired idle media controller")
	}
	return retired
}
