package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/form"
	"github.com/folioworks/media-ingest/internal/domain/ingest"
	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/interfaces/httpserver/requests"
	"github.com/folioworks/media-ingest/internal/interfaces/httpserver/responses"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

// MediaHandler exposes the per-draft media slot endpoints.
type MediaHandler struct {
	cfg      *config.Config
	drafts   *draft.Service
	registry *form.Registry
	log      zerolog.Logger
}

func NewMediaHandler(cfg *config.Config, drafts *draft.Service, registry *form.Registry, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		cfg:      cfg,
		drafts:   drafts,
		registry: registry,
		log:      log.With().Str("component", "media-handler").Logger(),
	}
}

func (h *MediaHandler) slotParam(c *gin.Context) (form.SlotKind, bool) {
	slot := form.SlotKind(c.Param("slot"))
	if !slot.Valid() {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unknown media slot",
			"7e80d4b2-963f-45a1-bc08-52df16a97c30")
		return "", false
	}
	return slot, true
}

// Upload accepts a multipart file for one media slot. The call returns
// once the file has reached remote storage; for video that means the
// transfer is complete and transcoding continues in the background.
func (h *MediaHandler) Upload(c *gin.Context) {
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}
	draftID := c.Param("id")

	if _, err := h.drafts.Get(c.Request.Context(), draftID); err != nil {
		responses.HandleError(c, err, "draft not found")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "file is required",
			"1fa6c2d9-0e84-47b5-93d6-8b215e07fa4c")
		return
	}
	defer file.Close()

	controller := h.registry.For(draftID)
	snap, err := controller.Select(c.Request.Context(), slot, ingest.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		h.log.Error().Err(err).
			Str("draft_id", draftID).
			Str("slot", string(slot)).
			Msg("media upload failed")
		responses.HandleError(c, err, "media upload failed")
		return
	}

	// Persist the binding as it stands; a video slot saved here carries
	// the job id and becomes playable on a later recheck or save.
	if snap.Binding.IsBound() {
		if _, err := h.drafts.SaveSlot(c.Request.Context(), draftID, slot, snap.Binding); err != nil {
			h.log.Error().Err(err).Str("draft_id", draftID).Msg("binding persistence failed")
			responses.HandleError(c, err, "failed to persist media binding")
			return
		}
	}

	c.JSON(http.StatusOK, responses.BuildSlotResponse(slot, snap, h.cfg.StreamBaseURL, h.cfg.ImageBaseURL))
}

// Progress reports the slot's live state. Without an active editing
// session the persisted draft binding is reported as settled.
func (h *MediaHandler) Progress(c *gin.Context) {
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}
	draftID := c.Param("id")

	if controller, active := h.registry.Peek(draftID); active {
		snap := controller.Snapshot(slot)
		c.JSON(http.StatusOK, responses.BuildSlotResponse(slot, snap, h.cfg.StreamBaseURL, h.cfg.ImageBaseURL))
		return
	}

	d, err := h.drafts.Get(c.Request.Context(), draftID)
	if err != nil {
		responses.HandleError(c, err, "draft not found")
		return
	}
	snap := form.Snapshot{Binding: persistedBinding(d, slot), Progress: media.NewProgress()}
	if snap.Binding.IsBound() {
		snap.Progress = media.UploadProgress{Phase: media.PhaseReady, Percent: 100}
	}
	c.JSON(http.StatusOK, responses.BuildSlotResponse(slot, snap, h.cfg.StreamBaseURL, h.cfg.ImageBaseURL))
}

// Clear empties the slot and persists the removal. Remote asset
// deletion continues in the background.
func (h *MediaHandler) Clear(c *gin.Context) {
	slot, ok := h.slotParam(c)
	if !ok {
		return
	}
	draftID := c.Param("id")

	controller := h.registry.For(draftID)
	snap, err := controller.Clear(c.Request.Context(), slot)
	if err != nil {
		responses.HandleError(c, err, "failed to clear media slot")
		return
	}

	if _, err := h.drafts.SaveSlot(c.Request.Context(), draftID, slot, media.NoBinding()); err != nil {
		responses.HandleError(c, err, "failed to persist cleared slot")
		return
	}

	c.JSON(http.StatusOK, responses.BuildSlotResponse(slot, snap, h.cfg.StreamBaseURL, h.cfg.ImageBaseURL))
}

// Recheck issues one fresh transcoding status poll for a pending video
// slot and persists the binding when it settles.
func (h *MediaHandler) Recheck(c *gin.Context) {
	draftID := c.Param("id")

	controller, active := h.registry.Peek(draftID)
	if !active {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "no active editing session for draft",
			"b17f5c90-42ad-48e6-95b3-6d0e82ca71f4")
		return
	}

	snap, err := controller.Recheck(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Str("draft_id", draftID).Msg("video recheck failed")
		responses.HandleError(c, err, "video recheck failed")
		return
	}

	if snap.Binding.Kind == media.BindingVideo && snap.Binding.Video.Playable() {
		if _, err := h.drafts.SaveSlot(c.Request.Context(), draftID, form.SlotVideo, snap.Binding); err != nil {
			responses.HandleError(c, err, "failed to persist media binding")
			return
		}
	}

	c.JSON(http.StatusOK, responses.BuildSlotResponse(form.SlotVideo, snap, h.cfg.StreamBaseURL, h.cfg.ImageBaseURL))
}

// Thumbnail builds a parameterized still-frame URL for the draft's
// playable video.
func (h *MediaHandler) Thumbnail(c *gin.Context) {
	var req requests.ThumbnailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"93ce04a8-6f17-4b2d-85e9-b40c72d518af")
		return
	}

	d, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "draft not found")
		return
	}

	binding := d.Video
	if controller, active := h.registry.Peek(c.Param("id")); active {
		if snap := controller.Snapshot(form.SlotVideo); snap.Binding.IsBound() {
			binding = snap.Binding
		}
	}
	if binding.Kind != media.BindingVideo || !binding.Video.Playable() {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "draft has no playable video",
			"d25a913c-07fe-48b6-a1c4-e97f60d8b235")
		return
	}

	playableID := binding.Video.PlayableID
	c.JSON(http.StatusOK, responses.ThumbnailResponse{
		PlayableID: playableID,
		ThumbnailURL: media.ThumbnailURL(h.cfg.ImageBaseURL, playableID, media.ThumbnailParams{
			TimeSeconds: req.Time,
			Width:       req.Width,
			Height:      req.Height,
			Fit:         media.ThumbnailFit(req.Fit),
		}),
	})
}

func persistedBinding(d *draft.ContentDraft, slot form.SlotKind) media.Binding {
	if slot == form.SlotFeaturedImage {
		return d.FeaturedImage
	}
	return d.Video
}
