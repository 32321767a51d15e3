package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/form"
	"github.com/folioworks/media-ingest/internal/interfaces/httpserver/requests"
	"github.com/folioworks/media-ingest/internal/interfaces/httpserver/responses"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

// DraftHandler exposes content draft CRUD endpoints.
type DraftHandler struct {
	cfg      *config.Config
	service  *draft.Service
	registry *form.Registry
	log      zerolog.Logger
}

func NewDraftHandler(cfg *config.Config, service *draft.Service, registry *form.Registry, log zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		cfg:      cfg,
		service:  service,
		registry: registry,
		log:      log.With().Str("component", "draft-handler").Logger(),
	}
}

func (h *DraftHandler) Create(c *gin.Context) {
	var req requests.CreateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"0f3b71c4-9a52-4d8e-b160-7cd24a83f9e1")
		return
	}

	d, err := h.service.Create(c.Request.Context(), req.ToDomain(c.GetString("user_id")))
	if err != nil {
		h.log.Error().Err(err).Msg("draft creation failed")
		responses.HandleError(c, err, "failed to create draft")
		return
	}

	c.JSON(http.StatusCreated, responses.BuildDraftResponse(d))
}

func (h *DraftHandler) Get(c *gin.Context) {
	d, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "draft not found")
		return
	}
	c.JSON(http.StatusOK, responses.BuildDraftResponse(d))
}

func (h *DraftHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	params := draft.ListParams{
		Kind:     draft.Kind(c.Query("kind")),
		Page:     page,
		PageSize: pageSize,
	}
	if params.Kind != "" && !params.Kind.Valid() {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unknown draft kind",
			"c4de8a17-f052-49b3-ae96-210d7c85b4f3")
		return
	}

	drafts, total, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		h.log.Error().Err(err).Msg("draft listing failed")
		responses.HandleError(c, err, "failed to list drafts")
		return
	}

	c.JSON(http.StatusOK, responses.BuildDraftListResponse(drafts, total, params.Page, params.PageSize))
}

func (h *DraftHandler) Update(c *gin.Context) {
	var req requests.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"5a9d03e6-1c78-4f2b-8d45-e6027b91ca38")
		return
	}

	d, err := h.service.Update(c.Request.Context(), c.Param("id"), req.ToDomain())
	if err != nil {
		responses.HandleError(c, err, "failed to update draft")
		return
	}

	c.JSON(http.StatusOK, responses.BuildDraftResponse(d))
}

func (h *DraftHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		responses.HandleError(c, err, "failed to delete draft")
		return
	}
	// Retire the editing session with the record.
	h.registry.Drop(id)
	c.Status(http.StatusNoContent)
}
