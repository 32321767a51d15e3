package handlers

import (
	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/config"
	"github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/form"
)

// Provider wires HTTP handlers.
type Provider struct {
	Drafts *DraftHandler
	Media  *MediaHandler
}

func NewProvider(cfg *config.Config, drafts *draft.Service, registry *form.Registry, log zerolog.Logger) *Provider {
	return &Provider{
		Drafts: NewDraftHandler(cfg, drafts, registry, log),
		Media:  NewMediaHandler(cfg, drafts, registry, log),
	}
}
