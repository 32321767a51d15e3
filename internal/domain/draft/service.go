package draft

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/folioworks/media-ingest/internal/domain/form"
	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/utils/assetid"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

// Repository defines persistence operations needed by the service.
type Repository interface {
	Create(ctx context.Context, d *ContentDraft) error
	GetByID(ctx context.Context, id string) (*ContentDraft, error)
	List(ctx context.Context, params ListParams) ([]ContentDraft, int64, error)
	Update(ctx context.Context, d *ContentDraft) error
	Delete(ctx context.Context, id string) error
}

// Service owns content draft lifecycle and the persistence of media
// bindings at save time.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "draft-service").Logger(),
	}
}

// Create validates and stores a new draft with empty media slots.
func (s *Service) Create(ctx context.Context, params CreateParams) (*ContentDraft, error) {
	if !params.Kind.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown draft kind", nil, "ba6e95c1-2d40-4f7a-8c31-67e0d4a2f598")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"draft title is required", nil, "fd03c871-5a9e-4b26-90d4-31c7e86f2a05")
	}

	d := &ContentDraft{
		ID:            assetid.NewDraft(),
		Kind:          params.Kind,
		Title:         strings.TrimSpace(params.Title),
		Summary:       params.Summary,
		Body:          params.Body,
		FeaturedImage: media.NoBinding(),
		Video:         media.NoBinding(),
		CreatedBy:     params.CreatedBy,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	s.log.Info().Str("draft_id", d.ID).Str("kind", string(d.Kind)).Msg("draft created")
	return d, nil
}

// Get returns one draft by id.
func (s *Service) Get(ctx context.Context, id string) (*ContentDraft, error) {
	return s.repo.GetByID(ctx, id)
}

// List pages through drafts, optionally filtered by kind.
func (s *Service) List(ctx context.Context, params ListParams) ([]ContentDraft, int64, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.repo.List(ctx, params)
}

// Update applies partial field changes and persists the draft.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*ContentDraft, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if params.Title != nil {
		if strings.TrimSpace(*params.Title) == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"draft title cannot be emptied", nil, "29c6f0ad-81b5-4e37-a6d0-f54e1c98b723")
		}
		d.Title = strings.TrimSpace(*params.Title)
	}
	if params.Summary != nil {
		d.Summary = *params.Summary
	}
	if params.Body != nil {
		d.Body = *params.Body
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes the draft record. Remote media cleanup is the slot
// clear path's concern, not a cascade here.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("draft_id", id).Msg("draft deleted")
	return nil
}

// SaveSlot persists the slot's current binding into the draft record. A
// video binding without a playable rendition is saved as-is; consuming
// surfaces treat bound-but-not-playable as a legitimate state.
func (s *Service) SaveSlot(ctx context.Context, id string, slot form.SlotKind, binding media.Binding) (*ContentDraft, error) {
	if err := binding.Validate(); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"media binding is inconsistent", err, "61a8e4f2-0c95-47d3-b8a6-3e92d50c17fb")
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch slot {
	case form.SlotFeaturedImage:
		d.FeaturedImage = binding
	case form.SlotVideo:
		d.Video = binding
	default:
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown media slot", nil, "8f21d6c0-4eb7-49a5-bd38-05c7a93e61d4")
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
