package requests

import (
	"github.com/folioworks/media-ingest/internal/domain/draft"
)

// CreateDraftRequest represents draft creation
type CreateDraftRequest struct {
	Kind    string `json:"kind" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// ToDomain converts request to domain params
func (r *CreateDraftRequest) ToDomain(createdBy string) draft.CreateParams {
	return draft.CreateParams{
		Kind:      draft.Kind(r.Kind),
		Title:     r.Title,
		Summary:   r.Summary,
		Body:      r.Body,
		CreatedBy: createdBy,
	}
}

// UpdateDraftRequest carries partial draft updates; absent fields stay
// unchanged
type UpdateDraftRequest struct {
	Title   *string `json:"title"`
	Summary *string `json:"summary"`
	Body    *string `json:"body"`
}

// ToDomain converts request to domain params
func (r *UpdateDraftRequest) ToDomain() draft.UpdateParams {
	return draft.UpdateParams{
		Title:   r.Title,
		Summary: r.Summary,
		Body:    r.Body,
	}
}

// ThumbnailRequest selects a frame and geometry for a video thumbnail
type ThumbnailRequest struct {
	Time   float64 `form:"time"`
	Width  int     `form:"width"`
	Height int     `form:"height"`
	Fit    string  `form:"fit_mode"`
}
