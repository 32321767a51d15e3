package responses

import (
	"time"

	"github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/form"
	"github.com/folioworks/media-ingest/internal/domain/media"
)

// DraftResponse represents a content draft
type DraftResponse struct {
	ID            string        `json:"id"`
	Kind          string        `json:"kind"`
	Title         string        `json:"title"`
	Summary       string        `json:"summary,omitempty"`
	Body          string        `json:"body,omitempty"`
	FeaturedImage media.Binding `json:"featured_image"`
	Video         media.Binding `json:"video"`
	CreatedBy     string        `json:"created_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// BuildDraftResponse creates response from domain object
func BuildDraftResponse(d *draft.ContentDraft) *DraftResponse {
	return &DraftResponse{
		ID:            d.ID,
		Kind:          string(d.Kind),
		Title:         d.Title,
		Summary:       d.Summary,
		Body:          d.Body,
		FeaturedImage: d.FeaturedImage,
		Video:         d.Video,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// DraftListResponse represents a paginated draft listing
type DraftListResponse struct {
	Drafts   []DraftResponse `json:"drafts"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// BuildDraftListResponse creates a listing response
func BuildDraftListResponse(drafts []draft.ContentDraft, total int64, page, pageSize int) *DraftListResponse {
	out := make([]DraftResponse, 0, len(drafts))
	for i := range drafts {
		out = append(out, *BuildDraftResponse(&drafts[i]))
	}
	return &DraftListResponse{
		Drafts:   out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// SlotResponse represents one media slot's live state. Playback and
// thumbnail URLs are present once the video binding is playable.
type SlotResponse struct {
	Slot         string               `json:"slot"`
	Binding      media.Binding        `json:"binding"`
	Progress     media.UploadProgress `json:"progress"`
	Error        string               `json:"error,omitempty"`
	PlaybackURL  string               `json:"playback_url,omitempty"`
	ThumbnailURL string               `json:"thumbnail_url,omitempty"`
}

// BuildSlotResponse creates a slot response from a controller snapshot
func BuildSlotResponse(slot form.SlotKind, snap form.Snapshot, streamBase, imageBase string) *SlotResponse {
	resp := &SlotResponse{
		Slot:     string(slot),
		Binding:  snap.Binding,
		Progress: snap.Progress,
		Error:    snap.Error,
	}
	if snap.Binding.Kind == media.BindingVideo && snap.Binding.Video.Playable() {
		resp.PlaybackURL = media.PlaybackURL(streamBase, snap.Binding.Video.PlayableID)
		resp.ThumbnailURL = media.ThumbnailURL(imageBase, snap.Binding.Video.PlayableID, media.ThumbnailParams{})
	}
	return resp
}

// ThumbnailResponse contains a parameterized thumbnail URL
type ThumbnailResponse struct {
	PlayableID   string `json:"playable_id"`
	ThumbnailURL string `json:"thumbnail_url"`
}
