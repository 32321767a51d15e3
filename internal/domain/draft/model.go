package draft

import (
	"time"

	"github.com/folioworks/media-ingest/internal/domain/media"
)

// Kind distinguishes the content types the platform publishes.
type Kind string

const (
	KindArticle   Kind = "article"
	KindEpisode   Kind = "episode"
	KindIndicator Kind = "indicator"
)

// Valid reports whether the kind is one the platform knows.
func (k Kind) Valid() bool {
	return k == KindArticle || k == KindEpisode || k == KindIndicator
}

// ContentDraft is an unpublished content record. Each draft carries two
// independent media slots; either may be empty, pending or bound.
type ContentDraft struct {
	ID            string        `json:"id"`
	Kind          Kind          `json:"kind"`
	Title         string        `json:"title"`
	Summary       string        `json:"summary,omitempty"`
	Body          string        `json:"body,omitempty"`
	FeaturedImage media.Binding `json:"featured_image"`
	Video         media.Binding `json:"video"`
	CreatedBy     string        `json:"created_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateParams is the payload for creating a draft.
type CreateParams struct {
	Kind      Kind
	Title     string
	Summary   string
	Body      string
	CreatedBy string
}

// UpdateParams carries partial field updates; nil means unchanged.
type UpdateParams struct {
	Title   *string
	Summary *string
	Body    *string
}

// ListParams filters and paginates draft listings.
type ListParams struct {
	Kind     Kind
	Page     int
	PageSize int
}
