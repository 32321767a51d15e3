package entities

import "time"

// ContentDraft represents the persisted draft record. Media slots are
// stored as serialized bindings so a pending video survives a save.
type ContentDraft struct {
	ID            string    `gorm:"type:varchar(40);primaryKey"`
	Kind          string    `gorm:"type:varchar(16);not null;index"`
	Title         string    `gorm:"type:varchar(255);not null"`
	Summary       string    `gorm:"type:text"`
	Body          string    `gorm:"type:text"`
	FeaturedImage []byte    `gorm:"type:jsonb"`
	Video         []byte    `gorm:"type:jsonb"`
	CreatedBy     string    `gorm:"type:varchar(64)"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (ContentDraft) TableName() string {
	return "content_drafts"
}
