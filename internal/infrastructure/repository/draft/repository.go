package draft

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	domain "github.com/folioworks/media-ingest/internal/domain/draft"
	"github.com/folioworks/media-ingest/internal/domain/media"
	"github.com/folioworks/media-ingest/internal/infrastructure/database/entities"
	"github.com/folioworks/media-ingest/internal/utils/platformerrors"
)

// Repository handles content draft persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, d *domain.ContentDraft) error {
	entity, err := mapDomain(ctx, d)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create content draft",
			err,
			"4e7b9a13-d208-4c5f-86e1-b3a0d92c65f7",
		)
	}
	d.CreatedAt = entity.CreatedAt
	d.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.ContentDraft, error) {
	var entity entities.ContentDraft
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"content draft not found",
				err,
				"0c5f12d8-7ae4-4b96-a2d3-e861409cb5f2",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to get content draft",
			err,
			"95b03ce6-12f8-4da7-bc40-67a5e218d9c3",
		)
	}
	return mapEntity(ctx, entity)
}

func (r *Repository) List(ctx context.Context, params domain.ListParams) ([]domain.ContentDraft, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.ContentDraft{})
	if params.Kind != "" {
		query = query.Where("kind = ?", string(params.Kind))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to count content drafts",
			err,
			"7d92e0b5-3cf1-428a-9b6d-e401c85f72a9",
		)
	}

	var rows []entities.ContentDraft
	err := query.
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list content drafts",
			err,
			"e61a84f0-95d2-4c3b-8701-2fd6b09c43e8",
		)
	}

	drafts := make([]domain.ContentDraft, 0, len(rows))
	for _, row := range rows {
		d, err := mapEntity(ctx, row)
		if err != nil {
			return nil, 0, err
		}
		drafts = append(drafts, *d)
	}
	return drafts, total, nil
}

func (r *Repository) Update(ctx context.Context, d *domain.ContentDraft) error {
	entity, err := mapDomain(ctx, d)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&entities.ContentDraft{}).Where("id = ?", d.ID).Updates(map[string]any{
		"title":          entity.Title,
		"summary":        entity.Summary,
		"body":           entity.Body,
		"featured_image": entity.FeaturedImage,
		"video":          entity.Video,
	})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update content draft",
			result.Error,
			"a8d37f52-60bc-491e-b5a4-c1e90d2867f3",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"content draft not found",
			nil,
			"0c5f12d8-7ae4-4b96-a2d3-e861409cb5f2",
		)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.ContentDraft{})
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete content draft",
			result.Error,
			"3b60f9ae-c714-4285-9d0f-58a2e16c47db",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"content draft not found",
			nil,
			"0c5f12d8-7ae4-4b96-a2d3-e861409cb5f2",
		)
	}
	return nil
}

func mapDomain(ctx context.Context, d *domain.ContentDraft) (*entities.ContentDraft, error) {
	featured, err := marshalBinding(ctx, d.FeaturedImage)
	if err != nil {
		return nil, err
	}
	video, err := marshalBinding(ctx, d.Video)
	if err != nil {
		return nil, err
	}
	return &entities.ContentDraft{
		ID:            d.ID,
		Kind:          string(d.Kind),
		Title:         d.Title,
		Summary:       d.Summary,
		Body:          d.Body,
		FeaturedImage: featured,
		Video:         video,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func mapEntity(ctx context.Context, entity entities.ContentDraft) (*domain.ContentDraft, error) {
	featured, err := unmarshalBinding(ctx, entity.FeaturedImage)
	if err != nil {
		return nil, err
	}
	video, err := unmarshalBinding(ctx, entity.Video)
	if err != nil {
		return nil, err
	}
	return &domain.ContentDraft{
		ID:            entity.ID,
		Kind:          domain.Kind(entity.Kind),
		Title:         entity.Title,
		Summary:       entity.Summary,
		Body:          entity.Body,
		FeaturedImage: featured,
		Video:         video,
		CreatedBy:     entity.CreatedBy,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}, nil
}

func marshalBinding(ctx context.Context, b media.Binding) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to serialize media binding",
			err,
			"f25d8c30-1e97-4ab6-84d5-b09c3e67a1f4",
		)
	}
	return data, nil
}

func unmarshalBinding(ctx context.Context, data []byte) (media.Binding, error) {
	if len(data) == 0 {
		return media.NoBinding(), nil
	}
	var b media.Binding
	if err := json.Unmarshal(data, &b); err != nil {
		return media.Binding{}, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to deserialize media binding",
			err,
			"6e09b2d4-83fa-47c1-a5e8-d74f01c592b6",
		)
	}
	if b.Kind == "" {
		b.Kind = media.BindingNone
	}
	return b, nil
}
