package database

import (
	"context"
	"fmt"
	"time"

	"github.com/krishkalaria12/snap-vault/models"
	"gorm.io/gorm"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Insert(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to insert image: %w", translate(err))
	}
	return nil
}

// ListByOwner returns every image of one owner, newest first.
func (r *ImageRepository) ListByOwner(ctx context.Context, owner string) ([]models.Image, error) {
	images := make([]models.Image, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Order("id DESC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func (r *ImageRepository) GetOwned(ctx context.Context, id, owner string) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		First(&image).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", translate(err))
	}
	return &image, nil
}

func (r *ImageRepository) DeleteOwned(ctx context.Context, id, owner string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&models.Image{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete image: %w", ErrNotFound)
	}
	return nil
}

// SetAIDescription stores an annotation. Unless overwrite is set, only a row
// whose ai_description is still NULL is touched. The bool reports whether a
// row changed.
func (r *ImageRepository) SetAIDescription(ctx context.Context, id, owner, text string, at time.Time, overwrite bool) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id = ? AND user_id = ?", id, owner)
	if !overwrite {
		query = query.Where("ai_description IS NULL")
	}

	result := query.Updates(map[string]any{
		"ai_description": text,
		"analyzed_at":    at,
	})
	if result.Error != nil {
		return false, fmt.Errorf("failed to store annotation: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
