package database

import (
	"context"
	"fmt"
	"time"

	"github.com/krishkalaria12/snap-vault/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", translate(err))
	}
	return &profile, nil
}

// Save writes the display fields of the profile keyed by id, creating the row
// when registration never did.
func (r *ProfileRepository) Save(ctx context.Context, id string, username, fullName *string, at time.Time) (*models.Profile, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Profile{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"username":   username,
				"full_name":  fullName,
				"updated_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		return tx.Create(&models.Profile{
			ID:        id,
			Username:  username,
			FullName:  fullName,
			UpdatedAt: &at,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", translate(err))
	}

	return r.Get(ctx, id)
}
