package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Image struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt     time.Time  `json:"created_at" gorm:"not null;index"`
	UserID        string     `json:"user_id" gorm:"type:uuid;not null;index"`
	StoragePath   string     `json:"storage_path" gorm:"not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"not null"`
	SizeBytes     int64      `json:"size_bytes" gorm:"not null"`
	MediaType     string     `json:"media_type" gorm:"not null"`
	Description   *string    `json:"description"`
	AIDescription *string    `json:"ai_description" gorm:"column:ai_description"`
	AnalyzedAt    *time.Time `json:"analyzed_at"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Analyzed reports whether the one-way unanalyzed -> analyzed transition happened.
func (i *Image) Analyzed() bool {
	return i.AIDescription != nil
}
