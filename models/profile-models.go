package models

import "time"

type Profile struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	Username  *string    `json:"username" gorm:"uniqueIndex"`
	FullName  *string    `json:"full_name"`
	AvatarURL *string    `json:"avatar_url"`
	UpdatedAt *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}
