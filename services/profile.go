package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
)

type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Save(ctx context.Context, id string, username, fullName *string, at time.Time) (*models.Profile, error)
}

type ProfileUpdate struct {
	Username string
	FullName string
}

type ProfileService struct {
	profiles ProfileRepository
	now      func() time.Time
}

func NewProfileService(profiles ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles, now: time.Now}
}

// Get returns the profile of the session user; a user without a row yet gets
// an empty profile.
func (s *ProfileService) Get(ctx context.Context, session models.Session) (*models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &models.Profile{ID: session.UserID}, nil
		}
		return nil, &MetadataError{Op: "select", Err: err}
	}
	return profile, nil
}

// Update writes the display fields. The row is always the session user's own.
func (s *ProfileService) Update(ctx context.Context, session models.Session, in ProfileUpdate) (*models.Profile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Save(ctx, session.UserID, optional(in.Username), optional(in.FullName), s.now().UTC())
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, &ValidationError{Field: "username", Message: "Username already taken"}
		}
		return nil, &MetadataError{Op: "update", Err: err}
	}
	return profile, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
