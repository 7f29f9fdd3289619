package services

import (
	"context"
	"errors"
	"time"

	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/krishkalaria12/snap-vault/storage"
)

type ImageRepository interface {
	Insert(ctx context.Context, image *models.Image) error
	ListByOwner(ctx context.Context, owner string) ([]models.Image, error)
	GetOwned(ctx context.Context, id, owner string) (*models.Image, error)
	DeleteOwned(ctx context.Context, id, owner string) error
	SetAIDescription(ctx context.Context, id, owner, text string, at time.Time, overwrite bool) (bool, error)
}

// ImageService runs the upload, gallery and delete workflows.
type ImageService struct {
	images  ImageRepository
	objects storage.ObjectStore
	now     func() time.Time
}

func NewImageService(images ImageRepository, objects storage.ObjectStore) *ImageService {
	return &ImageService{
		images:  images,
		objects: objects,
		now:     time.Now,
	}
}

func requireSession(session models.Session) error {
	if session.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func getOwned(ctx context.Context, images ImageRepository, session models.Session, id string) (*models.Image, error) {
	image, err := images.GetOwned(ctx, id, session.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &MetadataError{Op: "select", Err: err}
	}
	return image, nil
}
