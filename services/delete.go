package services

import (
	"context"
	"errors"

	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
)

// Delete removes the blob, then the row. When the blob cannot be removed the
// row is kept, so a failure can leave an orphan blob but never a dangling row.
func (s *ImageService) Delete(ctx context.Context, session models.Session, id string) error {
	if err := requireSession(session); err != nil {
		return err
	}

	image, err := getOwned(ctx, s.images, session, id)
	if err != nil {
		return err
	}

	if err := s.objects.Remove(ctx, image.StoragePath); err != nil {
		return &StorageError{Op: "remove", Err: err}
	}

	if err := s.images.DeleteOwned(ctx, image.ID, session.UserID); err != nil {
		// a concurrent delete got there first
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		return &MetadataError{Op: "delete", Err: err}
	}

	return nil
}
