package services

import (
	"context"

	"github.com/krishkalaria12/snap-vault/models"
)

type Actions struct {
	View    bool `json:"view"`
	Delete  bool `json:"delete"`
	Analyze bool `json:"analyze"`
}

type GalleryItem struct {
	models.Image
	URL     string  `json:"url"`
	Actions Actions `json:"actions"`
}

// List returns every image of the session user, newest first, with public URLs.
func (s *ImageService) List(ctx context.Context, session models.Session) ([]GalleryItem, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	images, err := s.images.ListByOwner(ctx, session.UserID)
	if err != nil {
		return nil, &MetadataError{Op: "select", Err: err}
	}

	items := make([]GalleryItem, 0, len(images))
	for _, image := range images {
		items = append(items, s.item(image))
	}
	return items, nil
}

// Get returns one owned image for the view action.
func (s *ImageService) Get(ctx context.Context, session models.Session, id string) (*GalleryItem, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	image, err := getOwned(ctx, s.images, session, id)
	if err != nil {
		return nil, err
	}

	item := s.item(*image)
	return &item, nil
}

func (s *ImageService) item(image models.Image) GalleryItem {
	return GalleryItem{
		Image: image,
		URL:   s.objects.PublicURL(image.StoragePath),
		Actions: Actions{
			View:    true,
			Delete:  true,
			Analyze: !image.Analyzed(),
		},
	}
}
