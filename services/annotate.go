package services

import (
	"context"
	"errors"
	"time"

	"github.com/krishkalaria12/snap-vault/ai"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/krishkalaria12/snap-vault/storage"
)

type Source int

const (
	// SourceStored reads the blob straight from the object store.
	SourceStored Source = iota
	// SourceRemote downloads the image from its public URL.
	SourceRemote
	// SourceInline uses bytes supplied with the request.
	SourceInline
)

func ParseSource(s string) (Source, bool) {
	switch s {
	case "", "stored":
		return SourceStored, true
	case "remote", "url":
		return SourceRemote, true
	case "inline":
		return SourceInline, true
	default:
		return SourceStored, false
	}
}

type InlineImage struct {
	Data      []byte
	MediaType string
}

type AnalyzeRequest struct {
	Source Source
	Inline *InlineImage
	// Force re-analyzes a record that already has a description.
	Force bool
}

type RemoteFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

type AnnotationService struct {
	images  ImageRepository
	objects storage.ObjectStore
	vision  ai.Describer
	fetcher RemoteFetcher
	now     func() time.Time
}

func NewAnnotationService(images ImageRepository, objects storage.ObjectStore, vision ai.Describer, fetcher RemoteFetcher) *AnnotationService {
	return &AnnotationService{
		images:  images,
		objects: objects,
		vision:  vision,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// Analyze describes one owned image with the vision service and stores the
// text. An image that already has a description is returned unchanged unless
// the request forces re-analysis. Failures leave the record untouched.
func (s *AnnotationService) Analyze(ctx context.Context, session models.Session, id string, req AnalyzeRequest) (*models.Image, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	image, err := getOwned(ctx, s.images, session, id)
	if err != nil {
		return nil, err
	}

	if image.Analyzed() && !req.Force {
		return image, nil
	}

	data, declared, err := s.load(ctx, image, req)
	if err != nil {
		return nil, err
	}

	payload, err := ai.Prepare(data, declared)
	if err != nil {
		return nil, &AnnotationError{Reason: "encode", Err: err}
	}

	annotation, err := s.vision.Describe(ctx, payload)
	if err != nil {
		return nil, &AnnotationError{Reason: "vision", Err: err}
	}

	_, err = s.images.SetAIDescription(ctx, image.ID, session.UserID, annotation.Description(), s.now().UTC(), req.Force)
	if err != nil {
		return nil, &MetadataError{Op: "update", Err: err}
	}

	// re-read so a concurrent winner or a concurrent delete is reflected
	return getOwned(ctx, s.images, session, image.ID)
}

func (s *AnnotationService) load(ctx context.Context, image *models.Image, req AnalyzeRequest) ([]byte, string, error) {
	switch req.Source {
	case SourceInline:
		if req.Inline == nil || len(req.Inline.Data) == 0 {
			return nil, "", &ValidationError{Field: "inline_data", Message: "Inline image data is required"}
		}
		return req.Inline.Data, req.Inline.MediaType, nil

	case SourceRemote:
		if s.fetcher == nil {
			return nil, "", &AnnotationError{Reason: "fetch", Err: errors.New("remote fetching is not configured")}
		}
		data, contentType, err := s.fetcher.Fetch(ctx, s.objects.PublicURL(image.StoragePath))
		if err != nil {
			return nil, "", &AnnotationError{Reason: "fetch", Err: err}
		}
		if contentType == "" {
			contentType = image.MediaType
		}
		return data, contentType, nil

	case SourceStored:
		obj, err := s.objects.Read(ctx, image.StoragePath)
		if err != nil {
			return nil, "", &AnnotationError{Reason: "fetch", Err: err}
		}
		contentType := obj.ContentType
		if contentType == "" {
			contentType = image.MediaType
		}
		return obj.Data, contentType, nil

	default:
		return nil, "", &ValidationError{Field: "source", Message: "Unknown image source"}
	}
}
