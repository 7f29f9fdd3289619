package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/krishkalaria12/snap-vault/ai"
	"github.com/krishkalaria12/snap-vault/models"
)

const (
	MaxUploadBytes       = 5 * 1024 * 1024
	MaxDescriptionLength = 1000

	randomNameLength = 13
	base36           = "0123456789abcdefghijklmnopqrstuvwxyz"
)

type UploadInput struct {
	Name        string
	MediaType   string
	Size        int64
	Body        io.Reader
	Description string
}

// Upload validates the file, writes the blob, then inserts its row. A failed
// insert removes the blob again on a best-effort basis.
func (s *ImageService) Upload(ctx context.Context, session models.Session, in UploadInput) (*models.Image, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	if err := validateUpload(in); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, MaxUploadBytes+1))
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: "Could not read the uploaded file"}
	}
	if len(data) > MaxUploadBytes {
		return nil, &ValidationError{Field: "file", Message: "File size must be less than 5MB"}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "No file provided"}
	}

	mediaType, err := resolveMediaType(in.MediaType, data)
	if err != nil {
		return nil, err
	}

	path, err := newStoragePath(session.UserID, in.Name, mediaType, s.now().UnixMilli())
	if err != nil {
		return nil, err
	}

	if err := s.objects.Upload(ctx, path, bytes.NewReader(data), int64(len(data)), mediaType); err != nil {
		return nil, &StorageError{Op: "upload", Err: err}
	}

	image := &models.Image{
		CreatedAt:   s.now().UTC(),
		UserID:      session.UserID,
		StoragePath: path,
		Name:        in.Name,
		SizeBytes:   int64(len(data)),
		MediaType:   mediaType,
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		image.Description = &desc
	}

	if err := s.images.Insert(ctx, image); err != nil {
		if rmErr := s.objects.Remove(ctx, path); rmErr != nil {
			log.Printf("failed to remove orphaned blob %s: %v", path, rmErr)
		}
		return nil, &MetadataError{Op: "insert", Err: err}
	}

	return image, nil
}

// validateUpload checks only what the caller declared, before any I/O.
func validateUpload(in UploadInput) error {
	if in.Body == nil || in.Name == "" {
		return &ValidationError{Field: "file", Message: "No file provided"}
	}
	if !strings.HasPrefix(in.MediaType, "image/") {
		return &ValidationError{Field: "file", Message: "Please select an image file"}
	}
	if in.Size > MaxUploadBytes {
		return &ValidationError{Field: "file", Message: "File size must be less than 5MB"}
	}
	if len(in.Description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("Description too long (max %d characters)", MaxDescriptionLength)}
	}
	return nil
}

// resolveMediaType confirms content declared as an image does not sniff as
// some other known type. Unrecognised bytes keep the declared type.
func resolveMediaType(declared string, data []byte) (string, error) {
	sniffed := ai.DetectMediaType(data)
	if !strings.HasPrefix(sniffed, "image/") && sniffed != "application/octet-stream" {
		return "", &ValidationError{Field: "file", Message: "Please select an image file"}
	}
	return declared, nil
}

// newStoragePath builds {owner}/{random}_{unixmillis}.{ext}.
func newStoragePath(owner, name, mediaType string, millis int64) (string, error) {
	random, err := randomName(randomNameLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate file name: %w", err)
	}
	return fmt.Sprintf("%s/%s_%d.%s", owner, random, millis, extension(name, mediaType)), nil
}

func extension(name, mediaType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext != "" && isAlnum(ext) && len(ext) <= 8 {
		return ext
	}

	if mt := mimetype.Lookup(mediaType); mt != nil && mt.Extension() != "" {
		return strings.TrimPrefix(mt.Extension(), ".")
	}
	return "bin"
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

func randomName(n int) (string, error) {
	var sb strings.Builder
	limit := big.NewInt(int64(len(base36)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		sb.WriteByte(base36[idx.Int64()])
	}
	return sb.String(), nil
}
