package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Local keeps blobs on disk under basePath; the HTTP layer serves them statically.
type Local struct {
	basePath   string
	publicBase string
}

func NewLocal(basePath, publicBase string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{basePath: basePath, publicBase: publicBase}, nil
}

func (l *Local) Dir() string {
	return l.basePath
}

func (l *Local) resolve(path string) (string, error) {
	cleanPath := filepath.Clean(filepath.FromSlash(path))
	if cleanPath == "." || filepath.IsAbs(cleanPath) || strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("invalid path %q", path)
	}
	return filepath.Join(l.basePath, cleanPath), nil
}

func (l *Local) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return fmt.Errorf("failed to save file: %w", err)
	}

	return dst.Close()
}

func (l *Local) Read(ctx context.Context, path string) (*Object, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &Object{Data: data, ContentType: mimetype.Detect(data).String()}, nil
}

func (l *Local) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		fullPath, err := l.resolve(p)
		if err != nil {
			return err
		}
		if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}
	return nil
}

func (l *Local) PublicURL(path string) string {
	return publicURL(l.publicBase, path)
}
