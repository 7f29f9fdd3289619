package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/krishkalaria12/snap-vault/config"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is blob storage addressed by path. PublicURL is pure: it only
// builds a URL from configuration and never contacts the backend.
type ObjectStore interface {
	Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) error
	Read(ctx context.Context, path string) (*Object, error)
	Remove(ctx context.Context, paths ...string) error
	PublicURL(path string) string
}

type Object struct {
	Data        []byte
	ContentType string
}

// New builds the object store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig, appURL string) (ObjectStore, error) {
	switch cfg.Driver {
	case config.StorageGCS:
		return NewGCS(ctx, cfg)
	case config.StorageMinio:
		return NewMinio(cfg)
	case config.StorageLocal:
		base := cfg.PublicBaseURL
		if base == "" {
			base = appURL + cfg.LocalRoute
		}
		return NewLocal(cfg.LocalDir, base)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func publicURL(base, path string) string {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
