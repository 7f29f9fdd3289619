package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	gcs "cloud.google.com/go/storage"
	"github.com/krishkalaria12/snap-vault/config"
	"google.golang.org/api/option"
)

type GCS struct {
	client     *gcs.Client
	bucketName string
	publicBase string
}

func NewGCS(ctx context.Context, cfg config.StorageConfig) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.GCSCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentials))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	if err := ensureBucket(ctx, client.Bucket(cfg.Bucket), cfg.Bucket, cfg.GCSProjectID); err != nil {
		_ = client.Close()
		return nil, err
	}

	return newGCS(client, cfg), nil
}

type bucketAdmin interface {
	Attrs(ctx context.Context) (*gcs.BucketAttrs, error)
	Create(ctx context.Context, projectID string, attrs *gcs.BucketAttrs) error
}

// ensureBucket checks the bucket is reachable and creates it in the
// configured project when it does not exist yet.
func ensureBucket(ctx context.Context, bucket bucketAdmin, name, projectID string) error {
	_, err := bucket.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gcs.ErrBucketNotExist) {
		return fmt.Errorf("failed to read bucket %s: %w", name, err)
	}

	if projectID == "" {
		return fmt.Errorf("bucket %s does not exist and GCS_PROJECT_ID is not set", name)
	}
	if err := bucket.Create(ctx, projectID, nil); err != nil {
		return fmt.Errorf("failed to create bucket %s in project %s: %w", name, projectID, err)
	}

	log.Printf("Created bucket %s in project %s", name, projectID)
	return nil
}

func newGCS(client *gcs.Client, cfg config.StorageConfig) *GCS {
	base := cfg.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCS{
		client:     client,
		bucketName: cfg.Bucket,
		publicBase: base,
	}
}

func (g *GCS) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	wc := g.client.Bucket(g.bucketName).Object(path).NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, body); err != nil {
		_ = wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

func (g *GCS) Read(ctx context.Context, path string) (*Object, error) {
	rc, err := g.client.Bucket(g.bucketName).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return &Object{Data: data, ContentType: rc.Attrs.ContentType}, nil
}

// Remove deletes every path; objects that are already gone count as removed.
func (g *GCS) Remove(ctx context.Context, paths ...string) error {
	bucket := g.client.Bucket(g.bucketName)
	for _, p := range paths {
		if err := bucket.Object(p).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
			return fmt.Errorf("failed to delete object %s: %w", p, err)
		}
	}
	return nil
}

func (g *GCS) PublicURL(path string) string {
	return publicURL(g.publicBase, path)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
