package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/krishkalaria12/snap-vault/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ClientMinio is the subset of *minio.Client the store needs, so tests can swap it.
type ClientMinio interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

type Minio struct {
	client     ClientMinio
	bucketName string
	publicBase string
}

func NewMinio(cfg config.StorageConfig) (*Minio, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return newMinio(client, cfg), nil
}

func newMinio(client ClientMinio, cfg config.StorageConfig) *Minio {
	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.MinioEndpoint + "/" + cfg.Bucket
	}

	return &Minio{
		client:     client,
		bucketName: cfg.Bucket,
		publicBase: base,
	}
}

func (m *Minio) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucketName, path, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (m *Minio) Read(ctx context.Context, path string) (*Object, error) {
	obj, err := m.client.GetObject(ctx, m.bucketName, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	return &Object{Data: data, ContentType: info.ContentType}, nil
}

func (m *Minio) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		if err := m.client.RemoveObject(ctx, m.bucketName, p, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove object %s: %w", p, err)
		}
	}
	return nil
}

func (m *Minio) PublicURL(path string) string {
	return publicURL(m.publicBase, path)
}
