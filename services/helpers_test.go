package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/snap-vault/ai"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/krishkalaria12/snap-vault/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := database.Connect(cfg, "silent")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, cfg.Driver))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// fakeStore is an in-memory object store that counts every backend call.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	uploads   int
	removes   int
	reads     int
	uploadErr error
	removeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStore) Upload(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[path] = data
	f.types[path] = contentType
	return nil
}

func (f *fakeStore) Read(ctx context.Context, path string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	data, ok := f.objects[path]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{Data: data, ContentType: f.types[path]}, nil
}

func (f *fakeStore) Remove(ctx context.Context, paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	if f.removeErr != nil {
		return f.removeErr
	}
	for _, p := range paths {
		delete(f.objects, p)
	}
	return nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://cdn.test/images/" + path
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads + f.removes + f.reads
}

type fakeDescriber struct {
	annotation ai.Annotation
	err        error
	calls      int
	last       ai.Payload
}

func (f *fakeDescriber) Describe(ctx context.Context, payload ai.Payload) (ai.Annotation, error) {
	f.calls++
	f.last = payload
	return f.annotation, f.err
}

type fakeFetcher struct {
	data        []byte
	contentType string
	err         error
	urls        []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	f.urls = append(f.urls, url)
	return f.data, f.contentType, f.err
}

type failingImages struct {
	ImageRepository
	insertErr error
}

func (f failingImages) Insert(ctx context.Context, image *models.Image) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.ImageRepository.Insert(ctx, image)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pngUpload(t *testing.T, name string) UploadInput {
	data := pngBytes(t, 8, 8)
	return UploadInput{
		Name:      name,
		MediaType: "image/png",
		Size:      int64(len(data)),
		Body:      bytes.NewReader(data),
	}
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}
