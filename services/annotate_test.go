package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/krishkalaria12/snap-vault/ai"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type annotationFixture struct {
	images  *ImageService
	store   *fakeStore
	service *AnnotationService
	vision  *fakeDescriber
	fetcher *fakeFetcher
	image   *models.Image
}

func newAnnotationFixture(t *testing.T) *annotationFixture {
	t.Helper()

	db := setupTestDB(t)
	repo := database.NewImageRepository(db)
	store := newFakeStore()
	vision := &fakeDescriber{annotation: ai.Annotation{Kind: ai.AnnotationText, Text: "cat on a mat"}}
	fetcher := &fakeFetcher{}

	images := NewImageService(repo, store)
	image, err := images.Upload(context.Background(), alice, pngUpload(t, "cat.png"))
	require.NoError(t, err)

	service := NewAnnotationService(repo, store, vision, fetcher)
	service.now = func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) }

	return &annotationFixture{
		images:  images,
		store:   store,
		service: service,
		vision:  vision,
		fetcher: fetcher,
		image:   image,
	}
}

func TestAnalyze_PersistsDescription(t *testing.T) {
	ctx := context.Background()
	f := newAnnotationFixture(t)

	image, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{})
	require.NoError(t, err)

	require.NotNil(t, image.AIDescription)
	assert.Equal(t, "cat on a mat", *image.AIDescription)
	require.NotNil(t, image.AnalyzedAt)
	assert.True(t, image.AnalyzedAt.Equal(time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, 1, f.vision.calls)
	assert.Equal(t, "image/png", f.vision.last.MIMEType)
	assert.Equal(t, f.store.objects[f.image.StoragePath], f.vision.last.Data)

	item, err := f.images.Get(ctx, alice, f.image.ID)
	require.NoError(t, err)
	assert.False(t, item.Actions.Analyze)
}

func TestAnalyze_EmptyAnswerStoresFallback(t *testing.T) {
	f := newAnnotationFixture(t)
	f.vision.annotation = ai.Annotation{Kind: ai.AnnotationEmpty}

	image, err := f.service.Analyze(context.Background(), alice, f.image.ID, AnalyzeRequest{})
	require.NoError(t, err)
	require.NotNil(t, image.AIDescription)
	assert.Equal(t, ai.NoAnalysisAvailable, *image.AIDescription)
}

func TestAnalyze_VisionFailureLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	f := newAnnotationFixture(t)
	f.vision.err = &ai.StatusError{Code: http.StatusInternalServerError, Message: "overloaded"}

	_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{})
	var aErr *AnnotationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, "vision", aErr.Reason)

	item, err := f.images.Get(ctx, alice, f.image.ID)
	require.NoError(t, err)
	assert.Nil(t, item.AIDescription)
	assert.Nil(t, item.AnalyzedAt)
	assert.Equal(t, 1, f.vision.calls, "no retry")
}

func TestAnalyze_AlreadyAnalyzedSkipsUnlessForced(t *testing.T) {
	ctx := context.Background()
	f := newAnnotationFixture(t)

	_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{})
	require.NoError(t, err)

	f.vision.annotation = ai.Annotation{Kind: ai.AnnotationText, Text: "dog on a rug"}
	image, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "cat on a mat", *image.AIDescription)
	assert.Equal(t, 1, f.vision.calls)

	image, err = f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{Force: true})
	require.NoError(t, err)
	assert.Equal(t, "dog on a rug", *image.AIDescription)
	assert.Equal(t, 2, f.vision.calls)
}

func TestAnalyze_Sources(t *testing.T) {
	ctx := context.Background()

	t.Run("remote", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.fetcher.data = pngBytes(t, 4, 4)
		f.fetcher.contentType = "image/png"

		_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{Source: SourceRemote})
		require.NoError(t, err)
		assert.Equal(t, []string{f.store.PublicURL(f.image.StoragePath)}, f.fetcher.urls)
	})

	t.Run("remote failure", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.fetcher.err = errors.New("received status code 404")

		_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{Source: SourceRemote})
		var aErr *AnnotationError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, "fetch", aErr.Reason)
		assert.Zero(t, f.vision.calls)
	})

	t.Run("inline", func(t *testing.T) {
		f := newAnnotationFixture(t)
		data := pngBytes(t, 2, 2)

		_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{
			Source: SourceInline,
			Inline: &InlineImage{Data: data, MediaType: "image/png"},
		})
		require.NoError(t, err)
		assert.Equal(t, data, f.vision.last.Data)
	})

	t.Run("inline without data", func(t *testing.T) {
		f := newAnnotationFixture(t)

		_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{Source: SourceInline})
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("stored blob missing", func(t *testing.T) {
		f := newAnnotationFixture(t)
		delete(f.store.objects, f.image.StoragePath)

		_, err := f.service.Analyze(ctx, alice, f.image.ID, AnalyzeRequest{})
		var aErr *AnnotationError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, "fetch", aErr.Reason)
	})
}

func TestAnalyze_OwnerScoped(t *testing.T) {
	f := newAnnotationFixture(t)

	_, err := f.service.Analyze(context.Background(), bob, f.image.ID, AnalyzeRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.vision.calls)

	_, err = f.service.Analyze(context.Background(), models.Session{}, f.image.ID, AnalyzeRequest{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAnalyze_AgainstStubbedGemini(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
	}{
		{
			name:     "success",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"role":"model","parts":[{"text":"cat on a mat"}]}}]}`,
			wantText: "cat on a mat",
		},
		{
			name:   "non-success status",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"Image input modality is not enabled","status":"INVALID_ARGUMENT"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			gemini, err := ai.NewGemini(ctx, config.GeminiConfig{
				APIKey:  "k",
				Model:   "gemini-test",
				BaseURL: srv.URL + "/",
			}, srv.Client())
			require.NoError(t, err)

			repo := database.NewImageRepository(setupTestDB(t))
			store := newFakeStore()
			image, err := NewImageService(repo, store).Upload(ctx, alice, pngUpload(t, "cat.png"))
			require.NoError(t, err)

			service := NewAnnotationService(repo, store, gemini, nil)
			result, err := service.Analyze(ctx, alice, image.ID, AnalyzeRequest{})

			stored, getErr := repo.GetOwned(ctx, image.ID, alice.UserID)
			require.NoError(t, getErr)

			if tt.wantText == "" {
				var aErr *AnnotationError
				require.ErrorAs(t, err, &aErr)
				assert.Contains(t, aErr.Error(), "Gemini API error")
				assert.Nil(t, stored.AIDescription)
				assert.Nil(t, stored.AnalyzedAt)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, *result.AIDescription)
			assert.Equal(t, tt.wantText, *stored.AIDescription)
			assert.NotNil(t, stored.AnalyzedAt)
		})
	}
}
