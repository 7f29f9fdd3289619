package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/krishkalaria12/snap-vault/ai"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/config"
	"github.com/krishkalaria12/snap-vault/database"
	handler "github.com/krishkalaria12/snap-vault/handlers"
	"github.com/krishkalaria12/snap-vault/router"
	"github.com/krishkalaria12/snap-vault/services"
	"github.com/krishkalaria12/snap-vault/storage"
	"github.com/stretchr/testify/require"
)

type stubVision struct {
	annotation ai.Annotation
	err        error
	calls      int
}

func (s *stubVision) Describe(ctx context.Context, payload ai.Payload) (ai.Annotation, error) {
	s.calls++
	return s.annotation, s.err
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	app     *fiber.App
	objects *storage.Local
	vision  *stubVision
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbCfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	db, err := database.Connect(dbCfg, "silent")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, dbCfg.Driver))
	t.Cleanup(func() { _ = database.Close(db) })

	objects, err := storage.NewLocal(t.TempDir(), "http://localhost:3000/files")
	require.NoError(t, err)

	vision := &stubVision{annotation: ai.Annotation{Kind: ai.AnnotationText, Text: "a cat on a mat"}}

	images := database.NewImageRepository(db)
	authService := auth.NewService(config.AuthConfig{
		JWTSecret:      "test-secret",
		Issuer:         "snap-vault",
		TokenDuration:  time.Hour,
		CookieDuration: time.Hour,
	}, "http://localhost:3000", database.NewUserRepository(db), auth.LogMailer{})

	h := handler.New(
		authService,
		services.NewImageService(images, objects),
		services.NewAnnotationService(images, objects, vision, ai.NewFetcher(http.DefaultClient)),
		services.NewProfileService(database.NewProfileRepository(db)),
	)

	app := router.NewApp()
	app.Static("/files", objects.Dir())
	router.SetupRoutes(app, h, authService, "/login")

	return &testEnv{app: app, objects: objects, vision: vision}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var env envelope
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(body) > 0 && resp.Header.Get(fiber.HeaderContentType) == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(body, &env))
	}
	return resp, env
}

func jsonRequest(method, target string, body any, token string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

// register creates an account and returns its session token and user id.
func (e *testEnv) register(t *testing.T, email string) (string, string) {
	t.Helper()

	resp, env := e.do(t, jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "correct-horse",
	}, ""))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, env.Message)

	var user handler.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &user))
	require.NotEmpty(t, user.Token)
	return user.Token, user.ID
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, token, filename, contentType string, data []byte, description string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	if description != "" {
		require.NoError(t, w.WriteField("description", description))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return req
}
