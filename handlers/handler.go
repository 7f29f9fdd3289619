package handler

import (
	"errors"
	"fmt"
	"log"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/services"
)

type Handler struct {
	auth        *auth.Service
	images      *services.ImageService
	annotations *services.AnnotationService
	profiles    *services.ProfileService
	validate    *validator.Validate
}

func New(authService *auth.Service, images *services.ImageService, annotations *services.AnnotationService, profiles *services.ProfileService) *Handler {
	return &Handler{
		auth:        authService,
		images:      images,
		annotations: annotations,
		profiles:    profiles,
		validate:    validator.New(),
	}
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	kind := "success"
	if status >= fiber.StatusBadRequest {
		kind = "error"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  kind,
		"message": message,
		"data":    data,
	})
}

var storageMessages = map[string]string{
	"upload": "Error uploading the file",
	"read":   "Error reading the file",
	"remove": "Failed to delete image from storage",
}

var metadataMessages = map[string]string{
	"insert": "Error saving to database",
	"select": "Database error",
	"update": "Failed to update record",
	"delete": "Failed to delete image record",
}

// fail converts a workflow error into the JSON envelope. Server-side
// failures are logged and reported to Sentry.
func fail(c *fiber.Ctx, err error) error {
	var (
		validationErr *services.ValidationError
		storageErr    *services.StorageError
		metadataErr   *services.MetadataError
		annotationErr *services.AnnotationError
	)

	switch {
	case errors.As(err, &validationErr):
		return respond(c, fiber.StatusBadRequest, validationErr.Message, nil)
	case errors.Is(err, services.ErrUnauthenticated):
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	case errors.Is(err, services.ErrNotFound):
		return respond(c, fiber.StatusNotFound, "Image not found", nil)
	case errors.As(err, &annotationErr):
		report(c, err)
		return respond(c, fiber.StatusBadGateway, "Failed to analyze image: "+errorMessage(annotationErr.Err), nil)
	case errors.As(err, &storageErr):
		report(c, err)
		return respond(c, fiber.StatusInternalServerError, messageFor(storageMessages, storageErr.Op), nil)
	case errors.As(err, &metadataErr):
		report(c, err)
		return respond(c, fiber.StatusInternalServerError, messageFor(metadataMessages, metadataErr.Op), nil)
	default:
		report(c, err)
		return respond(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}

func report(c *fiber.Ctx, err error) {
	log.Printf("%s %s: %v", c.Method(), c.Path(), err)
	sentry.CaptureException(err)
}

func messageFor(messages map[string]string, op string) string {
	if msg, ok := messages[op]; ok {
		return msg
	}
	return "Internal server error"
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// validationMessage turns the first validator failure into a readable message.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid input"
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// ErrorHandler is the fiber fallback for errors no handler converted.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return respond(c, fiberErr.Code, fiberErr.Message, nil)
	}
	return fail(c, err)
}

func Home(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "snap-vault is running", nil)
}

func Health(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "ok", nil)
}
