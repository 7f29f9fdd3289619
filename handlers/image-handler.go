package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/middleware"
	"github.com/krishkalaria12/snap-vault/models"
	"github.com/krishkalaria12/snap-vault/services"
)

func session(c *fiber.Ctx) (models.Session, bool) {
	s, err := middleware.CurrentSession(c)
	if err != nil {
		return models.Session{}, false
	}
	return s, true
}

func (h *Handler) UploadImage(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Please select an image file", nil)
	}

	blobFile, err := file.Open()
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, "Error opening the file", nil)
	}
	defer blobFile.Close()

	image, err := h.images.Upload(c.UserContext(), user, services.UploadInput{
		Name:        file.Filename,
		MediaType:   file.Header.Get(fiber.HeaderContentType),
		Size:        file.Size,
		Body:        blobFile,
		Description: c.FormValue("description"),
	})
	if err != nil {
		return fail(c, err)
	}

	item, err := h.images.Get(c.UserContext(), user, image.ID)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusCreated, "Image uploaded successfully!", item)
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	items, err := h.images.List(c.UserContext(), user)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Images fetched successfully", items)
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	item, err := h.images.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Image fetched successfully", item)
}

func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	if err := h.images.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Image deleted successfully", nil)
}

type uploadConstraints struct {
	MaxBytes             int64  `json:"max_bytes"`
	MaxDescriptionLength int    `json:"max_description_length"`
	Accept               string `json:"accept"`
}

// Dashboard bundles the gallery with what the upload form needs to know.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	items, err := h.images.List(c.UserContext(), user)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Dashboard fetched successfully", fiber.Map{
		"user":   user,
		"images": items,
		"upload": uploadConstraints{
			MaxBytes:             services.MaxUploadBytes,
			MaxDescriptionLength: services.MaxDescriptionLength,
			Accept:               "image/*",
		},
	})
}
