package handler

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/services"
)

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type analyzeInput struct {
	InlineData *inlineData `json:"inline_data"`
}

type analyzeResponse struct {
	Description string                `json:"description"`
	Image       *services.GalleryItem `json:"image"`
}

// AnalyzeImage asks the vision model to describe an owned image and stores
// the result. ?source picks where the bytes come from and ?force=true
// replaces an existing description.
func (h *Handler) AnalyzeImage(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	source, ok := services.ParseSource(c.Query("source"))
	if !ok {
		return respond(c, fiber.StatusBadRequest, "Unknown image source", nil)
	}

	req := services.AnalyzeRequest{
		Source: source,
		Force:  c.QueryBool("force"),
	}

	if len(c.Body()) > 0 && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		input := new(analyzeInput)
		if err := c.BodyParser(input); err != nil {
			return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
		}

		if input.InlineData != nil {
			data, err := base64.StdEncoding.DecodeString(input.InlineData.Data)
			if err != nil {
				return respond(c, fiber.StatusBadRequest, "inline_data.data must be base64", nil)
			}
			req.Source = services.SourceInline
			req.Inline = &services.InlineImage{Data: data, MediaType: input.InlineData.MimeType}
		}
	}

	image, err := h.annotations.Analyze(c.UserContext(), user, c.Params("id"), req)
	if err != nil {
		return fail(c, err)
	}

	item, err := h.images.Get(c.UserContext(), user, image.ID)
	if err != nil {
		return fail(c, err)
	}

	description := ""
	if image.AIDescription != nil {
		description = *image.AIDescription
	}

	return respond(c, fiber.StatusOK, "Image analyzed successfully", analyzeResponse{
		Description: description,
		Image:       item,
	})
}
