package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/services"
)

// profileInput deliberately has no id field: the row is always the session user's.
type profileInput struct {
	Username string `json:"username" form:"username" validate:"omitempty,max=50"`
	FullName string `json:"full_name" form:"fullName" validate:"omitempty,max=100"`
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	profile, err := h.profiles.Get(c.UserContext(), user)
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Profile fetched successfully", profile)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := session(c)
	if !ok {
		return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
	}

	input := new(profileInput)
	if err := c.BodyParser(input); err != nil {
		return respond(c, fiber.StatusBadRequest, "Review your input", nil)
	}
	if err := h.validate.Struct(input); err != nil {
		return respond(c, fiber.StatusBadRequest, validationMessage(err), nil)
	}

	profile, err := h.profiles.Update(c.UserContext(), user, services.ProfileUpdate{
		Username: input.Username,
		FullName: input.FullName,
	})
	if err != nil {
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Profile updated successfully", profile)
}
