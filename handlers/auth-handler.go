package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/middleware"
	"github.com/krishkalaria12/snap-vault/models"
)

type credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

func (h *Handler) Register(c *fiber.Ctx) error {
	input := new(credentials)
	if err := c.BodyParser(input); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := h.validate.Struct(input); err != nil {
		return respond(c, fiber.StatusBadRequest, validationMessage(err), nil)
	}

	user, err := h.auth.Register(c.UserContext(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return respond(c, fiber.StatusConflict, "Email already registered", nil)
		case errors.Is(err, auth.ErrInvalidEmail):
			return respond(c, fiber.StatusBadRequest, "Email must be a valid email address", nil)
		default:
			return fail(c, err)
		}
	}

	return h.startSession(c, fiber.StatusCreated, "User created successfully", user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	input := new(credentials)
	if err := c.BodyParser(input); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if input.Email == "" || input.Password == "" {
		return respond(c, fiber.StatusBadRequest, "Email and password are required", nil)
	}

	user, err := h.auth.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return respond(c, fiber.StatusUnauthorized, "Invalid email or password", nil)
		}
		return fail(c, err)
	}

	return h.startSession(c, fiber.StatusOK, "Login successful", user)
}

func (h *Handler) startSession(c *fiber.Ctx, status int, message string, user *models.User) error {
	tokenStr, err := h.auth.IssueToken(user)
	if err != nil {
		return fail(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    tokenStr,
		Expires:  time.Now().Add(h.auth.CookieDuration()),
		HTTPOnly: true,
		Secure:   h.auth.SecureCookies(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return respond(c, status, message, UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Token: tokenStr,
	})
}

func (h *Handler) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.auth.SecureCookies(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.clearSession(c)
	return respond(c, fiber.StatusOK, "Logout successful", nil)
}

// Signout clears the session and sends the browser home.
func (h *Handler) Signout(c *fiber.Ctx) error {
	h.clearSession(c)
	return c.Redirect("/", fiber.StatusFound)
}

func (h *Handler) RequestPasswordReset(c *fiber.Ctx) error {
	type resetInput struct {
		Email string `json:"email" form:"email" validate:"required,email"`
	}

	input := new(resetInput)
	if err := c.BodyParser(input); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := h.validate.Struct(input); err != nil {
		return respond(c, fiber.StatusBadRequest, validationMessage(err), nil)
	}

	if err := h.auth.RequestPasswordReset(c.UserContext(), input.Email); err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			return respond(c, fiber.StatusBadRequest, "Email must be a valid email address", nil)
		}
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Check your email for the password reset link", nil)
}

// UpdatePassword accepts either a reset token from the emailed link or a live session.
func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	type updateInput struct {
		Token    string `json:"token" form:"token"`
		Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
	}

	input := new(updateInput)
	if err := c.BodyParser(input); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := h.validate.Struct(input); err != nil {
		return respond(c, fiber.StatusBadRequest, validationMessage(err), nil)
	}

	var err error
	if input.Token != "" {
		err = h.auth.ResetPassword(c.UserContext(), input.Token, input.Password)
	} else {
		session, sessErr := h.auth.ParseSession(c.UserContext(), middleware.TokenFromRequest(c))
		if sessErr != nil {
			return respond(c, fiber.StatusUnauthorized, "You are not authorized!", nil)
		}
		err = h.auth.ChangePassword(c.UserContext(), session, input.Password)
	}

	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return respond(c, fiber.StatusBadRequest, "Reset link is invalid or has expired", nil)
		}
		return fail(c, err)
	}

	return respond(c, fiber.StatusOK, "Password updated successfully", nil)
}
