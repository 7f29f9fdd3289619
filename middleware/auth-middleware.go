package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/snap-vault/auth"
	"github.com/krishkalaria12/snap-vault/models"
)

const sessionKey = "session"

var ErrNoSession = errors.New("no session on request")

type SessionParser interface {
	ParseSession(ctx context.Context, token string) (models.Session, error)
}

// AuthMiddleware rejects requests without a valid session. Browsers asking
// for HTML are sent to the login page instead of getting a JSON 401.
func AuthMiddleware(sessions SessionParser, loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			return unauthorized(c, loginURL, "You are not authorized!")
		}

		session, err := sessions.ParseSession(c.UserContext(), tokenStr)
		if err != nil {
			return unauthorized(c, loginURL, "Invalid token")
		}

		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// TokenFromRequest reads the session token from the Authorization bearer,
// the X-JWT header, or the JWT cookie, in that order.
func TokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if header := c.Get(auth.HeaderName); header != "" {
		return header
	}

	return c.Cookies(auth.CookieName)
}

// CurrentSession returns the identity stored by AuthMiddleware.
func CurrentSession(c *fiber.Ctx) (models.Session, error) {
	session, ok := c.Locals(sessionKey).(models.Session)
	if !ok || session.UserID == "" {
		return models.Session{}, ErrNoSession
	}
	return session, nil
}

func unauthorized(c *fiber.Ctx, loginURL, message string) error {
	if c.Method() == fiber.MethodGet && c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMETextHTML) == fiber.MIMETextHTML {
		return c.Redirect(loginURL, fiber.StatusSeeOther)
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}
