package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/usercontext"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// UserLoader loads the user named by a token.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// RequireBearerAuth authenticates requests carrying "Authorization: Bearer <jwt>".
// The user is reloaded on every request so tier changes apply immediately.
func RequireBearerAuth(tokens TokenVerifier, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return unauthorized(c, "Not authenticated")
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			return unauthorized(c, "Could not validate credentials")
		}

		user, err := users.GetByID(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return unauthorized(c, "Could not validate credentials")
			}
			fiberlog.Errorf("[Auth] user lookup failed for %d: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Authentication failed"})
		}

		if !user.IsActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "Inactive user"})
		}

		usercontext.Set(c, user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": message})
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
