package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/entitlements"
)

// UserContext represents the authenticated identity for a request
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsPro      bool   `json:"is_pro"`
	Plan       string `json:"plan"`
}

// FromUser builds the context for a loaded user.
func FromUser(u *models.User) UserContext {
	return UserContext{
		UserID:     u.ID,
		Email:      u.Email,
		IsLoggedIn: true,
		IsPro:      u.IsPro,
		Plan:       string(entitlements.PlanFor(u.IsPro)),
	}
}

// Set stores the user and its context on the request.
func Set(c *fiber.Ctx, u *models.User) {
	c.Locals(KeyUserContext, FromUser(u))
	c.Locals(KeyUser, u)
	c.Locals(KeyUserID, u.ID)
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(KeyUserContext).(UserContext); ok {
		return ctx
	}
	return UserContext{IsLoggedIn: false}
}

// GetUser returns the user loaded by the auth middleware, or nil.
func GetUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(KeyUser).(*models.User); ok {
		return u
	}
	return nil
}
