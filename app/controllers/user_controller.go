package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/AdEngine/internal/pkg/quota"
	"github.com/ManuelReschke/AdEngine/internal/pkg/usercontext"
)

// UsageReporter computes the live quota snapshot for a user.
type UsageReporter interface {
	Snapshot(ctx context.Context, userID uint, isPro bool, now time.Time) (quota.Snapshot, error)
}

type UserController struct {
	usage UsageReporter
	now   func() time.Time
}

func NewUserController(usage UsageReporter) *UserController {
	return &UserController{usage: usage, now: time.Now}
}

// HandleGetMe returns the authenticated user's profile.
func (h *UserController) HandleGetMe(c *fiber.Ctx) error {
	user := usercontext.GetUser(c)
	if user == nil {
		return respondError(c, fiber.StatusUnauthorized, "unauthorized", "Not authenticated")
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"is_pro":     user.IsPro,
		"created_at": user.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleGetUsage returns this month's usage. It is computed on every call.
func (h *UserController) HandleGetUsage(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return respondError(c, fiber.StatusUnauthorized, "unauthorized", "Not authenticated")
	}

	snap, err := h.usage.Snapshot(c.UserContext(), userCtx.UserID, userCtx.IsPro, h.now())
	if err != nil {
		fiberlog.Errorf("[Usage] Failed to count usage for user %d: %v", userCtx.UserID, err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load usage")
	}
	return c.JSON(snap)
}
