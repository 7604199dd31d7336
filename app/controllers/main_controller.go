package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/internal/pkg/cache"
)

const healthCheckTimeout = 2 * time.Second

type MainController struct {
	db      *gorm.DB
	cache   *redis.Client
	version string
}

func NewMainController(db *gorm.DB, cacheClient *redis.Client, version string) *MainController {
	return &MainController{db: db, cache: cacheClient, version: version}
}

func (h *MainController) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "AdEngine API",
		"docs":    "/docs/api/v1",
		"health":  "/api/v1/health",
	})
}

// HandleHealth reports ok when the database answers. The cache is optional
// and only reported.
func (h *MainController) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	checks := fiber.Map{"database": "ok", "cache": "disabled"}
	status := "ok"
	code := fiber.StatusOK

	if err := h.pingDB(ctx); err != nil {
		fiberlog.Warnf("[Health] Database check failed: %v", err)
		checks["database"] = "unavailable"
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	if h.cache != nil {
		checks["cache"] = "ok"
		if err := cache.Ping(ctx, h.cache); err != nil {
			fiberlog.Warnf("[Health] Cache check failed: %v", err)
			checks["cache"] = "unavailable"
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"version": h.version,
		"checks":  checks,
	})
}

func (h *MainController) pingDB(ctx context.Context) error {
	if h.db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
