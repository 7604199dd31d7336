package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/ManuelReschke/AdEngine/internal/api/v1"
	"github.com/ManuelReschke/AdEngine/internal/pkg/cache"
)

const webhookPathSuffix = "/webhooks/stripe"

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	cfg := h.deps.Config

	api := app.Group("/api", cors.New(corsConfig(cfg.CORSOrigins)), limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		Storage:    cache.LimiterStorage(h.deps.Cache),
		// Stripe retries on its own schedule and must never be throttled.
		Next: func(c *fiber.Ctx) bool {
			return strings.HasSuffix(c.Path(), webhookPathSuffix)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlersWithOptions(v1, h.deps.Server, apiv1.Options{
		Authenticate: h.deps.Authenticate,
	})
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func corsConfig(origins string) cors.Config {
	if origins == "" {
		origins = "*"
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		// fiber rejects credentials together with a wildcard origin
		AllowCredentials: origins != "*",
	}
}
