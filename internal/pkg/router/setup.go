package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	apiv1 "github.com/ManuelReschke/AdEngine/internal/api/v1"
	"github.com/ManuelReschke/AdEngine/internal/pkg/config"
	"github.com/ManuelReschke/AdEngine/internal/pkg/metrics"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the wired pieces the routers mount.
type Dependencies struct {
	Config       config.Config
	Server       apiv1.ServerInterface
	Authenticate fiber.Handler
	Root         fiber.Handler
	Metrics      *metrics.Metrics
	Cache        *redis.Client
	// DocsFile is the OpenAPI document served under /docs/api/v1. Empty disables docs.
	DocsFile string
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// System routes first so /metrics and the docs are not rate limited.
	setup(app, NewSystemRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
