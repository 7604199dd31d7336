package router

import (
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
)

// SystemRouter mounts the routes outside /api: root, metrics and docs.
type SystemRouter struct {
	deps Dependencies
}

func (h SystemRouter) InstallRouter(app *fiber.App) {
	cfg := h.deps.Config

	app.Use(h.deps.Metrics.Middleware())

	if h.deps.Root != nil {
		app.Get("/", h.deps.Root)
	}

	// prometheus metrics
	switch {
	case h.deps.Metrics == nil:
	case cfg.MetricsUser != "":
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{
				cfg.MetricsUser: cfg.MetricsPassword,
			},
		}), h.deps.Metrics.Handler())
	case cfg.IsDev():
		app.Get("/metrics", h.deps.Metrics.Handler())
	default:
		fiberlog.Warn("[Router] METRICS_USER not set, /metrics is disabled")
	}

	// SWAGGER / OPENAPI
	if h.deps.DocsFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: h.deps.DocsFile,
			Path:     "v1",
			Title:    "AdEngine API",
		}))
	}
}

func NewSystemRouter(deps Dependencies) *SystemRouter {
	return &SystemRouter{deps: deps}
}
