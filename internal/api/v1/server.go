package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface lists every operation of public/docs/v1/openapi.yml.
type ServerInterface interface {
	// (GET /health)
	GetHealth(c *fiber.Ctx) error
	// (POST /auth/signup)
	PostAuthSignup(c *fiber.Ctx) error
	// (POST /auth/login)
	PostAuthLogin(c *fiber.Ctx) error
	// (GET /user/me)
	GetUserMe(c *fiber.Ctx) error
	// (GET /user/usage)
	GetUserUsage(c *fiber.Ctx) error
	// (POST /generate)
	PostGenerate(c *fiber.Ctx) error
	// (POST /billing/checkout)
	PostBillingCheckout(c *fiber.Ctx) error
	// (POST /billing/portal)
	PostBillingPortal(c *fiber.Ctx) error
	// (POST /webhooks/stripe)
	PostStripeWebhook(c *fiber.Ctx) error
}

// Options configures RegisterHandlers.
type Options struct {
	// Authenticate guards the bearer-protected operations.
	Authenticate fiber.Handler
	// Middlewares run before every operation.
	Middlewares []fiber.Handler
}

// Route describes one registered operation.
type Route struct {
	Method string
	Path   string
	Secure bool
}

// Routes is the operation table shared by RegisterHandlers and the docs test.
var Routes = []Route{
	{fiber.MethodGet, "/health", false},
	{fiber.MethodPost, "/auth/signup", false},
	{fiber.MethodPost, "/auth/login", false},
	{fiber.MethodGet, "/user/me", true},
	{fiber.MethodGet, "/user/usage", true},
	{fiber.MethodPost, "/generate", true},
	{fiber.MethodPost, "/billing/checkout", true},
	{fiber.MethodPost, "/billing/portal", true},
	{fiber.MethodPost, "/webhooks/stripe", false},
}

func handlerFor(si ServerInterface, r Route) fiber.Handler {
	switch r.Method + " " + r.Path {
	case "GET /health":
		return si.GetHealth
	case "POST /auth/signup":
		return si.PostAuthSignup
	case "POST /auth/login":
		return si.PostAuthLogin
	case "GET /user/me":
		return si.GetUserMe
	case "GET /user/usage":
		return si.GetUserUsage
	case "POST /generate":
		return si.PostGenerate
	case "POST /billing/checkout":
		return si.PostBillingCheckout
	case "POST /billing/portal":
		return si.PostBillingPortal
	case "POST /webhooks/stripe":
		return si.PostStripeWebhook
	}
	return nil
}

// RegisterHandlers mounts the operations on router without authentication.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, Options{})
}

func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options Options) {
	for _, r := range Routes {
		handlers := append([]fiber.Handler{}, options.Middlewares...)
		if r.Secure && options.Authenticate != nil {
			handlers = append(handlers, options.Authenticate)
		}
		handlers = append(handlers, handlerFor(si, r))
		router.Add(r.Method, r.Path, handlers...)
	}
}
