package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the controllers so the docs server and tests share one behavior
	"github.com/ManuelReschke/AdEngine/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct {
	Main     *controllers.MainController
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Generate *controllers.GenerateController
	Billing  *controllers.BillingController
}

// NewAPIServer creates a new API server instance
func NewAPIServer(main *controllers.MainController, auth *controllers.AuthController, user *controllers.UserController,
	generate *controllers.GenerateController, billing *controllers.BillingController) *APIServer {
	return &APIServer{Main: main, Auth: auth, User: user, Generate: generate, Billing: billing}
}

func (s *APIServer) GetHealth(c *fiber.Ctx) error {
	return s.Main.HandleHealth(c)
}

func (s *APIServer) PostAuthSignup(c *fiber.Ctx) error {
	return s.Auth.HandleSignup(c)
}

func (s *APIServer) PostAuthLogin(c *fiber.Ctx) error {
	return s.Auth.HandleLogin(c)
}

// GetUserMe returns the profile of the bearer token's user.
func (s *APIServer) GetUserMe(c *fiber.Ctx) error {
	return s.User.HandleGetMe(c)
}

// GetUserUsage returns the live monthly quota view.
func (s *APIServer) GetUserUsage(c *fiber.Ctx) error {
	return s.User.HandleGetUsage(c)
}

// PostGenerate runs the quota-checked generation workflow.
func (s *APIServer) PostGenerate(c *fiber.Ctx) error {
	return s.Generate.HandleGenerate(c)
}

func (s *APIServer) PostBillingCheckout(c *fiber.Ctx) error {
	return s.Billing.HandleCheckout(c)
}

func (s *APIServer) PostBillingPortal(c *fiber.Ctx) error {
	return s.Billing.HandlePortal(c)
}

// PostStripeWebhook is authenticated by the Stripe-Signature header, not a bearer token.
func (s *APIServer) PostStripeWebhook(c *fiber.Ctx) error {
	return s.Billing.HandleStripeWebhook(c)
}
