package controllers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/billing"
	"github.com/ManuelReschke/AdEngine/internal/pkg/usercontext"
)

// WebhookHandler verifies and applies one signed billing webhook delivery.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (billing.Outcome, error)
}

// CheckoutStarter creates hosted Stripe pages for a user.
type CheckoutStarter interface {
	CheckoutURL(ctx context.Context, user *models.User) (string, error)
	PortalURL(ctx context.Context, user *models.User) (string, error)
}

type BillingController struct {
	webhooks WebhookHandler
	checkout CheckoutStarter
}

func NewBillingController(webhooks WebhookHandler, checkout CheckoutStarter) *BillingController {
	return &BillingController{webhooks: webhooks, checkout: checkout}
}

// HandleStripeWebhook reads the raw body and Stripe-Signature header. A bad
// signature gets a generic 400; every verified event is acknowledged with 200
// whether or not it changed anything.
func (h *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	signature := c.Get("Stripe-Signature")

	outcome, err := h.webhooks.HandleWebhook(c.UserContext(), payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			return respondError(c, fiber.StatusBadRequest, "bad_request", "Invalid webhook signature")
		}
		fiberlog.Errorf("[Billing] Webhook processing failed: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "Webhook processing failed")
	}

	if outcome == billing.OutcomeDuplicate {
		return c.JSON(fiber.Map{"status": "success", "duplicate": true})
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func (h *BillingController) HandleCheckout(c *fiber.Ctx) error {
	return h.redirectURL(c, h.checkout.CheckoutURL)
}

func (h *BillingController) HandlePortal(c *fiber.Ctx) error {
	return h.redirectURL(c, h.checkout.PortalURL)
}

func (h *BillingController) redirectURL(c *fiber.Ctx, create func(context.Context, *models.User) (string, error)) error {
	user := usercontext.GetUser(c)
	if user == nil {
		return respondError(c, fiber.StatusUnauthorized, "unauthorized", "Not authenticated")
	}

	url, err := create(c.UserContext(), user)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"url": url})
	case errors.Is(err, billing.ErrBillingDisabled):
		return respondError(c, fiber.StatusServiceUnavailable, "billing_disabled", "Billing is not configured")
	case errors.Is(err, billing.ErrNoCustomer):
		return respondError(c, fiber.StatusBadRequest, "bad_request", "No subscription found for this account")
	default:
		fiberlog.Errorf("[Billing] Stripe session for user %d failed: %v", user.ID, err)
		return respondError(c, fiber.StatusBadGateway, "billing_error", "Could not reach the billing provider")
	}
}
