package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/ManuelReschke/AdEngine/app/models"
)

var (
	ErrBillingDisabled = errors.New("billing is not configured")
	ErrNoCustomer      = errors.New("no billing customer for user")
)

// Gateway is the subset of the Stripe API used for self-service billing.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string, userID uint) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// CustomerLinker persists the Stripe customer id on the user.
type CustomerLinker interface {
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
}

type stripeGateway struct {
	api *client.API
}

// NewStripeGateway returns nil when no secret key is configured.
func NewStripeGateway(secretKey string) Gateway {
	if strings.TrimSpace(secretKey) == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &stripeGateway{api: sc}
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, email, name string, userID uint) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))

	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (g *stripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// Checkout starts subscription checkouts and customer portal sessions.
type Checkout struct {
	gateway     Gateway
	users       CustomerLinker
	priceID     string
	frontendURL string
}

func NewCheckout(gateway Gateway, users CustomerLinker, priceID, frontendURL string) *Checkout {
	return &Checkout{
		gateway:     gateway,
		users:       users,
		priceID:     strings.TrimSpace(priceID),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (c *Checkout) Enabled() bool {
	return c != nil && c.gateway != nil && c.priceID != ""
}

// ensureCustomer returns the user's Stripe customer, creating and linking one
// on first use.
func (c *Checkout) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.HasBillingCustomer() {
		return *user.StripeCustomerID, nil
	}

	customerID, err := c.gateway.CreateCustomer(ctx, user.Email, user.DisplayName(), user.ID)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := c.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
		return "", fmt.Errorf("link stripe customer: %w", err)
	}
	user.StripeCustomerID = &customerID
	fiberlog.Infof("[Billing] Linked user %d to customer %s", user.ID, customerID)
	return customerID, nil
}

// CheckoutURL returns a hosted checkout page for the pro subscription.
func (c *Checkout) CheckoutURL(ctx context.Context, user *models.User) (string, error) {
	if !c.Enabled() {
		return "", ErrBillingDisabled
	}
	customerID, err := c.ensureCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	return c.gateway.CreateCheckoutSession(ctx, customerID, c.priceID,
		c.frontendURL+"/billing/success?session_id={CHECKOUT_SESSION_ID}",
		c.frontendURL+"/billing/cancel")
}

// PortalURL returns a customer portal page. The user must have checked out before.
func (c *Checkout) PortalURL(ctx context.Context, user *models.User) (string, error) {
	if c == nil || c.gateway == nil {
		return "", ErrBillingDisabled
	}
	if !user.HasBillingCustomer() {
		return "", ErrNoCustomer
	}
	return c.gateway.CreatePortalSession(ctx, *user.StripeCustomerID, c.frontendURL+"/dashboard")
}
