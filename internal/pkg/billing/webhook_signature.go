package billing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// ErrInvalidSignature is returned for any payload that fails verification.
// The cause is logged, never sent to the caller.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Verifier authenticates and decodes a raw webhook delivery.
type Verifier interface {
	Verify(payload []byte, signatureHeader string) (Event, error)
}

type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(webhookSecret string) *StripeVerifier {
	return &StripeVerifier{secret: strings.TrimSpace(webhookSecret)}
}

// Verify checks the Stripe-Signature header and decodes the event. Subscription
// events additionally carry the customer id and status.
func (v *StripeVerifier) Verify(payload []byte, signatureHeader string) (Event, error) {
	if v.secret == "" || strings.TrimSpace(signatureHeader) == "" {
		return Event{}, ErrInvalidSignature
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := Event{
		ID:   ev.ID,
		Type: string(ev.Type),
		Raw:  payload,
	}

	if strings.HasPrefix(out.Type, "customer.subscription.") && ev.Data != nil {
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("decode subscription payload: %w", err)
		}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		out.Status = string(sub.Status)
	}

	return out, nil
}
