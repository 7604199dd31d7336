package billing

import (
	"github.com/stripe/stripe-go/v79"

	"github.com/ManuelReschke/AdEngine/internal/pkg/entitlements"
)

// tierForEvent returns the tier flag an event sets. handled is false for
// event types that do not touch the tier.
func tierForEvent(ev Event) (isPro bool, handled bool) {
	switch ev.Type {
	case EventSubscriptionCreated:
		return true, true
	case EventSubscriptionDeleted:
		return false, true
	case EventSubscriptionUpdated:
		return isEntitlingStatus(ev.Status), true
	default:
		return false, false
	}
}

// isEntitlingStatus is true only for an active subscription. Trialing and
// past_due subscriptions are treated as standard.
func isEntitlingStatus(status string) bool {
	return status == string(stripe.SubscriptionStatusActive)
}

func planName(isPro bool) string {
	return string(entitlements.PlanFor(isPro))
}
