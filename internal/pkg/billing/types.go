package billing

// Stripe subscription event types that change the tier.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a verified webhook event reduced to what tier handling needs.
type Event struct {
	ID         string
	Type       string
	CustomerID string
	Status     string
	Raw        []byte
}

// Outcome describes what handling an event did.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeDuplicate Outcome = "duplicate"
)

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	CustomerRef     string
	PayloadJSON     string
}
