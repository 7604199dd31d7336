package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/metrics"
)

// Service applies verified subscription events to the user tier.
type Service struct {
	repo     Repository
	verifier Verifier
	metrics  *metrics.Metrics
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, verifier Verifier, m *metrics.Metrics) *Service {
	return &Service{repo: repo, verifier: verifier, metrics: m}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, webhookSecret string, m *metrics.Metrics) *Service {
	return NewService(NewRepository(db), NewStripeVerifier(webhookSecret), m)
}

// ApplyEvent maps the event to a tier transition and writes it. Events of other
// types are ignored; an unknown customer is reported as no match. Neither is
// an error.
func (s *Service) ApplyEvent(ctx context.Context, ev Event) (Outcome, error) {
	isPro, handled := tierForEvent(ev)
	if !handled {
		return OutcomeIgnored, nil
	}
	if strings.TrimSpace(ev.CustomerID) == "" {
		fiberlog.Warnf("[Billing] %s event %s carries no customer id", ev.Type, ev.ID)
		return OutcomeNoMatch, nil
	}

	matched, changed, err := s.repo.SetProByStripeCustomer(ctx, ev.CustomerID, isPro)
	if err != nil {
		return "", err
	}
	if !matched {
		fiberlog.Infof("[Billing] No user for customer %s (event %s)", ev.CustomerID, ev.Type)
		return OutcomeNoMatch, nil
	}
	if !changed {
		return OutcomeUnchanged, nil
	}

	fiberlog.Infof("[Billing] Customer %s set to %s by %s", ev.CustomerID, planName(isPro), ev.Type)
	return OutcomeApplied, nil
}

// HandleWebhook verifies the delivery, stores it for deduplication and applies
// it. A failed signature returns ErrInvalidSignature before anything is read
// or written. Redeliveries of an already processed event are not reapplied.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (Outcome, error) {
	ev, err := s.verifier.Verify(payload, signatureHeader)
	if err != nil {
		fiberlog.Warnf("[Billing] Webhook verification failed: %v", err)
		s.metrics.BillingEvent("unknown", "invalid_signature")
		return "", ErrInvalidSignature
	}

	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		CustomerRef:     ev.CustomerID,
		PayloadJSON:     string(payload),
	})
	if err != nil {
		return "", err
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		s.metrics.BillingEvent(ev.Type, string(OutcomeDuplicate))
		return OutcomeDuplicate, nil
	}

	outcome, applyErr := s.ApplyEvent(ctx, ev)
	if markErr := s.MarkWebhookProcessed(ctx, stored.ID, applyErr); markErr != nil {
		fiberlog.Errorf("[Billing] Failed to mark webhook %s processed: %v", ev.ID, markErr)
	}
	if applyErr != nil {
		s.metrics.BillingEvent(ev.Type, "error")
		return "", applyErr
	}

	s.metrics.BillingEvent(ev.Type, string(outcome))
	return outcome, nil
}

// RecordWebhookEvent stores an event unless it was seen before. Events without
// an id are keyed by the payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		CustomerRef:     strings.TrimSpace(in.CustomerRef),
		PayloadJSON:     in.PayloadJSON,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, errMsg)
}
