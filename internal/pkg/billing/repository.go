package billing

import (
	"context"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/app/repository"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	SetProByStripeCustomer(ctx context.Context, customerID string, isPro bool) (matched bool, changed bool, err error)
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
}

type gormRepository struct {
	users  repository.UserRepository
	events repository.WebhookEventRepository
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return NewRepositoryFrom(repository.NewUserRepository(db), repository.NewWebhookEventRepository(db))
}

// NewRepositoryFrom combines existing app repositories.
func NewRepositoryFrom(users repository.UserRepository, events repository.WebhookEventRepository) Repository {
	return &gormRepository{users: users, events: events}
}

func (r *gormRepository) SetProByStripeCustomer(ctx context.Context, customerID string, isPro bool) (bool, bool, error) {
	return r.users.SetProByStripeCustomer(ctx, customerID, isPro)
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	return r.events.CreateIfNotExists(ctx, event)
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	return r.events.MarkProcessed(ctx, id, processingError)
}
