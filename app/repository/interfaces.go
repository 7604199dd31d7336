package repository

import (
	"context"
	"time"

	"github.com/ManuelReschke/AdEngine/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID uint, customerID string) error
	// SetProByStripeCustomer sets the tier flag of the user linked to the
	// customer. It reports whether a user matched and whether a write happened.
	SetProByStripeCustomer(ctx context.Context, customerID string, isPro bool) (matched bool, changed bool, err error)
}

// UsageRepository defines the interface for the append-only usage ledger
type UsageRepository interface {
	Create(ctx context.Context, record *models.UsageRecord) error
	// CountInRange counts the user's rows with created_at in [from, to).
	CountInRange(ctx context.Context, userID uint, from, to time.Time) (int64, error)
	// ListInRange returns all rows with created_at in [from, to), oldest first.
	ListInRange(ctx context.Context, from, to time.Time, offset, limit int) ([]models.UsageRecord, error)
}

// WebhookEventRepository stores verified billing webhook deliveries
type WebhookEventRepository interface {
	CreateIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingError string) error
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Usage        UsageRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Usage:        NewUsageRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
