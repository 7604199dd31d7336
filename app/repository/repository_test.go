package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite://:memory:", false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, repos *Repositories, email string) *models.User {
	t.Helper()
	u, err := models.CreateUser(email, "password123", "")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(context.Background(), u))
	return u
}

func TestUserRepository_LookupAndCustomerLink(t *testing.T) {
	ctx := context.Background()
	repos := NewFactory(newTestDB(t)).GetRepositories()

	u := createUser(t, repos, "Alice@Example.com")

	got, err := repos.User.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsPro)
	assert.True(t, got.IsActive)

	_, err = repos.User.GetByStripeCustomerID(ctx, "cus_A")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repos.User.SetStripeCustomerID(ctx, u.ID, "cus_A"))
	got, err = repos.User.GetByStripeCustomerID(ctx, "cus_A")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.HasBillingCustomer())

	_, err = repos.User.GetByStripeCustomerID(ctx, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_SetProByStripeCustomerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := NewFactory(newTestDB(t)).GetRepositories()

	u := createUser(t, repos, "bob@example.com")
	require.NoError(t, repos.User.SetStripeCustomerID(ctx, u.ID, "cus_B"))

	matched, changed, err := repos.User.SetProByStripeCustomer(ctx, "cus_B", true)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.True(t, changed)

	matched, changed, err = repos.User.SetProByStripeCustomer(ctx, "cus_B", true)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.False(t, changed, "second identical transition must not write")

	got, err := repos.User.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPro)

	matched, changed, err = repos.User.SetProByStripeCustomer(ctx, "cus_B", false)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.True(t, changed)

	matched, changed, err = repos.User.SetProByStripeCustomer(ctx, "cus_unknown", true)
	require.NoError(t, err)
	assert.False(t, matched)
	assert.False(t, changed)
}

func TestUsageRepository_CountInRange(t *testing.T) {
	ctx := context.Background()
	repos := NewFactory(newTestDB(t)).GetRepositories()

	alice := createUser(t, repos, "alice@example.com")
	bob := createUser(t, repos, "bob@example.com")

	stamps := []time.Time{
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range stamps {
		require.NoError(t, repos.Usage.Create(ctx, &models.UsageRecord{
			UserID: alice.ID, InputURL: "https://a.example", GenerationCount: 5, AIModelUsed: "m", CreatedAt: ts,
		}))
	}
	require.NoError(t, repos.Usage.Create(ctx, &models.UsageRecord{
		UserID: bob.ID, InputURL: "https://b.example", GenerationCount: 1, AIModelUsed: "m",
		CreatedAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	n, err := repos.Usage.CountInRange(ctx, alice.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n, "rows are counted, not generation_count")

	n, err = repos.Usage.CountInRange(ctx, bob.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := repos.Usage.ListInRange(ctx, from, to, 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.NotEmpty(t, rows[0].UUID)
	assert.True(t, !rows[0].CreatedAt.After(rows[len(rows)-1].CreatedAt))

	page, err := repos.Usage.ListInRange(ctx, from, to, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestWebhookEventRepository_Dedup(t *testing.T) {
	ctx := context.Background()
	repos := NewFactory(newTestDB(t)).GetRepositories()

	ev := &models.BillingWebhookEvent{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: "evt_1",
		EventType:       "customer.subscription.created",
		PayloadJSON:     "{}",
	}
	created, stored, err := repos.WebhookEvent.CreateIfNotExists(ctx, ev)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, stored)

	again := &models.BillingWebhookEvent{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: "evt_1",
		EventType:       "customer.subscription.created",
		PayloadJSON:     "{}",
	}
	created, dup, err := repos.WebhookEvent.CreateIfNotExists(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, dup.ID)

	require.NoError(t, repos.WebhookEvent.MarkProcessed(ctx, stored.ID, ""))
	_, after, err := repos.WebhookEvent.CreateIfNotExists(ctx, &models.BillingWebhookEvent{
		Provider: models.BillingProviderStripe, ProviderEventID: "evt_1", EventType: "x", PayloadJSON: "{}",
	})
	require.NoError(t, err)
	assert.NotNil(t, after.ProcessedAt)
}
