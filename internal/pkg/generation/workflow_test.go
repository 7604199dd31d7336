package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/app/repository"
	"github.com/ManuelReschke/AdEngine/internal/pkg/copywriter"
	"github.com/ManuelReschke/AdEngine/internal/pkg/database"
	"github.com/ManuelReschke/AdEngine/internal/pkg/entitlements"
	"github.com/ManuelReschke/AdEngine/internal/pkg/metrics"
	"github.com/ManuelReschke/AdEngine/internal/pkg/quota"
	"github.com/ManuelReschke/AdEngine/internal/pkg/scraper"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	text  string
	ok    bool
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (string, bool) {
	f.calls++
	return f.text, f.ok
}

type stubGenerator struct {
	out   []copywriter.Variation
	err   error
	calls int
	last  copywriter.Request
}

func (g *stubGenerator) Generate(_ context.Context, req copywriter.Request) ([]copywriter.Variation, error) {
	g.calls++
	g.last = req
	return g.out, g.err
}

func (g *stubGenerator) ModelName() string { return "stub-model" }

type failingRecorder struct{}

func (failingRecorder) Create(context.Context, *models.UsageRecord) error {
	return errors.New("disk full")
}

type env struct {
	db     *gorm.DB
	repos  *repository.Repositories
	ledger *quota.Ledger
	user   *models.User
}

func newEnv(t *testing.T, free int64) *env {
	t.Helper()
	db, err := database.Open("sqlite://:memory:", false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	repos := repository.NewRepositories(db)
	u, err := models.CreateUser("writer@example.com", "password123", "Writer")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(context.Background(), u))

	return &env{
		db:     db,
		repos:  repos,
		ledger: quota.NewLedger(repos.Usage, entitlements.NewLimits(free, 500)),
		user:   u,
	}
}

func (e *env) seed(t *testing.T, n int, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, e.repos.Usage.Create(context.Background(), &models.UsageRecord{
			UserID: e.user.ID, InputURL: "https://seed.example", GenerationCount: 5, AIModelUsed: "seed", CreatedAt: at,
		}))
	}
}

func (e *env) countRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.UsageRecord{}).Where("user_id = ?", e.user.ID).Count(&n).Error)
	return n
}

func input(u *models.User) Input {
	return Input{
		UserID:      u.ID,
		IsPro:       u.IsPro,
		URL:         "https://shop.example/product",
		ProductName: "Acme Shoes",
		ValueProps:  []string{"light", "durable"},
		BrandVoice:  "energetic",
	}
}

func threeVariations() []copywriter.Variation {
	return []copywriter.Variation{
		{Headline: "h1", Body: "b1", CTA: "c1", Strategy: "s1"},
		{Headline: "h2", Body: "b2", CTA: "c2", Strategy: "s2"},
		{Headline: "h3", Body: "b3", CTA: "c3", Strategy: "s3"},
	}
}

func TestRunSuccessWritesOneRecord(t *testing.T) {
	e := newEnv(t, 10)
	fetcher := &stubFetcher{text: strings.Repeat("p", 1200), ok: true}
	gen := &stubGenerator{out: threeVariations()}
	w := NewWorkflow(fetcher, gen, e.ledger, e.repos.Usage, metrics.NewMetrics()).WithClock(func() time.Time { return fixedNow })

	res, err := w.Run(context.Background(), input(e.user))
	require.NoError(t, err)

	require.Len(t, res.Variations, 3)
	require.NotNil(t, res.ScrapedContent)
	assert.Len(t, *res.ScrapedContent, MaxResponseContextRunes)
	assert.Len(t, gen.last.Context, copywriter.MaxPromptContextRunes)
	assert.Equal(t, "Acme Shoes", gen.last.ProductName)

	var rec models.UsageRecord
	require.NoError(t, e.db.Where("user_id = ?", e.user.ID).First(&rec).Error)
	assert.Equal(t, 3, rec.GenerationCount)
	assert.Equal(t, "stub-model", rec.AIModelUsed)
	assert.Equal(t, "https://shop.example/product", rec.InputURL)
	assert.True(t, fixedNow.Equal(rec.CreatedAt))
	assert.Equal(t, int64(1), e.countRows(t))
}

// Scenario A
func TestRunRemainingAfterFirstGeneration(t *testing.T) {
	e := newEnv(t, 10)
	w := NewWorkflow(&stubFetcher{}, &stubGenerator{out: threeVariations()}, e.ledger, e.repos.Usage, nil).
		WithClock(func() time.Time { return fixedNow })

	_, err := w.Run(context.Background(), input(e.user))
	require.NoError(t, err)

	snap, err := e.ledger.Snapshot(context.Background(), e.user.ID, false, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.TotalGenerations)
	assert.Equal(t, int64(9), snap.Remaining)
}

// Scenario B
func TestRunQuotaExceededMakesNoCalls(t *testing.T) {
	e := newEnv(t, 3)
	e.seed(t, 3, fixedNow.AddDate(0, 0, -1))
	e.seed(t, 4, fixedNow.AddDate(0, -1, 0))

	fetcher := &stubFetcher{text: "x", ok: true}
	gen := &stubGenerator{out: threeVariations()}
	w := NewWorkflow(fetcher, gen, e.ledger, e.repos.Usage, nil).WithClock(func() time.Time { return fixedNow })

	_, err := w.Run(context.Background(), input(e.user))
	require.Error(t, err)

	var qe *QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int64(3), qe.Limit)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Zero(t, fetcher.calls)
	assert.Zero(t, gen.calls)
	assert.Equal(t, int64(7), e.countRows(t))
}

func TestRunPreviousMonthDoesNotCount(t *testing.T) {
	e := newEnv(t, 2)
	e.seed(t, 5, time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC))

	w := NewWorkflow(&stubFetcher{}, &stubGenerator{out: threeVariations()}, e.ledger, e.repos.Usage, nil).
		WithClock(func() time.Time { return fixedNow })

	_, err := w.Run(context.Background(), input(e.user))
	assert.NoError(t, err)
}

// Scenario C
func TestRunContextFetchTimeoutStillGenerates(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	e := newEnv(t, 10)
	gen := &stubGenerator{out: threeVariations()}
	w := NewWorkflow(scraper.NewClient("", 50*time.Millisecond), gen, e.ledger, e.repos.Usage, nil).
		WithClock(func() time.Time { return fixedNow })

	in := input(e.user)
	in.URL = slow.URL
	res, err := w.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, gen.last.Context)
	assert.Nil(t, res.ScrapedContent)
	assert.Equal(t, int64(1), e.countRows(t))
}

// Scenario D
func TestRunUnparsableModelOutputUsesFallback(t *testing.T) {
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "Sorry, no JSON today."}}},
			}},
		})
	}))
	defer model.Close()

	e := newEnv(t, 10)
	gen := copywriter.NewGeminiClient("k", "gemini-test", model.URL, time.Second)
	w := NewWorkflow(&stubFetcher{}, gen, e.ledger, e.repos.Usage, nil).WithClock(func() time.Time { return fixedNow })

	res, err := w.Run(context.Background(), input(e.user))
	require.NoError(t, err)
	require.Len(t, res.Variations, 1)
	assert.Equal(t, copywriter.FallbackStrategy, res.Variations[0].Strategy)

	var rec models.UsageRecord
	require.NoError(t, e.db.Where("user_id = ?", e.user.ID).First(&rec).Error)
	assert.Equal(t, 1, rec.GenerationCount)
	assert.Equal(t, "gemini-test", rec.AIModelUsed)
}

func TestRunGenerationFailureRecordsNothing(t *testing.T) {
	e := newEnv(t, 10)
	cause := errors.New("upstream 503")
	w := NewWorkflow(&stubFetcher{text: "ctx", ok: true}, &stubGenerator{err: cause}, e.ledger, e.repos.Usage, nil).
		WithClock(func() time.Time { return fixedNow })

	_, err := w.Run(context.Background(), input(e.user))
	require.Error(t, err)

	var fe *FailedError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to generate ad copy: upstream 503", err.Error())
	assert.Zero(t, e.countRows(t))
}

func TestRunRecordFailureFailsRequest(t *testing.T) {
	e := newEnv(t, 10)
	w := NewWorkflow(&stubFetcher{}, &stubGenerator{out: threeVariations()}, e.ledger, failingRecorder{}, nil).
		WithClock(func() time.Time { return fixedNow })

	res, err := w.Run(context.Background(), input(e.user))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunProUserUsesProLimit(t *testing.T) {
	e := newEnv(t, 1)
	e.seed(t, 1, fixedNow)

	w := NewWorkflow(&stubFetcher{}, &stubGenerator{out: threeVariations()}, e.ledger, e.repos.Usage, nil).
		WithClock(func() time.Time { return fixedNow })

	in := input(e.user)
	_, err := w.Run(context.Background(), in)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	in.IsPro = true
	_, err = w.Run(context.Background(), in)
	assert.NoError(t, err)
}
