package generation

import (
	"context"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/AdEngine/app/models"
	"github.com/ManuelReschke/AdEngine/internal/pkg/copywriter"
	"github.com/ManuelReschke/AdEngine/internal/pkg/entitlements"
	"github.com/ManuelReschke/AdEngine/internal/pkg/metrics"
)

// MaxResponseContextRunes bounds the page text echoed back to the caller.
const MaxResponseContextRunes = 500

// ContextFetcher returns page text, or ok=false when nothing usable was found.
type ContextFetcher interface {
	Fetch(ctx context.Context, url string) (string, bool)
}

type Generator interface {
	Generate(ctx context.Context, req copywriter.Request) ([]copywriter.Variation, error)
	ModelName() string
}

type Ledger interface {
	CountCurrentMonth(ctx context.Context, userID uint, now time.Time) (int64, error)
	LimitFor(isPro bool) int64
}

type UsageRecorder interface {
	Create(ctx context.Context, record *models.UsageRecord) error
}

// Input is one generation request from an authenticated user.
type Input struct {
	UserID      uint
	IsPro       bool
	URL         string
	ProductName string
	ValueProps  []string
	BrandVoice  string
}

type Result struct {
	Variations     []copywriter.Variation `json:"variations"`
	ScrapedContent *string                `json:"scraped_content"`
}

type Workflow struct {
	fetcher   ContextFetcher
	generator Generator
	ledger    Ledger
	usage     UsageRecorder
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewWorkflow(fetcher ContextFetcher, generator Generator, ledger Ledger, usage UsageRecorder, m *metrics.Metrics) *Workflow {
	return &Workflow{
		fetcher:   fetcher,
		generator: generator,
		ledger:    ledger,
		usage:     usage,
		metrics:   m,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin the month.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// Run checks the quota, fetches page context, asks the model for variations
// and appends exactly one usage record. Nothing is recorded unless the model
// call succeeded, and no external call is made once the quota is used up.
func (w *Workflow) Run(ctx context.Context, in Input) (*Result, error) {
	now := w.now().UTC()

	used, err := w.ledger.CountCurrentMonth(ctx, in.UserID, now)
	if err != nil {
		w.metrics.ObserveGeneration("error", 0)
		return nil, err
	}
	limit := w.ledger.LimitFor(in.IsPro)
	if entitlements.Exceeded(used, limit) {
		w.metrics.QuotaRejected(string(entitlements.PlanFor(in.IsPro)))
		w.metrics.ObserveGeneration("quota_exceeded", 0)
		return nil, &QuotaExceededError{Limit: limit, Used: used}
	}

	started := time.Now()

	pageText, ok := w.fetcher.Fetch(ctx, in.URL)
	w.metrics.Scraped(ok)

	variations, err := w.generator.Generate(ctx, copywriter.Request{
		ProductName: in.ProductName,
		ValueProps:  in.ValueProps,
		BrandVoice:  in.BrandVoice,
		Context:     firstRunes(pageText, copywriter.MaxPromptContextRunes),
	})
	if err != nil {
		fiberlog.Errorf("[Generate] Model call failed for user %d: %v", in.UserID, err)
		w.metrics.ObserveGeneration("failed", time.Since(started))
		return nil, &FailedError{Cause: err}
	}
	if len(variations) == 0 {
		w.metrics.ObserveGeneration("failed", time.Since(started))
		return nil, &FailedError{Cause: fmt.Errorf("model returned no variations")}
	}

	record := &models.UsageRecord{
		UserID:          in.UserID,
		InputURL:        in.URL,
		GenerationCount: len(variations),
		AIModelUsed:     w.generator.ModelName(),
		CreatedAt:       now,
	}
	if err := w.usage.Create(ctx, record); err != nil {
		w.metrics.ObserveGeneration("error", time.Since(started))
		return nil, fmt.Errorf("record usage: %w", err)
	}

	w.metrics.ObserveGeneration("success", time.Since(started))

	res := &Result{Variations: variations}
	if ok {
		snippet := firstRunes(pageText, MaxResponseContextRunes)
		res.ScrapedContent = &snippet
	}
	return res, nil
}

func firstRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
