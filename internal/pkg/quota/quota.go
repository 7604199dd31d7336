package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuelReschke/AdEngine/internal/pkg/entitlements"
)

// Counter is the ledger query the quota needs.
type Counter interface {
	CountInRange(ctx context.Context, userID uint, from, to time.Time) (int64, error)
}

// Ledger answers read-only questions about a user's monthly usage.
type Ledger struct {
	counter Counter
	limits  entitlements.Limits
}

func NewLedger(counter Counter, limits entitlements.Limits) *Ledger {
	return &Ledger{counter: counter, limits: limits}
}

// MonthBounds returns [start of month, start of next month) in UTC for the
// calendar month containing now.
func MonthBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// CountCurrentMonth counts the user's usage rows in the UTC month of now.
func (l *Ledger) CountCurrentMonth(ctx context.Context, userID uint, now time.Time) (int64, error) {
	from, to := MonthBounds(now)
	n, err := l.counter.CountInRange(ctx, userID, from, to)
	if err != nil {
		return 0, fmt.Errorf("count usage for user %d: %w", userID, err)
	}
	return n, nil
}

func (l *Ledger) LimitFor(isPro bool) int64 {
	return l.limits.LimitFor(isPro)
}

// Snapshot is the live usage view returned to clients.
type Snapshot struct {
	TotalGenerations int64 `json:"total_generations"`
	Limit            int64 `json:"limit"`
	Remaining        int64 `json:"remaining"`
	IsPro            bool  `json:"is_pro"`
}

// Snapshot computes count, limit and remaining for the month of now.
func (l *Ledger) Snapshot(ctx context.Context, userID uint, isPro bool, now time.Time) (Snapshot, error) {
	count, err := l.CountCurrentMonth(ctx, userID, now)
	if err != nil {
		return Snapshot{}, err
	}
	limit := l.LimitFor(isPro)
	return Snapshot{
		TotalGenerations: count,
		Limit:            limit,
		Remaining:        entitlements.Remaining(count, limit),
		IsPro:            isPro,
	}, nil
}
