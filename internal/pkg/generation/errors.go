package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded matches any *QuotaExceededError via errors.Is.
	ErrQuotaExceeded = errors.New("monthly generation limit reached")
	// ErrGenerationFailed matches any *FailedError via errors.Is.
	ErrGenerationFailed = errors.New("failed to generate ad copy")
)

// QuotaExceededError is returned before any external call when the user has
// used up the month.
type QuotaExceededError struct {
	Limit int64
	Used  int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Monthly generation limit reached (%d). Upgrade to Pro for more generations.", e.Limit)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// FailedError wraps an error from the model call.
type FailedError struct {
	Cause error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("Failed to generate ad copy: %v", e.Cause)
}

func (e *FailedError) Unwrap() error {
	return e.Cause
}

func (e *FailedError) Is(target error) bool {
	return target == ErrGenerationFailed
}
