// Package ratelimit implements sliding-window admission control with two
// interchangeable backends: a shared Redis sorted-set window and an in-process
// fallback. The external contract is identical for both.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	TotalHits int
}

// Limiter admits or rejects one action for an identifier under a trailing
// window. Implementations must be safe for concurrent use.
type Limiter interface {
	// Admit never reports more admissions than max within any trailing
	// window, measured from the time of the check.
	Admit(ctx context.Context, id string, max int, window time.Duration) (Decision, error)

	// Reset clears all admission records for the identifier.
	Reset(ctx context.Context, id string) error
}

// RetryAfter converts a rejection into whole seconds a client should wait,
// always at least 1.
func (d Decision) RetryAfter(now time.Time) int {
	secs := int(d.ResetAt.Sub(now).Seconds()) + 1
	if secs < 1 {
		secs = 1
	}
	return secs
}
