package domain

import (
	"context"
	"time"
)

// Decision is the outcome of a single rate-limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long until the current window resets. Zero when allowed.
	RetryAfter time.Duration
}

// StatsEvent records one limiter decision
type StatsEvent struct {
	Key      string
	Endpoint string
	Allowed  bool
	At       time.Time
}

// StatsStore persists limiter decisions. Implementations are best effort:
// callers log errors and never fail a request because of them.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
