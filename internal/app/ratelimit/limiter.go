// Package ratelimit enforces a fixed request quota per client and endpoint
// within a fixed time window.
//
// The limiter knows nothing about HTTP; it only returns a decision. A request
// that is rejected still counts towards the current window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/mrops-br/products-crud-api/internal/domain"
)

type recordKey struct {
	client   string
	endpoint string
}

// record is the per (client, endpoint) counter for the current window
type record struct {
	count       int
	windowStart time.Time
}

// Limiter is a process-wide fixed-window counter. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	records map[recordKey]*record
	quota   int
	window  time.Duration
	now     func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter allows quota requests per window for each client and endpoint
func NewLimiter(quota int, window time.Duration, opts ...Option) (*Limiter, error) {
	if quota <= 0 || window <= 0 {
		return nil, domain.ErrInvalidLimiterConfig
	}
	l := &Limiter{
		records: make(map[recordKey]*record),
		quota:   quota,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Quota() int            { return l.quota }
func (l *Limiter) Window() time.Duration { return l.window }

// Check counts one request from client against endpoint and decides whether it
// may proceed
func (l *Limiter) Check(client, endpoint string) domain.Decision {
	now := l.now()
	key := recordKey{client: client, endpoint: endpoint}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok {
		rec = &record{windowStart: now}
		l.records[key] = rec
	} else if now.Sub(rec.windowStart) >= l.window {
		rec.count = 0
		rec.windowStart = now
	}

	rec.count++

	if rec.count > l.quota {
		return domain.Decision{
			Allowed:    false,
			Limit:      l.quota,
			Remaining:  0,
			RetryAfter: rec.windowStart.Add(l.window).Sub(now),
		}
	}
	return domain.Decision{
		Allowed:   true,
		Limit:     l.quota,
		Remaining: l.quota - rec.count,
	}
}

// Sweep evicts records whose window has elapsed. Those would be reset on the
// next request anyway, so dropping them changes no decision.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for k, rec := range l.records {
		if now.Sub(rec.windowStart) >= l.window {
			delete(l.records, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked records
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// StartJanitor sweeps every interval until ctx is done
func (l *Limiter) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}
