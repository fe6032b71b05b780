package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mrops-br/products-crud-api/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l, err := NewLimiter(5, time.Minute, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return l, clock
}

func TestNewLimiter_ExposesConfiguration(t *testing.T) {
	l, _ := newTestLimiter(t)
	if l.Quota() != 5 || l.Window() != time.Minute {
		t.Fatalf("unexpected configuration %d/%s", l.Quota(), l.Window())
	}
}

func TestNewLimiter_RejectsNonPositiveConfig(t *testing.T) {
	if _, err := NewLimiter(0, time.Minute); !errors.Is(err, domain.ErrInvalidLimiterConfig) {
		t.Fatalf("expected ErrInvalidLimiterConfig for zero quota, got %v", err)
	}
	if _, err := NewLimiter(5, 0); !errors.Is(err, domain.ErrInvalidLimiterConfig) {
		t.Fatalf("expected ErrInvalidLimiterConfig for zero window, got %v", err)
	}
}

func TestLimiter_SixthRequestInWindowIsRejected(t *testing.T) {
	l, clock := newTestLimiter(t)

	for i := 1; i <= 5; i++ {
		dec := l.Check("10.0.0.1", "products.create")
		if !dec.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if dec.Remaining != 5-i {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 5-i, dec.Remaining)
		}
		clock.Advance(time.Second)
	}

	dec := l.Check("10.0.0.1", "products.create")
	if dec.Allowed {
		t.Fatalf("expected 6th request to be rejected")
	}
	if dec.RetryAfter != 55*time.Second {
		t.Fatalf("expected RetryAfter=55s, got %s", dec.RetryAfter)
	}
}

func TestLimiter_WindowElapseAcceptsAgain(t *testing.T) {
	l, clock := newTestLimiter(t)

	for i := 0; i < 6; i++ {
		l.Check("c", "e")
	}
	if l.Check("c", "e").Allowed {
		t.Fatalf("expected rejection inside the window")
	}

	clock.Advance(time.Minute)
	dec := l.Check("c", "e")
	if !dec.Allowed {
		t.Fatalf("expected request after window to be accepted")
	}
	if dec.Remaining != 4 {
		t.Fatalf("expected fresh window, remaining=%d", dec.Remaining)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		l.Check("a", "products.list")
	}
	if l.Check("a", "products.list").Allowed {
		t.Fatalf("expected client a to be limited on products.list")
	}
	if !l.Check("a", "products.get").Allowed {
		t.Fatalf("expected other endpoint for same client to be allowed")
	}
	if !l.Check("b", "products.list").Allowed {
		t.Fatalf("expected other client on same endpoint to be allowed")
	}
}

func TestLimiter_ConcurrentChecksNeverOveradmit(t *testing.T) {
	l, err := NewLimiter(50, time.Hour)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("c", "e").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Fatalf("expected exactly 50 allowed, got %d", allowed)
	}
}

func TestLimiter_SweepEvictsElapsedRecords(t *testing.T) {
	l, clock := newTestLimiter(t)

	l.Check("old", "e")
	clock.Advance(30 * time.Second)
	l.Check("new", "e")
	clock.Advance(30 * time.Second)

	if removed := l.Sweep(); removed != 1 {
		t.Fatalf("expected 1 record removed, got %d", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 record left, got %d", l.Len())
	}
}

func TestLimiter_JanitorStopsWithContext(t *testing.T) {
	l, err := NewLimiter(1, time.Millisecond)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Check("c", "e")
	l.StartJanitor(ctx, 2*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for l.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected janitor to evict the elapsed record")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
