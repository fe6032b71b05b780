// Package notify runs simulated email deliveries in the background.
//
// Tasks are detached from the request that queued them and carry no delivery
// guarantee: a task still waiting when the dispatcher closes is dropped.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrops-br/products-crud-api/internal/domain"
	"golang.org/x/time/rate"
)

// Dispatcher paces simulated sends with a token bucket
type Dispatcher struct {
	limiter *rate.Limiter
	delay   time.Duration
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	sent int
}

// NewDispatcher allows sendsPerSecond deliveries, each taking delay
func NewDispatcher(sendsPerSecond float64, delay time.Duration, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		limiter: rate.NewLimiter(rate.Limit(sendsPerSecond), 1),
		delay:   delay,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Enqueue starts a background send to recipient and returns immediately
func (d *Dispatcher) Enqueue(recipient string) domain.EmailTask {
	task := domain.EmailTask{
		ID:         uuid.NewString(),
		Recipient:  recipient,
		EnqueuedAt: time.Now(),
	}

	d.wg.Add(1)
	go d.send(task)

	d.logger.Info("Email queued",
		slog.String("task_id", task.ID),
		slog.String("recipient", task.Recipient),
	)
	return task
}

func (d *Dispatcher) send(task domain.EmailTask) {
	defer d.wg.Done()

	if err := d.limiter.Wait(d.ctx); err != nil {
		d.logger.Warn("Email dropped", slog.String("task_id", task.ID), slog.String("reason", err.Error()))
		return
	}

	select {
	case <-d.ctx.Done():
		d.logger.Warn("Email dropped", slog.String("task_id", task.ID), slog.String("reason", "dispatcher closed"))
		return
	case <-time.After(d.delay):
	}

	d.mu.Lock()
	d.sent++
	d.mu.Unlock()

	d.logger.Info("Email sent",
		slog.String("task_id", task.ID),
		slog.String("recipient", task.Recipient),
		slog.Duration("queued_for", time.Since(task.EnqueuedAt)),
	)
}

// Sent returns how many emails were delivered so far
func (d *Dispatcher) Sent() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent
}

// Wait blocks until every queued task finished or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops pending tasks and waits for their goroutines to exit
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
