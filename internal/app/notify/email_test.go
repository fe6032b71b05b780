package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_SendsInBackground(t *testing.T) {
	d := NewDispatcher(1000, time.Millisecond, discardLogger())
	defer d.Close()

	task := d.Enqueue("user@example.com")
	if task.ID == "" || task.Recipient != "user@example.com" {
		t.Fatalf("unexpected task: %+v", task)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if d.Sent() != 1 {
		t.Fatalf("expected 1 sent, got %d", d.Sent())
	}
}

func TestDispatcher_CloseDropsPendingTasks(t *testing.T) {
	d := NewDispatcher(1000, time.Hour, discardLogger())

	d.Enqueue("a@example.com")
	d.Enqueue("b@example.com")

	start := time.Now()
	d.Close()
	if time.Since(start) > time.Second {
		t.Fatalf("expected close to abandon pending sends promptly")
	}
	if d.Sent() != 0 {
		t.Fatalf("expected no sends, got %d", d.Sent())
	}
}

func TestDispatcher_TaskIDsAreUnique(t *testing.T) {
	d := NewDispatcher(1000, time.Hour, discardLogger())
	defer d.Close()

	a := d.Enqueue("a@example.com")
	b := d.Enqueue("a@example.com")
	if a.ID == b.ID {
		t.Fatalf("expected distinct task ids")
	}
}
