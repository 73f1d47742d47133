package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"docforge/internal/ports"
)

func TestMemoryQueueDeliversPublishedMessages(t *testing.T) {
	q := NewMemoryQueue(4)
	t.Cleanup(q.Close)
	ctx := context.Background()

	var mu sync.Mutex
	var received []string
	unsubscribe, err := q.Subscribe(ctx, func(_ context.Context, msg ports.JobMessage) error {
		mu.Lock()
		received = append(received, msg.JobRef)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	t.Cleanup(func() { _ = unsubscribe() })

	for _, jobRef := range []string{"job#1", "job#2"} {
		if err := q.Publish(ctx, ports.JobMessage{MessageID: jobRef, JobRef: jobRef}); err != nil {
			t.Fatalf("Publish(%s) error = %v", jobRef, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		count := len(received)
		mu.Unlock()
		if count == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("received %d messages, want 2", count)
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0] != "job#1" || received[1] != "job#2" {
		t.Fatalf("received = %v", received)
	}
}

func TestMemoryQueueHandlerErrorDoesNotStopDrain(t *testing.T) {
	q := NewMemoryQueue(4)
	t.Cleanup(q.Close)
	ctx := context.Background()

	var mu sync.Mutex
	var seen int
	unsubscribe, err := q.Subscribe(ctx, func(_ context.Context, msg ports.JobMessage) error {
		mu.Lock()
		seen++
		mu.Unlock()
		if msg.JobRef == "job#1" {
			return context.DeadlineExceeded
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	t.Cleanup(func() { _ = unsubscribe() })

	if err := q.Publish(ctx, ports.JobMessage{JobRef: "job#1"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := q.Publish(ctx, ports.JobMessage{JobRef: "job#2"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		count := seen
		mu.Unlock()
		if count == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("handler saw %d messages, want 2", count)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMemoryQueuePublishAfterCloseFails(t *testing.T) {
	q := NewMemoryQueue(1)
	q.Close()

	if err := q.Publish(context.Background(), ports.JobMessage{JobRef: "job#1"}); err == nil {
		t.Fatalf("Publish() expected error after Close")
	}
}

func TestMemoryQueueRejectsNilHandler(t *testing.T) {
	q := NewMemoryQueue(1)
	t.Cleanup(q.Close)

	if _, err := q.Subscribe(context.Background(), nil); err == nil {
		t.Fatalf("Subscribe(nil) expected error")
	}
}
