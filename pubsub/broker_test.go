package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestBrokerFlow(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := broker.Subscribe(ctx)

	received := make(chan string, 1)
	go func() {
		for event := range events {
			if event.Type == CreatedEvent {
				received <- event.Payload
			}
		}
	}()

	const testMsg = "hello pubsub"
	broker.Publish(CreatedEvent, testMsg)

	select {
	case msg := <-received:
		if msg != testMsg {
			t.Errorf("expected %s, got %s", testMsg, msg)
		}
	case <-time.After(1 * time.Second):
		t.Error("timed out waiting for event")
	}
}

func TestAutoUnsubscribe(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())

	_ = broker.Subscribe(ctx)
	if broker.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", broker.SubscriberCount())
	}

	cancel()

	// Give the cleanup goroutine a moment to run.
	time.Sleep(10 * time.Millisecond)

	if broker.SubscriberCount() != 0 {
		t.Errorf("subscriber not cleaned up after cancel, count: %d", broker.SubscriberCount())
	}
}

func TestNonBlockingPublish(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Shutdown()

	ctx := context.Background()

	// A subscriber that never reads: its buffer fills up and overflowing
	// events are dropped instead of blocking the publisher.
	_ = broker.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < bufferSize*2; i++ {
			broker.Publish(CreatedEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestPublishAfterShutdown(t *testing.T) {
	broker := NewBroker[string]()
	events := broker.Subscribe(context.Background())

	broker.Shutdown()
	broker.Publish(CreatedEvent, "late")

	if _, ok := <-events; ok {
		t.Error("expected closed channel after shutdown")
	}
}
