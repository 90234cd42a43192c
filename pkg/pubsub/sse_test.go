package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestEventBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	// Buffer size 3, replay all
	pub.ConfigureTopic("test", TopicConfig{
		BufferSize: 3,
		ReplayAll:  true,
	})

	for i := 1; i <= 5; i++ {
		err := pub.Publish("test", "event", map[string]int{"num": i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive last 3 events (3, 4, 5)
	receivedCount := 0
	for receivedCount < 3 {
		select {
		case event := <-sub.Events():
			receivedCount++
			expectedVersion := receivedCount + 2
			if event.Version != expectedVersion {
				t.Errorf("Expected version %d, got %d", expectedVersion, event.Version)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for event %d", receivedCount+1)
		}
	}
}

func TestReplayLastOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	pub.ConfigureTopic("test", TopicConfig{
		BufferSize: 5,
		ReplayAll:  false,
	})

	for i := 1; i <= 3; i++ {
		err := pub.Publish("test", "event", map[string]int{"num": i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Should receive only the newest event (version 3)
	select {
	case event := <-sub.Events():
		if event.Version != 3 {
			t.Errorf("Expected version 3, got %d", event.Version)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected extra event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
		// Good, no extra events
	}
}

func TestNoBuffer(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	pub.ConfigureTopic("test", TopicConfig{
		BufferSize: 0,
		ReplayAll:  false,
	})

	for i := 1; i <= 3; i++ {
		err := pub.Publish("test", "event", map[string]int{"num": i})
		if err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	sub, err := pub.Subscribe(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// No events were buffered, so nothing should replay
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected replayed event version %d", event.Version)
	case <-time.After(50 * time.Millisecond):
	}

	// A new publish still reaches the live subscriber
	err = pub.Publish("test", "event", map[string]int{"num": 4})
	if err != nil {
		t.Fatalf("Failed to publish new event: %v", err)
	}

	select {
	case event := <-sub.Events():
		if event.Version != 4 {
			t.Errorf("Expected version 4, got %d", event.Version)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for new event")
	}
}

func TestClosedPublisherRejectsWork(t *testing.T) {
	pub := NewSSEPublisher()
	pub.Close()

	if err := pub.Publish("test", "event", nil); err == nil {
		t.Error("Publish on closed publisher should fail")
	}
	if _, err := pub.Subscribe(context.Background(), "test"); err == nil {
		t.Error("Subscribe on closed publisher should fail")
	}
}
