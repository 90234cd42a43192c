package watcher

import (
	"context"
	"testing"
	"time"
)

func TestDebouncerBatchesBurst(t *testing.T) {
	input := make(chan ChangeEvent, 10)
	d := NewDebouncer(input, 20*time.Millisecond, 500*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// A burst of single-file saves
	for _, path := range []string{"a.md", "b.md", "c.md"} {
		input <- ChangeEvent{Type: ChangeTypeNote, Paths: []string{path}, Timestamp: time.Now()}
	}

	select {
	case event := <-d.Output():
		if event.Type != ChangeTypeNote {
			t.Errorf("Expected note change, got %v", event.Type)
		}
		if len(event.Paths) != 3 {
			t.Errorf("Expected 3 batched paths, got %v", event.Paths)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for debounced event")
	}

	// The batch was flushed, so nothing else should arrive
	select {
	case event := <-d.Output():
		t.Errorf("Received unexpected second event: %v", event.Paths)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 100*time.Millisecond, 150*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// Keep events arriving faster than the quiet period so only the max
	// wait timer can trigger a flush
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case input <- ChangeEvent{Type: ChangeTypeNote, Paths: []string{"busy.md"}, Timestamp: time.Now()}:
				case <-stop:
					return
				}
			}
		}
	}()
	defer close(stop)

	select {
	case event := <-d.Output():
		if len(event.Paths) == 0 {
			t.Error("Expected accumulated paths in max wait flush")
		}
	case <-time.After(time.Second):
		t.Fatal("Max wait never flushed under sustained events")
	}
}

func TestDebouncerSeparatesTypes(t *testing.T) {
	input := make(chan ChangeEvent, 10)
	d := NewDebouncer(input, 20*time.Millisecond, 500*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeBoard, Paths: []string{"plan.canvas"}, Timestamp: time.Now()}
	input <- ChangeEvent{Type: ChangeTypeNote, Paths: []string{"a.md"}, Timestamp: time.Now()}

	// Notes flush before boards regardless of arrival order
	expected := []ChangeType{ChangeTypeNote, ChangeTypeBoard}
	for _, want := range expected {
		select {
		case event := <-d.Output():
			if event.Type != want {
				t.Errorf("Expected change type %v, got %v", want, event.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for %v event", want)
		}
	}
}

func TestDebouncerFlushesOnCancel(t *testing.T) {
	input := make(chan ChangeEvent, 10)
	d := NewDebouncer(input, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	input <- ChangeEvent{Type: ChangeTypeNote, Paths: []string{"pending.md"}, Timestamp: time.Now()}

	// Give the debouncer a moment to accumulate, then cancel
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case event, ok := <-d.Output():
		if !ok {
			t.Fatal("Output closed without flushing pending events")
		}
		if len(event.Paths) != 1 || event.Paths[0] != "pending.md" {
			t.Errorf("Expected pending.md flush, got %v", event.Paths)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for cancel flush")
	}
}
