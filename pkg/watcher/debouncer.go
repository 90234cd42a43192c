package watcher

import (
	"context"
	"time"

	"github.com/mheland/notegraph/pkg/logging"
)

// Debouncer batches rapid file system events so a burst of saves triggers a
// single rebuild instead of one per file.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run accumulates events and flushes once input goes quiet, or after
// maxWait if events never stop arriving.
func (d *Debouncer) run(ctx context.Context) {
	accumulated := make(map[ChangeType][]string)
	eventCount := 0

	quiet := time.NewTimer(d.quietPeriod)
	quiet.Stop()
	maxWait := time.NewTimer(d.maxWait)
	maxWait.Stop()
	defer quiet.Stop()
	defer maxWait.Stop()

	flush := func() {
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// Notes first: they carry the link content a rebuild cares about
		if paths := accumulated[ChangeTypeNote]; len(paths) > 0 {
			d.output <- ChangeEvent{
				Type:      ChangeTypeNote,
				Paths:     paths,
				Timestamp: time.Now(),
			}
		}
		if paths := accumulated[ChangeTypeBoard]; len(paths) > 0 {
			d.output <- ChangeEvent{
				Type:      ChangeTypeBoard,
				Paths:     paths,
				Timestamp: time.Now(),
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0

		quiet.Stop()
		maxWait.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			close(d.output)
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				close(d.output)
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			quiet.Reset(d.quietPeriod)

			// Max wait runs from the first event of a burst
			if eventCount == 1 {
				maxWait.Reset(d.maxWait)
			}

		case <-quiet.C:
			flush()

		case <-maxWait.C:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
