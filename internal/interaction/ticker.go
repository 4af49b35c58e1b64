package interaction

import (
	"context"
	"sync"
	"time"
)

// Ticker drives the frame loop. Implementations call fn with the frame time
// until Stop is called or ctx is done.
type Ticker interface {
	Start(ctx context.Context, fn func(time.Time))
	Stop()
}

// FrameTicker is a Ticker backed by time.Ticker.
type FrameTicker struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewFrameTicker creates a ticker firing fps times per second.
func NewFrameTicker(fps int) *FrameTicker {
	if fps <= 0 {
		fps = 30
	}
	return &FrameTicker{interval: time.Second / time.Duration(fps)}
}

// Start begins ticking in a new goroutine. Starting a running ticker is a no-op.
func (t *FrameTicker) Start(ctx context.Context, fn func(time.Time)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case now := <-ticker.C:
				fn(now)
			}
		}
	}(t.stop, t.done)
}

// Stop halts the ticker and waits for the loop to exit.
func (t *FrameTicker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}
