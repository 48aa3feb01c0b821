// Package clock provides an injectable wall-clock and a periodic timer
// capability, so time-driven logic stays deterministic under test.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Interval owns one periodic callback schedule. Start always cancels
// any existing schedule before arming a new one, and Stop is
// idempotent, so a caller can never leak a second ticker.
type Interval struct {
	mu   sync.Mutex
	stop chan struct{}
}

// NewInterval returns an idle Interval.
func NewInterval() *Interval {
	return &Interval{}
}

// Start schedules fn to run every period until Stop is called. An
// already-armed schedule is cancelled first.
func (i *Interval) Start(period time.Duration, fn func()) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.stop != nil {
		close(i.stop)
	}
	stop := make(chan struct{})
	i.stop = stop

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Stop cancels the scheduled callback, if any.
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.stop != nil {
		close(i.stop)
		i.stop = nil
	}
}

// Running reports whether a schedule is currently armed.
func (i *Interval) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stop != nil
}
