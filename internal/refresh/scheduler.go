// Package refresh runs the periodic auto-refresh timer.
package refresh

import (
	"sync"
	"time"
)

// DefaultInterval is used when a non-positive interval is configured.
const DefaultInterval = 5 * time.Minute

// Ticker is the subset of *time.Ticker the scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// SystemClock is the wall clock.
type SystemClock struct{}

// NewTicker wraps time.NewTicker.
func (SystemClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Scheduler calls fire on every tick while enabled. At most one ticker is
// armed at any time.
type Scheduler struct {
	clock    Clock
	interval time.Duration
	fire     func()

	mu      sync.Mutex
	enabled bool
	ticker  Ticker
	done    chan struct{}
}

// NewScheduler returns a stopped, disabled Scheduler.
func NewScheduler(clock Clock, interval time.Duration, fire func()) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{clock: clock, interval: interval, fire: fire}
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Start replaces any armed ticker with a new one and marks the scheduler
// enabled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.enabled = true

	t := s.clock.NewTicker(s.interval)
	done := make(chan struct{})
	s.ticker = t
	s.done = done
	go s.run(t, done)
}

// Stop disarms the ticker. Calling Stop when stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.stopLocked()
}

// Toggle enables or disables auto-refresh and reports the new state.
func (s *Scheduler) Toggle(on bool) bool {
	if on {
		s.Start()
	} else {
		s.Stop()
	}
	return on
}

// Enabled reports whether ticks currently trigger fire.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Running reports whether a ticker is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

func (s *Scheduler) stopLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil
}

func (s *Scheduler) run(t Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-t.C():
			if s.Enabled() {
				s.fire()
			}
		}
	}
}
