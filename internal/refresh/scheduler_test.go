package refresh

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()               { f.stopped.Store(true) }

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
	periods []time.Duration
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	c.periods = append(c.periods, d)
	return t
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// waitFor polls cond for up to a second.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSchedulerFiresOnTick(t *testing.T) {
	clock := &fakeClock{}
	var fired atomic.Int32
	s := NewScheduler(clock, time.Minute, func() { fired.Add(1) })

	if s.Running() || s.Enabled() {
		t.Fatal("new scheduler should be stopped")
	}
	s.Start()
	if !s.Running() || !s.Enabled() {
		t.Fatal("Start should arm and enable")
	}
	if clock.periods[0] != time.Minute {
		t.Errorf("ticker period = %v, want 1m", clock.periods[0])
	}

	clock.last().c <- time.Now()
	clock.last().c <- time.Now()
	waitFor(t, func() bool { return fired.Load() == 2 })
	s.Stop()
}

func TestSchedulerStartReplacesTicker(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, time.Minute, func() {})

	s.Start()
	first := clock.last()
	s.Start()
	if clock.count() != 2 {
		t.Fatalf("tickers created = %d, want 2", clock.count())
	}
	if !first.stopped.Load() {
		t.Error("restarting should stop the previous ticker")
	}
	s.Stop()
	if !clock.last().stopped.Load() {
		t.Error("Stop should stop the active ticker")
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := NewScheduler(&fakeClock{}, time.Minute, func() {})
	s.Stop()
	s.Start()
	s.Stop()
	s.Stop()
	if s.Running() || s.Enabled() {
		t.Error("scheduler should be stopped")
	}
}

func TestSchedulerToggle(t *testing.T) {
	clock := &fakeClock{}
	var fired atomic.Int32
	s := NewScheduler(clock, time.Minute, func() { fired.Add(1) })

	if on := s.Toggle(true); !on || !s.Running() {
		t.Fatal("Toggle(true) should start")
	}
	ticker := clock.last()
	if on := s.Toggle(false); on || s.Running() || s.Enabled() {
		t.Fatal("Toggle(false) should stop")
	}

	// A late tick never fires a disabled scheduler.
	select {
	case ticker.c <- time.Now():
	case <-time.After(20 * time.Millisecond):
	}
	time.Sleep(10 * time.Millisecond)
	if fired.Load() != 0 {
		t.Errorf("fired = %d, want 0", fired.Load())
	}
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(&fakeClock{}, 0, func() {})
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval = %v, want %v", s.Interval(), DefaultInterval)
	}
}
