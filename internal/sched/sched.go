package sched

import (
	"sync"
	"time"

	"github.com/Carrerajorge/Hola-sub011/internal/logging"
)

// DefaultFrameInterval approximates one display frame at 60fps.
const DefaultFrameInterval = 16 * time.Millisecond

// Throttler coalesces bursts of work into at most one run per frame
// interval. A call during the quiet window replaces any previously pending
// callback, so only the most recent one runs. Callbacks must recompute from
// current state; superseded intermediate calls are dropped, not queued.
type Throttler struct {
	mu       sync.Mutex
	interval time.Duration
	lastRun  time.Time
	pending  *time.Timer
	gen      uint64
}

// NewThrottler creates a throttler. A non-positive interval uses
// DefaultFrameInterval.
func NewThrottler(interval time.Duration) *Throttler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Throttler{interval: interval}
}

// Do runs fn immediately when the interval has elapsed since the last run,
// and otherwise schedules it for the end of the current window, dropping
// any callback already waiting there.
func (t *Throttler) Do(fn func()) {
	t.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(t.lastRun)

	if elapsed >= t.interval {
		t.lastRun = now
		t.gen++
		if t.pending != nil {
			t.pending.Stop()
			t.pending = nil
		}
		t.mu.Unlock()
		fn()
		return
	}

	if t.pending != nil {
		t.pending.Stop()
	}
	t.gen++
	gen := t.gen
	t.pending = time.AfterFunc(t.interval-elapsed, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.pending = nil
		t.lastRun = time.Now()
		t.mu.Unlock()
		fn()
	})
	t.mu.Unlock()
}

// Cancel drops any pending callback. Call during teardown so stale closures
// cannot fire afterwards.
func (t *Throttler) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Scheduler batches callbacks and runs each batch on a frame boundary in
// FIFO order. A panicking callback is logged and does not prevent the rest
// of its batch from running. Work scheduled while a batch is executing
// lands in the next frame.
type Scheduler struct {
	mu       sync.Mutex
	interval time.Duration
	queue    []func()
	timer    *time.Timer
	flushing bool
	gen      uint64
}

// NewScheduler creates a scheduler. A non-positive interval uses
// DefaultFrameInterval.
func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Scheduler{interval: interval}
}

// Schedule queues fn for the next frame flush, arming the frame timer when
// none is pending and no flush is in progress.
func (s *Scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
	if s.timer == nil && !s.flushing {
		s.arm()
	}
}

// arm starts the frame timer. Caller must hold the lock.
func (s *Scheduler) arm() {
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.interval, func() { s.flush(gen) })
}

func (s *Scheduler) flush(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.flushing = true
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range batch {
		runIsolated(fn)
	}

	s.mu.Lock()
	s.flushing = false
	if len(s.queue) > 0 && s.timer == nil {
		s.arm()
	}
	s.mu.Unlock()
}

func runIsolated(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Debug.Printf("[Scheduler] recovered callback panic: %v", r)
		}
	}()
	fn()
}

// Cancel stops the pending frame and drops every queued callback.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.queue = nil
}
