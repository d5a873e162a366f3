package sched

import (
	"sync"
	"testing"
	"time"
)

// recorder collects callback names in execution order.
type recorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *recorder) mark(name string) func() {
	return func() {
		r.mu.Lock()
		r.runs = append(r.runs, name)
		r.mu.Unlock()
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

func TestThrottlerRunsImmediatelyWhenIdle(t *testing.T) {
	th := NewThrottler(50 * time.Millisecond)
	defer th.Cancel()

	var rec recorder
	th.Do(rec.mark("a"))

	// The idle path is synchronous
	if got := rec.snapshot(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected immediate run, got %v", got)
	}
}

func TestThrottlerLastWriteWins(t *testing.T) {
	th := NewThrottler(80 * time.Millisecond)
	defer th.Cancel()

	var rec recorder
	th.Do(rec.mark("a")) // immediate
	th.Do(rec.mark("b")) // pending, then superseded
	th.Do(rec.mark("c")) // replaces b

	time.Sleep(300 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("expected [a c], got %v", got)
	}
}

func TestThrottlerCancelDropsPending(t *testing.T) {
	th := NewThrottler(80 * time.Millisecond)

	var rec recorder
	th.Do(rec.mark("a"))
	th.Do(rec.mark("b"))
	th.Cancel()

	time.Sleep(300 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("expected only [a], got %v", got)
	}
}

func TestThrottlerResumesAfterWindow(t *testing.T) {
	th := NewThrottler(50 * time.Millisecond)
	defer th.Cancel()

	var rec recorder
	th.Do(rec.mark("a"))
	time.Sleep(150 * time.Millisecond)
	th.Do(rec.mark("b"))

	if got := rec.snapshot(); len(got) != 2 {
		t.Errorf("expected both immediate runs, got %v", got)
	}
}

func TestSchedulerFlushesFIFO(t *testing.T) {
	s := NewScheduler(30 * time.Millisecond)
	defer s.Cancel()

	var rec recorder
	s.Schedule(rec.mark("1"))
	s.Schedule(rec.mark("2"))
	s.Schedule(rec.mark("3"))

	time.Sleep(200 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 3 || got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Errorf("expected FIFO [1 2 3], got %v", got)
	}
}

func TestSchedulerIsolatesPanics(t *testing.T) {
	s := NewScheduler(30 * time.Millisecond)
	defer s.Cancel()

	var rec recorder
	s.Schedule(func() { panic("boom") })
	s.Schedule(rec.mark("survivor"))

	time.Sleep(200 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 || got[0] != "survivor" {
		t.Errorf("expected the batch to continue past the panic, got %v", got)
	}
}

func TestSchedulerRunsWorkScheduledDuringFlush(t *testing.T) {
	s := NewScheduler(30 * time.Millisecond)
	defer s.Cancel()

	var rec recorder
	s.Schedule(func() {
		rec.mark("first")()
		// Arrives mid-flush, must land in a later frame
		s.Schedule(rec.mark("second"))
	})

	time.Sleep(300 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("expected [first second], got %v", got)
	}
}

func TestSchedulerCancelDropsQueue(t *testing.T) {
	s := NewScheduler(50 * time.Millisecond)

	var rec recorder
	s.Schedule(rec.mark("never"))
	s.Cancel()

	time.Sleep(200 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("expected nothing to run after Cancel, got %v", got)
	}
}

func TestSchedulerConcurrentSchedule(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Cancel()

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Schedule(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 400 {
		t.Errorf("expected all 400 callbacks to run, got %d", count)
	}
}
