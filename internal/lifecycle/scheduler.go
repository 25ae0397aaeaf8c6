// ABOUTME: Deferred-callback schedulers: loop-posting timers and a manual clock for tests
// ABOUTME: Callbacks always run on the owner's event loop, never on a timer goroutine

package lifecycle

import (
	"cmp"
	"slices"
	"time"
)

// Timer is a cancelable pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Scheduler runs fn after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// LoopScheduler waits on a runtime timer and hands the callback to post,
// which must run it on the event loop.
type LoopScheduler struct {
	post func(func())
}

// NewLoopScheduler returns a scheduler that delivers callbacks through post.
func NewLoopScheduler(post func(func())) *LoopScheduler {
	return &LoopScheduler{post: post}
}

type loopTimer struct {
	t       *time.Timer
	stopped bool
	fired   bool
}

// AfterFunc implements Scheduler.
func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		s.post(func() {
			// Stop may have run on the loop after the timer fired but
			// before this callback was delivered.
			if lt.stopped {
				return
			}
			lt.fired = true
			fn()
		})
	})
	return lt
}

func (lt *loopTimer) Stop() bool {
	if lt.stopped || lt.fired {
		return false
	}
	lt.stopped = true
	lt.t.Stop()
	return true
}

// ManualScheduler is a Scheduler driven by Advance.
type ManualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at   time.Duration
	seq  int
	fn   func()
	done bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	return true
}

// NewManualScheduler returns a scheduler at time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d and runs every callback that falls
// due, in due-time order. Callbacks scheduled while advancing run too when
// they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	end := s.now + d
	for {
		s.timers = slices.DeleteFunc(s.timers, func(t *manualTimer) bool { return t.done })
		if len(s.timers) == 0 {
			break
		}
		next := slices.MinFunc(s.timers, func(a, b *manualTimer) int {
			return cmp.Or(cmp.Compare(a.at, b.at), cmp.Compare(a.seq, b.seq))
		})
		if next.at > end {
			break
		}
		s.now = next.at
		next.done = true
		next.fn()
	}
	s.now = end
}

// Pending returns the number of callbacks still waiting.
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}
