package app

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// TimerScheduler runs callbacks on wall-clock timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// StepScheduler is a virtual clock. Callbacks only run from Advance, on the caller's
// goroutine, in due order. Match loops drive it once per tick.
type StepScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*stepTask
}

type stepTask struct {
	due  time.Duration
	seq  uint64
	fn   func()
	done bool
	s    *StepScheduler
}

func (t *stepTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.s.remove(t)
	return true
}

// NewStepScheduler returns a virtual clock at zero.
func NewStepScheduler() *StepScheduler {
	return &StepScheduler{}
}

func (s *StepScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &stepTask{due: s.now + d, seq: s.seq, fn: fn, s: s}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every callback that falls due,
// including ones scheduled by callbacks during the advance. It returns how many ran.
func (s *StepScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	ran := 0
	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return ran
		}
		next.done = true
		s.remove(next)
		if next.due > s.now {
			s.now = next.due
		}
		s.mu.Unlock()

		next.fn()
		ran++
	}
}

// Now returns the virtual time elapsed since creation.
func (s *StepScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of callbacks waiting to run.
func (s *StepScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *StepScheduler) nextDue(limit time.Duration) *stepTask {
	var best *stepTask
	for _, t := range s.tasks {
		if t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *StepScheduler) remove(t *stepTask) {
	for i, x := range s.tasks {
		if x == t {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}
