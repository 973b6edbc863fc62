// Package timer provides frame-driven deferred callbacks. Time only moves
// when Advance is called from the game loop, so every cooldown in the game is
// deterministic under test.
package timer

import (
	"sort"
	"time"
)

type task struct {
	due time.Duration
	seq uint64
	fn  func()
}

// Scheduler runs callbacks after a delay measured in game time.
// There is no cancellation: a scheduled callback always fires, and callbacks
// must check that whatever they touch still exists.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	pending []task
}

// NewScheduler creates an empty scheduler at time zero
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current game time
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once delay has elapsed
func (s *Scheduler) After(delay time.Duration, fn func()) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.pending = append(s.pending, task{due: s.now + delay, seq: s.seq, fn: fn})
}

// Advance moves game time forward by dt and fires every due callback in due
// order. Callbacks scheduled while firing run in the same call if they are
// already due.
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt
	for {
		due := s.popDue()
		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.fn()
		}
	}
}

func (s *Scheduler) popDue() []task {
	var due, rest []task
	for _, t := range s.pending {
		if t.due <= s.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	s.pending = rest
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due
}

// Pending returns the number of callbacks that have not fired yet
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Cooldown is a flag that a Scheduler clears after a fixed delay
type Cooldown struct {
	active bool
}

// Active reports whether the cooldown is running
func (c *Cooldown) Active() bool {
	return c.active
}

// Trigger starts the cooldown on s. It returns false, and does nothing, if
// the cooldown is already running.
func (c *Cooldown) Trigger(s *Scheduler, d time.Duration) bool {
	if c.active {
		return false
	}
	c.active = true
	s.After(d, func() { c.active = false })
	return true
}
