package grid

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the callback. Reports whether it was still pending.
	Stop() bool
}

// Scheduler creates timers and tells the time. Production code uses
// SystemScheduler; tests substitute a manual clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// SystemScheduler is backed by time.AfterFunc.
type SystemScheduler struct{}

// AfterFunc calls f in its own goroutine after d.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Now returns the wall clock.
func (SystemScheduler) Now() time.Time {
	return time.Now()
}

// timerSlot holds at most one pending timer. Every schedule and stop bumps
// seq, so a callback that was already running when its timer was stopped or
// replaced finds a different seq and does nothing.
type timerSlot struct {
	t   Timer
	seq uint64
}

func (s *timerSlot) schedule(sched Scheduler, d time.Duration, f func(seq uint64)) {
	s.stop()
	s.seq++
	seq := s.seq
	s.t = sched.AfterFunc(d, func() { f(seq) })
}

func (s *timerSlot) stop() {
	if s.t == nil {
		return
	}
	s.t.Stop()
	s.t = nil
	s.seq++
}

func (s *timerSlot) pending() bool {
	return s.t != nil
}

// claim reports whether seq belongs to the pending timer and clears the slot.
// Callers hold the controller mutex.
func (s *timerSlot) claim(seq uint64) bool {
	if s.t == nil || s.seq != seq {
		return false
	}
	s.t = nil
	return true
}
