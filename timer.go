package html2pdf

import (
	"fmt"
	"sync"
	"time"
)

// TimerState identifies the lifecycle state of a CountdownTimer.
type TimerState int

// Timer states. A timer moves Idle → Running, may bounce between Running
// and Paused, and ends in Elapsed or Cancelled.
const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerElapsed
	TimerCancelled
)

// String returns a human-readable state name.
func (s TimerState) String() string {
	switch s {
	case TimerIdle:
		return "idle"
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerElapsed:
		return "elapsed"
	case TimerCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// CountdownTimer is a pausable, resumable deadline.
//
// A conversion carries two nested deadlines: the overall timeout, and an
// independent sub-timeout for the window-status wait. The overall timer is
// paused while the sub-wait runs and resumed afterwards, so pause must not
// lose elapsed-time accounting: total elapsed is time before pause plus
// time after resume, excluding the paused interval.
//
// Expiry closes the Done channel; it aborts nothing by itself. Blocking
// operations that accept a timer select on Done and return control to the
// caller when it fires. A nil *CountdownTimer is valid everywhere a timer
// is accepted and means "no deadline".
type CountdownTimer struct {
	mu        sync.Mutex
	state     TimerState
	remaining time.Duration
	startedAt time.Time
	expiry    *time.Timer
	done      chan struct{}
}

// NewCountdownTimer returns an idle timer.
func NewCountdownTimer() *CountdownTimer {
	return &CountdownTimer{done: make(chan struct{})}
}

// Start begins counting down d. Starting an already-running or finished
// timer is rejected rather than restarted; resuming a paused timer goes
// through Resume, which keeps the frozen remainder instead of d.
func (t *CountdownTimer) Start(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: non-positive timer duration %v", ErrInvalidArgument, d)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerIdle {
		return fmt.Errorf("%w: cannot start timer in state %s", ErrInvalidArgument, t.state)
	}
	t.remaining = d
	t.run()
	return nil
}

// Pause freezes the remaining duration and transitions to Paused.
func (t *CountdownTimer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return fmt.Errorf("%w: cannot pause timer in state %s", ErrInvalidArgument, t.state)
	}
	t.expiry.Stop()
	t.remaining -= time.Since(t.startedAt)
	if t.remaining <= 0 {
		// Raced with expiry between the countdown firing and the callback
		// taking the lock.
		t.finish(TimerElapsed)
		return nil
	}
	t.state = TimerPaused
	return nil
}

// Resume continues a paused timer with the frozen remainder, not the
// original duration.
func (t *CountdownTimer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerPaused {
		return fmt.Errorf("%w: cannot resume timer in state %s", ErrInvalidArgument, t.state)
	}
	t.run()
	return nil
}

// Cancel forces immediate Elapsed-equivalent completion. It is idempotent
// and safe to call after natural expiry.
func (t *CountdownTimer) Cancel() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case TimerElapsed, TimerCancelled:
		return
	case TimerRunning:
		t.expiry.Stop()
	}
	t.finish(TimerCancelled)
}

// Done returns a channel closed when the timer elapses or is cancelled.
// For a nil timer it returns a nil channel, which never becomes ready.
func (t *CountdownTimer) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}

// Expired reports whether the timer has elapsed or been cancelled.
func (t *CountdownTimer) Expired() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == TimerElapsed || t.state == TimerCancelled
}

// State returns the current timer state.
func (t *CountdownTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the time left on the countdown. For a running timer
// this accounts for time already spent since the last Start or Resume.
func (t *CountdownTimer) Remaining() time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TimerRunning {
		r := t.remaining - time.Since(t.startedAt)
		if r < 0 {
			r = 0
		}
		return r
	}
	return t.remaining
}

// run arms the expiry callback. Caller holds t.mu.
func (t *CountdownTimer) run() {
	t.state = TimerRunning
	t.startedAt = time.Now()
	t.expiry = time.AfterFunc(t.remaining, t.expire)
}

// finish moves to a terminal state and signals waiters. Caller holds t.mu.
func (t *CountdownTimer) finish(state TimerState) {
	t.state = state
	t.remaining = 0
	close(t.done)
}

// expire is the AfterFunc callback for natural expiry.
func (t *CountdownTimer) expire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		// Pause or Cancel won the race.
		return
	}
	t.finish(TimerElapsed)
}
