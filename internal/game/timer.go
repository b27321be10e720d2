package game

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Clock is the time source for timers and feedback windows.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// SystemClock returns a Clock backed by the time package.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// TimerTag identifies what a timer was started for. Ticks carry the tag so a
// consumer can discard ticks from a timer it no longer cares about.
type TimerTag struct {
	Phase Phase  `json:"phase"`
	Round int    `json:"round"`
	Seq   uint64 `json:"seq"`
}

// IsZero reports whether no timer is tagged.
func (t TimerTag) IsZero() bool {
	return t.Seq == 0
}

// Timer is a cancellable countdown with one-second resolution. It delivers a
// tick for every elapsed second and exactly one expiry when it reaches zero.
// Starting a new countdown cancels the previous one.
type Timer struct {
	clock    Clock
	onTick   func(tag TimerTag, remaining int)
	onExpire func(tag TimerTag)

	mu          sync.Mutex
	tag         TimerTag
	remaining   int
	gen         uint64
	running     bool
	paused      bool
	pending     Stopper
	secondStart time.Time
	carried     time.Duration
}

// NewTimer creates an idle timer. Callbacks run on the clock's goroutine and
// never while the timer's lock is held.
func NewTimer(clock Clock, onTick func(TimerTag, int), onExpire func(TimerTag)) *Timer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Timer{clock: clock, onTick: onTick, onExpire: onExpire}
}

// Start begins a countdown of the given number of seconds.
func (t *Timer) Start(tag TimerTag, seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.tag = tag
	t.remaining = seconds
	t.running = true
	t.paused = false
	if seconds <= 0 {
		t.remaining = 0
		gen := t.gen
		t.pending = t.clock.AfterFunc(0, func() { t.expireNow(gen) })
		return
	}
	t.scheduleLocked(time.Second)
}

// Pause suspends the countdown, remembering how far into the current second
// it got.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.paused {
		return
	}
	elapsed := t.clock.Now().Sub(t.secondStart)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= time.Second {
		elapsed = time.Second - time.Millisecond
	}
	t.stopLocked()
	t.running = true
	t.paused = true
	t.carried = elapsed
}

// Resume continues a paused countdown.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || !t.paused {
		return
	}
	t.paused = false
	t.scheduleLocked(time.Second - t.carried)
	t.carried = 0
}

// Cancel stops the countdown and discards every pending tick.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Remaining returns the seconds left on the countdown.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Running reports whether a countdown is active, paused or not.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Paused reports whether the countdown is suspended.
func (t *Timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Tag returns the tag of the current countdown.
func (t *Timer) Tag() TimerTag {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tag
}

func (t *Timer) stopLocked() {
	t.gen++
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.running = false
	t.paused = false
	t.carried = 0
}

func (t *Timer) scheduleLocked(d time.Duration) {
	gen := t.gen
	t.secondStart = t.clock.Now().Add(d - time.Second)
	t.pending = t.clock.AfterFunc(d, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.running || t.paused {
		t.mu.Unlock()
		return
	}
	t.remaining--
	if t.remaining < 0 {
		t.remaining = 0
	}
	tag, remaining := t.tag, t.remaining
	expired := remaining == 0
	if expired {
		t.running = false
		t.pending = nil
		t.gen++
	} else {
		t.scheduleLocked(time.Second)
	}
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(tag, remaining)
	}
	if expired && t.onExpire != nil {
		t.onExpire(tag)
	}
}

func (t *Timer) expireNow(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || !t.running {
		t.mu.Unlock()
		return
	}
	tag := t.tag
	t.running = false
	t.pending = nil
	t.gen++
	t.mu.Unlock()

	if t.onExpire != nil {
		t.onExpire(tag)
	}
}
