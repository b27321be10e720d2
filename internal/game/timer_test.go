package game_test

import (
	"testing"
	"time"

	"nutriquest/internal/game"
	"nutriquest/internal/testutil"
)

type timerRecorder struct {
	ticks   []int
	expired []game.TimerTag
}

func newRecordedTimer(clock game.Clock) (*game.Timer, *timerRecorder) {
	rec := &timerRecorder{}
	timer := game.NewTimer(clock,
		func(_ game.TimerTag, remaining int) { rec.ticks = append(rec.ticks, remaining) },
		func(tag game.TimerTag) { rec.expired = append(rec.expired, tag) },
	)
	return timer, rec
}

func TestTimerTicksOncePerSecondAndExpiresOnce(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(0, 0))
	timer, rec := newRecordedTimer(clock)
	tag := game.TimerTag{Phase: game.PhasePlaying, Round: 1, Seq: 1}

	timer.Start(tag, 3)
	clock.Advance(999 * time.Millisecond)
	if len(rec.ticks) != 0 {
		t.Fatalf("ticked before a full second: %v", rec.ticks)
	}

	clock.Advance(10 * time.Second)
	want := []int{2, 1, 0}
	if len(rec.ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", rec.ticks, want)
	}
	for i := range want {
		if rec.ticks[i] != want[i] {
			t.Errorf("tick %d = %d, want %d", i, rec.ticks[i], want[i])
		}
	}
	if len(rec.expired) != 1 || rec.expired[0] != tag {
		t.Fatalf("expired = %v, want exactly one expiry for %v", rec.expired, tag)
	}
	if timer.Remaining() != 0 || timer.Running() {
		t.Errorf("Remaining = %d Running = %v after expiry", timer.Remaining(), timer.Running())
	}
}

func TestTimerPauseKeepsPartialSecond(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(0, 0))
	timer, rec := newRecordedTimer(clock)

	timer.Start(game.TimerTag{Seq: 1}, 5)
	clock.Advance(1500 * time.Millisecond)
	if len(rec.ticks) != 1 {
		t.Fatalf("ticks = %v, want one tick", rec.ticks)
	}

	timer.Pause()
	clock.Advance(time.Minute)
	if len(rec.ticks) != 1 {
		t.Fatalf("ticked while paused: %v", rec.ticks)
	}
	if !timer.Paused() {
		t.Fatal("expected timer to report paused")
	}

	timer.Resume()
	clock.Advance(499 * time.Millisecond)
	if len(rec.ticks) != 1 {
		t.Fatalf("resumed second finished early: %v", rec.ticks)
	}
	clock.Advance(time.Millisecond)
	if len(rec.ticks) != 2 || rec.ticks[1] != 3 {
		t.Fatalf("ticks = %v, want second tick with 3 remaining", rec.ticks)
	}
}

func TestTimerCancelDiscardsPendingTicks(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(0, 0))
	timer, rec := newRecordedTimer(clock)

	timer.Start(game.TimerTag{Seq: 1}, 3)
	clock.Advance(time.Second)
	timer.Cancel()
	clock.Advance(10 * time.Second)

	if len(rec.ticks) != 1 {
		t.Errorf("ticks = %v, want only the tick before cancel", rec.ticks)
	}
	if len(rec.expired) != 0 {
		t.Errorf("expired after cancel: %v", rec.expired)
	}
}

func TestTimerStartReplacesPreviousCountdown(t *testing.T) {
	clock := testutil.NewManualClock(time.Unix(0, 0))
	timer, rec := newRecordedTimer(clock)
	first := game.TimerTag{Phase: game.PhaseCountdown, Seq: 1}
	second := game.TimerTag{Phase: game.PhasePlaying, Seq: 2}

	timer.Start(first, 3)
	clock.Advance(1500 * time.Millisecond)
	timer.Start(second, 2)
	clock.Advance(10 * time.Second)

	if len(rec.expired) != 1 || rec.expired[0] != second {
		t.Fatalf("expired = %v, want only %v", rec.expired, second)
	}
	want := []int{2, 1, 0}
	if len(rec.ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", rec.ticks, want)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending callbacks = %d, want 0", clock.Pending())
	}
}
