package game

import (
	"math/rand"
	"testing"
	"time"
)

func quizRules() Rules {
	return Rules{
		GameID:           "quiz",
		Scoring:          ScoringBinary,
		TimeBudget:       10,
		TimerScope:       TimerPerItem,
		Lives:            3,
		BasePoints:       10,
		Penalty:          15,
		StreakMultiplier: true,
		TimeoutCostsLife: true,
		TimeoutFeedback:  true,
		Feedback:         time.Second,
	}
}

func quizContent(n int) *ContentSet {
	c := &ContentSet{GameID: "quiz"}
	for i := 0; i < n; i++ {
		c.Items = append(c.Items, PlayItem{
			ID:          string(rune('a' + i)),
			Round:       1,
			Choices:     []string{"yes", "no"},
			AnswerIndex: i % 2,
		})
	}
	return c
}

// reduceAll applies events in order and collects every effect.
func reduceAll(rules Rules, s State, events ...Event) (State, []Effect) {
	var all []Effect
	for _, ev := range events {
		var effects []Effect
		s, effects = Reduce(rules, s, ev)
		all = append(all, effects...)
	}
	return s, all
}

func startPlaying(t *testing.T, rules Rules, content *ContentSet) State {
	t.Helper()
	s, _ := reduceAll(rules, NewState(rules.GameID), Started{}, ContentLoaded{Content: content})
	if s.Phase != PhaseCountdown {
		t.Fatalf("phase = %s, want countdown", s.Phase)
	}
	s, _ = Reduce(rules, s, TimerExpired{Tag: s.Clock})
	if s.Phase != PhasePlaying {
		t.Fatalf("phase = %s, want playing", s.Phase)
	}
	return s
}

func TestReduceLoadingEmptyContentFails(t *testing.T) {
	rules := quizRules()
	s, effects := Reduce(rules, NewState("quiz"), Started{})
	if s.Phase != PhaseLoading {
		t.Fatalf("phase = %s, want loading", s.Phase)
	}
	if len(effects) != 1 {
		t.Fatalf("effects = %v, want one fetch", effects)
	}
	if _, ok := effects[0].(FetchContent); !ok {
		t.Fatalf("effect = %T, want FetchContent", effects[0])
	}

	s, _ = Reduce(rules, s, ContentLoaded{Content: &ContentSet{GameID: "quiz"}})
	if s.Phase != PhaseContentError {
		t.Fatalf("phase = %s, want content_error", s.Phase)
	}
	if s.LoadError == "" {
		t.Error("expected a human-readable cause")
	}
}

func TestReduceDiscardsStaleLoadCompletion(t *testing.T) {
	rules := quizRules()
	s, _ := Reduce(rules, NewState("quiz"), Started{})
	s, _ = Reduce(rules, s, ContentFailed{Epoch: s.Epoch, Cause: "offline"})
	s, _ = Reduce(rules, s, RetryRequested{})
	if s.Phase != PhaseLoading || s.Epoch != 1 {
		t.Fatalf("phase = %s epoch = %d, want loading epoch 1", s.Phase, s.Epoch)
	}

	s, _ = Reduce(rules, s, ContentLoaded{Epoch: 0, Content: quizContent(3)})
	if s.Phase != PhaseLoading {
		t.Fatalf("stale completion applied: phase = %s", s.Phase)
	}
	s, _ = Reduce(rules, s, ContentLoaded{Epoch: 1, Content: quizContent(3)})
	if s.Phase != PhaseCountdown {
		t.Fatalf("phase = %s, want countdown", s.Phase)
	}
}

func TestReduceCountdownNeedsExactlyThreeTicks(t *testing.T) {
	rules := quizRules()
	s, _ := reduceAll(rules, NewState("quiz"), Started{}, ContentLoaded{Content: quizContent(2)})
	tag := s.Clock

	for remaining := 2; remaining >= 0; remaining-- {
		s, _ = Reduce(rules, s, TimerTicked{Tag: tag, Remaining: remaining})
		if s.Phase != PhaseCountdown {
			t.Fatalf("left countdown after tick to %d", remaining)
		}
		if s.Countdown != remaining {
			t.Fatalf("countdown = %d, want %d", s.Countdown, remaining)
		}
	}

	s, effects := Reduce(rules, s, TimerExpired{Tag: tag})
	if s.Phase != PhasePlaying || !s.GameStarted {
		t.Fatalf("phase = %s started = %v, want playing", s.Phase, s.GameStarted)
	}
	start, ok := effects[0].(StartTimer)
	if !ok || start.Seconds != rules.TimeBudget || start.Tag.Phase != PhasePlaying {
		t.Fatalf("effects = %#v, want a play clock start", effects)
	}
}

func TestReduceIgnoresTicksFromStaleTimers(t *testing.T) {
	rules := quizRules()
	s := startPlaying(t, rules, quizContent(3))
	stale := TimerTag{Phase: PhaseCountdown, Round: 1, Seq: s.Clock.Seq - 1}

	next, effects := Reduce(rules, s, TimerTicked{Tag: stale, Remaining: 0})
	if next.RemainingTime != s.RemainingTime || len(effects) != 0 {
		t.Fatalf("stale tick applied: remaining %d -> %d", s.RemainingTime, next.RemainingTime)
	}
	next, _ = Reduce(rules, s, TimerExpired{Tag: stale})
	if next.Phase != PhasePlaying || next.Lives != s.Lives {
		t.Fatalf("stale expiry applied: phase = %s lives = %d", next.Phase, next.Lives)
	}

	// A tick for the play clock that arrives after Playing ended is stale too.
	playTag := s.Clock
	s, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})
	if s.Phase != PhaseFeedback {
		t.Fatalf("phase = %s, want feedback", s.Phase)
	}
	next, _ = Reduce(rules, s, TimerExpired{Tag: playTag})
	if next.Answered != s.Answered || next.Lives != s.Lives {
		t.Fatal("late play-clock expiry was treated as a timeout")
	}
}

func TestReduceAttemptsOutsidePlayingAreIgnored(t *testing.T) {
	rules := quizRules()
	s, _ := reduceAll(rules, NewState("quiz"), Started{}, ContentLoaded{Content: quizContent(3)})

	next, effects := Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})
	if next.Accepted != 0 || len(effects) != 0 {
		t.Fatal("attempt during countdown was accepted")
	}

	s = startPlaying(t, rules, quizContent(3))
	s, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})
	next, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})
	if next.Accepted != 1 || next.Score != s.Score {
		t.Fatal("second attempt during feedback was accepted")
	}

	s = startPlaying(t, rules, quizContent(3))
	next, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{ItemID: "z", Choice: ChoiceAt(0)}})
	if next.Accepted != 0 {
		t.Fatal("attempt for an inactive item was accepted")
	}
	next, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(7)}})
	if next.Accepted != 0 {
		t.Fatal("attempt with an out-of-range choice was accepted")
	}
	next, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{}})
	if next.Accepted != 0 || next.Lives != s.Lives {
		t.Fatal("attempt without a choice was accepted")
	}
	next, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Zone: "healthy"}})
	if next.Accepted != 0 {
		t.Fatal("sorting attempt on a question was accepted")
	}
}

func TestReduceScoreNeverNegative(t *testing.T) {
	rules := quizRules()
	rules.Lives = 0
	rules.TimeoutCostsLife = false
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		s := startPlaying(t, rules, quizContent(12))
		for steps := 0; steps < 200 && s.Phase != PhaseSessionComplete; steps++ {
			var ev Event
			switch s.Phase {
			case PhasePlaying:
				if rng.Intn(5) == 0 {
					ev = TimerExpired{Tag: s.Clock}
				} else {
					ev = AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(rng.Intn(2))}}
				}
			case PhaseFeedback:
				ev = FeedbackElapsed{Tag: s.Feedback}
			default:
				t.Fatalf("unexpected phase %s", s.Phase)
			}
			s, _ = Reduce(rules, s, ev)
			if s.Score < 0 {
				t.Fatalf("run %d step %d: score = %d", run, steps, s.Score)
			}
			if s.ItemIndex < 0 || s.ItemIndex > s.Content.Size() {
				t.Fatalf("item index %d out of range", s.ItemIndex)
			}
			if s.RemainingTime < 0 || s.RemainingTime > s.TimeBudget {
				t.Fatalf("remaining time %d out of range", s.RemainingTime)
			}
		}
		if s.Phase != PhaseSessionComplete {
			t.Fatalf("run %d did not complete", run)
		}
	}
}

func TestReduceCompleteIsIdempotent(t *testing.T) {
	rules := quizRules()
	s := startPlaying(t, rules, quizContent(1))
	s, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})
	s, effects := Reduce(rules, s, FeedbackElapsed{Tag: s.Feedback})
	if s.Phase != PhaseSessionComplete {
		t.Fatalf("phase = %s, want session_complete", s.Phase)
	}
	if countSubmits(effects) != 1 {
		t.Fatalf("submits = %d, want 1", countSubmits(effects))
	}

	for _, ev := range []Event{ExitRequested{}, FeedbackElapsed{Tag: s.Feedback}, TimerExpired{Tag: s.Clock}} {
		var more []Effect
		s, more = Reduce(rules, s, ev)
		if countSubmits(more) != 0 {
			t.Fatalf("%T produced another result", ev)
		}
	}
	if s.Result == nil || s.Result.Status() != StatusCompleted {
		t.Fatalf("result = %+v, want COMPLETED", s.Result)
	}
}

func TestReduceExitMidGameReportsExited(t *testing.T) {
	rules := quizRules()
	s := startPlaying(t, rules, quizContent(4))
	s, _ = Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})

	s, effects := Reduce(rules, s, ExitRequested{})
	if s.Phase != PhaseSessionComplete {
		t.Fatalf("phase = %s, want session_complete", s.Phase)
	}
	if countSubmits(effects) != 1 {
		t.Fatalf("submits = %d, want 1", countSubmits(effects))
	}
	if s.Result.Status() != StatusExited || s.Result.CorrectAnswers != 1 {
		t.Fatalf("result = %+v", s.Result)
	}
}

func TestReduceTutorialNavigation(t *testing.T) {
	rules := quizRules()
	rules.TutorialSteps = []string{"one", "two", "three"}

	s, effects := reduceAll(rules, NewState("quiz"), Started{}, ContentLoaded{Content: quizContent(2)})
	if s.Phase != PhaseTutorialCheck {
		t.Fatalf("phase = %s, want tutorial_check", s.Phase)
	}
	if _, ok := effects[len(effects)-1].(CheckTutorial); !ok {
		t.Fatalf("last effect = %T, want CheckTutorial", effects[len(effects)-1])
	}

	s, _ = Reduce(rules, s, TutorialChecked{Seen: false})
	if s.Phase != PhaseShowingTutorial || s.TutorialStep != 0 {
		t.Fatalf("phase = %s step = %d", s.Phase, s.TutorialStep)
	}

	s, _ = reduceAll(rules, s, TutorialBack{}, TutorialNext{}, TutorialNext{}, TutorialBack{})
	if s.TutorialStep != 1 {
		t.Fatalf("step = %d, want 1", s.TutorialStep)
	}
	s, _ = Reduce(rules, s, TimerExpired{Tag: TimerTag{Phase: PhaseShowingTutorial, Seq: 1}})
	if s.Phase != PhaseShowingTutorial {
		t.Fatal("tutorial advanced on a timer")
	}

	s, effects = reduceAll(rules, s, TutorialNext{}, TutorialNext{})
	if s.Phase != PhaseCountdown || !s.TutorialSeen {
		t.Fatalf("phase = %s seen = %v, want countdown", s.Phase, s.TutorialSeen)
	}
	marks := 0
	for _, eff := range effects {
		if _, ok := eff.(MarkTutorialSeen); ok {
			marks++
		}
	}
	if marks != 1 {
		t.Fatalf("MarkTutorialSeen effects = %d, want 1", marks)
	}
}

func countSubmits(effects []Effect) int {
	n := 0
	for _, eff := range effects {
		if _, ok := eff.(SubmitResult); ok {
			n++
		}
	}
	return n
}

func TestReduceHoldsExpiryWhileSuspended(t *testing.T) {
	rules := quizRules()

	t.Run("countdown", func(t *testing.T) {
		s, _ := reduceAll(rules, NewState("quiz"), Started{}, ContentLoaded{Content: quizContent(2)})
		tag := s.Clock
		s, _ = Reduce(rules, s, PauseRequested{})

		s, effects := Reduce(rules, s, TimerExpired{Tag: tag})
		if s.Phase != PhaseCountdown || !s.Suspended {
			t.Fatalf("phase = %s suspended = %v, want suspended countdown", s.Phase, s.Suspended)
		}
		if len(effects) != 0 {
			t.Fatalf("effects = %#v, want none while suspended", effects)
		}
		next, _ := Reduce(rules, s, AttemptSubmitted{Attempt: Attempt{Choice: ChoiceAt(0)}})
		if next.Accepted != 0 {
			t.Fatal("attempt accepted while suspended")
		}

		s, effects = Reduce(rules, s, ResumeRequested{})
		if s.Phase != PhasePlaying || s.Suspended || !s.HeldExpiry.IsZero() {
			t.Fatalf("phase = %s suspended = %v, want playing after resume", s.Phase, s.Suspended)
		}
		if len(effects) != 1 {
			t.Fatalf("effects = %#v, want one play clock start", effects)
		}
		if start, ok := effects[0].(StartTimer); !ok || start.Tag != s.Clock || start.Seconds != rules.TimeBudget {
			t.Fatalf("effect = %#v, want StartTimer for %v", effects[0], s.Clock)
		}
	})

	t.Run("play clock", func(t *testing.T) {
		s := startPlaying(t, rules, quizContent(2))
		tag := s.Clock
		s, _ = Reduce(rules, s, PauseRequested{})

		s, _ = Reduce(rules, s, TimerExpired{Tag: tag})
		if s.Phase != PhasePlaying || s.Lives != rules.Lives || s.Missed != 0 {
			t.Fatalf("timeout applied while suspended: phase = %s lives = %d", s.Phase, s.Lives)
		}

		s, _ = Reduce(rules, s, ResumeRequested{})
		if s.Phase != PhaseFeedback || s.Missed != 1 || s.Lives != rules.Lives-1 {
			t.Fatalf("phase = %s missed = %d lives = %d, want timeout after resume", s.Phase, s.Missed, s.Lives)
		}
	})

	t.Run("exit drops the held expiry", func(t *testing.T) {
		s := startPlaying(t, rules, quizContent(2))
		tag := s.Clock
		s, _ = reduceAll(rules, s, PauseRequested{}, TimerExpired{Tag: tag}, ExitRequested{})
		if s.Phase != PhaseSessionComplete || !s.HeldExpiry.IsZero() {
			t.Fatalf("phase = %s held = %v", s.Phase, s.HeldExpiry)
		}
		if s.Result.Status() != StatusExited {
			t.Fatalf("status = %s, want EXITED", s.Result.Status())
		}
	})
}

func TestReduceEnterPlayingWhileSuspendedKeepsClockPaused(t *testing.T) {
	rules := quizRules()
	s, _ := reduceAll(rules, NewState("quiz"), Started{}, ContentLoaded{Content: quizContent(2)})
	s.Suspended = true

	r := &reducer{rules: rules, s: s}
	r.enterPlaying()
	if len(r.effects) != 2 {
		t.Fatalf("effects = %#v, want start then pause", r.effects)
	}
	if _, ok := r.effects[0].(StartTimer); !ok {
		t.Fatalf("first effect = %T, want StartTimer", r.effects[0])
	}
	if _, ok := r.effects[1].(PauseTimer); !ok {
		t.Fatalf("second effect = %T, want PauseTimer", r.effects[1])
	}
}
