package game

import "fmt"

// Reduce applies one event to a session state and returns the next state
// together with the effects the caller must perform. It does no I/O and does
// not mutate s.
func Reduce(rules Rules, s State, ev Event) (State, []Effect) {
	r := &reducer{rules: rules, s: s}
	r.apply(ev)
	return r.s, r.effects
}

type reducer struct {
	rules   Rules
	s       State
	effects []Effect
}

func (r *reducer) emit(effects ...Effect) {
	r.effects = append(r.effects, effects...)
}

func (r *reducer) apply(ev Event) {
	switch ev := ev.(type) {
	case Started:
		if r.s.Phase != PhaseIdle {
			return
		}
		r.s.Phase = PhaseLoading
		r.emit(FetchContent{Epoch: r.s.Epoch})

	case ContentLoaded:
		if r.s.Phase != PhaseLoading || ev.Epoch != r.s.Epoch {
			return
		}
		if ev.Content.Size() == 0 {
			r.fail(fmt.Sprintf("no play items available for %s", r.s.GameID))
			return
		}
		r.s.Content = ev.Content
		r.enterContentReady()

	case ContentFailed:
		if r.s.Phase != PhaseLoading || ev.Epoch != r.s.Epoch {
			return
		}
		r.fail(ev.Cause)

	case TutorialChecked:
		if r.s.Phase != PhaseTutorialCheck || ev.Epoch != r.s.Epoch {
			return
		}
		if ev.Seen {
			r.s.TutorialSeen = true
			r.enterCountdown()
			return
		}
		r.s.Phase = PhaseShowingTutorial
		r.s.TutorialStep = 0

	case TutorialNext:
		if r.s.Phase != PhaseShowingTutorial {
			return
		}
		if r.s.TutorialStep < len(r.rules.TutorialSteps)-1 {
			r.s.TutorialStep++
			return
		}
		r.s.TutorialSeen = true
		r.emit(MarkTutorialSeen{})
		r.enterCountdown()

	case TutorialBack:
		if r.s.Phase == PhaseShowingTutorial && r.s.TutorialStep > 0 {
			r.s.TutorialStep--
		}

	case TimerTicked:
		if !r.current(ev.Tag) {
			return
		}
		switch r.s.Phase {
		case PhaseCountdown:
			r.s.Countdown = ev.Remaining
		case PhasePlaying:
			r.s.RemainingTime = clamp(ev.Remaining, 0, r.s.TimeBudget)
		}

	case TimerExpired:
		if !r.current(ev.Tag) {
			return
		}
		if r.s.Suspended {
			r.s.HeldExpiry = ev.Tag
			return
		}
		r.expire()

	case FeedbackElapsed:
		if r.s.Phase != PhaseFeedback || ev.Tag != r.s.Feedback {
			return
		}
		r.s.Feedback = TimerTag{}
		r.advance()

	case AttemptSubmitted:
		r.attempt(ev.Attempt)

	case RoundRequested:
		if r.s.Phase == PhaseRoundAdvance {
			r.startNextRound()
		}

	case RestartRequested:
		if r.s.Content == nil || !r.canRestart() {
			return
		}
		r.emit(CancelTimer{}, CancelFeedback{})
		r.s.Epoch++
		r.enterContentReady()

	case RetryRequested:
		if r.s.Phase != PhaseContentError {
			return
		}
		r.s.Epoch++
		r.s.LoadError = ""
		r.s.Phase = PhaseLoading
		r.emit(FetchContent{Epoch: r.s.Epoch})

	case ExitRequested:
		switch r.s.Phase {
		case PhaseIdle, PhaseSessionComplete, PhaseContentError:
			return
		case PhaseLoading:
			r.s.Epoch++
			r.fail("session closed before content finished loading")
			return
		}
		r.complete(StatusExited)

	case PauseRequested:
		if (r.s.Phase == PhasePlaying || r.s.Phase == PhaseCountdown) && !r.s.Suspended {
			r.s.Suspended = true
			r.emit(PauseTimer{})
		}

	case ResumeRequested:
		if !r.s.Suspended {
			return
		}
		r.s.Suspended = false
		held := r.s.HeldExpiry
		r.s.HeldExpiry = TimerTag{}
		if r.current(held) {
			r.expire()
			return
		}
		r.emit(ResumeTimer{})
	}
}

// expire ends the active clock: the countdown starts play, the play clock
// times out.
func (r *reducer) expire() {
	r.s.Clock = TimerTag{}
	switch r.s.Phase {
	case PhaseCountdown:
		r.s.Countdown = 0
		r.s.GameStarted = true
		r.enterPlaying()
	case PhasePlaying:
		r.s.RemainingTime = 0
		r.timeout()
	}
}

// current reports whether a timer tag belongs to the active clock. Ticks from
// earlier phases, rounds or runs are discarded.
func (r *reducer) current(tag TimerTag) bool {
	return !tag.IsZero() && tag == r.s.Clock && tag.Phase == r.s.Phase
}

func (r *reducer) nextTag(p Phase) TimerTag {
	r.s.Seq++
	return TimerTag{Phase: p, Round: r.s.Round, Seq: r.s.Seq}
}

func (r *reducer) fail(cause string) {
	r.s.Phase = PhaseContentError
	r.s.LoadError = cause
}

func (r *reducer) enterContentReady() {
	budget := r.rules.TimeBudget
	if r.s.Content.TimeBudget > 0 {
		budget = r.s.Content.TimeBudget
	}
	r.s = State{
		GameID:        r.s.GameID,
		Phase:         PhaseContentReady,
		Content:       r.s.Content,
		Epoch:         r.s.Epoch,
		TutorialSeen:  r.s.TutorialSeen,
		Seq:           r.s.Seq,
		Round:         r.s.Content.RoundOf(0),
		Lives:         r.rules.Lives,
		TimeBudget:    budget,
		RemainingTime: budget,
	}
	r.enterTutorialCheck()
}

func (r *reducer) enterTutorialCheck() {
	r.s.Phase = PhaseTutorialCheck
	if r.s.TutorialSeen || len(r.rules.TutorialSteps) == 0 {
		r.enterCountdown()
		return
	}
	r.emit(CheckTutorial{Epoch: r.s.Epoch})
}

func (r *reducer) enterCountdown() {
	r.s.Phase = PhaseCountdown
	r.s.Countdown = CountdownSeconds
	r.s.Suspended = false
	tag := r.nextTag(PhaseCountdown)
	r.s.Clock = tag
	r.emit(StartTimer{Tag: tag, Seconds: CountdownSeconds})
}

func (r *reducer) enterPlaying() {
	r.s.Phase = PhasePlaying
	r.s.LastOutcome = nil
	if r.rules.TimerScope == TimerPerItem || r.s.Clock.IsZero() {
		tag := r.nextTag(PhasePlaying)
		r.s.Clock = tag
		r.s.RemainingTime = r.s.TimeBudget
		r.emit(StartTimer{Tag: tag, Seconds: r.s.TimeBudget})
		if r.s.Suspended {
			r.emit(PauseTimer{})
		}
		return
	}
	if !r.s.Suspended {
		r.emit(ResumeTimer{})
	}
}

// leavePlaying stops the play clock the instant Playing ends. Per-item clocks
// are discarded, longer-lived clocks are paused so they can resume.
func (r *reducer) leavePlaying() {
	if r.rules.TimerScope == TimerPerItem || r.s.Clock.IsZero() {
		r.emit(CancelTimer{})
		r.s.Clock = TimerTag{}
		return
	}
	r.emit(PauseTimer{})
}

func (r *reducer) enterFeedback() {
	r.s.Phase = PhaseFeedback
	tag := r.nextTag(PhaseFeedback)
	r.s.Feedback = tag
	r.emit(ScheduleFeedback{Tag: tag, Duration: r.rules.Feedback})
}

func (r *reducer) attempt(a Attempt) {
	if r.s.Phase != PhasePlaying || r.s.Suspended {
		return
	}
	item, ok := r.s.ActiveItem()
	if !ok {
		return
	}

	switch r.rules.Scoring {
	case ScoringBinary:
		if a.ItemID != "" && a.ItemID != item.ID {
			return
		}
		if len(item.Choices) > 0 && (a.Choice == nil || *a.Choice < 0 || *a.Choice >= len(item.Choices)) {
			return
		}
		if len(item.Choices) == 0 && a.Zone == "" {
			return
		}
		r.s.Accepted++
		r.resolve(r.rules.ScoreBinary(item, a, r.s.Streak))

	case ScoringMultiSelect:
		if a.ItemID != "" && a.ItemID != item.ID {
			return
		}
		r.s.Accepted++
		r.resolve(r.rules.ScorePlate(item, a.Selected, r.s.Streak))

	case ScoringMatching:
		r.flip(a.Card)
	}
}

// flip turns one memory card. Two pending cards are compared; a third flip
// while two are pending is ignored.
func (r *reducer) flip(card *Card) {
	if card == nil || len(r.s.Pending) >= 2 {
		return
	}
	if card.Side != SideFood && card.Side != SideBenefit {
		return
	}
	if r.s.Matched[card.PairID] || !r.inRound(card.PairID) {
		return
	}
	for _, p := range r.s.Pending {
		if p == *card {
			return
		}
	}

	r.s.Accepted++
	pending := make([]Card, 0, 2)
	pending = append(pending, r.s.Pending...)
	pending = append(pending, *card)
	r.s.Pending = pending
	if len(pending) < 2 {
		return
	}

	r.s.Moves++
	out := r.rules.ScoreMatch(r.s.Round, pending[0], pending[1], r.s.Streak)
	if out.Correct {
		r.s.MatchedPairs++
		matched := make(map[string]bool, len(r.s.Matched)+1)
		for id := range r.s.Matched {
			matched[id] = true
		}
		matched[card.PairID] = true
		r.s.Matched = matched
	}
	r.resolve(out)
}

func (r *reducer) inRound(pairID string) bool {
	for _, it := range r.s.Content.Items {
		if it.ID == pairID && it.Round == r.s.Round {
			return true
		}
	}
	return false
}

// resolve applies a scored outcome to the totals and leaves Playing.
func (r *reducer) resolve(out Outcome) {
	r.s.Answered++
	switch {
	case out.Correct:
		r.s.Correct++
	case out.TimedOut:
		r.s.Missed++
	}
	r.s.Score = ApplyScore(r.s.Score, out.ScoreDelta)
	if out.LifeDelta != 0 {
		r.s.Lives = max(0, r.s.Lives+out.LifeDelta)
	}
	r.s.Streak = out.Streak
	r.s.BestStreak = max(r.s.BestStreak, r.s.Streak)
	r.s.LastOutcome = &out

	r.leavePlaying()
	if r.rules.Feedback > 0 && (!out.TimedOut || r.rules.TimeoutFeedback) {
		r.enterFeedback()
		return
	}
	r.advance()
}

// timeout handles the play clock reaching zero with no attempt pending.
func (r *reducer) timeout() {
	if r.rules.TimeoutEndsSession {
		r.complete(StatusTimeUp)
		return
	}
	item, ok := r.s.ActiveItem()
	if !ok {
		r.complete(StatusTimeUp)
		return
	}
	r.s.Pending = nil
	r.resolve(r.rules.ScoreTimeout(item))
}

// advance moves past a resolved item and picks the next phase.
func (r *reducer) advance() {
	last := r.s.LastOutcome
	matching := r.rules.Scoring == ScoringMatching
	if matching {
		r.s.Pending = nil
		if last != nil && last.Correct {
			r.s.ItemIndex++
		}
	} else {
		r.s.ItemIndex++
	}
	r.s.ItemIndex = clamp(r.s.ItemIndex, 0, r.s.Content.Size())

	if r.rules.Lives > 0 && r.s.Lives <= 0 {
		r.complete(StatusGameOver)
		return
	}
	if matching && r.s.MatchedPairs < r.s.PairsInRound() {
		r.enterPlaying()
		return
	}
	if r.s.ItemIndex >= r.s.Content.Size() {
		r.s.RoundsCompleted++
		r.complete(StatusCompleted)
		return
	}
	if r.s.Content.RoundOf(r.s.ItemIndex) != r.s.Round {
		r.s.RoundsCompleted++
		r.enterRoundAdvance()
		return
	}
	r.enterPlaying()
}

func (r *reducer) enterRoundAdvance() {
	r.s.Phase = PhaseRoundAdvance
	if r.rules.TimerScope != TimerPerSession {
		r.emit(CancelTimer{})
		r.s.Clock = TimerTag{}
	}
	if !r.rules.RoundBreak {
		r.startNextRound()
	}
}

// startNextRound resets round-scoped counters and keeps the totals.
func (r *reducer) startNextRound() {
	r.s.Round = r.s.Content.RoundOf(r.s.ItemIndex)
	r.s.MatchedPairs = 0
	r.s.Pending = nil
	r.s.Matched = nil
	if r.rules.TimerScope != TimerPerSession {
		r.s.RemainingTime = r.s.TimeBudget
	}
	if r.rules.CountdownPerRound {
		r.enterCountdown()
		return
	}
	r.enterPlaying()
}

func (r *reducer) canRestart() bool {
	switch r.s.Phase {
	case PhaseSessionComplete:
		return true
	case PhaseFeedback:
		return r.rules.TimeCritical && r.s.LastOutcome != nil && r.s.LastOutcome.TimedOut
	}
	return false
}

// complete enters SessionComplete. Entering it again is a no-op, so a run
// never produces a second result.
func (r *reducer) complete(status Status) {
	if r.s.Phase == PhaseSessionComplete {
		return
	}
	r.emit(CancelTimer{}, CancelFeedback{})
	r.s.Phase = PhaseSessionComplete
	r.s.Status = status
	r.s.Clock = TimerTag{}
	r.s.Feedback = TimerTag{}
	r.s.Suspended = false
	r.s.HeldExpiry = TimerTag{}
	r.s.Pending = nil
	if r.s.Result != nil {
		return
	}
	res := r.buildResult(status)
	r.s.Result = &res
	r.emit(SubmitResult{Result: res})
}

func (r *reducer) buildResult(status Status) SessionResult {
	s := r.s
	extra := map[string]any{
		"status":          string(status),
		"answered":        s.Answered,
		"missed":          s.Missed,
		"bestStreak":      s.BestStreak,
		"roundsCompleted": s.RoundsCompleted,
	}
	if r.rules.Lives > 0 {
		extra["lives"] = s.Lives
	}
	if r.rules.Scoring == ScoringMatching {
		extra["moves"] = s.Moves
		extra["matchedPairs"] = s.Correct
	}
	return SessionResult{
		GameID:         s.GameID,
		Score:          s.Score,
		CorrectAnswers: s.Correct,
		TotalQuestions: s.Content.Size(),
		TimeLeft:       clamp(s.RemainingTime, 0, s.TimeBudget),
		Streak:         s.Streak,
		Extra:          extra,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
