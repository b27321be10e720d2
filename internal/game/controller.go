package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// reportTimeout bounds the collaborator calls that run after the caller's
// request may already be gone.
const reportTimeout = 10 * time.Second

// Config wires a controller to its collaborators.
type Config struct {
	ID       string
	Rules    Rules
	Loader   ContentLoader
	Tutorial TutorialGate
	Reporter ResultReporter
	Clock    Clock

	// OnChange is called after every transition that changed the view.
	OnChange func(Snapshot)
	Debug    bool
}

// Controller runs one game session. All events are serialized through
// Reduce; timers and collaborators only ever resume it with a single event.
type Controller struct {
	id       string
	rules    Rules
	loader   ContentLoader
	tutorial TutorialGate
	reporter ResultReporter
	clock    Clock
	onChange func(Snapshot)
	debug    bool

	mu       sync.Mutex
	state    State
	timer    *Timer
	feedback Stopper
	started  bool
	closed   bool
	touched  time.Time
}

// NewController creates an idle controller for one session.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Loader == nil {
		return nil, ErrNoLoader
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}

	c := &Controller{
		id:       cfg.ID,
		rules:    cfg.Rules,
		loader:   cfg.Loader,
		tutorial: cfg.Tutorial,
		reporter: cfg.Reporter,
		clock:    clock,
		onChange: cfg.OnChange,
		debug:    cfg.Debug,
		state:    NewState(cfg.Rules.GameID),
		touched:  clock.Now(),
	}
	c.timer = NewTimer(clock,
		func(tag TimerTag, remaining int) {
			c.dispatch(context.Background(), TimerTicked{Tag: tag, Remaining: remaining})
		},
		func(tag TimerTag) {
			c.dispatch(context.Background(), TimerExpired{Tag: tag})
		},
	)
	return c, nil
}

// ID returns the session id the controller was created with.
func (c *Controller) ID() string {
	return c.id
}

// Rules returns the rule table the session runs with.
func (c *Controller) Rules() Rules {
	return c.rules
}

// Start loads content and moves the session towards play. It returns once
// content loading and the tutorial check have resolved. Only the first call
// starts the session; later calls get ErrAlreadyStarted.
func (c *Controller) Start(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return c.Snapshot(), err
	}
	c.mu.Lock()
	if c.started || c.state.Phase != PhaseIdle {
		snap := c.state.snapshot(c.rules, c.id)
		c.mu.Unlock()
		return snap, ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	c.dispatch(ctx, Started{})
	return c.Snapshot(), nil
}

// SubmitAttempt resolves a player action. It reports false when the attempt
// was ignored: outside Playing, while another attempt is being shown, or
// aimed at an item that is no longer active.
func (c *Controller) SubmitAttempt(ctx context.Context, a Attempt) (Snapshot, bool) {
	prev, next := c.dispatch(ctx, AttemptSubmitted{Attempt: a})
	return next.snapshot(c.rules, c.id), next.Accepted > prev.Accepted
}

// AdvanceTutorial confirms the current tutorial step.
func (c *Controller) AdvanceTutorial(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, TutorialNext{})
	return next.snapshot(c.rules, c.id)
}

// BackTutorial returns to the previous tutorial step.
func (c *Controller) BackTutorial(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, TutorialBack{})
	return next.snapshot(c.rules, c.id)
}

// NextRound leaves a round break.
func (c *Controller) NextRound(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, RoundRequested{})
	return next.snapshot(c.rules, c.id)
}

// Restart replays the session with the content already loaded.
func (c *Controller) Restart(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, RestartRequested{})
	return next.snapshot(c.rules, c.id)
}

// Retry fetches content again after a load failure.
func (c *Controller) Retry(ctx context.Context) Snapshot {
	c.dispatch(ctx, RetryRequested{})
	return c.Snapshot()
}

// Exit ends the session early and reports what was played so far.
func (c *Controller) Exit(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, ExitRequested{})
	return next.snapshot(c.rules, c.id)
}

// Pause suspends the clock while an overlay covers the game.
func (c *Controller) Pause(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, PauseRequested{})
	return next.snapshot(c.rules, c.id)
}

// Resume continues after Pause.
func (c *Controller) Resume(ctx context.Context) Snapshot {
	_, next := c.dispatch(ctx, ResumeRequested{})
	return next.snapshot(c.rules, c.id)
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot(c.rules, c.id)
}

// Result returns the result of the current run once it has completed.
func (c *Controller) Result() (SessionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Result == nil {
		return SessionResult{}, false
	}
	res := *c.state.Result
	res.SessionID = c.id
	return res, true
}

// LoadErr returns the content failure when the session is in ContentError.
func (c *Controller) LoadErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase != PhaseContentError {
		return nil
	}
	return &ContentLoadError{GameID: c.state.GameID, Cause: c.state.LoadError}
}

// LastActivity returns when the session last received an event.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Close cancels every outstanding timer and feedback window. Events that
// arrive afterwards are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.timer.Cancel()
	c.stopFeedback()
}

func (c *Controller) dispatch(ctx context.Context, ev Event) (State, State) {
	c.mu.Lock()
	prev := c.state
	if c.closed {
		c.mu.Unlock()
		return prev, prev
	}
	next, effects := Reduce(c.rules, prev, ev)
	c.state = next
	c.touched = c.clock.Now()

	var io []Effect
	for _, eff := range effects {
		switch e := eff.(type) {
		case StartTimer:
			c.timer.Start(e.Tag, e.Seconds)
		case CancelTimer:
			c.timer.Cancel()
		case PauseTimer:
			c.timer.Pause()
		case ResumeTimer:
			c.timer.Resume()
		case ScheduleFeedback:
			c.stopFeedback()
			tag := e.Tag
			c.feedback = c.clock.AfterFunc(e.Duration, func() {
				c.dispatch(context.Background(), FeedbackElapsed{Tag: tag})
			})
		case CancelFeedback:
			c.stopFeedback()
		default:
			io = append(io, eff)
		}
	}
	changed := !sameView(prev, next)
	snap := next.snapshot(c.rules, c.id)
	c.mu.Unlock()

	if c.debug && prev.Phase != next.Phase {
		log.Printf("[DEBUG] session %s: %s -> %s", c.id, prev.Phase, next.Phase)
	}
	if changed && c.onChange != nil {
		c.onChange(snap)
	}
	for _, eff := range io {
		c.perform(ctx, eff)
	}
	return prev, next
}

// perform runs collaborator calls outside the controller lock. Calls that
// resume the session do so with exactly one event.
func (c *Controller) perform(ctx context.Context, eff Effect) {
	switch e := eff.(type) {
	case FetchContent:
		content, err := c.loader.Fetch(ctx, c.rules.GameID)
		if err == nil && content != nil {
			err = content.Validate(c.rules.Scoring)
		}
		if err != nil {
			log.Printf("Session %s: failed to load content for %s: %v", c.id, c.rules.GameID, err)
			c.dispatch(ctx, ContentFailed{Epoch: e.Epoch, Cause: err.Error()})
			return
		}
		c.dispatch(ctx, ContentLoaded{Epoch: e.Epoch, Content: content})

	case CheckTutorial:
		seen := true
		if c.tutorial != nil {
			var err error
			seen, err = c.tutorial.HasSeen(ctx, c.rules.GameID)
			if err != nil {
				log.Printf("Session %s: failed to read tutorial flag: %v", c.id, err)
				seen = false
			}
		}
		c.dispatch(ctx, TutorialChecked{Epoch: e.Epoch, Seen: seen})

	case MarkTutorialSeen:
		if c.tutorial == nil {
			return
		}
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()
		if err := c.tutorial.MarkSeen(mctx, c.rules.GameID); err != nil {
			log.Printf("Session %s: failed to mark tutorial seen: %v", c.id, err)
		}

	case SubmitResult:
		if c.reporter == nil {
			return
		}
		res := e.Result
		res.SessionID = c.id
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()
		if err := c.reporter.Submit(rctx, res); err != nil {
			log.Printf("Session %s: result submit failed: %v", c.id, err)
		}
	}
}

func (c *Controller) stopFeedback() {
	if c.feedback != nil {
		c.feedback.Stop()
		c.feedback = nil
	}
}

func sameView(a, b State) bool {
	return a.Phase == b.Phase &&
		a.Epoch == b.Epoch &&
		a.TutorialStep == b.TutorialStep &&
		a.Countdown == b.Countdown &&
		a.Suspended == b.Suspended &&
		a.Round == b.Round &&
		a.ItemIndex == b.ItemIndex &&
		a.RemainingTime == b.RemainingTime &&
		a.Score == b.Score &&
		a.Lives == b.Lives &&
		a.Streak == b.Streak &&
		a.Accepted == b.Accepted
}
