package game

import "time"

// Event is something that happened to a session: a load completion, a timer
// tick, a player action.
type Event interface {
	event()
}

type (
	// Started begins loading content.
	Started struct{}
	// ContentLoaded resumes Loading with the fetched content.
	ContentLoaded struct {
		Epoch   uint64
		Content *ContentSet
	}
	// ContentFailed resumes Loading with the fetch error.
	ContentFailed struct {
		Epoch uint64
		Cause string
	}
	// TutorialChecked resumes TutorialCheck with the gate's answer.
	TutorialChecked struct {
		Epoch uint64
		Seen  bool
	}
	TutorialNext struct{}
	TutorialBack struct{}
	// TimerTicked reports one elapsed second of a tagged timer.
	TimerTicked struct {
		Tag       TimerTag
		Remaining int
	}
	// TimerExpired reports that a tagged timer reached zero.
	TimerExpired struct {
		Tag TimerTag
	}
	// FeedbackElapsed closes a feedback window.
	FeedbackElapsed struct {
		Tag TimerTag
	}
	AttemptSubmitted struct {
		Attempt Attempt
	}
	RoundRequested   struct{}
	RestartRequested struct{}
	RetryRequested   struct{}
	ExitRequested    struct{}
	PauseRequested   struct{}
	ResumeRequested  struct{}
)

func (Started) event()          {}
func (ContentLoaded) event()    {}
func (ContentFailed) event()    {}
func (TutorialChecked) event()  {}
func (TutorialNext) event()     {}
func (TutorialBack) event()     {}
func (TimerTicked) event()      {}
func (TimerExpired) event()     {}
func (FeedbackElapsed) event()  {}
func (AttemptSubmitted) event() {}
func (RoundRequested) event()   {}
func (RestartRequested) event() {}
func (RetryRequested) event()   {}
func (ExitRequested) event()    {}
func (PauseRequested) event()   {}
func (ResumeRequested) event()  {}

// Effect is work the controller performs after a reduction.
type Effect interface {
	effect()
}

type (
	FetchContent struct {
		Epoch uint64
	}
	CheckTutorial struct {
		Epoch uint64
	}
	MarkTutorialSeen struct{}
	StartTimer       struct {
		Tag     TimerTag
		Seconds int
	}
	CancelTimer struct{}
	PauseTimer  struct{}
	ResumeTimer struct{}
	// ScheduleFeedback opens a non-interactive feedback window.
	ScheduleFeedback struct {
		Tag      TimerTag
		Duration time.Duration
	}
	CancelFeedback struct{}
	SubmitResult   struct {
		Result SessionResult
	}
)

func (FetchContent) effect()     {}
func (CheckTutorial) effect()    {}
func (MarkTutorialSeen) effect() {}
func (StartTimer) effect()       {}
func (CancelTimer) effect()      {}
func (PauseTimer) effect()       {}
func (ResumeTimer) effect()      {}
func (ScheduleFeedback) effect() {}
func (CancelFeedback) effect()   {}
func (SubmitResult) effect()     {}
