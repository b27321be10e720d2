package game

// Phase is the lifecycle stage of a game session.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseLoading         Phase = "loading"
	PhaseContentError    Phase = "content_error"
	PhaseContentReady    Phase = "content_ready"
	PhaseTutorialCheck   Phase = "tutorial_check"
	PhaseShowingTutorial Phase = "showing_tutorial"
	PhaseCountdown       Phase = "countdown"
	PhasePlaying         Phase = "playing"
	PhaseFeedback        Phase = "feedback"
	PhaseRoundAdvance    Phase = "round_advance"
	PhaseSessionComplete Phase = "session_complete"
)

// Terminal reports whether no further transition happens without an explicit
// restart or retry.
func (p Phase) Terminal() bool {
	return p == PhaseSessionComplete || p == PhaseContentError
}

// Status describes how a session run ended.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusGameOver  Status = "GAME_OVER"
	StatusTimeUp    Status = "TIME_UP"
	StatusExited    Status = "EXITED"
)

// CountdownSeconds is the length of the pre-play countdown.
const CountdownSeconds = 3
