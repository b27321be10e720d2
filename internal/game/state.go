package game

// State is the mutable record a controller owns for one session. Reduce
// returns a new value for every event; the previous value is never mutated.
type State struct {
	GameID  string
	Phase   Phase
	Content *ContentSet
	Epoch   uint64

	LoadError    string
	TutorialSeen bool
	TutorialStep int

	Countdown   int
	GameStarted bool
	Suspended   bool

	Round         int
	ItemIndex     int
	RemainingTime int
	TimeBudget    int

	Score      int
	Lives      int
	Streak     int
	BestStreak int

	Accepted        int
	Answered        int
	Correct         int
	Missed          int
	Moves           int
	MatchedPairs    int
	RoundsCompleted int

	Pending []Card
	Matched map[string]bool

	LastOutcome *Outcome
	Status      Status

	Clock    TimerTag
	Feedback TimerTag
	Seq      uint64

	// HeldExpiry is a clock expiry that arrived while suspended. It is
	// applied on resume.
	HeldExpiry TimerTag

	Result *SessionResult
}

// NewState returns the idle state for a game.
func NewState(gameID string) State {
	return State{GameID: gameID, Phase: PhaseIdle}
}

// ActiveItem returns the item being played, if any.
func (s State) ActiveItem() (PlayItem, bool) {
	if s.Content == nil || s.ItemIndex < 0 || s.ItemIndex >= len(s.Content.Items) {
		return PlayItem{}, false
	}
	return s.Content.Items[s.ItemIndex], true
}

// PairsInRound returns the number of memory pairs in the current round.
func (s State) PairsInRound() int {
	if s.Content == nil {
		return 0
	}
	return s.Content.RoundSize(s.Round)
}

// SessionResult is the terminal summary of one session run.
type SessionResult struct {
	SessionID      string         `json:"sessionId,omitempty"`
	GameID         string         `json:"gameId"`
	Score          int            `json:"score"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalQuestions int            `json:"totalQuestions"`
	TimeLeft       int            `json:"timeLeft"`
	Streak         int            `json:"streak"`
	Extra          map[string]any `json:"extra"`
}

// Status returns the status recorded in the result's extra fields.
func (r SessionResult) Status() Status {
	if s, ok := r.Extra["status"].(Status); ok {
		return s
	}
	if s, ok := r.Extra["status"].(string); ok {
		return Status(s)
	}
	return ""
}

// Snapshot is the read-only view of a session handed to the presentation
// layer.
type Snapshot struct {
	SessionID string `json:"sessionId"`
	GameID    string `json:"gameId"`
	Phase     Phase  `json:"phase"`

	LoadError    string `json:"loadError,omitempty"`
	TutorialStep int    `json:"tutorialStep"`
	TutorialText string `json:"tutorialText,omitempty"`
	TutorialLen  int    `json:"tutorialLength,omitempty"`

	Countdown     int  `json:"countdown"`
	GameStarted   bool `json:"gameStarted"`
	Suspended     bool `json:"suspended"`
	Round         int  `json:"round"`
	ItemIndex     int  `json:"itemIndex"`
	TotalItems    int  `json:"totalItems"`
	RemainingTime int  `json:"remainingTime"`

	Score        int `json:"score"`
	Lives        int `json:"lives"`
	Streak       int `json:"streak"`
	Answered     int `json:"answered"`
	Correct      int `json:"correct"`
	Moves        int `json:"moves"`
	MatchedPairs int `json:"matchedPairs"`
	PairsInRound int `json:"pairsInRound"`

	ActiveItem  *PlayItem      `json:"activeItem,omitempty"`
	Board       []BoardCard    `json:"board,omitempty"`
	Pending     []Card         `json:"pending,omitempty"`
	LastOutcome *Outcome       `json:"lastOutcome,omitempty"`
	Result      *SessionResult `json:"result,omitempty"`
}

func (s State) snapshot(rules Rules, sessionID string) Snapshot {
	snap := Snapshot{
		SessionID:     sessionID,
		GameID:        s.GameID,
		Phase:         s.Phase,
		LoadError:     s.LoadError,
		TutorialStep:  s.TutorialStep,
		TutorialLen:   len(rules.TutorialSteps),
		Countdown:     s.Countdown,
		GameStarted:   s.GameStarted,
		Suspended:     s.Suspended,
		Round:         s.Round,
		ItemIndex:     s.ItemIndex,
		TotalItems:    s.Content.Size(),
		RemainingTime: s.RemainingTime,
		Score:         s.Score,
		Lives:         s.Lives,
		Streak:        s.Streak,
		Answered:      s.Answered,
		Correct:       s.Correct,
		Moves:         s.Moves,
		MatchedPairs:  s.MatchedPairs,
		PairsInRound:  s.PairsInRound(),
		Pending:       append([]Card(nil), s.Pending...),
		LastOutcome:   s.LastOutcome,
		Result:        s.Result,
	}
	if s.Phase == PhaseShowingTutorial && s.TutorialStep < len(rules.TutorialSteps) {
		snap.TutorialText = rules.TutorialSteps[s.TutorialStep]
	}
	switch s.Phase {
	case PhaseCountdown, PhasePlaying, PhaseFeedback, PhaseRoundAdvance:
		if rules.Scoring == ScoringMatching {
			snap.Board = s.board()
		} else if s.Phase != PhaseCountdown {
			if item, ok := s.ActiveItem(); ok {
				snap.ActiveItem = &item
			}
		}
	}
	return snap
}

// BoardCard is one memory card as the presentation layer draws it.
type BoardCard struct {
	Card
	Label   string `json:"label"`
	FaceUp  bool   `json:"faceUp"`
	Matched bool   `json:"matched"`
}

func (s State) board() []BoardCard {
	if s.Content == nil {
		return nil
	}
	faceUp := make(map[Card]bool, len(s.Pending))
	for _, c := range s.Pending {
		faceUp[c] = true
	}
	var cards []BoardCard
	for _, it := range s.Content.Items {
		if it.Round != s.Round {
			continue
		}
		for _, side := range []Side{SideFood, SideBenefit} {
			c := Card{PairID: it.ID, Side: side}
			label := it.Prompt
			if side == SideBenefit {
				label = it.Match
			}
			matched := s.Matched[it.ID]
			cards = append(cards, BoardCard{
				Card:    c,
				Label:   label,
				FaceUp:  matched || faceUp[c],
				Matched: matched,
			})
		}
	}
	return cards
}
