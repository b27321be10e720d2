package game

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ScoringKind selects the scoring rule family.
type ScoringKind string

const (
	ScoringBinary      ScoringKind = "binary"
	ScoringMultiSelect ScoringKind = "multi_select"
	ScoringMatching    ScoringKind = "matching"
)

// TimerScope says what the play clock is bound to.
type TimerScope string

const (
	TimerPerItem    TimerScope = "item"
	TimerPerRound   TimerScope = "round"
	TimerPerSession TimerScope = "session"
)

// Game identifiers for the built-in rule tables.
const (
	GameFoodSort = "food-sort"
	GameTrivia   = "trivia"
	GameMemory   = "memory"
	GamePlate    = "plate"
)

var ErrUnknownGame = errors.New("unknown game")

// Rules is the per-game table the generic controller is parameterized by.
type Rules struct {
	GameID  string      `yaml:"id" json:"id"`
	Title   string      `yaml:"title" json:"title"`
	Scoring ScoringKind `yaml:"scoring" json:"scoring"`

	TimeBudget int        `yaml:"time_budget" json:"timeBudget"`
	TimerScope TimerScope `yaml:"timer_scope" json:"timerScope"`
	Lives      int        `yaml:"lives" json:"lives"`

	BasePoints       int  `yaml:"base_points" json:"basePoints"`
	Penalty          int  `yaml:"penalty" json:"penalty"`
	StreakMultiplier bool `yaml:"streak_multiplier" json:"streakMultiplier"`

	PointsPerHealthy    int `yaml:"points_per_healthy" json:"pointsPerHealthy"`
	PenaltyPerUnhealthy int `yaml:"penalty_per_unhealthy" json:"penaltyPerUnhealthy"`
	PerfectBonus        int `yaml:"perfect_bonus" json:"perfectBonus"`

	RoundPoints     []int `yaml:"round_points" json:"roundPoints,omitempty"`
	MismatchPenalty int   `yaml:"mismatch_penalty" json:"mismatchPenalty"`

	TimeoutCostsLife   bool `yaml:"timeout_costs_life" json:"timeoutCostsLife"`
	TimeoutEndsSession bool `yaml:"timeout_ends_session" json:"timeoutEndsSession"`
	TimeoutFeedback    bool `yaml:"timeout_feedback" json:"timeoutFeedback"`
	TimeCritical       bool `yaml:"time_critical" json:"timeCritical"`

	Feedback          time.Duration `yaml:"feedback" json:"feedback"`
	CountdownPerRound bool          `yaml:"countdown_per_round" json:"countdownPerRound"`
	RoundBreak        bool          `yaml:"round_break" json:"roundBreak"`

	TutorialSteps []string `yaml:"tutorial" json:"tutorial,omitempty"`
}

// PointsForRound is what a memory match is worth in the given round.
func (r Rules) PointsForRound(round int) int {
	if round >= 1 && round <= len(r.RoundPoints) {
		return r.RoundPoints[round-1]
	}
	if round < 1 {
		round = 1
	}
	return r.BasePoints * round
}

// Validate rejects rule tables the controller cannot run.
func (r Rules) Validate() error {
	if r.GameID == "" {
		return errors.New("rules: missing game id")
	}
	switch r.Scoring {
	case ScoringBinary, ScoringMultiSelect, ScoringMatching:
	default:
		return fmt.Errorf("rules %s: unknown scoring kind %q", r.GameID, r.Scoring)
	}
	switch r.TimerScope {
	case TimerPerItem, TimerPerRound, TimerPerSession:
	default:
		return fmt.Errorf("rules %s: unknown timer scope %q", r.GameID, r.TimerScope)
	}
	if r.TimeBudget <= 0 {
		return fmt.Errorf("rules %s: time budget must be positive", r.GameID)
	}
	if r.Lives < 0 || r.Feedback < 0 {
		return fmt.Errorf("rules %s: lives and feedback must not be negative", r.GameID)
	}
	// The countdown and the play clock share one timer, so a session-wide
	// clock cannot survive a per-round countdown.
	if r.CountdownPerRound && r.TimerScope == TimerPerSession {
		return fmt.Errorf("rules %s: per-round countdown needs a per-round or per-item clock", r.GameID)
	}
	if r.TimeoutCostsLife && r.Lives == 0 {
		return fmt.Errorf("rules %s: timeout costs a life but the game has no lives", r.GameID)
	}
	return nil
}

var catalog = map[string]Rules{
	GameFoodSort: {
		GameID:             GameFoodSort,
		Title:              "Food Sorter",
		Scoring:            ScoringBinary,
		TimeBudget:         60,
		TimerScope:         TimerPerSession,
		BasePoints:         10,
		Penalty:            5,
		StreakMultiplier:   true,
		TimeoutEndsSession: true,
		TimeCritical:       true,
		Feedback:           1200 * time.Millisecond,
		TutorialSteps: []string{
			"Drag each food into the basket where it belongs.",
			"Healthy foods go in the green basket, treats go in the red one.",
			"Sort as many as you can before the clock runs out!",
		},
	},
	GameTrivia: {
		GameID:           GameTrivia,
		Title:            "Nutrition Trivia",
		Scoring:          ScoringBinary,
		TimeBudget:       15,
		TimerScope:       TimerPerItem,
		Lives:            3,
		BasePoints:       10,
		StreakMultiplier: true,
		TimeoutCostsLife: true,
		TimeoutFeedback:  true,
		TimeCritical:     true,
		Feedback:         2 * time.Second,
		TutorialSteps: []string{
			"Read the question and tap the answer you think is right.",
			"You have 15 seconds for every question and 3 hearts.",
			"A wrong answer or running out of time costs one heart.",
		},
	},
	GameMemory: {
		GameID:             GameMemory,
		Title:              "Food Memory",
		Scoring:            ScoringMatching,
		TimeBudget:         90,
		TimerScope:         TimerPerRound,
		BasePoints:         10,
		MismatchPenalty:    2,
		TimeoutEndsSession: true,
		Feedback:           time.Second,
		CountdownPerRound:  true,
		RoundBreak:         true,
		TutorialSteps: []string{
			"Flip two cards at a time.",
			"Match every food with what it does for your body.",
		},
	},
	GamePlate: {
		GameID:              GamePlate,
		Title:               "Build a Plate",
		Scoring:             ScoringMultiSelect,
		TimeBudget:          30,
		TimerScope:          TimerPerRound,
		PointsPerHealthy:    10,
		PenaltyPerUnhealthy: 5,
		PerfectBonus:        20,
		TimeoutFeedback:     true,
		Feedback:            4 * time.Second,
		TutorialSteps: []string{
			"Pick the foods that make a balanced plate.",
			"Healthy choices earn points, treats take some away.",
			"A perfect plate earns a bonus!",
		},
	},
}

// DefaultRules returns the built-in rule table for a game.
func DefaultRules(gameID string) (Rules, error) {
	r, ok := catalog[gameID]
	if !ok {
		return Rules{}, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	r.RoundPoints = append([]int(nil), r.RoundPoints...)
	r.TutorialSteps = append([]string(nil), r.TutorialSteps...)
	return r, nil
}

// GameIDs lists the games with built-in rule tables.
func GameIDs() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
