package models

import "time"

// SessionResult is a finished game session as stored for a player
type SessionResult struct {
	ID             int64          `json:"id"`
	SessionID      string         `json:"sessionId"`
	PlayerID       string         `json:"playerId"`
	GameID         string         `json:"gameId"`
	Status         string         `json:"status"`
	Score          int            `json:"score"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalQuestions int            `json:"totalQuestions"`
	TimeLeft       int            `json:"timeLeft"`
	Streak         int            `json:"streak"`
	Extra          map[string]any `json:"extra"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Accuracy returns the share of correct answers as a whole percentage
func (r *SessionResult) Accuracy() int {
	if r.TotalQuestions <= 0 {
		return 0
	}
	pct := r.CorrectAnswers * 100 / r.TotalQuestions
	if pct > 100 {
		return 100
	}
	return pct
}

// Reflection is the end-of-game summary shown to the player
type Reflection struct {
	Result   SessionResult `json:"result"`
	Accuracy int           `json:"accuracy"`
	Headline string        `json:"headline"`
	Message  string        `json:"message"`
}
