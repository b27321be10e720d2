package models

import "time"

// ContentItem is one stored play item. Payload is the item encoded as JSON.
type ContentItem struct {
	ID        int64     `json:"id"`
	GameID    string    `json:"gameId"`
	ItemKey   string    `json:"itemKey"`
	Round     int       `json:"round"`
	Position  int       `json:"position"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameSettings overrides a game's built-in rules. Rules holds YAML.
type GameSettings struct {
	GameID     string    `json:"gameId"`
	TimeBudget int       `json:"timeBudget"`
	Rules      string    `json:"rules"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// GameSummary is the catalog entry the game picker shows
type GameSummary struct {
	GameID     string `json:"gameId"`
	Title      string `json:"title"`
	Scoring    string `json:"scoring"`
	TimeBudget int    `json:"timeBudget"`
	TimerScope string `json:"timerScope"`
	Lives      int    `json:"lives,omitempty"`
	Items      int    `json:"items"`
	Rounds     int    `json:"rounds"`
}
