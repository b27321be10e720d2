package models

import "time"

// PlayerContact is where a player's session summaries are sent
type PlayerContact struct {
	PlayerID    string    `json:"playerId"`
	DisplayName string    `json:"displayName"`
	ParentEmail string    `json:"parentEmail"`
	Notify      bool      `json:"notify"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TutorialFlag records that a player finished a game's tutorial
type TutorialFlag struct {
	PlayerID string    `json:"playerId"`
	GameID   string    `json:"gameId"`
	SeenAt   time.Time `json:"seenAt"`
}
