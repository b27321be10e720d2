package repository

import (
	"context"
	"fmt"

	"nutriquest/internal/database"
	"nutriquest/internal/game"
	"nutriquest/internal/models"
)

// TutorialRepository stores which tutorials each player has finished
type TutorialRepository struct {
	db *database.DB
}

// NewTutorialRepository creates a new tutorial repository
func NewTutorialRepository(db *database.DB) *TutorialRepository {
	return &TutorialRepository{db: db}
}

// HasSeen reports whether the player finished the game's tutorial
func (r *TutorialRepository) HasSeen(ctx context.Context, playerID, gameID string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM tutorial_flags WHERE player_id = ? AND game_id = ?"
	if err := r.db.QueryRowContext(ctx, query, playerID, gameID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to read tutorial flag: %w", err)
	}
	return count > 0, nil
}

// MarkSeen records the flag. Marking twice keeps the first timestamp.
func (r *TutorialRepository) MarkSeen(ctx context.Context, playerID, gameID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Dialect.MarkTutorialSeenQuery(), playerID, gameID); err != nil {
		return fmt.Errorf("failed to mark tutorial seen: %w", err)
	}
	return nil
}

// ListFlags returns every stored flag
func (r *TutorialRepository) ListFlags(ctx context.Context) ([]models.TutorialFlag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT player_id, game_id, seen_at FROM tutorial_flags ORDER BY player_id, game_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query tutorial flags: %w", err)
	}
	defer rows.Close()

	var flags []models.TutorialFlag
	for rows.Next() {
		var f models.TutorialFlag
		if err := rows.Scan(&f.PlayerID, &f.GameID, &f.SeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan tutorial flag: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// ForPlayer returns the tutorial gate for one player's sessions
func (r *TutorialRepository) ForPlayer(playerID string) game.TutorialGate {
	return playerTutorials{repo: r, playerID: playerID}
}

type playerTutorials struct {
	repo     *TutorialRepository
	playerID string
}

func (p playerTutorials) HasSeen(ctx context.Context, gameKey string) (bool, error) {
	return p.repo.HasSeen(ctx, p.playerID, gameKey)
}

func (p playerTutorials) MarkSeen(ctx context.Context, gameKey string) error {
	return p.repo.MarkSeen(ctx, p.playerID, gameKey)
}
