package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nutriquest/internal/database"
	"nutriquest/internal/game"
	"nutriquest/internal/models"
)

// ContentRepository stores play content and per-game rule overrides. It is
// the production game.ContentLoader.
type ContentRepository struct {
	db *database.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *database.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ReplaceGameContent swaps a game's items for the given ones in one transaction
func (r *ContentRepository) ReplaceGameContent(ctx context.Context, gameID string, items []game.PlayItem) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM content_items WHERE game_id = ?", gameID); err != nil {
			return fmt.Errorf("failed to clear content for %s: %w", gameID, err)
		}
		for i, item := range items {
			payload, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("failed to encode item %s: %w", item.ID, err)
			}
			round := item.Round
			if round <= 0 {
				round = 1
			}
			query := "INSERT INTO content_items (game_id, item_key, round, position, payload) VALUES (?, ?, ?, ?, ?)"
			if _, err := tx.ExecReturningID(ctx, query, gameID, item.ID, round, i, string(payload)); err != nil {
				return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
			}
		}
		return nil
	})
}

// CountItems returns how many items a game has
func (r *ContentRepository) CountItems(ctx context.Context, gameID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM content_items WHERE game_id = ?", gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count content: %w", err)
	}
	return count, nil
}

// ListItems returns a game's stored items in play order. An empty gameID
// lists every game.
func (r *ContentRepository) ListItems(ctx context.Context, gameID string) ([]models.ContentItem, error) {
	query := `
		SELECT id, game_id, item_key, round, position, payload, created_at
		FROM content_items
	`
	var args []any
	if gameID != "" {
		query += " WHERE game_id = ?"
		args = append(args, gameID)
	}
	query += " ORDER BY game_id, round, position"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query content: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var it models.ContentItem
		if err := rows.Scan(&it.ID, &it.GameID, &it.ItemKey, &it.Round, &it.Position, &it.Payload, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Fetch loads a game's content set. The time budget comes from the game's
// settings row when one exists.
func (r *ContentRepository) Fetch(ctx context.Context, gameID string) (*game.ContentSet, error) {
	rows, err := r.ListItems(ctx, gameID)
	if err != nil {
		return nil, err
	}

	set := &game.ContentSet{GameID: gameID, Items: make([]game.PlayItem, 0, len(rows))}
	for _, row := range rows {
		var item game.PlayItem
		if err := json.Unmarshal([]byte(row.Payload), &item); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", row.ItemKey, err)
		}
		item.ID = row.ItemKey
		item.Round = row.Round
		set.Items = append(set.Items, item)
	}
	set.Normalize()

	settings, err := r.GetSettings(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		set.TimeBudget = settings.TimeBudget
	}
	return set, nil
}

// GetSettings returns a game's rule overrides, or nil when it has none
func (r *ContentRepository) GetSettings(ctx context.Context, gameID string) (*models.GameSettings, error) {
	query := "SELECT game_id, time_budget, rules, updated_at FROM game_settings WHERE game_id = ?"
	s := &models.GameSettings{}
	err := r.db.QueryRowContext(ctx, query, gameID).Scan(&s.GameID, &s.TimeBudget, &s.Rules, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings for %s: %w", gameID, err)
	}
	return s, nil
}

// SaveSettings inserts or replaces a game's rule overrides
func (r *ContentRepository) SaveSettings(ctx context.Context, s models.GameSettings) error {
	if _, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertGameSettingsQuery(), s.GameID, s.TimeBudget, s.Rules); err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", s.GameID, err)
	}
	return nil
}

// ListSettings returns every game's rule overrides
func (r *ContentRepository) ListSettings(ctx context.Context) ([]models.GameSettings, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT game_id, time_budget, rules, updated_at FROM game_settings ORDER BY game_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var out []models.GameSettings
	for rows.Next() {
		var s models.GameSettings
		if err := rows.Scan(&s.GameID, &s.TimeBudget, &s.Rules, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settings: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
