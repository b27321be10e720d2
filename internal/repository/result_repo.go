package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nutriquest/internal/database"
	"nutriquest/internal/game"
	"nutriquest/internal/models"
)

// ResultRepository stores finished session results
type ResultRepository struct {
	db *database.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *database.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `id, session_id, player_id, game_id, status, score, correct_answers,
	total_questions, time_left, streak, extra, created_at`

// Save stores a result for a player
func (r *ResultRepository) Save(ctx context.Context, playerID string, res game.SessionResult) (*models.SessionResult, error) {
	extra, err := json.Marshal(res.Extra)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result extras: %w", err)
	}

	query := `
		INSERT INTO session_results (session_id, player_id, game_id, status, score, correct_answers,
			total_questions, time_left, streak, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	status := string(res.Status())
	id, err := r.db.ExecReturningID(ctx, query, res.SessionID, playerID, res.GameID, status, res.Score,
		res.CorrectAnswers, res.TotalQuestions, res.TimeLeft, res.Streak, string(extra))
	if err != nil {
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	return &models.SessionResult{
		ID:             id,
		SessionID:      res.SessionID,
		PlayerID:       playerID,
		GameID:         res.GameID,
		Status:         status,
		Score:          res.Score,
		CorrectAnswers: res.CorrectAnswers,
		TotalQuestions: res.TotalQuestions,
		TimeLeft:       res.TimeLeft,
		Streak:         res.Streak,
		Extra:          res.Extra,
		CreatedAt:      time.Now(),
	}, nil
}

// GetLatestForSession returns the newest result of a session, or nil when it
// has none. A restarted session stores one result per run.
func (r *ResultRepository) GetLatestForSession(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	query := "SELECT " + resultColumns + " FROM session_results WHERE session_id = ? ORDER BY id DESC LIMIT 1"
	res, err := scanResult(r.db.QueryRowContext(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return res, nil
}

// ListRecentByPlayer returns a player's newest results first
func (r *ResultRepository) ListRecentByPlayer(ctx context.Context, playerID string, limit int) ([]models.SessionResult, error) {
	query := "SELECT " + resultColumns + " FROM session_results WHERE player_id = ? ORDER BY created_at DESC, id DESC LIMIT ?"
	return r.list(ctx, query, playerID, limit)
}

// ListAll returns every stored result, oldest first
func (r *ResultRepository) ListAll(ctx context.Context) ([]models.SessionResult, error) {
	return r.list(ctx, "SELECT "+resultColumns+" FROM session_results ORDER BY id")
}

func (r *ResultRepository) list(ctx context.Context, query string, args ...any) ([]models.SessionResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []models.SessionResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*models.SessionResult, error) {
	res := &models.SessionResult{}
	var extra string
	err := row.Scan(&res.ID, &res.SessionID, &res.PlayerID, &res.GameID, &res.Status, &res.Score,
		&res.CorrectAnswers, &res.TotalQuestions, &res.TimeLeft, &res.Streak, &extra, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	if extra != "" {
		if err := json.Unmarshal([]byte(extra), &res.Extra); err != nil {
			return nil, fmt.Errorf("failed to decode result extras: %w", err)
		}
	}
	return res, nil
}
