package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nutriquest/internal/database"
	"nutriquest/internal/models"
)

// ContactRepository stores where session summaries are sent
type ContactRepository struct {
	db *database.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Save inserts or replaces a player's contact
func (r *ContactRepository) Save(ctx context.Context, c models.PlayerContact) error {
	_, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertContactQuery(), c.PlayerID, c.DisplayName, c.ParentEmail, c.Notify)
	if err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}
	return nil
}

// Get returns a player's contact, or nil when none is stored
func (r *ContactRepository) Get(ctx context.Context, playerID string) (*models.PlayerContact, error) {
	query := "SELECT player_id, display_name, parent_email, notify, updated_at FROM player_contacts WHERE player_id = ?"
	c := &models.PlayerContact{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&c.PlayerID, &c.DisplayName, &c.ParentEmail, &c.Notify, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListAll returns every stored contact
func (r *ContactRepository) ListAll(ctx context.Context) ([]models.PlayerContact, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT player_id, display_name, parent_email, notify, updated_at FROM player_contacts ORDER BY player_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.PlayerContact
	for rows.Next() {
		var c models.PlayerContact
		if err := rows.Scan(&c.PlayerID, &c.DisplayName, &c.ParentEmail, &c.Notify, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
