package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"nutriquest/internal/database"
	"nutriquest/internal/models"
	"nutriquest/internal/repository"
)

const backupVersion = "1.0"

// BackupData is the complete export of the stored game data
type BackupData struct {
	Version      string                 `json:"version"`
	ExportedAt   time.Time              `json:"exported_at"`
	DatabaseType string                 `json:"database_type"`
	Content      []models.ContentItem   `json:"content"`
	Settings     []models.GameSettings  `json:"settings"`
	Tutorials    []models.TutorialFlag  `json:"tutorials"`
	Results      []models.SessionResult `json:"results"`
	Contacts     []models.PlayerContact `json:"contacts"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db        *database.DB
	content   *repository.ContentRepository
	tutorials *repository.TutorialRepository
	results   *repository.ResultRepository
	contacts  *repository.ContactRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{
		db:        db,
		content:   repository.NewContentRepository(db),
		tutorials: repository.NewTutorialRepository(db),
		results:   repository.NewResultRepository(db),
		contacts:  repository.NewContactRepository(db),
	}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(ctx, file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d items, %d settings, %d tutorial flags, %d results, %d contacts",
		len(backup.Content), len(backup.Settings), len(backup.Tutorials),
		len(backup.Results), len(backup.Contacts))
	return nil
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: "universal",
	}

	var err error
	if backup.Content, err = s.content.ListItems(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to export content: %w", err)
	}
	if backup.Settings, err = s.content.ListSettings(ctx); err != nil {
		return nil, fmt.Errorf("failed to export settings: %w", err)
	}
	if backup.Tutorials, err = s.tutorials.ListFlags(ctx); err != nil {
		return nil, fmt.Errorf("failed to export tutorial flags: %w", err)
	}
	if backup.Results, err = s.results.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export results: %w", err)
	}
	if backup.Contacts, err = s.contacts.ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export contacts: %w", err)
	}
	return backup, nil
}

// Import restores a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup in one transaction. Content and settings
// of the games in the backup are replaced; flags and contacts are upserted;
// results already present are skipped.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := importContent(ctx, tx, backup.Content); err != nil {
			return fmt.Errorf("failed to import content: %w", err)
		}
		if err := importSettings(ctx, tx, backup.Settings); err != nil {
			return fmt.Errorf("failed to import settings: %w", err)
		}
		if err := importTutorials(ctx, tx, backup.Tutorials); err != nil {
			return fmt.Errorf("failed to import tutorial flags: %w", err)
		}
		if err := importResults(ctx, tx, backup.Results); err != nil {
			return fmt.Errorf("failed to import results: %w", err)
		}
		if err := importContacts(ctx, tx, backup.Contacts); err != nil {
			return fmt.Errorf("failed to import contacts: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func importContent(ctx context.Context, tx database.DBTX, items []models.ContentItem) error {
	cleared := make(map[string]bool)
	for _, it := range items {
		if !cleared[it.GameID] {
			if _, err := tx.ExecContext(ctx, "DELETE FROM content_items WHERE game_id = ?", it.GameID); err != nil {
				return err
			}
			cleared[it.GameID] = true
		}
		query := "INSERT INTO content_items (game_id, item_key, round, position, payload) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.ExecContext(ctx, query, it.GameID, it.ItemKey, it.Round, it.Position, it.Payload); err != nil {
			return fmt.Errorf("item %s/%s: %w", it.GameID, it.ItemKey, err)
		}
	}
	return nil
}

func importSettings(ctx context.Context, tx database.DBTX, settings []models.GameSettings) error {
	for _, gs := range settings {
		if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertGameSettingsQuery(), gs.GameID, gs.TimeBudget, gs.Rules); err != nil {
			return fmt.Errorf("game %s: %w", gs.GameID, err)
		}
	}
	return nil
}

func importTutorials(ctx context.Context, tx database.DBTX, flags []models.TutorialFlag) error {
	for _, f := range flags {
		if _, err := tx.ExecContext(ctx, tx.GetDialect().MarkTutorialSeenQuery(), f.PlayerID, f.GameID); err != nil {
			return fmt.Errorf("flag %s/%s: %w", f.PlayerID, f.GameID, err)
		}
	}
	return nil
}

func importResults(ctx context.Context, tx database.DBTX, results []models.SessionResult) error {
	for _, r := range results {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM session_results WHERE session_id = ? AND player_id = ? AND created_at = ?",
			r.SessionID, r.PlayerID, r.CreatedAt).Scan(&exists)
		if err != nil {
			return err
		}
		if exists > 0 {
			continue
		}

		extra, err := json.Marshal(r.Extra)
		if err != nil {
			return fmt.Errorf("result %s: %w", r.SessionID, err)
		}
		query := `
			INSERT INTO session_results (session_id, player_id, game_id, status, score, correct_answers,
				total_questions, time_left, streak, extra, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err = tx.ExecContext(ctx, query, r.SessionID, r.PlayerID, r.GameID, r.Status, r.Score,
			r.CorrectAnswers, r.TotalQuestions, r.TimeLeft, r.Streak, string(extra), r.CreatedAt)
		if err != nil {
			return fmt.Errorf("result %s: %w", r.SessionID, err)
		}
	}
	return nil
}

func importContacts(ctx context.Context, tx database.DBTX, contacts []models.PlayerContact) error {
	for _, c := range contacts {
		if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertContactQuery(), c.PlayerID, c.DisplayName, c.ParentEmail, c.Notify); err != nil {
			return fmt.Errorf("contact %s: %w", c.PlayerID, err)
		}
	}
	return nil
}
