package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"nutriquest/internal/game"
	"nutriquest/internal/models"
	"nutriquest/internal/repository"
	"nutriquest/internal/validation"
)

var ErrResultNotFound = errors.New("result not found")

// DefaultRecentLimit caps the reflection history when no limit is given
const DefaultRecentLimit = 20

// ResultService stores finished sessions and builds the reflection view
type ResultService struct {
	results  *repository.ResultRepository
	contacts *repository.ContactRepository
	email    *EmailService
	debug    bool
}

// NewResultService creates a new result service. contacts and email may be
// nil, in which case no summaries are sent.
func NewResultService(results *repository.ResultRepository, contacts *repository.ContactRepository, email *EmailService, debug bool) *ResultService {
	return &ResultService{
		results:  results,
		contacts: contacts,
		email:    email,
		debug:    debug,
	}
}

// ReporterFor returns the result reporter for one player's sessions
func (s *ResultService) ReporterFor(playerID string) game.ResultReporter {
	return playerReporter{svc: s, playerID: playerID}
}

type playerReporter struct {
	svc      *ResultService
	playerID string
}

func (p playerReporter) Submit(ctx context.Context, res game.SessionResult) error {
	_, err := p.svc.Record(ctx, p.playerID, res)
	return err
}

// Record stores a finished session and mails the parent summary when the
// player has opted in. A failed mail does not fail the record.
func (s *ResultService) Record(ctx context.Context, playerID string, res game.SessionResult) (*models.SessionResult, error) {
	saved, err := s.results.Save(ctx, playerID, res)
	if err != nil {
		return nil, err
	}
	if s.debug {
		log.Printf("[DEBUG] Result stored: session=%s player=%s status=%s score=%d",
			saved.SessionID, playerID, saved.Status, saved.Score)
	}

	if s.contacts == nil || s.email == nil || !s.email.IsEnabled() {
		return saved, nil
	}
	contact, err := s.contacts.Get(ctx, playerID)
	if err != nil {
		log.Printf("Failed to load contact for %s: %v", playerID, err)
		return saved, nil
	}
	if contact == nil || !contact.Notify || contact.ParentEmail == "" {
		return saved, nil
	}
	if err := s.email.SendSessionSummary(ctx, *contact, Reflect(*saved)); err != nil {
		log.Printf("Failed to send session summary for %s: %v", saved.SessionID, err)
	}
	return saved, nil
}

// Reflection returns the reflection view of a player's latest result for a
// session
func (s *ResultService) Reflection(ctx context.Context, playerID, sessionID string) (*models.Reflection, error) {
	res, err := s.results.GetLatestForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if res == nil || res.PlayerID != playerID {
		return nil, ErrResultNotFound
	}
	r := Reflect(*res)
	return &r, nil
}

// Recent returns a player's newest results
func (s *ResultService) Recent(ctx context.Context, playerID string, limit int) ([]models.Reflection, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultRecentLimit
	}
	results, err := s.results.ListRecentByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.Reflection, 0, len(results))
	for _, res := range results {
		out = append(out, Reflect(res))
	}
	return out, nil
}

// SaveContact validates and stores where a player's summaries go
func (s *ResultService) SaveContact(ctx context.Context, c models.PlayerContact) error {
	if s.contacts == nil {
		return errors.New("contacts are not configured")
	}
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	c.ParentEmail = strings.TrimSpace(c.ParentEmail)
	if err := validation.ValidateDisplayName(c.DisplayName); err != nil {
		return err
	}
	if c.ParentEmail != "" {
		if err := validation.ValidateEmail(c.ParentEmail); err != nil {
			return err
		}
	} else if c.Notify {
		return validation.ValidationError{Field: "parentEmail", Message: "an email is needed for summaries"}
	}
	return s.contacts.Save(ctx, c)
}

// Reflect builds the end-of-game summary for a stored result
func Reflect(res models.SessionResult) models.Reflection {
	acc := res.Accuracy()
	r := models.Reflection{Result: res, Accuracy: acc}

	switch game.Status(res.Status) {
	case game.StatusCompleted:
		switch {
		case acc >= 90:
			r.Headline = "Super star!"
			r.Message = "You know your healthy foods. Keep it up!"
		case acc >= 60:
			r.Headline = "Well done!"
			r.Message = "Great effort. Play again to beat your score."
		default:
			r.Headline = "You finished!"
			r.Message = "Every game teaches something new. Try once more!"
		}
	case game.StatusGameOver:
		r.Headline = "Out of lives"
		r.Message = "Nice try! Take a breath and give it another go."
	case game.StatusTimeUp:
		r.Headline = "Time's up!"
		r.Message = "The clock won this time. You can be quicker next round."
	case game.StatusExited:
		r.Headline = "See you soon"
		r.Message = "You left early. Your progress so far was saved."
	default:
		r.Headline = "Game over"
		r.Message = "Thanks for playing!"
	}
	return r
}

func gameTitle(gameID string) string {
	if rules, err := game.DefaultRules(gameID); err == nil && rules.Title != "" {
		return rules.Title
	}
	return gameID
}
