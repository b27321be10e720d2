package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutriquest/internal/game"
	"nutriquest/internal/repository"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionService owns the live game sessions. Each session has its own
// controller; the service only indexes them and retires idle ones.
type SessionService struct {
	content   *ContentService
	tutorials *repository.TutorialRepository
	results   *ResultService
	clock     game.Clock
	ttl       time.Duration
	debug     bool

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	ctrl     *game.Controller
	playerID string
}

// NewSessionService creates a new session service. Sessions without
// activity for ttl are retired by Sweep.
func NewSessionService(content *ContentService, tutorials *repository.TutorialRepository, results *ResultService, ttl time.Duration, debug bool) *SessionService {
	return &SessionService{
		content:   content,
		tutorials: tutorials,
		results:   results,
		clock:     game.SystemClock(),
		ttl:       ttl,
		debug:     debug,
		sessions:  make(map[string]*liveSession),
	}
}

// SetClock replaces the clock new sessions run on
func (s *SessionService) SetClock(clock game.Clock) {
	s.clock = clock
}

// Create starts a new session of gameID for a player
func (s *SessionService) Create(ctx context.Context, playerID, gameID string) (*game.Controller, error) {
	rules, err := s.content.RulesFor(ctx, gameID)
	if err != nil {
		return nil, err
	}

	cfg := game.Config{
		ID:     uuid.NewString(),
		Rules:  rules,
		Loader: s.content.Loader(),
		Clock:  s.clock,
		Debug:  s.debug,
	}
	if s.tutorials != nil {
		cfg.Tutorial = s.tutorials.ForPlayer(playerID)
	}
	if s.results != nil {
		cfg.Reporter = s.results.ReporterFor(playerID)
	}

	ctrl, err := game.NewController(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := ctrl.Start(ctx); err != nil {
		ctrl.Close()
		return nil, err
	}

	s.mu.Lock()
	s.sessions[ctrl.ID()] = &liveSession{ctrl: ctrl, playerID: playerID}
	s.mu.Unlock()

	if s.debug {
		log.Printf("[DEBUG] Session %s created: player=%s game=%s", ctrl.ID(), playerID, gameID)
	}
	return ctrl, nil
}

// Get returns a player's live session. Sessions owned by someone else are
// reported as missing.
func (s *SessionService) Get(playerID, sessionID string) (*game.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[sessionID]
	if !ok || ls.playerID != playerID {
		return nil, ErrSessionNotFound
	}
	return ls.ctrl, nil
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep retires sessions idle for longer than the ttl. Abandoned sessions
// still in play are exited first so what was played gets reported.
func (s *SessionService) Sweep(ctx context.Context) int {
	now := s.clock.Now()

	s.mu.Lock()
	var stale []*liveSession
	for id, ls := range s.sessions {
		if now.Sub(ls.ctrl.LastActivity()) > s.ttl {
			stale = append(stale, ls)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ls := range stale {
		if !ls.ctrl.Snapshot().Phase.Terminal() {
			ls.ctrl.Exit(ctx)
		}
		ls.ctrl.Close()
	}
	if len(stale) > 0 {
		log.Printf("Retired %d idle sessions", len(stale))
	}
	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Shutdown exits and closes every live session
func (s *SessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.ctrl.Exit(ctx)
		ls.ctrl.Close()
	}
}
