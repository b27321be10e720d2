package game

import (
	"context"
	"errors"
	"fmt"
)

// ContentLoader fetches the play content for a game. The controller calls it
// once per session start and never retries on its own.
type ContentLoader interface {
	Fetch(ctx context.Context, gameID string) (*ContentSet, error)
}

// TutorialGate stores whether the player has seen a game's tutorial.
type TutorialGate interface {
	HasSeen(ctx context.Context, gameKey string) (bool, error)
	MarkSeen(ctx context.Context, gameKey string) error
}

// ResultReporter persists a finished session. Failures are the reporter's to
// log; the controller does not retry.
type ResultReporter interface {
	Submit(ctx context.Context, result SessionResult) error
}

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNoLoader       = errors.New("content loader is required")
)

// ContentLoadError explains why a session ended in ContentError.
type ContentLoadError struct {
	GameID string
	Cause  string
}

func (e *ContentLoadError) Error() string {
	return fmt.Sprintf("load content for %s: %s", e.GameID, e.Cause)
}

// StaticContent is a ContentLoader that always returns the same content.
type StaticContent map[string]*ContentSet

// Fetch returns the content registered for gameID.
func (s StaticContent) Fetch(_ context.Context, gameID string) (*ContentSet, error) {
	c, ok := s[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	return c, nil
}
