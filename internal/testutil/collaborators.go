package testutil

import (
	"context"
	"errors"
	"sync"

	"nutriquest/internal/game"
)

// CountingLoader serves fixed content and counts fetches.
type CountingLoader struct {
	mu      sync.Mutex
	Content map[string]*game.ContentSet
	Err     error
	calls   int
}

// Fetch returns the configured content or error.
func (l *CountingLoader) Fetch(_ context.Context, gameID string) (*game.ContentSet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.Err != nil {
		return nil, l.Err
	}
	c, ok := l.Content[gameID]
	if !ok {
		return nil, errors.New("no content for " + gameID)
	}
	return c, nil
}

// Calls returns how many times Fetch ran.
func (l *CountingLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// MemoryTutorials is an in-memory tutorial flag store.
type MemoryTutorials struct {
	mu    sync.Mutex
	seen  map[string]bool
	marks int
}

// HasSeen reports the stored flag.
func (m *MemoryTutorials) HasSeen(_ context.Context, gameKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[gameKey], nil
}

// MarkSeen stores the flag.
func (m *MemoryTutorials) MarkSeen(_ context.Context, gameKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	m.seen[gameKey] = true
	m.marks++
	return nil
}

// Marks returns how many times MarkSeen ran.
func (m *MemoryTutorials) Marks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marks
}

// RecordingReporter keeps every submitted result.
type RecordingReporter struct {
	mu      sync.Mutex
	Err     error
	results []game.SessionResult
}

// Submit records the result and returns the configured error.
func (r *RecordingReporter) Submit(_ context.Context, res game.SessionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return r.Err
}

// Results returns a copy of the recorded results.
func (r *RecordingReporter) Results() []game.SessionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]game.SessionResult(nil), r.results...)
}
