package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nutriquest/internal/game"
	"nutriquest/internal/models"
	"nutriquest/internal/service"
	"nutriquest/internal/validation"
)

// GameHandler serves the game session API
type GameHandler struct {
	content  *service.ContentService
	sessions *service.SessionService
	results  *service.ResultService
}

// NewGameHandler creates a new game handler
func NewGameHandler(content *service.ContentService, sessions *service.SessionService, results *service.ResultService) *GameHandler {
	return &GameHandler{
		content:  content,
		sessions: sessions,
		results:  results,
	}
}

// AttemptResponse reports whether an attempt counted, with the view after it
type AttemptResponse struct {
	Status  string        `json:"status"`
	Session game.Snapshot `json:"session"`
}

// ListGames lists the games with their effective rules
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.content.Catalog(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing games", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"games": games})
}

// CreateSession starts a new session of a game for the player
func (h *GameHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	playerID := GetPlayerIDFromContext(r.Context())

	ctrl, err := h.sessions.Create(r.Context(), playerID, r.PathValue("gameId"))
	if errors.Is(err, game.ErrUnknownGame) {
		respondWithError(w, http.StatusNotFound, ErrGameNotFound, "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error creating session", err)
		return
	}
	respondJSON(w, http.StatusCreated, ctrl.Snapshot())
}

// GetSession returns the current view of a session
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, ctrl.Snapshot())
}

// SubmitAttempt resolves a player action. Ignored attempts are not errors.
func (h *GameHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}

	var attempt game.Attempt
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&attempt); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}

	snap, accepted := ctrl.SubmitAttempt(r.Context(), attempt)
	status := "accepted"
	if !accepted {
		status = "ignored"
	}
	respondJSON(w, http.StatusOK, AttemptResponse{Status: status, Session: snap})
}

// TutorialNext, TutorialBack, NextRound, Pause, Resume, Restart, Retry and
// Exit forward a command to the session and return the resulting view.

func (h *GameHandler) TutorialNext(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).AdvanceTutorial)
}

func (h *GameHandler) TutorialBack(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).BackTutorial)
}

func (h *GameHandler) NextRound(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).NextRound)
}

func (h *GameHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).Pause)
}

func (h *GameHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).Resume)
}

func (h *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).Restart)
}

func (h *GameHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).Retry)
}

func (h *GameHandler) Exit(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, (*game.Controller).Exit)
}

// GetResult returns the reflection view of the session's latest result
func (h *GameHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	playerID := GetPlayerIDFromContext(r.Context())

	ref, err := h.results.Reflection(r.Context(), playerID, r.PathValue("id"))
	if errors.Is(err, service.ErrResultNotFound) {
		respondWithError(w, http.StatusNotFound, ErrResultNotFound, "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading result", err)
		return
	}
	respondJSON(w, http.StatusOK, ref)
}

// RecentResults returns the player's reflection history
func (h *GameHandler) RecentResults(w http.ResponseWriter, r *http.Request) {
	playerID := GetPlayerIDFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = n
	}

	results, err := h.results.Recent(r.Context(), playerID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading results", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

// SaveContact stores where the player's session summaries are sent
func (h *GameHandler) SaveContact(w http.ResponseWriter, r *http.Request) {
	var contact models.PlayerContact
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&contact); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return
	}
	contact.PlayerID = GetPlayerIDFromContext(r.Context())

	err := h.results.SaveContact(r.Context(), contact)
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		respondWithError(w, http.StatusBadRequest, verr.Error(), "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving contact", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports liveness
func (h *GameHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": h.sessions.Count()})
}

func (h *GameHandler) session(w http.ResponseWriter, r *http.Request) (*game.Controller, bool) {
	ctrl, err := h.sessions.Get(GetPlayerIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, ErrSessionNotFound, "", nil)
		return nil, false
	}
	return ctrl, true
}

func (h *GameHandler) command(w http.ResponseWriter, r *http.Request, cmd func(*game.Controller, context.Context) game.Snapshot) {
	ctrl, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cmd(ctrl, r.Context()))
}
