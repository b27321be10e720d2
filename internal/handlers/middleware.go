package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"nutriquest/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const PlayerContextKey ContextKey = "player"

// TokenVerifier checks a bearer token and returns its claims
type TokenVerifier interface {
	Verify(raw string) (*security.PlayerClaims, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  TokenVerifier
	limiter *security.RateLimiter
	debug   bool
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens TokenVerifier, limiter *security.RateLimiter, debug bool) *Middleware {
	return &Middleware{tokens: tokens, limiter: limiter, debug: debug}
}

// RequirePlayer is middleware that requires a valid player bearer token
func (m *Middleware) RequirePlayer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, err := m.tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			if m.debug {
				log.Printf("[DEBUG] Rejected player token from %s: %v", security.GetClientIP(r), err)
			}
			msg := ErrUnauthorized
			if errors.Is(err, security.ErrTokenExpired) {
				msg = "Player token expired"
			}
			respondWithError(w, http.StatusUnauthorized, msg, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), PlayerContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// LimitAttempts rejects a player's requests beyond the attempt rate
func (m *Middleware) LimitAttempts(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := GetPlayerIDFromContext(r.Context())
		if m.limiter != nil && !m.limiter.Allow(playerID) {
			log.Printf("Rate limit hit: player=%s path=%s", playerID, r.URL.Path)
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s %s", r.Method, r.URL.Path, rec.status, time.Since(start), security.GetClientIP(r))
	})
}

// GetPlayerFromContext retrieves the player claims from the request context
func GetPlayerFromContext(ctx context.Context) *security.PlayerClaims {
	claims, ok := ctx.Value(PlayerContextKey).(*security.PlayerClaims)
	if !ok {
		return nil
	}
	return claims
}

// GetPlayerIDFromContext returns the authenticated player id, or "" when the
// request carries none
func GetPlayerIDFromContext(ctx context.Context) string {
	if claims := GetPlayerFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
