package handlers

const (
	ErrInvalidJSON         = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrTooManyRequests     = "Too many attempts, slow down"
	ErrSessionNotFound     = "Session not found"
	ErrResultNotFound      = "No result for this session yet"
	ErrGameNotFound        = "Game not found"
	ErrInternalServerError = "Internal server error"
)

// maxBodyBytes bounds request bodies; attempts and contacts are tiny
const maxBodyBytes = 64 << 10
