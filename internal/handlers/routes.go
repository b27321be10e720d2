package handlers

import "net/http"

// Routes builds the API mux
func Routes(h *GameHandler, mw *Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health)

	mux.HandleFunc("GET /api/games", mw.RequirePlayer(h.ListGames))
	mux.HandleFunc("POST /api/games/{gameId}/sessions", mw.RequirePlayer(h.CreateSession))

	mux.HandleFunc("GET /api/sessions/{id}", mw.RequirePlayer(h.GetSession))
	mux.HandleFunc("POST /api/sessions/{id}/attempts", mw.RequirePlayer(mw.LimitAttempts(h.SubmitAttempt)))
	mux.HandleFunc("POST /api/sessions/{id}/tutorial/next", mw.RequirePlayer(h.TutorialNext))
	mux.HandleFunc("POST /api/sessions/{id}/tutorial/back", mw.RequirePlayer(h.TutorialBack))
	mux.HandleFunc("POST /api/sessions/{id}/next-round", mw.RequirePlayer(h.NextRound))
	mux.HandleFunc("POST /api/sessions/{id}/pause", mw.RequirePlayer(h.Pause))
	mux.HandleFunc("POST /api/sessions/{id}/resume", mw.RequirePlayer(h.Resume))
	mux.HandleFunc("POST /api/sessions/{id}/restart", mw.RequirePlayer(h.Restart))
	mux.HandleFunc("POST /api/sessions/{id}/retry", mw.RequirePlayer(h.Retry))
	mux.HandleFunc("POST /api/sessions/{id}/exit", mw.RequirePlayer(h.Exit))
	mux.HandleFunc("GET /api/sessions/{id}/result", mw.RequirePlayer(h.GetResult))

	mux.HandleFunc("GET /api/players/me/results", mw.RequirePlayer(h.RecentResults))
	mux.HandleFunc("PUT /api/players/me/contact", mw.RequirePlayer(h.SaveContact))

	return mux
}
