package handlers

import (
	"log"
	"net/http"

	"portfolio-snake/auth"
	"portfolio-snake/leaderboard"
)

// LeaderboardHandler serves the shared top five. Reading is public; resetting
// requires an admin token.
type LeaderboardHandler struct {
	board         *leaderboard.Store
	reset         http.Handler
	allowedOrigin string
}

func NewLeaderboardHandler(board *leaderboard.Store, issuer *auth.Issuer, allowedOrigin string) *LeaderboardHandler {
	h := &LeaderboardHandler{
		board:         board,
		allowedOrigin: allowedOrigin,
	}
	h.reset = auth.RequireAdmin(issuer)(http.HandlerFunc(h.handleReset))
	return h
}

func (h *LeaderboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, h.allowedOrigin, "GET, DELETE") {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"entries":    h.board.Leaderboard(),
			"high_score": h.board.HighScore(),
		})
	case http.MethodDelete:
		h.reset.ServeHTTP(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LeaderboardHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Reset(); err != nil {
		log.Printf("Leaderboard reset failed: %v", err)
		http.Error(w, "Failed to reset leaderboard", http.StatusInternalServerError)
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		log.Printf("Leaderboard reset by %s", claims.Username)
	}
	w.WriteHeader(http.StatusNoContent)
}
