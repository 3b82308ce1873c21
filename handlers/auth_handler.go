package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"portfolio-snake/auth"
)

type AuthHandler struct {
	issuer        *auth.Issuer
	sessionLength time.Duration
	allowedOrigin string
}

func NewAuthHandler(issuer *auth.Issuer, sessionLength time.Duration, allowedOrigin string) *AuthHandler {
	return &AuthHandler{
		issuer:        issuer,
		sessionLength: sessionLength,
		allowedOrigin: allowedOrigin,
	}
}

// HandleLogin exchanges admin credentials for a token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, h.allowedOrigin, http.MethodPost) {
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&creds); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	token, err := h.issuer.Login(creds.Username, creds.Password)
	switch {
	case errors.Is(err, auth.ErrLoginDisabled):
		http.Error(w, "Admin login is disabled", http.StatusForbidden)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Printf("Failed admin login for %q", creds.Username)
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		log.Printf("Admin login error: %v", err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(h.sessionLength.Seconds()),
	})
}
