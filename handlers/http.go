package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func originAllowed(allowed, origin string) bool {
	return allowed == "" || origin == "" || origin == allowed
}

// setCORS answers preflight requests and reports whether the caller should
// stop handling.
func setCORS(w http.ResponseWriter, r *http.Request, allowedOrigin, methods string) bool {
	origin := allowedOrigin
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
