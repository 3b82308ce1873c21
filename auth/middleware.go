package auth

import (
	"context"
	"log"
	"net/http"
)

type contextKey struct{}

// RequireAdmin rejects requests that don't carry a valid admin token and puts
// the token's claims on the request context.
func RequireAdmin(issuer *Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractAndValidateToken(issuer, r, w)
			if err != nil {
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims RequireAdmin attached to the request.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}

// extractTokenFromRequest extracts token from Authorization header or query parameter
func extractTokenFromRequest(r *http.Request, w http.ResponseWriter) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		return authHeader, nil
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
		return "", ErrInvalidToken
	}
	return "Bearer " + token, nil
}

// extractAndValidateToken extracts token from request and validates it
// Returns nil claims and error if validation fails (error already sent to client)
func extractAndValidateToken(issuer *Issuer, r *http.Request, w http.ResponseWriter) (*Claims, error) {
	authHeader, err := extractTokenFromRequest(r, w)
	if err != nil {
		return nil, err
	}

	tokenString, err := ExtractTokenFromHeader(authHeader)
	if err != nil {
		http.Error(w, "Unauthorized: Invalid token format", http.StatusUnauthorized)
		return nil, err
	}

	claims, err := issuer.ValidateToken(tokenString)
	if err != nil {
		log.Printf("Token validation error: %v", err)
		http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
		return nil, err
	}

	return claims, nil
}
