package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *Issuer {
	return NewIssuer("test-secret", "admin", "hunter2", 30*time.Minute)
}

func TestLogin(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Login("admin", "hunter2")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, adminRole, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	issuer := newTestIssuer()

	_, err := issuer.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = issuer.Login("root", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledWithoutPassword(t *testing.T) {
	issuer := NewIssuer("test-secret", "admin", "", time.Minute)

	_, err := issuer.Login("admin", "")
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestTokenExpires(t *testing.T) {
	issuer := newTestIssuer()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.GenerateToken("admin")
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(29 * time.Minute) }
	_, err = issuer.ValidateToken(token)
	assert.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(31 * time.Minute) }
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	other := NewIssuer("other-secret", "admin", "hunter2", time.Minute)
	token, err := other.GenerateToken("admin")
	require.NoError(t, err)

	_, err = newTestIssuer().ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newTestIssuer().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	issuer := newTestIssuer()
	token, err := issuer.GenerateToken("admin")
	require.NoError(t, err)

	var seen *Claims
	handler := RequireAdmin(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "header", header: "Bearer " + token, want: http.StatusNoContent},
		{name: "query", query: "?token=" + token, want: http.StatusNoContent},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "bad format", header: token, want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodDelete, "/leaderboard"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "admin", seen.Username)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}
