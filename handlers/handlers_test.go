package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolio-snake/auth"
	"portfolio-snake/constants"
	"portfolio-snake/game"
	"portfolio-snake/leaderboard"
	"portfolio-snake/models"
	"portfolio-snake/storage"
	webrtcManager "portfolio-snake/webrtc"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	games  *game.Manager
	board  *leaderboard.Store
	issuer *auth.Issuer
}

func newTestEnv(t *testing.T, allowedOrigin string) *testEnv {
	t.Helper()
	board := leaderboard.NewStore(storage.NewMemory())
	issuer := auth.NewIssuer("secret", "admin", "pw", constants.ADMIN_SESSION)

	cfg := game.DefaultConfig()
	cfg.TickRate = 5 * time.Millisecond
	cfg.FrameRate = 2 * time.Millisecond
	cfg.ScoreRate = 20 * time.Millisecond
	games := game.NewManager(board, issuer, cfg)

	peers := webrtcManager.NewManager(nil, WebRTCEvents(games))

	mux := http.NewServeMux()
	mux.Handle("/ws", NewWebSocketHandler(games, allowedOrigin))
	mux.HandleFunc("/webrtc/offer", NewWebRTCHandler(peers, allowedOrigin).HandleOffer)
	mux.Handle("/leaderboard", NewLeaderboardHandler(board, issuer, allowedOrigin))
	mux.HandleFunc("/auth/login", NewAuthHandler(issuer, constants.ADMIN_SESSION, allowedOrigin).HandleLogin)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Cleanup(peers.Close)
	t.Cleanup(games.Shutdown)

	return &testEnv{server: server, games: games, board: board, issuer: issuer}
}

func (e *testEnv) dial(t *testing.T, clientID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?client_id=" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads newline-batched frames until a message of msgType matches.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string, match func(map[string]any) bool) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var msg map[string]any
			require.NoError(t, json.Unmarshal(line, &msg))
			if msg["type"] == msgType && (match == nil || match(msg)) {
				return msg
			}
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func TestWebSocketSession(t *testing.T) {
	env := newTestEnv(t, "")
	clientID := uuid.New().String()
	conn := env.dial(t, clientID)

	connected := readUntil(t, conn, constants.MSG_CONNECTED, nil)
	client, ok := connected["client"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, clientID, client["id"])
	assert.Equal(t, 1, env.games.Sessions.Len())

	send(t, conn, map[string]any{"type": constants.MSG_START_RUN})
	readUntil(t, conn, constants.MSG_MENU, func(msg map[string]any) bool {
		return msg["visible"] == false
	})

	send(t, conn, map[string]any{"type": constants.MSG_KEY, "key": "ArrowUp"})
	frame := readUntil(t, conn, constants.MSG_FRAME, func(msg map[string]any) bool {
		return msg["status"] == "running"
	})
	assert.Contains(t, frame, "frame")

	conn.Close()
	assert.Eventually(t, func() bool {
		return env.games.Sessions.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketSavedNameSurvivesReconnect(t *testing.T) {
	env := newTestEnv(t, "")
	clientID := uuid.New().String()

	first := env.dial(t, clientID)
	readUntil(t, first, constants.MSG_CONNECTED, nil)
	send(t, first, map[string]any{"type": constants.MSG_SET_NAME, "name": "Ann"})
	send(t, first, map[string]any{"type": constants.MSG_GET_LEADERBOARD})
	readUntil(t, first, constants.MSG_LEADERBOARD, nil)
	first.Close()

	second := env.dial(t, clientID)
	connected := readUntil(t, second, constants.MSG_CONNECTED, nil)
	assert.Equal(t, "Ann", connected["saved_name"])
}

func TestWebSocketAssignsClientID(t *testing.T) {
	env := newTestEnv(t, "")
	conn := env.dial(t, "not-a-uuid")

	connected := readUntil(t, conn, constants.MSG_CONNECTED, nil)
	client := connected["client"].(map[string]any)
	id, _ := client["id"].(string)

	assert.NotEqual(t, "not-a-uuid", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestWebSocketIgnoresMalformedMessages(t *testing.T) {
	env := newTestEnv(t, "")
	conn := env.dial(t, "")
	readUntil(t, conn, constants.MSG_CONNECTED, nil)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"key":"ArrowUp"}`)))
	send(t, conn, map[string]any{"type": constants.MSG_GET_LEADERBOARD})

	readUntil(t, conn, constants.MSG_LEADERBOARD, nil)
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t, "https://snake.example")
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://snake.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}

func TestLeaderboardGet(t *testing.T) {
	env := newTestEnv(t, "")
	env.board.AddScore("Ann", 50)
	env.board.AddScore("Bob", 80)

	resp, err := http.Get(env.server.URL + "/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Entries   []models.LeaderboardEntry `json:"entries"`
		HighScore int                       `json:"high_score"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []models.LeaderboardEntry{{Name: "Bob", Score: 80}, {Name: "Ann", Score: 50}}, body.Entries)
	assert.Equal(t, 80, body.HighScore)
}

func TestLeaderboardResetRequiresAdmin(t *testing.T) {
	env := newTestEnv(t, "")
	env.board.AddScore("Bob", 80)
	h := NewLeaderboardHandler(env.board, env.issuer, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/leaderboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, env.board.Leaderboard(), 1)

	token, err := env.issuer.Login("admin", "pw")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, "/leaderboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.board.Leaderboard())
}

func TestLeaderboardMethods(t *testing.T) {
	env := newTestEnv(t, "https://snake.example")
	h := NewLeaderboardHandler(env.board, env.issuer, "https://snake.example")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/leaderboard", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/leaderboard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://snake.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "")
	h := NewAuthHandler(env.issuer, constants.ADMIN_SESSION, "")

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "ok", method: http.MethodPost, body: `{"username":"admin","password":"pw"}`, want: http.StatusOK},
		{name: "wrong password", method: http.MethodPost, body: `{"username":"admin","password":"no"}`, want: http.StatusUnauthorized},
		{name: "bad json", method: http.MethodPost, body: `{`, want: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, want: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleLogin(rec, httptest.NewRequest(tt.method, "/auth/login", strings.NewReader(tt.body)))

			require.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusOK {
				return
			}
			var body struct {
				Token     string `json:"token"`
				ExpiresIn int    `json:"expires_in"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, 1800, body.ExpiresIn)
			_, err := env.issuer.ValidateToken(body.Token)
			assert.NoError(t, err)
		})
	}
}

func TestLoginDisabled(t *testing.T) {
	issuer := auth.NewIssuer("secret", "admin", "", constants.ADMIN_SESSION)
	h := NewAuthHandler(issuer, constants.ADMIN_SESSION, "")

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":""}`)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebRTCOffer(t *testing.T) {
	env := newTestEnv(t, "")

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	defer pc.Close()
	_, err = pc.CreateDataChannel("game", nil)
	require.NoError(t, err)
	offer, err := pc.CreateOffer(nil)
	require.NoError(t, err)
	require.NoError(t, pc.SetLocalDescription(offer))

	payload, err := json.Marshal(map[string]any{
		"client_id": "not-a-uuid",
		"offer":     map[string]string{"type": "offer", "sdp": offer.SDP},
	})
	require.NoError(t, err)

	resp, err := http.Post(env.server.URL+"/webrtc/offer", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ClientID string `json:"client_id"`
		Answer   struct {
			Type string `json:"type"`
			SDP  string `json:"sdp"`
		} `json:"answer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "answer", body.Answer.Type)
	assert.NotEmpty(t, body.Answer.SDP)
	_, err = uuid.Parse(body.ClientID)
	assert.NoError(t, err)
}

func TestWebRTCOfferRejectsBadRequests(t *testing.T) {
	env := newTestEnv(t, "")

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "wrong method", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "preflight", method: http.MethodOptions, want: http.StatusOK},
		{name: "bad json", method: http.MethodPost, body: `{`, want: http.StatusBadRequest},
		{name: "missing sdp", method: http.MethodPost, body: `{"offer":{"type":"offer"}}`, want: http.StatusBadRequest},
		{name: "garbage sdp", method: http.MethodPost, body: `{"offer":{"type":"offer","sdp":"nope"}}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, env.server.URL+"/webrtc/offer", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestWebRTCEventsDriveSession(t *testing.T) {
	env := newTestEnv(t, "")
	events := WebRTCEvents(env.games)
	client := newClient("")

	events.Open(client)
	require.NotEmpty(t, client.SessionID)
	assert.Equal(t, 1, env.games.Sessions.Len())

	events.Message(client, constants.MSG_GET_LEADERBOARD, map[string]any{"type": constants.MSG_GET_LEADERBOARD})
	deadline := time.After(2 * time.Second)
	found := false
	for !found {
		select {
		case raw := <-client.Send:
			var msg map[string]any
			require.NoError(t, json.Unmarshal(raw, &msg))
			found = msg["type"] == constants.MSG_LEADERBOARD
		case <-deadline:
			t.Fatal("no leaderboard message")
		}
	}

	events.Close(client)
	assert.Equal(t, 0, env.games.Sessions.Len())
}

func TestWebRTCEventsReuseSession(t *testing.T) {
	env := newTestEnv(t, "")
	events := WebRTCEvents(env.games)
	client := newClient("")

	events.Open(client)
	first := client.SessionID
	events.Open(client)

	assert.Equal(t, first, client.SessionID)
	assert.Equal(t, 1, env.games.Sessions.Len())

	events.Close(client)
	assert.Equal(t, 0, env.games.Sessions.Len())
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, originAllowed("", "https://any.example"))
	assert.True(t, originAllowed("https://snake.example", ""))
	assert.True(t, originAllowed("https://snake.example", "https://snake.example"))
	assert.False(t, originAllowed("https://snake.example", "https://evil.example"))
}
