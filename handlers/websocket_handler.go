package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"portfolio-snake/game"
	"portfolio-snake/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

type WebSocketHandler struct {
	gameManager *game.Manager
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigin, or from any
// origin when it is empty.
func NewWebSocketHandler(gameManager *game.Manager, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		gameManager: gameManager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(allowedOrigin, r.Header.Get("Origin"))
			},
		},
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := newClient(r.URL.Query().Get("client_id"))
	session := h.gameManager.NewSession(client)

	go h.writePump(client, session, conn)
	h.readPump(client, conn)

	h.gameManager.RemoveSession(session.ID)
}

// newClient keeps a browser's stable id so its saved name survives
// reconnects; anything that isn't a UUID gets a fresh one.
func newClient(clientID string) *models.Client {
	if _, err := uuid.Parse(clientID); err != nil {
		clientID = uuid.New().String()
	}
	return &models.Client{
		ID:       clientID,
		Send:     make(chan []byte, sendBuffer),
		JoinedAt: time.Now(),
	}
}

func (h *WebSocketHandler) readPump(client *models.Client, conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for %s: %v", client.ID, err)
			}
			break
		}

		var msgData map[string]any
		if err := json.Unmarshal(message, &msgData); err != nil {
			log.Printf("Error unmarshaling message from %s: %v", client.ID, err)
			continue
		}

		msgType, ok := msgData["type"].(string)
		if !ok {
			log.Printf("Message from %s missing type field", client.ID)
			continue
		}

		h.gameManager.HandleMessage(client, msgType, msgData)
	}
}

// writePump batches queued messages into one frame, newline separated.
func (h *WebSocketHandler) writePump(client *models.Client, session *game.Session, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-session.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(client.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-client.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
