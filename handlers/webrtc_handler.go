package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"portfolio-snake/game"
	"portfolio-snake/models"
	webrtcManager "portfolio-snake/webrtc"

	"github.com/pion/webrtc/v3"
)

const (
	maxOfferSize = 64 << 10
	answerWait   = 10 * time.Second
)

type WebRTCHandler struct {
	webrtcManager *webrtcManager.Manager
	allowedOrigin string
}

func NewWebRTCHandler(webrtcManager *webrtcManager.Manager, allowedOrigin string) *WebRTCHandler {
	return &WebRTCHandler{
		webrtcManager: webrtcManager,
		allowedOrigin: allowedOrigin,
	}
}

// WebRTCEvents runs one game session per peer: it starts when the data
// channel arrives and ends with the peer connection.
func WebRTCEvents(gameManager *game.Manager) webrtcManager.Events {
	return webrtcManager.Events{
		Open: func(client *models.Client) {
			if _, ok := gameManager.Sessions.Get(client.SessionID); ok {
				return
			}
			gameManager.NewSession(client)
		},
		Message: gameManager.HandleMessage,
		Close: func(client *models.Client) {
			gameManager.RemoveSession(client.SessionID)
		},
	}
}

// HandleOffer handles WebRTC offer from client
func (h *WebRTCHandler) HandleOffer(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, h.allowedOrigin, http.MethodPost) {
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxOfferSize))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var offerData struct {
		ClientID string `json:"client_id"`
		Offer    struct {
			Type string `json:"type"`
			SDP  string `json:"sdp"`
		} `json:"offer"`
	}

	if err := json.Unmarshal(body, &offerData); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if offerData.Offer.SDP == "" {
		http.Error(w, "Offer SDP is required", http.StatusBadRequest)
		return
	}

	client := newClient(offerData.ClientID)
	offer := webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  offerData.Offer.SDP,
	}

	ctx, cancel := context.WithTimeout(r.Context(), answerWait)
	defer cancel()

	answer, err := h.webrtcManager.Accept(ctx, client, offer)
	if err != nil {
		log.Printf("WebRTC offer from %s failed: %v", client.ID, err)
		http.Error(w, "Failed to answer offer", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"client_id": client.ID,
		"answer": map[string]string{
			"type": answer.Type.String(),
			"sdp":  answer.SDP,
		},
	})
}
