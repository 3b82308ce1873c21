package game

import (
	"encoding/json"
	"log"
	"strings"

	"portfolio-snake/constants"
	"portfolio-snake/engine"
	"portfolio-snake/models"
)

// HandleMessage routes a decoded client message to the client's session.
// Direction input goes straight to the engine's intent queue; everything else
// is handled on the session loop.
func (gm *Manager) HandleMessage(client *models.Client, msgType string, msg map[string]any) {
	s, exists := gm.Sessions.Get(client.SessionID)
	if !exists {
		sendMessage(client, constants.MSG_ERROR, map[string]any{
			"code":    "NO_SESSION",
			"message": "No game session for this connection",
		})
		return
	}

	switch msgType {
	case constants.MSG_KEY:
		if key, ok := msg["key"].(string); ok {
			s.Key(key)
		}
	case constants.MSG_SWIPE:
		dx, okX := msg["dx"].(float64)
		dy, okY := msg["dy"].(float64)
		if okX && okY {
			s.Swipe(dx, dy)
		}
	default:
		s.Deliver(msgType, msg)
	}
}

// handle runs on the session loop.
func (s *Session) handle(msgType string, msg map[string]any) {
	switch msgType {
	case constants.MSG_START_RUN:
		s.startRun()
	case constants.MSG_SUBMIT_SCORE:
		name, _ := msg["name"].(string)
		s.submit(name)
	case constants.MSG_DISCARD:
		s.discard()
	case constants.MSG_SHOW_MENU:
		screen, _ := msg["screen"].(string)
		s.showMenu(screen)
	case constants.MSG_SET_NAME:
		if name, ok := msg["name"].(string); ok {
			s.board.SetSavedName(strings.TrimSpace(name))
		}
	case constants.MSG_GET_LEADERBOARD:
		s.sendLeaderboard()
	case constants.MSG_RESET_LEADERBOARD:
		token, _ := msg["token"].(string)
		s.resetLeaderboard(token)
	case constants.MSG_CLOSE:
		s.close()
	default:
		s.sendError("UNKNOWN_MESSAGE", "Unknown message type: "+msgType)
	}
}

func (s *Session) startRun() {
	if s.engine.Status() == engine.StatusFrozen {
		s.sendError("RUN_NOT_SUBMITTED", "Submit or discard the finished run first")
		return
	}
	s.engine.StartNewRun()
	s.menu = ""
	s.ticking = true
	s.sendMenu()
}

// submit records the finished run under name, falling back to the saved name
// and then the default one.
func (s *Session) submit(name string) {
	final, ok := s.engine.Submit()
	if !ok {
		s.sendError("NO_FINISHED_RUN", "There is no finished run to submit")
		return
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.board.SavedName()
	}
	if name == "" {
		name = constants.DEFAULT_NAME
	}
	s.board.SetSavedName(name)
	entries := s.board.AddScore(name, final)

	s.send(constants.MSG_LEADERBOARD, map[string]any{
		"entries":     entries,
		"high_score":  s.board.HighScore(),
		"final_score": final,
	})
	s.menu = constants.MENU_MAIN
	s.sendMenu()
}

func (s *Session) discard() {
	if !s.engine.Discard() {
		s.sendError("NO_FINISHED_RUN", "There is no finished run to discard")
		return
	}
	s.menu = constants.MENU_MAIN
	s.sendMenu()
}

func (s *Session) showMenu(screen string) {
	switch screen {
	case constants.MENU_MAIN, constants.MENU_LEADERBOARD, constants.MENU_HOW:
	default:
		s.sendError("UNKNOWN_SCREEN", "Unknown menu screen: "+screen)
		return
	}
	if s.menu == "" || s.menu == constants.MENU_GAME_OVER {
		s.sendError("MENU_LOCKED", "Menus are unavailable during a run")
		return
	}
	s.menu = screen
	s.sendMenu()
}

func (s *Session) resetLeaderboard(token string) {
	if s.auth == nil {
		s.sendError("ADMIN_DISABLED", "Leaderboard reset is not enabled")
		return
	}
	claims, err := s.auth.ValidateToken(token)
	if err != nil {
		s.sendError("UNAUTHORIZED", "Invalid or expired admin token")
		return
	}
	if err := s.board.Reset(); err != nil {
		log.Printf("Leaderboard reset by %s failed: %v", claims.Username, err)
		s.sendError("STORAGE_ERROR", "Could not reset the leaderboard")
		return
	}
	log.Printf("Leaderboard reset by %s", claims.Username)
	s.sendLeaderboard()
}

// close stops the run when the game view is dismissed. An unsubmitted run is
// dropped.
func (s *Session) close() {
	s.engine.Stop()
	s.engine.Discard()
	s.ticking = false
	s.menu = constants.MENU_MAIN
	s.sendMenu()
}

func sendMessage(client *models.Client, msgType string, data map[string]any) {
	message := map[string]any{
		"type": msgType,
	}
	for k, v := range data {
		message[k] = v
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to encode %s for client %s: %v", msgType, client.ID, err)
		return
	}

	select {
	case client.Send <- jsonData:
	default:
		log.Printf("Send buffer full for client %s, dropping %s", client.ID, msgType)
	}
}
