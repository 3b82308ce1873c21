package game

import (
	"context"
	"log"
	"time"

	"portfolio-snake/auth"
	"portfolio-snake/constants"
	"portfolio-snake/engine"
	"portfolio-snake/leaderboard"
	"portfolio-snake/models"
)

type inbound struct {
	msgType string
	msg     map[string]any
}

// Session is one client's game. Its loop goroutine is the only one that
// touches the engine's state; direction changes arrive through the engine's
// own intent queue.
type Session struct {
	ID     string
	Client *models.Client

	engine *engine.Engine
	board  *leaderboard.Store
	auth   *auth.Issuer
	cfg    Config

	inbox  chan inbound
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// frame runs only while a playfield resize is in flight
	frame *time.Ticker

	// menu is the visible overlay screen, empty while a run is on screen
	menu    string
	ticking bool
}

func newSession(parent context.Context, id string, client *models.Client, gm *Manager) *Session {
	ctx, cancel := context.WithCancel(parent)
	inboxSize := gm.cfg.InboxSize
	if inboxSize <= 0 {
		inboxSize = 1
	}
	return &Session{
		ID:      id,
		Client:  client,
		engine:  engine.New(gm.cfg.Engine, gm.engineOpts...),
		board:   gm.Leaderboard.ForClient(client.ID),
		auth:    gm.Auth,
		cfg:     gm.cfg,
		inbox:   make(chan inbound, inboxSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		menu:    constants.MENU_MAIN,
		ticking: true,
	}
}

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Key and Swipe may be called from any goroutine.
func (s *Session) Key(key string) bool {
	return s.engine.Key(key)
}

func (s *Session) Swipe(dx, dy float64) bool {
	return s.engine.Swipe(dx, dy)
}

// Deliver hands a message to the session loop. It blocks while the inbox is
// full and gives up once the session is gone.
func (s *Session) Deliver(msgType string, msg map[string]any) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.inbox <- inbound{msgType: msgType, msg: msg}:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer s.engine.Stop()

	tick := time.NewTicker(s.cfg.TickRate)
	score := time.NewTicker(s.cfg.ScoreRate)
	defer tick.Stop()
	defer score.Stop()
	defer s.stopFrames()

	for {
		select {
		case <-s.ctx.Done():
			return
		case in := <-s.inbox:
			s.handle(in.msgType, in.msg)
		case now := <-tick.C:
			s.tick(now)
		case now := <-s.frames():
			s.animate(now)
		case <-score.C:
			s.pushScore()
		}
		s.syncFrames()
	}
}

// frames is nil, and so never ready, while no resize is running.
func (s *Session) frames() <-chan time.Time {
	if s.frame == nil {
		return nil
	}
	return s.frame.C
}

// syncFrames starts the frame ticker when a resize begins and stops it once
// the playfield has settled.
func (s *Session) syncFrames() {
	resizing := s.engine.Resizing()
	switch {
	case resizing && s.frame == nil:
		s.frame = time.NewTicker(s.cfg.FrameRate)
	case !resizing && s.frame != nil:
		s.stopFrames()
	}
}

func (s *Session) stopFrames() {
	if s.frame != nil {
		s.frame.Stop()
		s.frame = nil
	}
}

// tick advances the game by one step and sends the drawn frame.
func (s *Session) tick(now time.Time) {
	if !s.ticking {
		return
	}

	wasFrozen := s.engine.Status() == engine.StatusFrozen
	rec := engine.NewRecorder()
	if err := s.engine.Tick(now, rec); err != nil {
		log.Printf("Render error in session %s: %v", s.ID, err)
		return
	}
	s.sendFrame(rec)

	if !wasFrozen && s.engine.Status() == engine.StatusFrozen {
		s.gameOver()
	}
}

// animate steps an in-flight playfield resize and redraws at the new size.
func (s *Session) animate(now time.Time) {
	if !s.engine.Resizing() {
		return
	}
	s.engine.StepResize(now)

	rec := engine.NewRecorder()
	if err := s.engine.Render(rec, now); err != nil {
		log.Printf("Render error in session %s: %v", s.ID, err)
		return
	}
	s.sendFrame(rec)
}

func (s *Session) pushScore() {
	if s.engine.Status() != engine.StatusRunning {
		return
	}
	s.send(constants.MSG_SCORE, map[string]any{
		"score":      s.engine.Score(),
		"high_score": max(s.board.HighScore(), s.engine.Score()),
	})
}

func (s *Session) gameOver() {
	s.menu = constants.MENU_GAME_OVER
	log.Printf("Session %s run over with score %d", s.ID, s.engine.Score())
	s.sendMenu()
}

func (s *Session) greet() {
	s.send(constants.MSG_CONNECTED, map[string]any{
		"client":      s.Client,
		"session_id":  s.ID,
		"saved_name":  s.board.SavedName(),
		"leaderboard": s.board.Leaderboard(),
		"high_score":  s.board.HighScore(),
	})
	s.sendMenu()
}

func (s *Session) sendFrame(rec *engine.Recorder) {
	s.send(constants.MSG_FRAME, map[string]any{
		"frame":  rec.Frame(),
		"status": s.engine.Status().String(),
		"score":  s.engine.Score(),
	})
}

func (s *Session) sendMenu() {
	data := map[string]any{
		"screen":  s.menu,
		"visible": s.menu != "",
	}
	switch s.menu {
	case constants.MENU_GAME_OVER:
		data["final_score"] = s.engine.Score()
		data["saved_name"] = s.board.SavedName()
		data["state"] = s.engine.Snapshot()
	case constants.MENU_LEADERBOARD:
		data["entries"] = s.board.Leaderboard()
	}
	s.send(constants.MSG_MENU, data)
}

func (s *Session) sendLeaderboard() {
	s.send(constants.MSG_LEADERBOARD, map[string]any{
		"entries":    s.board.Leaderboard(),
		"high_score": s.board.HighScore(),
	})
}

func (s *Session) sendError(code, message string) {
	s.send(constants.MSG_ERROR, map[string]any{
		"code":    code,
		"message": message,
	})
}

func (s *Session) send(msgType string, data map[string]any) {
	sendMessage(s.Client, msgType, data)
}
