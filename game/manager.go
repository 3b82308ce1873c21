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

	"github.com/google/uuid"
)

type Config struct {
	TickRate  time.Duration
	FrameRate time.Duration
	ScoreRate time.Duration
	InboxSize int
	Engine    engine.Config
}

func DefaultConfig() Config {
	return Config{
		TickRate:  constants.TICK_RATE,
		FrameRate: constants.FRAME_RATE,
		ScoreRate: constants.SCORE_RATE,
		InboxSize: 16,
		Engine:    engine.DefaultConfig(),
	}
}

// Manager hosts one Session per connected client. Sessions share nothing but
// the leaderboard.
type Manager struct {
	Sessions    *Registry
	Leaderboard *leaderboard.Store
	Auth        *auth.Issuer

	cfg        Config
	engineOpts []engine.Option
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewManager creates a session host. issuer may be nil, in which case
// leaderboard resets are refused.
func NewManager(board *leaderboard.Store, issuer *auth.Issuer, cfg Config, opts ...engine.Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		Sessions:    NewRegistry(),
		Leaderboard: board,
		Auth:        issuer,
		cfg:         cfg,
		engineOpts:  opts,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// NewSession starts a session for client and greets it with the current
// leaderboard and its saved name.
func (gm *Manager) NewSession(client *models.Client) *Session {
	s := newSession(gm.ctx, uuid.New().String(), client, gm)
	client.SessionID = s.ID
	gm.Sessions.Add(s)

	s.greet()
	go s.run()

	log.Printf("Session %s started for client %s", s.ID, client.ID)
	return s
}

// RemoveSession stops a session and waits for its loop to exit.
func (gm *Manager) RemoveSession(sessionID string) {
	s, exists := gm.Sessions.Get(sessionID)
	if !exists {
		return
	}
	gm.Sessions.Remove(sessionID)
	s.cancel()
	<-s.done

	log.Printf("Session %s removed", sessionID)
}

// Shutdown stops every session.
func (gm *Manager) Shutdown() {
	gm.cancel()
	for _, s := range gm.Sessions.Snapshot() {
		<-s.done
		gm.Sessions.Remove(s.ID)
	}
}
