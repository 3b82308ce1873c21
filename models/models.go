package models

import (
	"time"

	"portfolio-snake/constants"
)

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// Snake is ordered head first.
type Snake []Position

func (s Snake) Head() Position {
	return s[0]
}

// Occupies reports whether any segment sits on p.
func (s Snake) Occupies(p Position) bool {
	for _, segment := range s {
		if segment.Equal(p) {
			return true
		}
	}
	return false
}

type Food struct {
	Position Position `json:"position"`
}

type BonusFood struct {
	Position  Position  `json:"position"`
	SpawnedAt time.Time `json:"spawned_at"`
}

type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameState is the wire snapshot of a session.
type GameState struct {
	Status        string              `json:"status"` // "idle", "running", "frozen"
	Snake         Snake               `json:"snake"`
	Direction     constants.Direction `json:"direction"`
	LastDirection constants.Direction `json:"last_direction"`
	Food          Food                `json:"food"`
	Bonus         *BonusFood          `json:"bonus,omitempty"`
	Score         int                 `json:"score"`
	FoodsEaten    int                 `json:"foods_eaten"`
	CanvasSize    int                 `json:"canvas_size"`
	TargetSize    int                 `json:"target_size"`
}

// Client is one connected browser, whichever transport it arrived on.
type Client struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	Send      chan []byte `json:"-"`
	JoinedAt  time.Time   `json:"joined_at"`
}
