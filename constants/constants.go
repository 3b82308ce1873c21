package constants

import "time"

const (
	// Playfield constants
	CELL_SIZE        = 20
	INITIAL_SIZE     = 400
	MAX_SIZE         = 800 // cap growth to avoid overflow
	FOODS_PER_EXPAND = 5
	EXPAND_STEP      = CELL_SIZE * 2
	BONUS_EVERY      = 5
	FOOD_SCORE       = 1
	BONUS_SCORE      = 10
	SWIPE_THRESHOLD  = 20
	MAX_NAME_LENGTH  = 50
	LEADERBOARD_SIZE = 5
	DEFAULT_NAME     = "Player"

	// Timing constants
	TICK_RATE       = 120 * time.Millisecond
	FRAME_RATE      = 16 * time.Millisecond
	SCORE_RATE      = 1 * time.Second
	BONUS_DURATION  = 3 * time.Second
	RESIZE_DURATION = 300 * time.Millisecond
	ADMIN_SESSION   = 30 * time.Minute

	// Storage keys
	LEADERBOARD_KEY = "snakeLeaderboard"
	PLAYER_NAME_KEY = "snakePlayerName"

	// Message types (client -> server)
	MSG_START_RUN         = "start_run"
	MSG_KEY               = "key"
	MSG_SWIPE             = "swipe"
	MSG_SUBMIT_SCORE      = "submit_score"
	MSG_DISCARD           = "discard"
	MSG_SHOW_MENU         = "show_menu"
	MSG_SET_NAME          = "set_name"
	MSG_GET_LEADERBOARD   = "get_leaderboard"
	MSG_RESET_LEADERBOARD = "reset_leaderboard"
	MSG_CLOSE             = "close"

	// Message types (server -> client)
	MSG_CONNECTED   = "connected"
	MSG_FRAME       = "frame"
	MSG_MENU        = "menu"
	MSG_LEADERBOARD = "leaderboard"
	MSG_SCORE       = "score"
	MSG_ERROR       = "error"

	// Menu screens
	MENU_MAIN        = "main"
	MENU_LEADERBOARD = "leaderboard"
	MENU_HOW         = "how"
	MENU_GAME_OVER   = "gameover"
)

// Direction is a unit step on the grid. The zero value means the snake has
// not started moving yet.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	NONE  = Direction{}
	UP    = Direction{X: 0, Y: -1}
	DOWN  = Direction{X: 0, Y: 1}
	LEFT  = Direction{X: -1, Y: 0}
	RIGHT = Direction{X: 1, Y: 0}
)

func (d Direction) IsZero() bool {
	return d.X == 0 && d.Y == 0
}
