package engine

import "portfolio-snake/constants"

var keyDirections = map[string]constants.Direction{
	"ArrowUp":    constants.UP,
	"ArrowDown":  constants.DOWN,
	"ArrowLeft":  constants.LEFT,
	"ArrowRight": constants.RIGHT,
	"w":          constants.UP,
	"W":          constants.UP,
	"s":          constants.DOWN,
	"S":          constants.DOWN,
	"a":          constants.LEFT,
	"A":          constants.LEFT,
	"d":          constants.RIGHT,
	"D":          constants.RIGHT,
}

// KeyDirection maps arrow keys and WASD to a direction.
func KeyDirection(key string) (constants.Direction, bool) {
	dir, ok := keyDirections[key]
	return dir, ok
}

// SwipeDirection classifies a swipe by its dominant axis. Swipes shorter than
// threshold on both axes are ignored.
func SwipeDirection(dx, dy, threshold float64) (constants.Direction, bool) {
	absX, absY := abs(dx), abs(dy)
	if absX < threshold && absY < threshold {
		return constants.NONE, false
	}
	if absX > absY {
		if dx > 0 {
			return constants.RIGHT, true
		}
		return constants.LEFT, true
	}
	if dy > 0 {
		return constants.DOWN, true
	}
	if dy < 0 {
		return constants.UP, true
	}
	return constants.NONE, false
}

// Turn queues a direction change for the next tick. It is safe to call from
// any goroutine and reports whether the change was queued.
func (e *Engine) Turn(dir constants.Direction) bool {
	if !e.armed.Load() || !isCardinal(dir) {
		return false
	}
	select {
	case e.intents <- dir:
		return true
	default:
		return false
	}
}

func (e *Engine) Key(key string) bool {
	dir, ok := KeyDirection(key)
	if !ok {
		return false
	}
	return e.Turn(dir)
}

func (e *Engine) Swipe(dx, dy float64) bool {
	dir, ok := SwipeDirection(dx, dy, e.cfg.SwipeThreshold)
	if !ok {
		return false
	}
	return e.Turn(dir)
}

// CanTurn reports whether dir may replace the current direction: a turn is
// only allowed onto the axis the snake is not moving along.
func (e *Engine) CanTurn(dir constants.Direction) bool {
	switch {
	case dir.X == 0 && dir.Y != 0:
		return e.direction.Y == 0
	case dir.Y == 0 && dir.X != 0:
		return e.direction.X == 0
	}
	return false
}

// applyPendingTurn takes queued directions until one is accepted. Nothing is
// consumed while the run is frozen or the playfield is resizing.
func (e *Engine) applyPendingTurn() {
	if e.status == StatusFrozen || !e.armed.Load() || e.Resizing() {
		return
	}
	for {
		select {
		case dir := <-e.intents:
			if !e.CanTurn(dir) {
				continue
			}
			e.direction = dir
			e.lastDirection = dir
			if e.status == StatusIdle {
				e.status = StatusRunning
			}
			return
		default:
			return
		}
	}
}

func (e *Engine) drainIntents() {
	for {
		select {
		case <-e.intents:
		default:
			return
		}
	}
}

func isCardinal(dir constants.Direction) bool {
	return (dir.X == 0) != (dir.Y == 0) && abs(float64(dir.X+dir.Y)) == 1
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
