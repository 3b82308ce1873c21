// Package engine runs one Snake session: the snake, its food, the bonus food,
// the score and the growing playfield. An Engine is owned by a single
// goroutine; only Turn, Key and Swipe may be called from elsewhere.
package engine

import (
	"sync/atomic"
	"time"

	"portfolio-snake/constants"
	"portfolio-snake/models"

	"golang.org/x/exp/rand"
)

type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusFrozen
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusFrozen:
		return "frozen"
	default:
		return "idle"
	}
}

type Config struct {
	CellSize       int
	InitialSize    int
	MaxSize        int
	FoodsPerExpand int
	ExpandStep     int
	BonusEvery     int
	FoodScore      int
	BonusScore     int
	SwipeThreshold float64
	BonusDuration  time.Duration
	ResizeDuration time.Duration
	InputBuffer    int // bound on queued direction changes
}

func DefaultConfig() Config {
	return Config{
		CellSize:       constants.CELL_SIZE,
		InitialSize:    constants.INITIAL_SIZE,
		MaxSize:        constants.MAX_SIZE,
		FoodsPerExpand: constants.FOODS_PER_EXPAND,
		ExpandStep:     constants.EXPAND_STEP,
		BonusEvery:     constants.BONUS_EVERY,
		FoodScore:      constants.FOOD_SCORE,
		BonusScore:     constants.BONUS_SCORE,
		SwipeThreshold: constants.SWIPE_THRESHOLD,
		BonusDuration:  constants.BONUS_DURATION,
		ResizeDuration: constants.RESIZE_DURATION,
		InputBuffer:    4,
	}
}

type Option func(*Engine)

// WithRand sets the source used for food placement.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

type Engine struct {
	cfg Config
	rng *rand.Rand

	intents chan constants.Direction
	armed   atomic.Bool

	status        Status
	snake         models.Snake
	direction     constants.Direction
	lastDirection constants.Direction
	food          models.Position
	bonus         *models.BonusFood
	score         int
	foodsEaten    int
	canvasSize    int
	targetSize    int
	resize        *Animation
}

func New(cfg Config, opts ...Option) *Engine {
	if cfg.InputBuffer <= 0 {
		cfg.InputBuffer = 1
	}
	e := &Engine{
		cfg:     cfg,
		intents: make(chan constants.Direction, cfg.InputBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	e.reset()
	return e
}

// StartNewRun puts the engine on a clean slate and waits for the first
// direction to start moving.
func (e *Engine) StartNewRun() {
	e.reset()
	e.lastDirection = constants.RIGHT
	e.armed.Store(true)
}

// Submit ends a frozen run and returns its final score. It reports false when
// there is no finished run to submit.
func (e *Engine) Submit() (int, bool) {
	if e.status != StatusFrozen {
		return 0, false
	}
	score := e.score
	e.reset()
	return score, true
}

// Discard ends a frozen run without reporting it.
func (e *Engine) Discard() bool {
	_, ok := e.Submit()
	return ok
}

// Stop disarms input and halts the simulation, keeping the current state.
func (e *Engine) Stop() {
	e.armed.Store(false)
	e.cancelResize()
	if e.status == StatusRunning {
		e.status = StatusIdle
		e.direction = constants.NONE
	}
	e.drainIntents()
}

// Tick is one fixed-interval step: apply at most one queued turn, render the
// current state, then advance the simulation.
func (e *Engine) Tick(now time.Time, canvas Canvas) error {
	e.applyPendingTurn()
	err := e.Render(canvas, now)
	e.Update(now)
	return err
}

func (e *Engine) reset() {
	e.cancelResize()
	e.armed.Store(false)
	e.drainIntents()

	e.status = StatusIdle
	e.snake = e.initialSnake()
	e.direction = constants.NONE
	if e.lastDirection.IsZero() {
		e.lastDirection = constants.RIGHT
	}
	e.bonus = nil
	e.score = 0
	e.foodsEaten = 0
	e.canvasSize = e.cfg.InitialSize
	e.targetSize = e.cfg.InitialSize
	e.food = e.randomPosition()
}

func (e *Engine) initialSnake() models.Snake {
	start := e.cfg.InitialSize / 2
	start -= start % e.cfg.CellSize
	return models.Snake{
		{X: start, Y: start},
		{X: start - e.cfg.CellSize, Y: start},
		{X: start - 2*e.cfg.CellSize, Y: start},
	}
}

// randomPosition picks a uniform cell of the current playfield. The snake's
// body is not excluded.
func (e *Engine) randomPosition() models.Position {
	cells := e.canvasSize / e.cfg.CellSize
	if cells <= 0 {
		return models.Position{}
	}
	return models.Position{
		X: e.rng.Intn(cells) * e.cfg.CellSize,
		Y: e.rng.Intn(cells) * e.cfg.CellSize,
	}
}

func (e *Engine) Status() Status { return e.status }
func (e *Engine) Score() int { return e.score }
func (e *Engine) FoodsEaten() int { return e.foodsEaten }
func (e *Engine) CanvasSize() int { return e.canvasSize }
func (e *Engine) TargetSize() int { return e.targetSize }
func (e *Engine) Direction() constants.Direction { return e.direction }
func (e *Engine) LastDirection() constants.Direction { return e.lastDirection }
func (e *Engine) Food() models.Position { return e.food }
func (e *Engine) Armed() bool { return e.armed.Load() }

func (e *Engine) Snake() models.Snake {
	snake := make(models.Snake, len(e.snake))
	copy(snake, e.snake)
	return snake
}

func (e *Engine) Bonus() (models.BonusFood, bool) {
	if e.bonus == nil {
		return models.BonusFood{}, false
	}
	return *e.bonus, true
}

func (e *Engine) Snapshot() models.GameState {
	state := models.GameState{
		Status:        e.status.String(),
		Snake:         e.Snake(),
		Direction:     e.direction,
		LastDirection: e.lastDirection,
		Food:          models.Food{Position: e.food},
		Score:         e.score,
		FoodsEaten:    e.foodsEaten,
		CanvasSize:    e.canvasSize,
		TargetSize:    e.targetSize,
	}
	if bonus, ok := e.Bonus(); ok {
		state.Bonus = &bonus
	}
	return state
}
