package engine

import (
	"time"

	"portfolio-snake/models"
)

// Update advances the simulation by one cell. It does nothing unless the run
// is moving and no resize animation is in flight.
func (e *Engine) Update(now time.Time) {
	if e.status != StatusRunning || e.direction.IsZero() || e.Resizing() {
		return
	}

	head := e.snake.Head()
	newHead := e.wrap(models.Position{
		X: head.X + e.direction.X*e.cfg.CellSize,
		Y: head.Y + e.direction.Y*e.cfg.CellSize,
	})

	// the head is not pushed yet, so the whole body counts
	if e.snake.Occupies(newHead) {
		e.status = StatusFrozen
		return
	}

	e.snake = append(models.Snake{newHead}, e.snake...)

	switch {
	case newHead.Equal(e.food):
		e.score += e.cfg.FoodScore
		e.foodsEaten++
		e.food = e.randomPosition()
		if e.foodsEaten%e.cfg.BonusEvery == 0 {
			e.bonus = &models.BonusFood{
				Position:  e.randomPosition(),
				SpawnedAt: now,
			}
		}
	case e.bonus != nil && newHead.Equal(e.bonus.Position):
		e.score += e.cfg.BonusScore
		e.bonus = nil
	default:
		e.snake = e.snake[:len(e.snake)-1]
	}

	if e.bonus != nil && now.Sub(e.bonus.SpawnedAt) > e.cfg.BonusDuration {
		e.bonus = nil
	}

	e.ensureCanvasSize(now)
}

func (e *Engine) wrap(p models.Position) models.Position {
	size := e.canvasSize
	if p.X < 0 {
		p.X = size - e.cfg.CellSize
	} else if p.X >= size {
		p.X = 0
	}
	if p.Y < 0 {
		p.Y = size - e.cfg.CellSize
	} else if p.Y >= size {
		p.Y = 0
	}
	return p
}

// ensureCanvasSize grows the playfield by one step for every FoodsPerExpand
// foods eaten, up to MaxSize.
func (e *Engine) ensureCanvasSize(now time.Time) {
	increments := e.foodsEaten / e.cfg.FoodsPerExpand
	target := min(e.cfg.InitialSize+increments*e.cfg.ExpandStep, e.cfg.MaxSize)
	if target > e.canvasSize {
		e.animateTo(target, now)
	}
}
