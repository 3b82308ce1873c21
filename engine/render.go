package engine

import (
	"errors"
	"math"
	"time"

	"portfolio-snake/models"
)

var ErrNoCanvas = errors.New("engine: no canvas to render on")

const (
	gridColor      = "rgba(255,255,255,0.05)"
	headColor      = "#00ff88"
	bodyColor      = "#00cc66"
	snakeGlow      = "#00ff88"
	foodInner      = "#ff4b1f"
	foodOuter      = "#ff9068"
	bonusColor     = "#FFD700"
	eyeColor       = "#ffffff"
	pupilColor     = "#000000"
	snakeGlowBlur  = 10
	bonusGlowBlur  = 15
	segmentPadding = 2
)

// Canvas receives the drawing of one frame.
type Canvas interface {
	Clear(size int)
	Line(x1, y1, x2, y2 float64, color string)
	Rect(x, y, w, h float64, style Style)
	Circle(cx, cy, r float64, style Style)
	// BonusBar shows the remaining bonus time as a fraction in [0, 1].
	BonusBar(fraction float64, visible bool)
}

type Style struct {
	Fill      string    `json:"fill,omitempty"`
	Gradient  *Gradient `json:"gradient,omitempty"`
	GlowColor string    `json:"glow_color,omitempty"`
	GlowBlur  float64   `json:"glow_blur,omitempty"`
}

// Gradient is a radial gradient between two circles.
type Gradient struct {
	X0    float64     `json:"x0"`
	Y0    float64     `json:"y0"`
	R0    float64     `json:"r0"`
	X1    float64     `json:"x1"`
	Y1    float64     `json:"y1"`
	R1    float64     `json:"r1"`
	Stops []ColorStop `json:"stops"`
}

type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Render draws the current state. A nil canvas abandons the frame.
func (e *Engine) Render(canvas Canvas, now time.Time) error {
	if canvas == nil {
		return ErrNoCanvas
	}

	canvas.Clear(e.canvasSize)
	e.drawGrid(canvas)
	e.drawFood(canvas)
	e.drawBonusFood(canvas)
	e.drawSnake(canvas)
	e.drawBonusBar(canvas, now)
	return nil
}

func (e *Engine) drawGrid(canvas Canvas) {
	size := float64(e.canvasSize)
	for i := 0; i < e.canvasSize; i += e.cfg.CellSize {
		canvas.Line(float64(i), 0, float64(i), size, gridColor)
	}
	for j := 0; j < e.canvasSize; j += e.cfg.CellSize {
		canvas.Line(0, float64(j), size, float64(j), gridColor)
	}
}

func (e *Engine) drawFood(canvas Canvas) {
	half := float64(e.cfg.CellSize) / 2
	cx := float64(e.food.X) + half
	cy := float64(e.food.Y) + half
	canvas.Circle(cx, cy, half-segmentPadding, Style{
		Gradient: &Gradient{
			X0: cx, Y0: cy, R0: 2,
			X1: cx, Y1: cy, R1: half,
			Stops: []ColorStop{
				{Offset: 0, Color: foodInner},
				{Offset: 1, Color: foodOuter},
			},
		},
	})
}

func (e *Engine) drawBonusFood(canvas Canvas) {
	if e.bonus == nil {
		return
	}
	half := float64(e.cfg.CellSize) / 2
	canvas.Circle(float64(e.bonus.Position.X)+half, float64(e.bonus.Position.Y)+half, half-segmentPadding, Style{
		Fill:      bonusColor,
		GlowColor: bonusColor,
		GlowBlur:  bonusGlowBlur,
	})
}

func (e *Engine) drawSnake(canvas Canvas) {
	side := float64(e.cfg.CellSize - segmentPadding)
	for i, segment := range e.snake {
		fill := bodyColor
		if i == 0 {
			fill = headColor
		}
		canvas.Rect(float64(segment.X), float64(segment.Y), side, side, Style{
			Fill:      fill,
			GlowColor: snakeGlow,
			GlowBlur:  snakeGlowBlur,
		})
		if i == 0 {
			e.drawHeadIndicator(canvas, segment)
		}
	}
}

// drawHeadIndicator draws two eyes looking the way the snake moves, or the
// way it last moved while it is stopped.
func (e *Engine) drawHeadIndicator(canvas Canvas, head models.Position) {
	dir := e.direction
	if dir.IsZero() {
		dir = e.lastDirection
	}

	cell := float64(e.cfg.CellSize)
	centerX := float64(head.X) + cell/2
	centerY := float64(head.Y) + cell/2
	fx, fy := float64(dir.X), float64(dir.Y)
	px, py := -fy, fx

	eyeForward := cell * 0.22
	eyeSide := cell * 0.18
	eyeR := math.Max(2, cell*0.12)
	pupilR := math.Max(1, eyeR*0.5)
	pupilForward := cell * 0.08

	ex1 := centerX + fx*eyeForward + px*eyeSide
	ey1 := centerY + fy*eyeForward + py*eyeSide
	ex2 := centerX + fx*eyeForward - px*eyeSide
	ey2 := centerY + fy*eyeForward - py*eyeSide

	canvas.Circle(ex1, ey1, eyeR, Style{Fill: eyeColor})
	canvas.Circle(ex2, ey2, eyeR, Style{Fill: eyeColor})
	canvas.Circle(ex1+fx*pupilForward, ey1+fy*pupilForward, pupilR, Style{Fill: pupilColor})
	canvas.Circle(ex2+fx*pupilForward, ey2+fy*pupilForward, pupilR, Style{Fill: pupilColor})
}

func (e *Engine) drawBonusBar(canvas Canvas, now time.Time) {
	if e.bonus == nil {
		canvas.BonusBar(0, false)
		return
	}
	remaining := e.cfg.BonusDuration - now.Sub(e.bonus.SpawnedAt)
	fraction := 0.0
	if e.cfg.BonusDuration > 0 {
		fraction = math.Max(0, float64(remaining)/float64(e.cfg.BonusDuration))
	}
	canvas.BonusBar(math.Min(1, fraction), true)
}
