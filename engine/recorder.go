package engine

// Op is one recorded drawing instruction.
type Op struct {
	Kind  string  `json:"op"` // "line", "rect", "circle"
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	R     float64 `json:"r,omitempty"`
	Color string  `json:"color,omitempty"`
	Style *Style  `json:"style,omitempty"`
}

// Frame is everything a thin client needs to paint one tick.
type Frame struct {
	Size         int     `json:"size"`
	Ops          []Op    `json:"ops"`
	BonusVisible bool    `json:"bonus_visible"`
	BonusBar     float64 `json:"bonus_bar"`
}

// Recorder is a Canvas that keeps the drawing as a Frame.
type Recorder struct {
	frame Frame
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear(size int) {
	r.frame = Frame{Size: size, Ops: make([]Op, 0, 64)}
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, color string) {
	r.frame.Ops = append(r.frame.Ops, Op{Kind: "line", X: x1, Y: y1, X2: x2, Y2: y2, Color: color})
}

func (r *Recorder) Rect(x, y, w, h float64, style Style) {
	r.frame.Ops = append(r.frame.Ops, Op{Kind: "rect", X: x, Y: y, W: w, H: h, Style: &style})
}

func (r *Recorder) Circle(cx, cy, radius float64, style Style) {
	r.frame.Ops = append(r.frame.Ops, Op{Kind: "circle", X: cx, Y: cy, R: radius, Style: &style})
}

func (r *Recorder) BonusBar(fraction float64, visible bool) {
	r.frame.BonusVisible = visible
	r.frame.BonusBar = fraction * 100
}

func (r *Recorder) Frame() Frame {
	return r.frame
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.frame.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
