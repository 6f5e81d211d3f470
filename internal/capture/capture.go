// Package capture turns pointer and touch events into freehand strokes on a
// canvas and reports completed strokes to a listener.
package capture

import (
	"sync"

	"digitpad/internal/canvas"
)

// State is the capture state machine position.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// Kind identifies a pointer event.
type Kind int

const (
	Down Kind = iota
	Move
	Up
	Leave
	Cancel
)

// Event is a pointer or touch event in page coordinates. When Touches is
// non-empty the first touch point is used instead of X/Y.
type Event struct {
	Kind    Kind
	X, Y    float64
	Touches []canvas.Point
}

func (e Event) point() canvas.Point {
	if len(e.Touches) > 0 {
		return e.Touches[0]
	}
	return canvas.Point{X: e.X, Y: e.Y}
}

// Listener is notified at stroke boundaries.
type Listener interface {
	StrokeStarted()
	// StrokeEnded is called on release only when something was painted
	// since the previous call.
	StrokeEnded()
}

// Capture is the input state machine for one canvas.
type Capture struct {
	mu       sync.Mutex
	canvas   canvas.Canvas
	listener Listener
	offset   canvas.Point

	state      State
	last       canvas.Point
	hasStrokes bool
	painted    bool
}

// New returns an idle capture painting onto c.
func New(c canvas.Canvas, l Listener) *Capture {
	return &Capture{canvas: c, listener: l}
}

// SetOffset sets the canvas position on the page; it is subtracted from
// every event coordinate.
func (c *Capture) SetOffset(p canvas.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = p
}

// Handle feeds one event through the state machine.
func (c *Capture) Handle(e Event) {
	switch e.Kind {
	case Down:
		c.down(e)
	case Move:
		c.move(e)
	case Up, Leave, Cancel:
		c.up()
	}
}

func (c *Capture) local(e Event) canvas.Point {
	p := e.point()
	return canvas.Point{X: p.X - c.offset.X, Y: p.Y - c.offset.Y}
}

func (c *Capture) down(e Event) {
	c.mu.Lock()
	if c.state == Drawing {
		c.mu.Unlock()
		return
	}
	c.state = Drawing
	c.last = c.local(e)
	c.hasStrokes = true
	c.painted = true
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.StrokeStarted()
	}
}

func (c *Capture) move(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Drawing {
		return
	}
	p := c.local(e)
	c.canvas.StrokeTo(c.last, p)
	c.last = p
	c.painted = true
}

func (c *Capture) up() {
	c.mu.Lock()
	if c.state != Drawing {
		c.mu.Unlock()
		return
	}
	c.state = Idle
	notify := c.painted
	c.painted = false
	l := c.listener
	c.mu.Unlock()

	if notify && l != nil {
		l.StrokeEnded()
	}
}

// Reset forgets all strokes and returns to Idle. The canvas itself is
// cleared by the caller.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	c.hasStrokes = false
	c.painted = false
}

// State returns the current state.
func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasStrokes reports whether anything was drawn since the last Reset.
func (c *Capture) HasStrokes() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasStrokes
}
