package ui

import (
	"gioui.org/io/pointer"

	"digitpad/internal/capture"
)

// captureKinds are the pointer events the drawing area subscribes to.
const captureKinds = pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Leave

// toCapture converts a pointer event in widget pixels to a capture event in
// canvas pixels.
func toCapture(e pointer.Event, scale float32) (capture.Event, bool) {
	ev := capture.Event{
		X: float64(e.Position.X * scale),
		Y: float64(e.Position.Y * scale),
	}
	switch e.Kind {
	case pointer.Press:
		if e.Buttons != 0 && e.Buttons&pointer.ButtonPrimary == 0 {
			return ev, false
		}
		ev.Kind = capture.Down
	case pointer.Drag:
		ev.Kind = capture.Move
	case pointer.Release:
		ev.Kind = capture.Up
	case pointer.Leave:
		ev.Kind = capture.Leave
	case pointer.Cancel:
		ev.Kind = capture.Cancel
	default:
		return ev, false
	}
	return ev, true
}
