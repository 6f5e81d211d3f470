package ui

import (
	"testing"

	"gioui.org/f32"
	"gioui.org/io/pointer"

	"digitpad/internal/capture"
)

func TestToCapture(t *testing.T) {
	tests := []struct {
		name   string
		event  pointer.Event
		want   capture.Kind
		wantOK bool
	}{
		{"press", pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonPrimary}, capture.Down, true},
		{"touch press", pointer.Event{Kind: pointer.Press, Source: pointer.Touch}, capture.Down, true},
		{"secondary press", pointer.Event{Kind: pointer.Press, Buttons: pointer.ButtonSecondary}, 0, false},
		{"drag", pointer.Event{Kind: pointer.Drag}, capture.Move, true},
		{"release", pointer.Event{Kind: pointer.Release}, capture.Up, true},
		{"leave", pointer.Event{Kind: pointer.Leave}, capture.Leave, true},
		{"cancel", pointer.Event{Kind: pointer.Cancel}, capture.Cancel, true},
		{"move", pointer.Event{Kind: pointer.Move}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toCapture(tt.event, 1)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Kind != tt.want {
				t.Errorf("kind = %v, want %v", got.Kind, tt.want)
			}
		})
	}
}

func TestToCaptureScales(t *testing.T) {
	got, ok := toCapture(pointer.Event{Kind: pointer.Drag, Position: f32.Pt(100, 50)}, 0.5)
	if !ok {
		t.Fatal("drag should convert")
	}
	if got.X != 50 || got.Y != 25 {
		t.Errorf("position = (%v, %v), want (50, 25)", got.X, got.Y)
	}
}
