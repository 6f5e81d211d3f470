package ui

import (
	"testing"

	"digitpad/internal/controller"
)

func TestPrompt(t *testing.T) {
	seven := 7
	tests := []struct {
		name  string
		state controller.UIState
		want  string
	}{
		{"no label", controller.UIState{}, "Pick a digit and draw it"},
		{"label", controller.UIState{Expected: &seven}, "Draw the digit 7"},
		{"addition", controller.UIState{Expected: &seven, Addition: &controller.Addition{Augend: 3, Addend: 4}}, "Draw the answer: 3 + 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompt(tt.state); got != tt.want {
				t.Errorf("prompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPhaseText(t *testing.T) {
	if got := phaseText(controller.PhaseIdle); got != "Ready" {
		t.Errorf("idle = %q", got)
	}
	if got := phaseText(controller.PhaseTraining); got != "Training" {
		t.Errorf("training = %q", got)
	}
}
