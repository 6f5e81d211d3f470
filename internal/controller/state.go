package controller

import "digitpad/internal/classifier"

// Phase is the coarse interaction phase shown to the user.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhasePredicting
	PhaseTraining
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDrawing:
		return "drawing"
	case PhasePredicting:
		return "predicting"
	case PhaseTraining:
		return "training"
	default:
		return "unknown"
	}
}

// Mark is the feedback class of a digit button after a prediction.
type Mark int

const (
	MarkNone Mark = iota
	// MarkCorrect: the selected label was predicted.
	MarkCorrect
	// MarkWrong: the selected label was not predicted.
	MarkWrong
	// MarkNotSelected: this label was predicted but not selected.
	MarkNotSelected
)

func (m Mark) String() string {
	switch m {
	case MarkCorrect:
		return "correct"
	case MarkWrong:
		return "wrong"
	case MarkNotSelected:
		return "not-selected"
	default:
		return ""
	}
}

// Button is the state of one digit button.
type Button struct {
	Selected bool
	Mark     Mark
}

// Addition is the running addition exercise; its sum is the expected label.
type Addition struct {
	Augend int
	Addend int
}

func (a Addition) Sum() int { return a.Augend + a.Addend }

// UIState is a copy of everything the UI renders apart from the rasters
// and the chart.
type UIState struct {
	Expected      *int
	Buttons       [classifier.Classes]Button
	Addition      *Addition
	TemplateGuide bool
	Phase         Phase
	Summary       string
	Warning       string
}

func (s UIState) clone() UIState {
	out := s
	if s.Expected != nil {
		v := *s.Expected
		out.Expected = &v
	}
	if s.Addition != nil {
		a := *s.Addition
		out.Addition = &a
	}
	return out
}

// markButtons recomputes button marks for a predicted digit based on the
// current selection.
func markButtons(buttons *[classifier.Classes]Button, digit int) {
	for i := range buttons {
		b := &buttons[i]
		switch {
		case b.Selected && i == digit:
			b.Mark = MarkCorrect
		case b.Selected:
			b.Mark = MarkWrong
		case i == digit:
			b.Mark = MarkNotSelected
		default:
			b.Mark = MarkNone
		}
	}
}

func selectButton(buttons *[classifier.Classes]Button, digit int) {
	for i := range buttons {
		buttons[i].Selected = i == digit
	}
}
