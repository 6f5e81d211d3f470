package theme

import (
	"image/color"
	"runtime"

	"gioui.org/unit"
	"gioui.org/widget/material"

	"digitpad/internal/controller"
)

// Palette defines the system colors.
type Palette struct {
	Background color.NRGBA
	Surface    color.NRGBA
	Primary    color.NRGBA
	Text       color.NRGBA
	TextMuted  color.NRGBA
	Border     color.NRGBA
	Ink        color.NRGBA // drawing surface background
	Success    color.NRGBA
	Error      color.NRGBA
	Warning    color.NRGBA
}

// Config defines the system metrics.
type Config struct {
	CornerRadius unit.Dp
	Spacing      unit.Dp
	Padding      unit.Dp
	FontTitle    unit.Sp
	FontBody     unit.Sp
	FontCaption  unit.Sp
}

// Theme wraps the material theme with system-specific styling.
type Theme struct {
	*material.Theme
	Palette Palette
	Config  Config
}

// NewTheme creates a new theme based on the current OS.
func NewTheme(mtheme *material.Theme) *Theme {
	t := &Theme{
		Theme: mtheme,
	}

	if runtime.GOOS == "darwin" {
		setupMacOSTheme(t)
	} else {
		setupDefaultTheme(t)
	}

	t.Theme.Palette.Bg = t.Palette.Background
	t.Theme.Palette.Fg = t.Palette.Text
	t.Theme.Palette.ContrastBg = t.Palette.Primary
	return t
}

// ButtonColor is the background of a digit button in the given state.
func (t *Theme) ButtonColor(b controller.Button) color.NRGBA {
	switch b.Mark {
	case controller.MarkCorrect:
		return t.Palette.Success
	case controller.MarkWrong:
		return t.Palette.Error
	case controller.MarkNotSelected:
		return t.Palette.Warning
	}
	if b.Selected {
		return t.Palette.Primary
	}
	return t.Palette.Surface
}

func setupDefaultTheme(t *Theme) {
	t.Palette = Palette{
		Background: color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF},
		Surface:    color.NRGBA{R: 0x3A, G: 0x3A, B: 0x3A, A: 0xFF},
		Primary:    color.NRGBA{R: 0x00, G: 0x78, B: 0xD4, A: 0xFF},
		Text:       color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		TextMuted:  color.NRGBA{R: 0xA0, G: 0xA0, B: 0xA0, A: 0xFF},
		Border:     color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xFF},
		Ink:        color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
		Success:    color.NRGBA{R: 0x2E, G: 0x9D, B: 0x32, A: 0xFF},
		Error:      color.NRGBA{R: 0xE8, G: 0x11, B: 0x23, A: 0xFF},
		Warning:    color.NRGBA{R: 0xE0, G: 0x9A, B: 0x00, A: 0xFF},
	}

	t.Config = Config{
		CornerRadius: unit.Dp(4),
		Spacing:      unit.Dp(8),
		Padding:      unit.Dp(16),
		FontTitle:    unit.Sp(20),
		FontBody:     unit.Sp(14),
		FontCaption:  unit.Sp(12),
	}
}

func setupMacOSTheme(t *Theme) {
	setupDefaultTheme(t)
	t.Palette.Background = color.NRGBA{R: 0x1E, G: 0x1E, B: 0x1E, A: 0xFF}
	t.Palette.Primary = color.NRGBA{R: 0x0A, G: 0x84, B: 0xFF, A: 0xFF}
	t.Palette.Success = color.NRGBA{R: 0x30, G: 0xD1, B: 0x58, A: 0xFF}
	t.Palette.Error = color.NRGBA{R: 0xFF, G: 0x45, B: 0x3A, A: 0xFF}
	t.Palette.Warning = color.NRGBA{R: 0xFF, G: 0x9F, B: 0x0A, A: 0xFF}

	t.Config.CornerRadius = unit.Dp(10)
	t.Config.Padding = unit.Dp(20)
	t.Config.FontBody = unit.Sp(13)
}
