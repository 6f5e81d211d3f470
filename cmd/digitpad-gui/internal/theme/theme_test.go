package theme

import (
	"image/color"
	"testing"

	"gioui.org/widget/material"

	"digitpad/internal/controller"
)

func TestButtonColor(t *testing.T) {
	th := NewTheme(material.NewTheme())

	tests := []struct {
		name   string
		button controller.Button
		want   color.NRGBA
	}{
		{"idle", controller.Button{}, th.Palette.Surface},
		{"selected", controller.Button{Selected: true}, th.Palette.Primary},
		{"correct", controller.Button{Selected: true, Mark: controller.MarkCorrect}, th.Palette.Success},
		{"wrong", controller.Button{Selected: true, Mark: controller.MarkWrong}, th.Palette.Error},
		{"not selected", controller.Button{Mark: controller.MarkNotSelected}, th.Palette.Warning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.ButtonColor(tt.button); got != tt.want {
				t.Errorf("ButtonColor() = %v, want %v", got, tt.want)
			}
		})
	}
}
