// Package ui lays out the drawing pad: canvas, preview, digit buttons,
// actions and the prediction chart.
package ui

import (
	"context"
	"fmt"
	"image"
	"strconv"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"digitpad/cmd/digitpad-gui/internal/theme"
	"digitpad/internal/canvas"
	"digitpad/internal/classifier"
	"digitpad/internal/controller"
	"digitpad/internal/presenter"
)

// previewSize is the on-screen edge of the 28x28 preview.
const previewSize = unit.Dp(140)

// Pad is the main UI component.
type Pad struct {
	theme   *theme.Theme
	ctrl    *controller.Controller
	canvas  *canvas.GG
	preview *canvas.Preview
	board   *presenter.Board
	ctx     context.Context

	drawTag  bool
	digits   [classifier.Classes]widget.Clickable
	erase    widget.Clickable
	reset    widget.Clickable
	random   widget.Clickable
	addition widget.Clickable
	train    widget.Clickable
	submit   widget.Clickable
	dismiss  widget.Clickable
	guide    widget.Bool
}

// NewPad creates the pad. Network actions run on ctx.
func NewPad(ctx context.Context, t *theme.Theme, ctrl *controller.Controller, cv *canvas.GG, preview *canvas.Preview, board *presenter.Board) *Pad {
	return &Pad{theme: t, ctrl: ctrl, canvas: cv, preview: preview, board: board, ctx: ctx}
}

func (p *Pad) async(fn func(context.Context) error) {
	// the controller logs failures and leaves the UI as it was
	go func() { _ = fn(p.ctx) }()
}

func (p *Pad) update(gtx layout.Context) {
	for i := range p.digits {
		if p.digits[i].Clicked(gtx) {
			_ = p.ctrl.SelectDigit(i)
		}
	}
	if p.erase.Clicked(gtx) {
		p.ctrl.Erase()
	}
	if p.reset.Clicked(gtx) {
		p.ctrl.Reset()
	}
	if p.random.Clicked(gtx) {
		p.ctrl.RandomizeExpected()
	}
	if p.addition.Clicked(gtx) {
		p.ctrl.RandomizeAddition()
	}
	if p.train.Clicked(gtx) {
		p.async(p.ctrl.Train)
	}
	if p.submit.Clicked(gtx) {
		p.async(p.ctrl.SubmitForTraining)
	}
	if p.dismiss.Clicked(gtx) {
		p.ctrl.DismissWarning()
	}
	if p.guide.Update(gtx) {
		p.ctrl.SetTemplateGuide(p.guide.Value)
	}
}

// Layout renders the pad.
func (p *Pad) Layout(gtx layout.Context) layout.Dimensions {
	p.update(gtx)
	state := p.ctrl.State()
	p.guide.Value = state.TemplateGuide

	paint.Fill(gtx.Ops, p.theme.Palette.Background)

	return layout.UniformInset(p.theme.Config.Padding).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
			layout.Rigid(p.layoutDrawing),
			layout.Rigid(layout.Spacer{Width: p.theme.Config.Padding}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return p.layoutControls(gtx, state)
			}),
		)
	})
}

func (p *Pad) layoutDrawing(gtx layout.Context) layout.Dimensions {
	gap := layout.Spacer{Height: p.theme.Config.Spacing}.Layout
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(p.layoutCanvas),
		layout.Rigid(gap),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			cb := material.CheckBox(p.theme.Theme, &p.guide, "Show template")
			cb.Color = p.theme.Palette.Text
			cb.IconColor = p.theme.Palette.Primary
			return cb.Layout(gtx)
		}),
		layout.Rigid(gap),
		layout.Rigid(p.caption("Processed input")),
		layout.Rigid(p.layoutPreview),
	)
}

func (p *Pad) layoutCanvas(gtx layout.Context) layout.Dimensions {
	w, h := p.canvas.Size()
	size := image.Pt(gtx.Dp(unit.Dp(w)), gtx.Dp(unit.Dp(h)))
	scale := float32(w) / float32(size.X)

	for {
		ev, ok := gtx.Event(pointer.Filter{Target: &p.drawTag, Kinds: captureKinds})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		if ce, ok := toCapture(pe, scale); ok {
			p.ctrl.Handle(ce)
		}
	}

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	paint.FillShape(gtx.Ops, p.theme.Palette.Ink, clip.Rect{Max: size}.Op())
	event.Op(gtx.Ops, &p.drawTag)

	gtx.Constraints = layout.Exact(size)
	img := paint.NewImageOp(p.canvas.Snapshot().Image())
	widget.Image{Src: img, Fit: widget.Fill}.Layout(gtx)
	return layout.Dimensions{Size: size}
}

func (p *Pad) layoutPreview(gtx layout.Context) layout.Dimensions {
	edge := gtx.Dp(previewSize)
	size := image.Pt(edge, edge)
	gtx.Constraints = layout.Exact(size)

	paint.FillShape(gtx.Ops, p.theme.Palette.Surface, clip.Rect{Max: size}.Op())
	raster := p.preview.Image()
	if raster == nil {
		return layout.Dimensions{Size: size}
	}
	img := paint.NewImageOp(raster.Image())
	img.Filter = paint.FilterNearest
	widget.Image{Src: img, Fit: widget.Fill}.Layout(gtx)
	return layout.Dimensions{Size: size}
}

func (p *Pad) layoutControls(gtx layout.Context, state controller.UIState) layout.Dimensions {
	gap := layout.Spacer{Height: p.theme.Config.Padding}.Layout
	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			h := material.H5(p.theme.Theme, prompt(state))
			h.Color = p.theme.Palette.Text
			return h.Layout(gtx)
		}),
		layout.Rigid(gap),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return p.layoutDigits(gtx, state)
		}),
		layout.Rigid(gap),
		layout.Rigid(p.layoutActions),
		layout.Rigid(gap),
		layout.Rigid(p.caption(phaseText(state.Phase))),
	}
	if state.Warning != "" {
		children = append(children,
			layout.Rigid(gap),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return p.layoutWarning(gtx, state.Warning)
			}),
		)
	}
	if state.Summary != "" {
		children = append(children,
			layout.Rigid(gap),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Body1(p.theme.Theme, state.Summary)
				l.Color = p.theme.Palette.Text
				return l.Layout(gtx)
			}),
		)
	}
	children = append(children, layout.Rigid(gap), layout.Flexed(1, p.layoutChart))

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (p *Pad) layoutDigits(gtx layout.Context, state controller.UIState) layout.Dimensions {
	children := make([]layout.FlexChild, 0, 2*classifier.Classes)
	for i := range p.digits {
		if i > 0 {
			children = append(children, layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout))
		}
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			btn := material.Button(p.theme.Theme, &p.digits[i], strconv.Itoa(i))
			btn.Background = p.theme.ButtonColor(state.Buttons[i])
			btn.Color = p.theme.Palette.Text
			btn.CornerRadius = p.theme.Config.CornerRadius
			return btn.Layout(gtx)
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (p *Pad) layoutActions(gtx layout.Context) layout.Dimensions {
	actions := []struct {
		click *widget.Clickable
		label string
	}{
		{&p.erase, "Erase"},
		{&p.reset, "Reset"},
		{&p.random, "Random"},
		{&p.addition, "Addition"},
		{&p.train, "Train"},
		{&p.submit, "Submit for training"},
	}

	children := make([]layout.FlexChild, 0, 2*len(actions))
	for i, a := range actions {
		if i > 0 {
			children = append(children, layout.Rigid(layout.Spacer{Width: p.theme.Config.Spacing}.Layout))
		}
		children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			btn := material.Button(p.theme.Theme, a.click, a.label)
			btn.CornerRadius = p.theme.Config.CornerRadius
			return btn.Layout(gtx)
		}))
	}
	return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, children...)
}

func (p *Pad) layoutWarning(gtx layout.Context, msg string) layout.Dimensions {
	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			r := clip.UniformRRect(image.Rectangle{Max: gtx.Constraints.Min}, gtx.Dp(p.theme.Config.CornerRadius))
			paint.FillShape(gtx.Ops, p.theme.Palette.Warning, r.Op(gtx.Ops))
			return layout.Dimensions{Size: gtx.Constraints.Min}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(p.theme.Config.Spacing).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						l := material.Body1(p.theme.Theme, msg)
						l.Color = p.theme.Palette.Background
						return l.Layout(gtx)
					}),
					layout.Rigid(material.Button(p.theme.Theme, &p.dismiss, "OK").Layout),
				)
			})
		},
	)
}

func (p *Pad) layoutChart(gtx layout.Context) layout.Dimensions {
	chart := p.board.Chart()
	if chart == nil {
		return layout.Dimensions{Size: gtx.Constraints.Min}
	}
	img := paint.NewImageOp(chart)
	return widget.Image{Src: img, Fit: widget.Contain, Position: layout.NW}.Layout(gtx)
}

func (p *Pad) caption(text string) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		l := material.Caption(p.theme.Theme, text)
		l.Color = p.theme.Palette.TextMuted
		return l.Layout(gtx)
	}
}

// prompt is the heading telling the user what to draw.
func prompt(state controller.UIState) string {
	switch {
	case state.Addition != nil:
		return fmt.Sprintf("Draw the answer: %d + %d", state.Addition.Augend, state.Addition.Addend)
	case state.Expected != nil:
		return fmt.Sprintf("Draw the digit %d", *state.Expected)
	default:
		return "Pick a digit and draw it"
	}
}

func phaseText(phase controller.Phase) string {
	switch phase {
	case controller.PhaseDrawing:
		return "Drawing"
	case controller.PhasePredicting:
		return "Asking the classifier"
	case controller.PhaseTraining:
		return "Training"
	default:
		return "Ready"
	}
}
