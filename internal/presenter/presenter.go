// Package presenter renders classifier predictions as a summary line and a
// confidence bar chart.
package presenter

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"sync"

	"github.com/fogleman/gg"

	"digitpad/internal/canvas"
	"digitpad/internal/classifier"
)

const (
	MarkCorrect = "✔️"
	MarkWrong   = "❌"
)

// Presenter receives predictions from the controller.
type Presenter interface {
	Present(p *classifier.Prediction)
	Clear()
}

// ChartOptions controls the bar chart geometry.
type ChartOptions struct {
	Width  int
	Height int
}

// DefaultChartOptions returns the chart size used by the GUI.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 600, Height: 300}
}

var (
	barFill   = color.NRGBA{R: 75, G: 192, B: 192, A: 51}
	barBorder = color.NRGBA{R: 75, G: 192, B: 192, A: 255}
	axisColor = color.NRGBA{R: 102, G: 102, B: 102, A: 255}
	textColor = color.NRGBA{R: 33, G: 33, B: 33, A: 255}
)

// Output is one rendered prediction.
type Output struct {
	Summary string
	Correct bool
	Chart   image.Image
	Labels  []string
	Values  []float64
}

// Board keeps the latest rendered prediction. Each Present discards the
// previous chart and renders a fresh one.
type Board struct {
	mu   sync.RWMutex
	opts ChartOptions
	out  *Output
}

var _ Presenter = (*Board)(nil)

func NewBoard(opts ChartOptions) *Board {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultChartOptions()
	}
	return &Board{opts: opts}
}

func (b *Board) Present(p *classifier.Prediction) {
	if p == nil {
		return
	}
	out := &Output{
		Summary: Summary(p),
		Correct: p.Correct,
		Labels:  Labels(),
		Values:  append([]float64(nil), p.Confidences[:]...),
	}
	out.Chart = renderChart(b.opts, out.Labels, out.Values)

	b.mu.Lock()
	b.out = out
	b.mu.Unlock()
}

func (b *Board) Clear() {
	b.mu.Lock()
	b.out = nil
	b.mu.Unlock()
}

// Output returns the current rendering, or nil after Clear.
func (b *Board) Output() *Output {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.out
}

func (b *Board) Summary() string {
	if out := b.Output(); out != nil {
		return out.Summary
	}
	return ""
}

func (b *Board) Chart() image.Image {
	if out := b.Output(); out != nil {
		return out.Chart
	}
	return nil
}

// Summary formats the one-line result text.
func Summary(p *classifier.Prediction) string {
	expected := "N/A"
	if p.Expected != nil {
		expected = strconv.Itoa(*p.Expected)
	}
	mark := MarkWrong
	if p.Correct {
		mark = MarkCorrect
	}
	return fmt.Sprintf("Prediction: %d  Expected: %s  Correct: %s", p.Digit, expected, mark)
}

// Labels returns the chart labels in class order.
func Labels() []string {
	labels := make([]string, classifier.Classes)
	for i := range labels {
		labels[i] = fmt.Sprintf("Digit %d", i)
	}
	return labels
}

func renderChart(opts ChartOptions, labels []string, values []float64) image.Image {
	const (
		marginLeft   = 40.0
		marginRight  = 10.0
		marginTop    = 10.0
		marginBottom = 28.0
	)
	w, h := float64(opts.Width), float64(opts.Height)
	plotW := w - marginLeft - marginRight
	plotH := h - marginTop - marginBottom

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	scale := 1.0
	for _, v := range values {
		if v > scale {
			scale = v
		}
	}

	if face, err := canvas.FontFace(11); err == nil {
		dc.SetFontFace(face)
	}

	// y axis with ticks at quarters
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()
	for i := 0; i <= 4; i++ {
		v := scale * float64(i) / 4
		y := marginTop + plotH - plotH*float64(i)/4
		dc.DrawStringAnchored(strconv.FormatFloat(v, 'f', 2, 64), marginLeft-4, y, 1, 0.5)
	}

	slot := plotW / float64(len(values))
	barW := slot * 0.8
	for i, v := range values {
		if v < 0 {
			v = 0
		}
		bh := plotH * v / scale
		x := marginLeft + slot*float64(i) + (slot-barW)/2
		y := marginTop + plotH - bh

		dc.DrawRectangle(x, y, barW, bh)
		dc.SetColor(barFill)
		dc.FillPreserve()
		dc.SetColor(barBorder)
		dc.Stroke()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(labels[i], x+barW/2, marginTop+plotH+14, 0.5, 0.5)
	}

	return dc.Image()
}
