// Package canvas abstracts the drawing surface behind a small capability
// interface so capture, the controller and the pipeline can run without a
// real rendering backend.
package canvas

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/fogleman/gg"

	"digitpad/internal/raster"
)

// Point is a canvas-local coordinate in pixels.
type Point struct {
	X, Y float64
}

// Canvas is the capability surface the interaction flows depend on.
type Canvas interface {
	// StrokeTo paints a brush segment from one point to the next.
	StrokeTo(from, to Point)
	// Snapshot returns a copy of the current pixels.
	Snapshot() *raster.Image
	// Clear makes every pixel transparent.
	Clear()
	// DrawOverlayText paints a faint, centred glyph used as a tracing guide.
	DrawOverlayText(text string) error
}

// Default drawing surface geometry.
const (
	DefaultWidth      = 280
	DefaultHeight     = 280
	DefaultBrushWidth = 15.0
)

// GuideColor is the faint grey used for the template glyph.
var GuideColor = color.NRGBA{R: 200, G: 200, B: 200, A: 77}

// GG is a Canvas backed by a fogleman/gg context. Strokes are opaque black
// with round caps on a transparent background.
type GG struct {
	mu     sync.Mutex
	dc     *gg.Context
	brush  float64
	width  int
	height int
}

// NewGG creates a transparent canvas.
func NewGG(width, height int, brush float64) (*GG, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	if brush <= 0 {
		brush = DefaultBrushWidth
	}
	return &GG{
		dc:     gg.NewContext(width, height),
		brush:  brush,
		width:  width,
		height: height,
	}, nil
}

// Size returns the canvas dimensions.
func (c *GG) Size() (int, int) {
	return c.width, c.height
}

func (c *GG) StrokeTo(from, to Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dc.SetLineWidth(c.brush)
	c.dc.SetLineCap(gg.LineCapRound)
	c.dc.SetLineJoin(gg.LineJoinRound)
	c.dc.SetRGB(0, 0, 0)
	c.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	c.dc.Stroke()
}

func (c *GG) Snapshot() *raster.Image {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, err := raster.FromImage(c.dc.Image())
	if err != nil {
		// The context always has positive dimensions.
		panic(err)
	}
	return img
}

func (c *GG) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dc.SetRGBA(0, 0, 0, 0)
	c.dc.Clear()
}

func (c *GG) DrawOverlayText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 250px on the 280px reference canvas.
	face, err := FontFace(float64(c.height) * 250 / 280)
	if err != nil {
		return fmt.Errorf("overlay text: %w", err)
	}
	c.dc.SetFontFace(face)
	c.dc.SetColor(GuideColor)
	c.dc.DrawStringAnchored(text, float64(c.width)/2, float64(c.height)/2, 0.5, 0.5)
	return nil
}

// Paint draws an existing raster onto the canvas at the origin, scaled to
// fill it. Used to replay saved drawings.
func (c *GG) Paint(img *raster.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src := img
	if img.Width != c.width || img.Height != c.height {
		scaled, err := img.Resize(c.width, c.height)
		if err != nil {
			return
		}
		src = scaled
	}
	c.dc.DrawImage(src.Image(), 0, 0)
}
