package pipeline

import (
	"math"

	"digitpad/internal/raster"
)

// Stage is one pure raster-to-raster transform. Apply never modifies its
// input and never returns a buffer shared with it.
type Stage interface {
	Name() string
	Apply(src *raster.Image) *raster.Image
}

// Stage identifiers accepted by Build.
const (
	StageFlatten  = "flatten"
	StageInvert   = "invert"
	StageSmooth   = "smooth"
	StageContrast = "contrast"
)

// DefaultContrastStrength sharpens stroke edges after inversion without
// clipping the anti-aliased rim.
const DefaultContrastStrength = 0.5

// Flatten composites the image over an opaque white background.
type Flatten struct{}

func (Flatten) Name() string { return StageFlatten }

func (Flatten) Apply(src *raster.Image) *raster.Image {
	dst := src.Clone()
	for i := 0; i < len(dst.Pix); i += raster.Channels {
		alpha := float64(src.Pix[i+3]) / 255
		for c := 0; c < 3; c++ {
			v := float64(src.Pix[i+c])*alpha + 255*(1-alpha)
			dst.Pix[i+c] = round(v)
		}
		dst.Pix[i+3] = 255
	}
	return dst
}

// Invert flips R, G and B. Alpha is left untouched.
type Invert struct{}

func (Invert) Name() string { return StageInvert }

func (Invert) Apply(src *raster.Image) *raster.Image {
	dst := src.Clone()
	for i := 0; i < len(dst.Pix); i += raster.Channels {
		dst.Pix[i] = 255 - src.Pix[i]
		dst.Pix[i+1] = 255 - src.Pix[i+1]
		dst.Pix[i+2] = 255 - src.Pix[i+2]
	}
	return dst
}

// smoothKernel is a 3x3 binomial blur, weights summing to 16.
var smoothKernel = [3][3]float64{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// Smooth blurs all four channels with a 3x3 kernel. Samples outside the
// image are taken from the nearest edge pixel.
type Smooth struct{}

func (Smooth) Name() string { return StageSmooth }

func (Smooth) Apply(src *raster.Image) *raster.Image {
	dst := src.Clone()
	w, h := src.Width, src.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [raster.Channels]float64
			for ky := -1; ky <= 1; ky++ {
				sy := clampInt(y+ky, 0, h-1)
				for kx := -1; kx <= 1; kx++ {
					sx := clampInt(x+kx, 0, w-1)
					weight := smoothKernel[ky+1][kx+1] / 16
					off := src.Offset(sx, sy)
					for c := 0; c < raster.Channels; c++ {
						acc[c] += float64(src.Pix[off+c]) * weight
					}
				}
			}
			off := dst.Offset(x, y)
			for c := 0; c < raster.Channels; c++ {
				dst.Pix[off+c] = round(acc[c])
			}
		}
	}
	return dst
}

// Contrast applies the standard contrast curve to R, G and B.
type Contrast struct {
	Strength float64
}

func (Contrast) Name() string { return StageContrast }

// Factor returns the slope of the contrast curve.
func (c Contrast) Factor() float64 {
	return 259 * (c.Strength + 255) / (255 * (259 - c.Strength))
}

func (c Contrast) Apply(src *raster.Image) *raster.Image {
	dst := src.Clone()
	factor := c.Factor()
	for i := 0; i < len(dst.Pix); i += raster.Channels {
		for ch := 0; ch < 3; ch++ {
			v := factor*(float64(src.Pix[i+ch])-128) + 128
			dst.Pix[i+ch] = round(v)
		}
	}
	return dst
}

// round saturates and rounds like a Uint8ClampedArray store.
func round(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.RoundToEven(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
