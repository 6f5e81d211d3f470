// Package raster provides the fixed-size RGBA pixel buffer shared by the
// canvas, the normalization pipeline and the classifier client.
//
// Pixels are stored non-premultiplied, four bytes per pixel (R, G, B, A),
// row-major, which matches what a browser canvas hands back from
// getImageData and what image.NRGBA uses.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// Channels is the number of bytes per pixel.
const Channels = 4

// ErrOutOfBounds is returned when a coordinate lies outside the image.
var ErrOutOfBounds = errors.New("raster: coordinate out of bounds")

// ErrInvalidSize is returned for non-positive dimensions or a buffer whose
// length does not match them.
var ErrInvalidSize = errors.New("raster: invalid size")

// Image is a width x height raster with 8-bit R, G, B, A channels.
// len(Pix) is always Width*Height*4.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New returns a fully transparent image of the given size.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}, nil
}

// FromImage copies any image.Image into a new raster, converting to
// non-premultiplied RGBA.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	img, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := 0; y < img.Height; y++ {
			start := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
			copy(img.Pix[y*img.Width*Channels:(y+1)*img.Width*Channels], nrgba.Pix[start:start+img.Width*Channels])
		}
		return img, nil
	}

	dst := img.nrgba()
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return img, nil
}

// nrgba returns an image.NRGBA view sharing the receiver's buffer.
func (m *Image) nrgba() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix,
		Stride: m.Width * Channels,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}

// Image returns a copy of the raster as an *image.NRGBA.
func (m *Image) Image() *image.NRGBA {
	return m.Clone().nrgba()
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Width: m.Width, Height: m.Height, Pix: pix}
}

// In reports whether (x, y) lies inside the image.
func (m *Image) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// Offset returns the index of the red channel of pixel (x, y).
func (m *Image) Offset(x, y int) int {
	return (y*m.Width + x) * Channels
}

// Get returns the channels of pixel (x, y).
func (m *Image) Get(x, y int) (r, g, b, a uint8, err error) {
	if !m.In(x, y) {
		return 0, 0, 0, 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, m.Width, m.Height)
	}
	i := m.Offset(x, y)
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3], nil
}

// Set writes pixel (x, y), clamping every channel to [0, 255].
func (m *Image) Set(x, y int, r, g, b, a int) error {
	if !m.In(x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, m.Width, m.Height)
	}
	i := m.Offset(x, y)
	m.Pix[i] = Clamp(r)
	m.Pix[i+1] = Clamp(g)
	m.Pix[i+2] = Clamp(b)
	m.Pix[i+3] = Clamp(a)
	return nil
}

// Resize resamples the image to width x height and returns a new raster.
// The receiver is not modified. Downscaling widens the bilinear kernel by
// the scale factor so every source pixel contributes, which matches a
// browser drawImage into a smaller canvas.
func (m *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: resize to %dx%d", ErrInvalidSize, width, height)
	}
	if width == m.Width && height == m.Height {
		return m.Clone(), nil
	}
	out := resize.Resize(uint(width), uint(height), m.nrgba(), resize.Bilinear)
	return FromImage(out)
}

// Clamp converts an integer channel value to a byte, saturating at 0 and 255.
func Clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
