package canvas

import (
	"sync"

	"digitpad/internal/raster"
)

// Preview holds the last processed raster shown next to the drawing.
type Preview struct {
	mu  sync.RWMutex
	img *raster.Image
}

// Show replaces the preview with a copy of img.
func (p *Preview) Show(img *raster.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.img = img.Clone()
}

// Clear removes the preview.
func (p *Preview) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.img = nil
}

// Image returns a copy of the preview, or nil when empty.
func (p *Preview) Image() *raster.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.img == nil {
		return nil
	}
	return p.img.Clone()
}
