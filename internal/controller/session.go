package controller

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"digitpad/internal/pipeline"
	"digitpad/internal/raster"
)

// Session correlates one processed drawing with the requests sent for it.
// Sessions are never persisted.
type Session struct {
	ID        uuid.UUID
	Image     *raster.Image // 28x28 output of the last pipeline stage
	DataURI   string
	Expected  *int
	CreatedAt time.Time

	epoch uint64
}

func newSession(snapshot *raster.Image, p *pipeline.Pipeline, expected *int, epoch uint64) (*Session, error) {
	img, err := p.Prepare(snapshot)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}
	uri, err := img.DataURI()
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	var exp *int
	if expected != nil {
		v := *expected
		exp = &v
	}
	return &Session{
		ID:        uuid.New(),
		Image:     img,
		DataURI:   uri,
		Expected:  exp,
		CreatedAt: time.Now(),
		epoch:     epoch,
	}, nil
}
