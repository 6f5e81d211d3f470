// Package pipeline normalizes a captured drawing into the exact raster the
// classifier expects: downscale to the target resolution, then an ordered,
// configurable list of pure stages.
package pipeline

import (
	"fmt"
	"strings"

	"digitpad/internal/raster"
)

// TargetSize is the side of the square raster the classifier accepts.
const TargetSize = 28

// StageSpec names a stage and its parameters. Disabled stages are skipped
// by Build so they can stay in a config file without taking effect.
type StageSpec struct {
	Name     string
	Strength float64
	Disabled bool
}

// Factory builds a stage from its spec.
type Factory func(spec StageSpec) (Stage, error)

var registry = map[string]Factory{
	StageFlatten: func(StageSpec) (Stage, error) { return Flatten{}, nil },
	StageInvert:  func(StageSpec) (Stage, error) { return Invert{}, nil },
	StageSmooth:  func(StageSpec) (Stage, error) { return Smooth{}, nil },
	StageContrast: func(spec StageSpec) (Stage, error) {
		if spec.Strength <= -255 || spec.Strength >= 259 {
			return nil, fmt.Errorf("contrast strength %v outside (-255, 259)", spec.Strength)
		}
		return Contrast{Strength: spec.Strength}, nil
	},
}

// Known reports whether name is a registered stage identifier.
func Known(name string) bool {
	_, ok := registry[strings.ToLower(name)]
	return ok
}

// DefaultSpecs is the stage order used when nothing is configured:
// flatten, invert, (smooth disabled), contrast.
func DefaultSpecs() []StageSpec {
	return []StageSpec{
		{Name: StageFlatten},
		{Name: StageInvert},
		{Name: StageSmooth, Disabled: true},
		{Name: StageContrast, Strength: DefaultContrastStrength},
	}
}

// Pipeline is an immutable ordered list of stages.
type Pipeline struct {
	stages []Stage
	size   int
}

// New returns a pipeline running the given stages in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, size: TargetSize}
}

// Default returns the pipeline built from DefaultSpecs.
func Default() *Pipeline {
	p, err := Build(DefaultSpecs())
	if err != nil {
		panic(err)
	}
	return p
}

// Build resolves specs through the stage registry.
func Build(specs []StageSpec) (*Pipeline, error) {
	stages := make([]Stage, 0, len(specs))
	for i, spec := range specs {
		if spec.Disabled {
			continue
		}
		factory, ok := registry[strings.ToLower(spec.Name)]
		if !ok {
			return nil, fmt.Errorf("stage %d: unknown stage %q", i, spec.Name)
		}
		stage, err := factory(spec)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, spec.Name, err)
		}
		stages = append(stages, stage)
	}
	return New(stages...), nil
}

// Stages returns the names of the active stages in order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run applies every stage in order. The input is never modified.
func (p *Pipeline) Run(img *raster.Image) *raster.Image {
	out := img
	for _, s := range p.stages {
		out = s.Apply(out)
	}
	if out == img {
		out = img.Clone()
	}
	return out
}

// Prepare downscales a canvas snapshot to the target resolution and runs
// the stages on the result.
func (p *Pipeline) Prepare(snapshot *raster.Image) (*raster.Image, error) {
	scaled, err := snapshot.Resize(p.size, p.size)
	if err != nil {
		return nil, fmt.Errorf("downscale: %w", err)
	}
	return p.Run(scaled), nil
}
