package viewport

import (
	"errors"
	"fmt"
)

// Options tunes the controller. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	ScaleMin      float64
	ScaleMax      float64
	FitScale      float64 // scale of the transform computed at load time
	FocusScale    float64 // scale used when a region is activated
	ZoomInFactor  float64
	ZoomOutFactor float64

	// FitToContainer derives the load-time scale from the container and scene
	// sizes instead of using FitScale. Off by default: the map has always been
	// shown at a fixed zoom.
	FitToContainer bool
}

// DefaultOptions returns the values the map has shipped with.
func DefaultOptions() Options {
	return Options{
		ScaleMin:      0.6,
		ScaleMax:      8.0,
		FitScale:      1.1,
		FocusScale:    2.2,
		ZoomInFactor:  1.1,
		ZoomOutFactor: 0.9,
	}
}

var errOptions = errors.New("viewport: invalid options")

// Validate reports the first inconsistency in o.
func (o Options) Validate() error {
	switch {
	case o.ScaleMin <= 0 || o.ScaleMax <= 0:
		return fmt.Errorf("%w: scale bounds must be positive", errOptions)
	case o.ScaleMin > o.ScaleMax:
		return fmt.Errorf("%w: scale min %g exceeds max %g", errOptions, o.ScaleMin, o.ScaleMax)
	case o.FitScale < o.ScaleMin || o.FitScale > o.ScaleMax:
		return fmt.Errorf("%w: fit scale %g outside [%g, %g]", errOptions, o.FitScale, o.ScaleMin, o.ScaleMax)
	case o.FocusScale < o.ScaleMin || o.FocusScale > o.ScaleMax:
		return fmt.Errorf("%w: focus scale %g outside [%g, %g]", errOptions, o.FocusScale, o.ScaleMin, o.ScaleMax)
	case o.ZoomInFactor <= 1:
		return fmt.Errorf("%w: zoom-in factor %g must be > 1", errOptions, o.ZoomInFactor)
	case o.ZoomOutFactor <= 0 || o.ZoomOutFactor >= 1:
		return fmt.Errorf("%w: zoom-out factor %g must be in (0, 1)", errOptions, o.ZoomOutFactor)
	}
	return nil
}

func (o Options) clamp(s float64) float64 {
	return min(max(s, o.ScaleMin), o.ScaleMax)
}

func (o Options) fitScale(bbox Rect, c Size) float64 {
	if !o.FitToContainer {
		return o.FitScale
	}
	return o.clamp(min(c.Width/bbox.Width, c.Height/bbox.Height))
}
