// Package viewport turns pointer and wheel input into a view transform for a
// 2D scene: click-to-focus, drag panning and cursor-anchored wheel zoom, all
// folded into one translate+scale transform.
//
// A Controller is driven from a single event loop and is not safe for
// concurrent use. Callers read the transform through accessors and change it
// only through the operations below.
package viewport

import (
	"strings"

	"go.uber.org/zap"
	"seehuhn.de/go/geom/vec"
)

type Controller struct {
	opts Options
	log  *zap.Logger

	transform Transform
	initial   *Transform
	container Size

	selected  string
	hasSelect bool
	hovered   string

	dragging bool
	last     *vec.Vec2

	mode ColorMode
}

// New returns a controller that has not seen a scene yet. Until Initialize
// succeeds the transform is the identity and ResetView does nothing.
func New(opts Options, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{opts: opts, log: log, transform: Identity}
}

// Initialize positions a freshly loaded scene. It must be called once the
// scene geometry and container size are known; when either is not
// measurable it does nothing and returns false. Any previous state is
// discarded: the scene is replaced wholesale.
func (c *Controller) Initialize(bbox Rect, container Size) bool {
	if bbox.Empty() || container.Empty() {
		c.log.Debug("initialize skipped: scene not measurable",
			zap.Any("bbox", bbox), zap.Any("container", container))
		return false
	}
	t := centerOn(bbox, container, c.opts.fitScale(bbox, container))
	c.transform = t
	c.initial = &t
	c.container = container
	c.selected, c.hasSelect = "", false
	c.hovered = ""
	c.dragging = false
	c.last = nil
	c.log.Debug("viewport initialized", zap.Stringer("transform", t))
	return true
}

// Initialized reports whether Initialize has succeeded at least once.
func (c *Controller) Initialized() bool { return c.initial != nil }

// Resize records a new container size without moving the scene.
func (c *Controller) Resize(container Size) {
	if container.Empty() {
		return
	}
	c.container = container
}

// BeginPan starts a drag gesture at the given pointer position.
func (c *Controller) BeginPan(x, y float64) {
	c.dragging = true
	c.last = &vec.Vec2{X: x, Y: y}
}

// ContinuePan moves the scene by the pointer delta since the last recorded
// position. It reports whether the transform changed; outside a drag it is a
// no-op.
func (c *Controller) ContinuePan(x, y float64) bool {
	if !c.dragging || c.last == nil {
		return false
	}
	dx, dy := x-c.last.X, y-c.last.Y
	c.last = &vec.Vec2{X: x, Y: y}
	if dx == 0 && dy == 0 {
		return false
	}
	c.transform.TranslateX += dx
	c.transform.TranslateY += dy
	return true
}

// EndPan finishes a drag gesture. Safe to call at any time.
func (c *Controller) EndPan() {
	c.dragging = false
	c.last = nil
}

// Dragging reports whether a pan gesture is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Zoom rescales the scene by one step in direction d while keeping the scene
// point under (x, y) fixed on screen. The scale is clamped before the
// translation is derived, so steps past a bound leave the transform as is.
func (c *Controller) Zoom(x, y float64, d Direction) {
	factor := c.opts.ZoomInFactor
	if d == ZoomOut {
		factor = c.opts.ZoomOutFactor
	}
	old := c.transform
	scale := c.opts.clamp(old.Scale * factor)
	if scale == old.Scale {
		return
	}
	ratio := scale / old.Scale
	c.transform = Transform{
		Scale:      scale,
		TranslateX: x - ratio*(x-old.TranslateX),
		TranslateY: y - ratio*(y-old.TranslateY),
	}
}

// ZoomCenter zooms around the middle of the container.
func (c *Controller) ZoomCenter(d Direction) {
	c.Zoom(c.container.Width/2, c.container.Height/2, d)
}

// ActivateRegion selects a region and focuses the view on its bounding box
// inside the last known container. Unknown codes (empty bbox) are still
// selected; only the transform is left untouched.
func (c *Controller) ActivateRegion(code string, bbox Rect) {
	c.ActivateRegionIn(code, bbox, c.container)
}

// ActivateRegionIn is ActivateRegion with an explicit container size.
func (c *Controller) ActivateRegionIn(code string, bbox Rect, container Size) {
	c.selected, c.hasSelect = strings.ToLower(code), true
	if bbox.Empty() || container.Empty() {
		c.log.Debug("region selected without focus", zap.String("code", c.selected))
		return
	}
	c.transform = centerOn(bbox, container, c.opts.FocusScale)
	c.log.Debug("region focused", zap.String("code", c.selected), zap.Stringer("transform", c.transform))
}

// Dismiss clears the selection. The transform is not touched.
func (c *Controller) Dismiss() {
	c.selected, c.hasSelect = "", false
}

// ResetView restores the transform captured by Initialize.
func (c *Controller) ResetView() {
	if c.initial == nil {
		return
	}
	c.transform = *c.initial
}

// SetColorMode changes which attribute drives region fills.
func (c *Controller) SetColorMode(m ColorMode) { c.mode = m }

// ColorMode returns the active colour mode.
func (c *Controller) ColorMode() ColorMode { return c.mode }

// Hover records the region under the pointer; "" clears it.
func (c *Controller) Hover(code string) { c.hovered = strings.ToLower(code) }

// Hovered returns the region under the pointer, if any.
func (c *Controller) Hovered() string { return c.hovered }

// Transform returns the current view transform.
func (c *Controller) Transform() Transform { return c.transform }

// InitialTransform returns the transform captured at load time.
func (c *Controller) InitialTransform() (Transform, bool) {
	if c.initial == nil {
		return Transform{}, false
	}
	return *c.initial, true
}

// Selected returns the selected region code.
func (c *Controller) Selected() (string, bool) { return c.selected, c.hasSelect }

// Container returns the last known container size.
func (c *Controller) Container() Size { return c.container }

// PresentationOf reports how the region with the given code should be drawn.
func (c *Controller) PresentationOf(code string) PresentationState {
	code = strings.ToLower(code)
	switch {
	case c.hasSelect && code == c.selected:
		return StateSelected
	case code != "" && code == c.hovered:
		return StateHovered
	}
	return StateDefault
}
