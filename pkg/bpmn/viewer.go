package bpmn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// ZoomFitViewport scales the diagram so that it fits entirely into the viewport.
const ZoomFitViewport = "fit-viewport"

// DefaultViewport is used when no viewport is configured.
var DefaultViewport = Viewport{Width: 1024, Height: 768}

// ErrNoModel is returned by canvas operations before a successful import.
var ErrNoModel = errors.New("no diagram imported")

// Viewport is the visible area in screen units.
type Viewport struct {
	Width, Height float64
}

// Viewer imports BPMN documents and owns the canvas they are drawn on.
// A Viewer is bound to one rendering surface; create a new one per surface.
type Viewer struct {
	mu     sync.Mutex
	model  *Model
	canvas *Canvas
}

// NewViewer creates a viewer drawing into the given viewport.
func NewViewer(viewport Viewport) (*Viewer, error) {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return nil, fmt.Errorf("invalid viewport %.0fx%.0f", viewport.Width, viewport.Height)
	}
	v := &Viewer{}
	v.canvas = &Canvas{viewer: v, viewport: viewport, zoom: 1}
	return v, nil
}

// ImportXML parses markup and replaces the displayed model.
// On rejection the canvas is cleared; nothing of a previous import remains.
func (v *Viewer) ImportXML(ctx context.Context, markup string) (*ImportResult, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	model, warnings, err := parseDocument(markup)
	if err == nil {
		err = checkContext(ctx)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.canvas.reset()
	if err != nil {
		v.model = nil
		return nil, err
	}
	v.model = model
	v.canvas.viewBox = model.BoundingBox()
	return &ImportResult{Warnings: warnings}, nil
}

// Model returns the imported model, or nil.
func (v *Viewer) Model() *Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.model
}

// Canvas returns the canvas control of this viewer.
func (v *Viewer) Canvas() *Canvas {
	return v.canvas
}

// Canvas controls zoom and scroll of the imported diagram.
type Canvas struct {
	viewer   *Viewer
	viewport Viewport

	zoom    float64
	viewBox Rect  // diagram area shown at zoom 1 with no scroll
	scroll  Point // scroll offset in screen units
}

func (c *Canvas) reset() {
	c.zoom = 1
	c.viewBox = Rect{}
	c.scroll = Point{}
}

// Zoom applies a zoom mode. Only ZoomFitViewport is supported: it scales the
// diagram bounding box into the viewport, never enlarging beyond 1:1, and
// aligns the view on the diagram's top-left corner.
func (c *Canvas) Zoom(mode string) error {
	if mode != ZoomFitViewport {
		return fmt.Errorf("unsupported zoom mode %q", mode)
	}

	c.viewer.mu.Lock()
	defer c.viewer.mu.Unlock()
	if c.viewer.model == nil {
		return ErrNoModel
	}

	box := c.viewer.model.BoundingBox()
	c.zoom = 1
	if !box.Empty() {
		c.zoom = math.Min(1, math.Min(c.viewport.Width/box.Width, c.viewport.Height/box.Height))
	}
	c.viewBox = Rect{
		X:      box.X,
		Y:      box.Y,
		Width:  c.viewport.Width / c.zoom,
		Height: c.viewport.Height / c.zoom,
	}
	return nil
}

// Scroll sets the scroll position (in screen units) relative to the current view origin.
func (c *Canvas) Scroll(x, y float64) error {
	c.viewer.mu.Lock()
	defer c.viewer.mu.Unlock()
	if c.viewer.model == nil {
		return ErrNoModel
	}
	c.scroll = Point{X: x, Y: y}
	return nil
}

// ZoomLevel returns the current scale factor.
func (c *Canvas) ZoomLevel() float64 {
	c.viewer.mu.Lock()
	defer c.viewer.mu.Unlock()
	return c.zoom
}

// ScrollPosition returns the current scroll offset.
func (c *Canvas) ScrollPosition() Point {
	c.viewer.mu.Lock()
	defer c.viewer.mu.Unlock()
	return c.scroll
}

// Viewport returns the visible area.
func (c *Canvas) Viewport() Viewport {
	return c.viewport
}

// ViewBox returns the diagram area currently visible.
func (c *Canvas) ViewBox() Rect {
	c.viewer.mu.Lock()
	defer c.viewer.mu.Unlock()
	return c.visible()
}

func (c *Canvas) visible() Rect {
	vb := c.viewBox
	vb.X += c.scroll.X / c.zoom
	vb.Y += c.scroll.Y / c.zoom
	return vb
}
