package canvas

import (
	"math"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// ViewportConfig bounds the zoom range.
type ViewportConfig struct {
	MinZoom  float64
	MaxZoom  float64
	ZoomStep float64 // Scale change per wheel notch
}

// ViewportConfigFrom converts the file configuration.
func ViewportConfigFrom(c config.CanvasConfig) ViewportConfig {
	return ViewportConfig{MinZoom: c.MinZoom, MaxZoom: c.MaxZoom, ZoomStep: c.ZoomStep}
}

// ViewportState is the serializable part of a viewport.
type ViewportState struct {
	Pan   model.Point `json:"pan"`
	Scale float64     `json:"scale"`
}

// Viewport translates and scales the whole node layer as one unit.
// screen = canvas*scale + pan. Zoom is anchored at the canvas origin, not at
// the pointer: changing the scale never changes the pan offset.
type Viewport struct {
	cfg   ViewportConfig
	pan   model.Point
	scale float64

	home ViewportState

	panning      bool
	pointerStart model.Point
	panStart     model.Point
}

// NewViewport creates a viewport at pan (0,0) and scale 1 (clamped to the
// configured range).
func NewViewport(cfg ViewportConfig) *Viewport {
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = 0.2
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	if cfg.ZoomStep <= 0 {
		cfg.ZoomStep = 0.1
	}
	v := &Viewport{cfg: cfg}
	v.scale = v.clamp(1)
	v.home = v.State()
	return v
}

// Pan returns the current pan offset in screen units.
func (v *Viewport) Pan() model.Point { return v.pan }

// Scale returns the current zoom factor.
func (v *Viewport) Scale() float64 { return v.scale }

// Config returns the zoom limits.
func (v *Viewport) Config() ViewportConfig { return v.cfg }

// State returns the pan offset and scale.
func (v *Viewport) State() ViewportState {
	return ViewportState{Pan: v.pan, Scale: v.scale}
}

// Restore applies a saved state, clamping the scale.
func (v *Viewport) Restore(s ViewportState) {
	if finite(s.Pan.X) && finite(s.Pan.Y) {
		v.pan = s.Pan
	}
	if finite(s.Scale) && s.Scale > 0 {
		v.scale = v.clamp(s.Scale)
	}
}

// SetHome sets the state Reset returns to.
func (v *Viewport) SetHome(s ViewportState) {
	v.home = ViewportState{Pan: s.Pan, Scale: v.clamp(s.Scale)}
}

// Reset returns to the home state. It is only ever triggered by the user.
func (v *Viewport) Reset() {
	v.panning = false
	v.pan = v.home.Pan
	v.scale = v.home.Scale
}

// BeginPan starts a pan gesture at the given pointer position. Nothing
// moves until MovePan.
func (v *Viewport) BeginPan(x, y float64) {
	v.panning = true
	v.pointerStart = model.Point{X: x, Y: y}
	v.panStart = v.pan
}

// MovePan sets pan = pan-at-start + pointer delta. No-op without an active
// gesture.
func (v *Viewport) MovePan(x, y float64) {
	if !v.panning {
		return
	}
	v.pan = v.panStart.Add(model.Point{X: x, Y: y}.Sub(v.pointerStart))
}

// EndPan terminates the gesture.
func (v *Viewport) EndPan() {
	v.panning = false
}

// Panning reports whether a pan gesture is active.
func (v *Viewport) Panning() bool { return v.panning }

// PanBy shifts the pan offset directly (keyboard panning).
func (v *Viewport) PanBy(dx, dy float64) {
	v.pan = v.pan.Add(model.Point{X: dx, Y: dy})
}

// Zoom applies one wheel notch: a positive delta zooms in by ZoomStep, a
// negative delta zooms out, zero does nothing. The result is clamped to
// [MinZoom, MaxZoom]; out-of-range requests are never rejected.
func (v *Viewport) Zoom(delta float64) float64 {
	switch {
	case delta > 0:
		v.scale = v.clamp(v.scale + v.cfg.ZoomStep)
	case delta < 0:
		v.scale = v.clamp(v.scale - v.cfg.ZoomStep)
	}
	return v.scale
}

// SetScale sets the zoom factor, clamped.
func (v *Viewport) SetScale(s float64) {
	if !finite(s) {
		return
	}
	v.scale = v.clamp(s)
}

// ToCanvas converts a screen point to canvas space.
func (v *Viewport) ToCanvas(screen model.Point) model.Point {
	return screen.Sub(v.pan).Scale(1 / v.scale)
}

// ToScreen converts a canvas point to screen space.
func (v *Viewport) ToScreen(c model.Point) model.Point {
	return c.Scale(v.scale).Add(v.pan)
}

// Fit picks a scale and pan that frame the canvas rectangle [min, max]
// inside a screen of the given size with a margin, clamped to the zoom
// range.
func (v *Viewport) Fit(min, max model.Point, screenW, screenH, margin float64) {
	w := max.X - min.X
	h := max.Y - min.Y
	if w <= 0 || h <= 0 || screenW <= 2*margin || screenH <= 2*margin {
		return
	}
	s := math.Min((screenW-2*margin)/w, (screenH-2*margin)/h)
	v.scale = v.clamp(s)
	v.pan = model.Point{
		X: margin - min.X*v.scale,
		Y: (screenH-h*v.scale)/2 - min.Y*v.scale,
	}
}

func (v *Viewport) clamp(s float64) float64 {
	return math.Max(v.cfg.MinZoom, math.Min(v.cfg.MaxZoom, s))
}
