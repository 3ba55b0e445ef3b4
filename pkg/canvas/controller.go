package canvas

import (
	"math"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/highlight"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Gesture identifies what a pointer press turned into.
type Gesture int

const (
	GestureNone Gesture = iota
	GesturePan
	GestureDrag
)

func (g Gesture) String() string {
	switch g {
	case GesturePan:
		return "pan"
	case GestureDrag:
		return "drag"
	default:
		return "none"
	}
}

// Release describes a finished gesture.
type Release struct {
	Gesture Gesture
	Key     string // dragged node, for GestureDrag
	Moved   bool   // beyond the click threshold; the click was suppressed
	Clicked bool   // the gesture counted as a click and reached the selection
}

// Controller routes raw input to the viewport, drag controller and
// selection. A press on a node claims the gesture for dragging; only a
// press on empty background pans. Both are never active at once.
type Controller struct {
	Positions *Positions
	Sizes     *Sizes
	Viewport  *Viewport
	Drag      *DragController
	Selection *highlight.Selection

	order   []string // draw order; later keys are on top
	gesture Gesture
	press   model.Point
}

// NewController wires the controllers over a shared position map. order is
// the draw order used for hit testing.
func NewController(cfg config.CanvasConfig, positions *Positions, order []string) *Controller {
	vp := NewViewport(ViewportConfigFrom(cfg))
	return &Controller{
		Positions: positions,
		Sizes:     NewSizes(model.Size{W: cfg.NodeWidth, H: cfg.NodeHeight}),
		Viewport:  vp,
		Drag:      NewDragController(positions, vp, cfg.ClickThreshold),
		Selection: &highlight.Selection{},
		order:     order,
	}
}

// SetOrder replaces the draw order, as after a dataset reload.
func (c *Controller) SetOrder(order []string) {
	c.order = order
}

// Gesture returns the active gesture.
func (c *Controller) Gesture() Gesture { return c.gesture }

// HitTest returns the topmost node under the screen point. Node rectangles
// are anchored at their position (top-left) and extend by their size.
func (c *Controller) HitTest(x, y float64) (string, bool) {
	pt := c.Viewport.ToCanvas(model.Point{X: x, Y: y})
	for i := len(c.order) - 1; i >= 0; i-- {
		key := c.order[i]
		pos, ok := c.Positions.Get(key)
		if !ok {
			continue
		}
		size := c.Sizes.Get(key)
		if pt.X >= pos.X && pt.X <= pos.X+size.W && pt.Y >= pos.Y && pt.Y <= pos.Y+size.H {
			return key, true
		}
	}
	return "", false
}

// PointerDown starts a drag when the press lands on a node and a pan
// otherwise. Presses while a gesture is active are ignored.
func (c *Controller) PointerDown(x, y float64) Gesture {
	if c.gesture != GestureNone {
		return c.gesture
	}
	c.press = model.Point{X: x, Y: y}
	if key, ok := c.HitTest(x, y); ok && c.Drag.BeginDrag(key, x, y) {
		c.gesture = GestureDrag
		return c.gesture
	}
	c.Viewport.BeginPan(x, y)
	c.gesture = GesturePan
	return c.gesture
}

// PointerMove feeds the active gesture.
func (c *Controller) PointerMove(x, y float64) {
	switch c.gesture {
	case GestureDrag:
		c.Drag.MoveDrag(x, y)
	case GesturePan:
		c.Viewport.MovePan(x, y)
	}
}

// PointerUp ends the active gesture. A drag that stayed within the click
// threshold toggles the node's selection; a pan that stayed within it is a
// background click and clears the selection.
func (c *Controller) PointerUp(x, y float64) Release {
	g := c.gesture
	c.gesture = GestureNone
	switch g {
	case GestureDrag:
		key, _ := c.Drag.Dragging()
		r := Release{Gesture: g, Key: key, Moved: c.Drag.EndDrag()}
		if !r.Moved {
			c.Selection.Click(key)
			r.Clicked = true
		}
		return r
	case GesturePan:
		c.Viewport.EndPan()
		r := Release{Gesture: g, Moved: c.beyondThreshold(x, y)}
		if !r.Moved {
			c.Selection.ClickBackground()
			r.Clicked = true
		}
		return r
	}
	return Release{}
}

// Cancel ends any gesture without producing a click.
func (c *Controller) Cancel() {
	switch c.gesture {
	case GestureDrag:
		c.Drag.EndDrag()
	case GesturePan:
		c.Viewport.EndPan()
	}
	c.gesture = GestureNone
}

// TouchStart handles a touch list after a finger lands. Only a
// single-finger touch starts a gesture. A second finger ends the active
// gesture without a click, so lifting the first finger never hands the
// gesture over to the other one.
func (c *Controller) TouchStart(touches []model.Point) {
	if len(touches) != 1 {
		debug.Log("canvas: ignoring %d-finger touch", len(touches))
		c.Cancel()
		return
	}
	c.PointerDown(touches[0].X, touches[0].Y)
}

// TouchMove feeds the gesture while exactly one finger is down.
func (c *Controller) TouchMove(touches []model.Point) {
	if len(touches) != 1 {
		return
	}
	c.PointerMove(touches[0].X, touches[0].Y)
}

// TouchEnd handles a finger lifting. The gesture ends when the last finger
// lifts; a lift that leaves other fingers down cancels it.
func (c *Controller) TouchEnd(remaining int, last model.Point) Release {
	if remaining > 0 {
		c.Cancel()
		return Release{}
	}
	return c.PointerUp(last.X, last.Y)
}

// Wheel zooms by one notch in the direction of delta.
func (c *Controller) Wheel(delta float64) float64 {
	return c.Viewport.Zoom(delta)
}

func (c *Controller) beyondThreshold(x, y float64) bool {
	d := model.Point{X: x, Y: y}.Sub(c.press).Scale(1 / c.Viewport.Scale())
	t := c.Drag.Threshold()
	return math.Abs(d.X) > t || math.Abs(d.Y) > t
}
