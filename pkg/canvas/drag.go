package canvas

import (
	"math"

	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// DefaultClickThreshold is how far (canvas units, either axis) a drag may
// move and still count as a click.
const DefaultClickThreshold = 5.0

// DragController repositions one node at a time. Screen deltas are divided
// by the viewport scale so a node tracks the pointer 1:1 at any zoom.
//
// Only one drag may be active. Starting a second drag while one is active
// is not a defined input; the Controller never does it.
type DragController struct {
	positions *Positions
	viewport  *Viewport
	threshold float64

	active       bool
	key          string
	nodeStart    model.Point
	pointerStart model.Point
}

// NewDragController creates a drag controller writing into positions.
// A negative threshold uses DefaultClickThreshold.
func NewDragController(positions *Positions, viewport *Viewport, threshold float64) *DragController {
	if threshold < 0 {
		threshold = DefaultClickThreshold
	}
	return &DragController{positions: positions, viewport: viewport, threshold: threshold}
}

// BeginDrag starts dragging key from the given screen point. It reports
// whether a drag started; unknown keys are a silent no-op.
func (d *DragController) BeginDrag(key string, x, y float64) bool {
	start, ok := d.positions.Get(key)
	if !ok {
		debug.Log("drag: ignoring unknown node %q", key)
		return false
	}
	d.active = true
	d.key = key
	d.nodeStart = start
	d.pointerStart = model.Point{X: x, Y: y}
	return true
}

// MoveDrag moves the dragged node to start + (pointer delta / scale).
// No-op when no drag is active.
func (d *DragController) MoveDrag(x, y float64) {
	if !d.active {
		return
	}
	delta := model.Point{X: x, Y: y}.Sub(d.pointerStart).Scale(1 / d.viewport.Scale())
	d.positions.Set(d.key, d.nodeStart.Add(delta))
}

// EndDrag finishes the drag. The node keeps its last position. moved
// reports whether the net canvas movement exceeded the click threshold on
// either axis; callers suppress the click that follows when it is true.
func (d *DragController) EndDrag() (moved bool) {
	if !d.active {
		return false
	}
	d.active = false
	end, _ := d.positions.Get(d.key)
	moved = math.Abs(end.X-d.nodeStart.X) > d.threshold || math.Abs(end.Y-d.nodeStart.Y) > d.threshold
	debug.LogIf(moved, "drag: %s moved to (%.1f, %.1f)", d.key, end.X, end.Y)
	return moved
}

// Dragging returns the dragged key, if any.
func (d *DragController) Dragging() (string, bool) {
	if !d.active {
		return "", false
	}
	return d.key, true
}

// Threshold returns the click threshold in canvas units.
func (d *DragController) Threshold() float64 { return d.threshold }
