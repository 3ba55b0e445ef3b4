package canvas

import (
	"testing"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/testutil"
)

// Nodes are 180x56 (fallback). A spans (100..280, 100..156).
func newTestController() *Controller {
	return NewController(config.DefaultConfig().Canvas, twoNodes(), []string{"A", "B"})
}

func TestPressOnNodeDragsNotPans(t *testing.T) {
	c := newTestController()
	if g := c.PointerDown(110, 110); g != GestureDrag {
		t.Fatalf("press on A: gesture %v, want drag", g)
	}
	c.PointerMove(160, 140)
	r := c.PointerUp(160, 140)

	if r.Gesture != GestureDrag || r.Key != "A" || !r.Moved || r.Clicked {
		t.Errorf("unexpected release %+v", r)
	}
	testutil.AssertPoint(t, "pan untouched", c.Viewport.Pan(), model.Point{})
	a, _ := c.Positions.Get("A")
	testutil.AssertPoint(t, "A", a, model.Point{X: 150, Y: 130})
	if _, sel := c.Selection.Selected(); sel {
		t.Error("a real drag must not change the selection")
	}
}

func TestPressOnBackgroundPans(t *testing.T) {
	c := newTestController()
	if g := c.PointerDown(0, 0); g != GesturePan {
		t.Fatalf("press on background: gesture %v, want pan", g)
	}
	c.PointerMove(10, 5)
	c.PointerUp(10, 5)
	testutil.AssertPoint(t, "pan", c.Viewport.Pan(), model.Point{X: 10, Y: 5})
	a, _ := c.Positions.Get("A")
	testutil.AssertPoint(t, "A untouched", a, model.Point{X: 100, Y: 100})
}

func TestClickTogglesSelection(t *testing.T) {
	c := newTestController()
	var changes []string
	c.Selection.OnChange = func(k string, _ bool) { changes = append(changes, k) }

	click := func(x, y float64) Release {
		c.PointerDown(x, y)
		c.PointerMove(x+2, y+3)
		return c.PointerUp(x+2, y+3)
	}

	if r := click(110, 110); !r.Clicked {
		t.Fatalf("small drag should click, got %+v", r)
	}
	if k, ok := c.Selection.Selected(); !ok || k != "A" {
		t.Fatalf("expected A selected, got (%q, %v)", k, ok)
	}
	click(410, 310)
	if k, _ := c.Selection.Selected(); k != "B" {
		t.Fatalf("expected B selected, got %q", k)
	}
	click(412, 313) // same node again
	if _, ok := c.Selection.Selected(); ok {
		t.Fatal("clicking the selected node should unselect")
	}
	if len(changes) != 3 {
		t.Errorf("expected 3 OnChange calls, got %v", changes)
	}
}

func TestDragBeyondThresholdDoesNotToggle(t *testing.T) {
	c := newTestController()
	c.Selection.Click("B")

	c.PointerDown(110, 110)
	c.PointerMove(117, 110)
	r := c.PointerUp(117, 110)
	if !r.Moved {
		t.Fatal("7 units should exceed the threshold")
	}
	if k, _ := c.Selection.Selected(); k != "B" {
		t.Errorf("selection changed to %q", k)
	}
}

func TestBackgroundClickClearsUnlessPanned(t *testing.T) {
	c := newTestController()
	c.Selection.Click("A")

	c.PointerDown(0, 0)
	c.PointerMove(50, 0)
	c.PointerUp(50, 0)
	if _, ok := c.Selection.Selected(); !ok {
		t.Fatal("panning must not clear the selection")
	}

	c.PointerDown(0, 0)
	c.PointerUp(1, 1)
	if _, ok := c.Selection.Selected(); ok {
		t.Error("background click should clear the selection")
	}
}

func TestHitTestRespectsViewportAndOrder(t *testing.T) {
	pos := NewPositions(map[string]model.Point{"under": {X: 0, Y: 0}, "over": {X: 10, Y: 10}})
	c := NewController(config.DefaultConfig().Canvas, pos, []string{"under", "over"})

	if k, _ := c.HitTest(20, 20); k != "over" {
		t.Errorf("overlap should hit the node drawn last, got %q", k)
	}
	if k, _ := c.HitTest(5, 5); k != "under" {
		t.Errorf("got %q, want under", k)
	}

	c.Viewport.SetScale(0.5)
	c.Viewport.PanBy(100, 0)
	// Screen (104, 2) is canvas (8, 4).
	if k, _ := c.HitTest(104, 2); k != "under" {
		t.Errorf("after zoom: got %q, want under", k)
	}
	if _, ok := c.HitTest(0, 0); ok {
		t.Error("left of the pan offset should be background")
	}
}

func TestMeasuredSizeChangesHitArea(t *testing.T) {
	c := newTestController()
	c.Sizes.Measure("A", model.Size{W: 10, H: 10})
	if _, ok := c.HitTest(150, 150); ok {
		t.Error("measured size should shrink the hit area")
	}
}

func TestMultiTouchIgnored(t *testing.T) {
	c := newTestController()
	c.TouchStart([]model.Point{{X: 0, Y: 0}, {X: 50, Y: 50}})
	if c.Gesture() != GestureNone {
		t.Fatal("two-finger touch must not start a gesture")
	}
	c.TouchMove([]model.Point{{X: 30, Y: 30}, {X: 80, Y: 80}})
	testutil.AssertPoint(t, "pan", c.Viewport.Pan(), model.Point{})

	c.TouchStart([]model.Point{{X: 0, Y: 0}})
	c.TouchMove([]model.Point{{X: 20, Y: 0}})
	c.TouchMove([]model.Point{{X: 90, Y: 90}, {X: 10, Y: 10}}) // second finger: ignored
	c.TouchEnd(0, model.Point{X: 20, Y: 0})
	testutil.AssertPoint(t, "single finger pan", c.Viewport.Pan(), model.Point{X: 20, Y: 0})
}

func TestSecondFingerEndsGesture(t *testing.T) {
	tests := []struct {
		name  string
		start model.Point
	}{
		{"pan", model.Point{X: 0, Y: 0}},
		{"drag", model.Point{X: 110, Y: 110}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController()
			before, _ := c.Positions.Get("A")

			c.TouchStart([]model.Point{tt.start})
			c.TouchStart([]model.Point{tt.start, {X: 500, Y: 500}})
			if c.Gesture() != GestureNone {
				t.Fatalf("second finger should end the gesture, got %v", c.Gesture())
			}
			// The first finger lifts; the remaining one keeps moving.
			if r := c.TouchEnd(1, tt.start); r.Gesture != GestureNone {
				t.Errorf("lift with a finger left down released %+v", r)
			}
			c.TouchMove([]model.Point{{X: 505, Y: 505}})
			r := c.TouchEnd(0, model.Point{X: 505, Y: 505})
			if r.Gesture != GestureNone || r.Clicked {
				t.Errorf("unexpected release %+v", r)
			}

			testutil.AssertPoint(t, "pan", c.Viewport.Pan(), model.Point{})
			after, _ := c.Positions.Get("A")
			testutil.AssertPoint(t, "node", after, before)
			if _, ok := c.Selection.Selected(); ok {
				t.Error("a cancelled touch must not select")
			}
		})
	}
}

func TestTouchDragsNode(t *testing.T) {
	c := newTestController()
	c.TouchStart([]model.Point{{X: 110, Y: 110}})
	c.TouchMove([]model.Point{{X: 130, Y: 110}})
	r := c.TouchEnd(0, model.Point{X: 130, Y: 110})
	if r.Gesture != GestureDrag || !r.Moved {
		t.Errorf("unexpected release %+v", r)
	}
}

func TestWheelAndCancel(t *testing.T) {
	c := newTestController()
	if s := c.Wheel(-1); s >= 1 {
		t.Errorf("wheel down should zoom out, got %v", s)
	}
	c.PointerDown(110, 110)
	c.PointerMove(111, 111)
	c.Cancel()
	if c.Gesture() != GestureNone {
		t.Error("Cancel should end the gesture")
	}
	if _, ok := c.Selection.Selected(); ok {
		t.Error("Cancel must not click")
	}
	if r := c.PointerUp(0, 0); r.Gesture != GestureNone {
		t.Errorf("release without gesture: %+v", r)
	}
}

func TestBounds(t *testing.T) {
	pos := twoNodes()
	sizes := NewSizes(model.Size{W: 180, H: 56})
	sizes.Measure("B", model.Size{W: 20, H: 10})
	min, max, ok := Bounds(pos, sizes)
	if !ok {
		t.Fatal("expected bounds")
	}
	testutil.AssertPoint(t, "min", min, model.Point{X: 100, Y: 100})
	testutil.AssertPoint(t, "max", max, model.Point{X: 420, Y: 310})

	if _, _, ok := Bounds(NewPositions(nil), sizes); ok {
		t.Error("empty positions have no bounds")
	}
}
