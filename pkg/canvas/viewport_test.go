package canvas

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/testutil"
)

func defaultViewport() *Viewport {
	return NewViewport(ViewportConfigFrom(config.DefaultConfig().Canvas))
}

func TestPanGesture(t *testing.T) {
	v := defaultViewport()
	v.PanBy(3, 4) // pre-gesture offset

	v.BeginPan(0, 0)
	testutil.AssertPoint(t, "after begin", v.Pan(), model.Point{X: 3, Y: 4})
	v.MovePan(10, 5)
	v.EndPan()
	testutil.AssertPoint(t, "after gesture", v.Pan(), model.Point{X: 13, Y: 9})

	v.MovePan(100, 100)
	testutil.AssertPoint(t, "move without gesture", v.Pan(), model.Point{X: 13, Y: 9})
	if v.Panning() {
		t.Error("Panning should be false after EndPan")
	}
}

func TestPanMovesAreAbsoluteToGestureStart(t *testing.T) {
	v := defaultViewport()
	v.BeginPan(50, 50)
	v.MovePan(60, 60)
	v.MovePan(55, 40)
	testutil.AssertPoint(t, "pan", v.Pan(), model.Point{X: 5, Y: -10})
}

func TestZoomClamps(t *testing.T) {
	v := defaultViewport()
	for i := 0; i < 50; i++ {
		v.Zoom(+10)
	}
	testutil.AssertFloat(t, "max", v.Scale(), 2.0)
	for i := 0; i < 50; i++ {
		v.Zoom(-10)
	}
	testutil.AssertFloat(t, "min", v.Scale(), 0.2)
}

func TestZoomStepAndAnchor(t *testing.T) {
	v := defaultViewport()
	v.PanBy(40, -20)
	if got := v.Zoom(1); math.Abs(got-1.1) > 1e-9 {
		t.Errorf("one notch in: scale %v, want 1.1", got)
	}
	if got := v.Zoom(0); math.Abs(got-1.1) > 1e-9 {
		t.Errorf("zero delta should not zoom, got %v", got)
	}
	testutil.AssertPoint(t, "pan unchanged by zoom", v.Pan(), model.Point{X: 40, Y: -20})

	// The canvas origin stays fixed on screen.
	testutil.AssertPoint(t, "origin", v.ToScreen(model.Point{}), model.Point{X: 40, Y: -20})
}

func TestCoordinateConversion(t *testing.T) {
	v := defaultViewport()
	v.SetScale(2)
	v.PanBy(10, 20)
	c := model.Point{X: 5, Y: 7}
	s := v.ToScreen(c)
	testutil.AssertPoint(t, "screen", s, model.Point{X: 20, Y: 34})
	testutil.AssertPoint(t, "round trip", v.ToCanvas(s), c)
}

func TestResetAndRestore(t *testing.T) {
	v := defaultViewport()
	v.PanBy(10, 10)
	v.Zoom(1)
	v.Reset()
	testutil.AssertPoint(t, "reset pan", v.Pan(), model.Point{})
	testutil.AssertFloat(t, "reset scale", v.Scale(), 1)

	v.Restore(ViewportState{Pan: model.Point{X: 1, Y: 2}, Scale: 9})
	testutil.AssertFloat(t, "restore clamps", v.Scale(), 2)
	v.Restore(ViewportState{Pan: model.Point{X: math.NaN()}, Scale: math.Inf(1)})
	testutil.AssertPoint(t, "non-finite ignored", v.Pan(), model.Point{X: 1, Y: 2})
}

func TestFit(t *testing.T) {
	v := defaultViewport()
	v.Fit(model.Point{X: 0, Y: 0}, model.Point{X: 1000, Y: 500}, 520, 400, 10)
	testutil.AssertFloat(t, "scale", v.Scale(), 0.5)
	testutil.AssertPoint(t, "min maps to margin", v.ToScreen(model.Point{}), model.Point{X: 10, Y: 75})
}

func TestZoomNeverLeavesRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := defaultViewport()
		deltas := rapid.SliceOf(rapid.Float64Range(-100, 100)).Draw(rt, "deltas")
		for _, d := range deltas {
			s := v.Zoom(d)
			if s < 0.2-1e-9 || s > 2.0+1e-9 {
				rt.Fatalf("scale %v outside [0.2, 2.0]", s)
			}
		}
	})
}
