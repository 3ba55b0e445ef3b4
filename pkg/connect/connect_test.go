package connect

import (
	"encoding/xml"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/highlight"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/testutil"
)

var fallback = model.Size{W: 180, H: 56}

func TestAnchors(t *testing.T) {
	start, end := Anchors(
		model.Point{X: 100, Y: 200}, model.Point{X: 500, Y: 300},
		model.Size{W: 120, H: 40}, model.Size{W: 80, H: 60},
	)
	testutil.AssertPoint(t, "source right-center", start, model.Point{X: 220, Y: 220})
	testutil.AssertPoint(t, "target left-center", end, model.Point{X: 500, Y: 330})
}

func TestRouteUsesFallbackForUnmeasured(t *testing.T) {
	pos := canvas.NewPositions(map[string]model.Point{"a": {X: 0, Y: 0}, "b": {X: 400, Y: 0}})
	sizes := canvas.NewSizes(fallback)
	c, ok := Route(model.Edge{From: "a", To: "b"}, pos, sizes, Options{})
	if !ok {
		t.Fatal("expected a route")
	}
	testutil.AssertPoint(t, "start", c.Start, model.Point{X: 180, Y: 28})
	testutil.AssertPoint(t, "end", c.End, model.Point{X: 400, Y: 28})
}

func TestRouteMissingEndpoint(t *testing.T) {
	pos := canvas.NewPositions(map[string]model.Point{"a": {}})
	if _, ok := Route(model.Edge{From: "a", To: "ghost"}, pos, canvas.NewSizes(fallback), Options{}); ok {
		t.Error("route to an unpositioned node should fail")
	}
}

func TestTension(t *testing.T) {
	tests := []struct {
		dx   float64
		want float64
	}{
		{1000, 400},
		{-1000, 400},
		{50, 40}, // 20 < min
		{0, 40},  // vertically stacked
		{100, 40},
		{101, 40.4},
	}
	for _, tt := range tests {
		testutil.AssertFloat(t, "tension", Tension(tt.dx, Options{}), tt.want)
	}
	testutil.AssertFloat(t, "custom min", Tension(0, Options{MinTension: 10}), 10)
}

func TestCurveBetween(t *testing.T) {
	c := CurveBetween(model.Point{X: 0, Y: 0}, model.Point{X: 500, Y: 100}, Options{})
	testutil.AssertPoint(t, "c1", c.C1, model.Point{X: 200, Y: 0})
	testutil.AssertPoint(t, "c2", c.C2, model.Point{X: 300, Y: 100})
	testutil.AssertPoint(t, "at 0", c.At(0), c.Start)
	testutil.AssertPoint(t, "at 1", c.At(1), c.End)
	testutil.AssertPoint(t, "midpoint", c.At(0.5), model.Point{X: 250, Y: 50})
}

func TestBuildMarksActiveAndDashed(t *testing.T) {
	g := model.NewGraph("root",
		[]model.Node{{Key: "root"}, {Key: "A"}, {Key: "B"}},
		[]model.Edge{
			{From: "root", To: "A"},
			{From: "root", To: "B"},
			{From: "A", To: "B", Dashed: true},
		},
	)
	pos := canvas.NewPositions(map[string]model.Point{
		"root": {X: 0, Y: 0}, "A": {X: 300, Y: -100}, "B": {X: 300, Y: 100},
	})
	sizes := canvas.NewSizes(fallback)

	conns := Build(g, pos, sizes, highlight.ActivePath(g, "A"), Options{})
	if len(conns) != 3 {
		t.Fatalf("expected 3 connections, got %d", len(conns))
	}
	if !conns[0].Active || conns[1].Active || conns[2].Active {
		t.Errorf("active flags: %v %v %v", conns[0].Active, conns[1].Active, conns[2].Active)
	}
	if !conns[2].Dashed || conns[0].Dashed {
		t.Error("dashed flag should follow the edge")
	}

	none := Build(g, pos, sizes, highlight.ActivePath(g, ""), Options{})
	for _, c := range none {
		if c.Active {
			t.Errorf("%s->%s active with no selection", c.Edge.From, c.Edge.To)
		}
	}
}

func TestBuildFollowsLivePositions(t *testing.T) {
	g := model.NewGraph("a", []model.Node{{Key: "a"}, {Key: "b"}}, []model.Edge{{From: "a", To: "b"}})
	pos := canvas.NewPositions(map[string]model.Point{"a": {}, "b": {X: 400}})
	sizes := canvas.NewSizes(fallback)

	before := Build(g, pos, sizes, highlight.Path{}, Options{})[0].Curve.End
	pos.Set("b", model.Point{X: 1000, Y: 5000})
	after := Build(g, pos, sizes, highlight.Path{}, Options{})[0].Curve.End
	if before == after {
		t.Error("curve should follow the moved node")
	}
	testutil.AssertPoint(t, "end", after, model.Point{X: 1000, Y: 5028})
}

func TestPathDataIsValidSVG(t *testing.T) {
	c := CurveBetween(model.Point{X: 0, Y: -3}, model.Point{X: 12000, Y: 4500.25}, Options{})
	d := c.PathData()
	want := "M 0 -3 C 4800 -3, 7200 4500.25, 12000 4500.25"
	if d != want {
		t.Errorf("PathData = %q, want %q", d, want)
	}
	doc := `<svg xmlns="http://www.w3.org/2000/svg"><path d="` + d + `"/></svg>`
	if err := xml.Unmarshal([]byte(doc), new(struct{})); err != nil {
		t.Errorf("path data breaks XML: %v", err)
	}
}

func TestSample(t *testing.T) {
	c := CurveBetween(model.Point{}, model.Point{X: 100}, Options{})
	pts := c.Sample(4)
	if len(pts) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(pts))
	}
	if got := c.Sample(0); len(got) != 2 {
		t.Errorf("Sample(0) should clamp to 2 points, got %d", len(got))
	}
	if l := c.Length(); math.Abs(l-100) > 1e-6 {
		t.Errorf("straight curve length = %v, want 100", l)
	}
}

func TestCurveEndpointsMatchAnchors(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		coord := rapid.Float64Range(-5000, 5000)
		from := model.Point{X: coord.Draw(rt, "fx"), Y: coord.Draw(rt, "fy")}
		to := model.Point{X: coord.Draw(rt, "tx"), Y: coord.Draw(rt, "ty")}
		pos := canvas.NewPositions(map[string]model.Point{"s": from, "t": to})

		c, _ := Route(model.Edge{From: "s", To: "t"}, pos, canvas.NewSizes(fallback), Options{})
		start, end := Anchors(from, to, fallback, fallback)
		if c.Start != start || c.End != end {
			rt.Fatalf("curve %v does not start/end at anchors %v %v", c, start, end)
		}
		if c.C1.X-c.Start.X < DefaultMinTension-1e-6 || c.End.X-c.C2.X < DefaultMinTension-1e-6 {
			rt.Fatalf("control offset below minimum: %v", c)
		}
	})
}
