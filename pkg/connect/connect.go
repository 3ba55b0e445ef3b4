// Package connect computes the geometry of the curved connections between
// nodes: anchors, cubic Bezier control points, and SVG path data. Renderers
// draw what this package computes.
package connect

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/highlight"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// DefaultMinTension is the smallest horizontal control-point offset.
const DefaultMinTension = 40.0

// TensionFactor scales the horizontal anchor distance into the offset.
const TensionFactor = 0.4

// Options tune curve shape.
type Options struct {
	MinTension float64
}

// OptionsFrom converts the file configuration.
func OptionsFrom(c config.CanvasConfig) Options {
	return Options{MinTension: c.MinTension}
}

func (o Options) minTension() float64 {
	if o.MinTension <= 0 {
		return DefaultMinTension
	}
	return o.MinTension
}

// Curve is a cubic Bezier from Start to End.
type Curve struct {
	Start model.Point `json:"start"`
	C1    model.Point `json:"c1"`
	C2    model.Point `json:"c2"`
	End   model.Point `json:"end"`
}

// Connection is one routed edge.
type Connection struct {
	Edge   model.Edge `json:"edge"`
	Curve  Curve      `json:"curve"`
	Active bool       `json:"active,omitempty"`
	Dashed bool       `json:"dashed,omitempty"`
}

// Anchors returns the source right-center and target left-center points.
// Positions are node top-left corners.
func Anchors(from, to model.Point, fromSize, toSize model.Size) (model.Point, model.Point) {
	return model.Point{X: from.X + fromSize.W, Y: from.Y + fromSize.H/2},
		model.Point{X: to.X, Y: to.Y + toSize.H/2}
}

// Tension returns the control-point offset for a horizontal anchor
// distance dx.
func Tension(dx float64, opts Options) float64 {
	return math.Max(TensionFactor*math.Abs(dx), opts.minTension())
}

// CurveBetween builds the S-curve between two anchors: the first control
// point is offset right of the start, the second left of the end.
func CurveBetween(start, end model.Point, opts Options) Curve {
	t := Tension(end.X-start.X, opts)
	return Curve{
		Start: start,
		C1:    model.Point{X: start.X + t, Y: start.Y},
		C2:    model.Point{X: end.X - t, Y: end.Y},
		End:   end,
	}
}

// Route computes the curve for e from live positions and sizes. ok is false
// when either endpoint has no position.
func Route(e model.Edge, positions *canvas.Positions, sizes *canvas.Sizes, opts Options) (Curve, bool) {
	from, ok := positions.Get(e.From)
	if !ok {
		return Curve{}, false
	}
	to, ok := positions.Get(e.To)
	if !ok {
		return Curve{}, false
	}
	start, end := Anchors(from, to, sizes.Get(e.From), sizes.Get(e.To))
	return CurveBetween(start, end, opts), true
}

// Build routes every edge of g. Active comes from the path; dashed edges
// are never active. Edges with an unpositioned endpoint are skipped.
func Build(g *model.Graph, positions *canvas.Positions, sizes *canvas.Sizes, path highlight.Path, opts Options) []Connection {
	defer metrics.Timer(metrics.Connections)()

	out := make([]Connection, 0, len(g.Edges))
	for _, e := range g.Edges {
		c, ok := Route(e, positions, sizes, opts)
		if !ok {
			continue
		}
		out = append(out, Connection{
			Edge:   e,
			Curve:  c,
			Active: path.Active(e),
			Dashed: e.Dashed,
		})
	}
	return out
}

// At evaluates the curve at t in [0, 1].
func (c Curve) At(t float64) model.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return model.Point{
		X: a*c.Start.X + b*c.C1.X + d*c.C2.X + e*c.End.X,
		Y: a*c.Start.Y + b*c.C1.Y + d*c.C2.Y + e*c.End.Y,
	}
}

// Sample returns n+1 evenly spaced points along the curve, endpoints
// included. n < 1 is treated as 1.
func (c Curve) Sample(n int) []model.Point {
	if n < 1 {
		n = 1
	}
	pts := make([]model.Point, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = c.At(float64(i) / float64(n))
	}
	return pts
}

// Length approximates the arc length by sampling.
func (c Curve) Length() float64 {
	pts := c.Sample(32)
	total := 0.0
	for i := 1; i < len(pts); i++ {
		d := pts[i].Sub(pts[i-1])
		total += math.Hypot(d.X, d.Y)
	}
	return total
}

// PathData returns the SVG "d" attribute for the curve.
func (c Curve) PathData() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(c.Start.X), num(c.Start.Y),
		num(c.C1.X), num(c.C1.Y),
		num(c.C2.X), num(c.C2.Y),
		num(c.End.X), num(c.End.Y))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
