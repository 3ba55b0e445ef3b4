package canvas

import (
	"math"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Bounds returns the canvas rectangle covering every positioned node,
// including its (measured or fallback) size. ok is false when there are no
// positions.
func Bounds(positions *Positions, sizes *Sizes) (min, max model.Point, ok bool) {
	if positions.Len() == 0 {
		return model.Point{}, model.Point{}, false
	}
	min = model.Point{X: math.Inf(1), Y: math.Inf(1)}
	max = model.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for k, p := range positions.m {
		s := sizes.Get(k)
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X+s.W)
		max.Y = math.Max(max.Y, p.Y+s.H)
	}
	return min, max, true
}

// Pad grows a rectangle by margin on every side.
func Pad(min, max model.Point, margin float64) (model.Point, model.Point) {
	m := model.Point{X: margin, Y: margin}
	return min.Sub(m), max.Add(m)
}
