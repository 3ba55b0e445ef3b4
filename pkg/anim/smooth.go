package anim

import (
	"math"
	"time"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// referenceFrame is the frame duration Factor is defined against.
const referenceFrame = time.Second / 60

// Smoother eases a value toward a moving target, one frame at a time. The
// terminal canvas uses it to lag the parallax offset behind the pointer.
type Smoother struct {
	// Factor is the fraction of the remaining distance covered per 60 fps
	// frame, in (0, 1].
	Factor float64
	// Epsilon is the distance below which the value snaps to the target.
	Epsilon float64

	value  model.Point
	target model.Point
}

// NewSmoother creates a smoother at rest at the origin.
func NewSmoother(factor float64) *Smoother {
	if factor <= 0 || factor > 1 {
		factor = 0.15
	}
	return &Smoother{Factor: factor, Epsilon: 0.01}
}

// SetTarget moves the target.
func (s *Smoother) SetTarget(p model.Point) { s.target = p }

// Target returns the current target.
func (s *Smoother) Target() model.Point { return s.target }

// Value returns the current eased value.
func (s *Smoother) Value() model.Point { return s.value }

// Jump sets value and target at once.
func (s *Smoother) Jump(p model.Point) {
	s.value = p
	s.target = p
}

// Settled reports whether the value has reached the target.
func (s *Smoother) Settled() bool { return s.value == s.target }

// Step advances by dt and returns the new value. The easing is frame-rate
// independent: two 30 fps steps cover the same distance as four at 60 fps.
func (s *Smoother) Step(dt time.Duration) model.Point {
	if s.Settled() || dt <= 0 {
		return s.value
	}
	frames := float64(dt) / float64(referenceFrame)
	alpha := 1 - math.Pow(1-s.Factor, frames)
	s.value = s.value.Add(s.target.Sub(s.value).Scale(alpha))

	if d := s.target.Sub(s.value); math.Hypot(d.X, d.Y) < s.Epsilon {
		s.value = s.target
	}
	return s.value
}
