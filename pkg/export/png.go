package export

import (
	"fmt"
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// MaxPNGDimension caps the longer side of a fitted PNG; larger maps are
// scaled down to fit.
const MaxPNGDimension = 8192

// minLabelScale is the smallest scale at which labels still fit their
// boxes; the bitmap font does not scale.
const minLabelScale = 0.5

// WritePNG rasterizes the scene. Active edges are drawn heavier with a
// static pulse dot at their midpoint.
func WritePNG(out io.Writer, s Scene) error {
	defer metrics.Timer(metrics.RenderPNG)()

	var (
		width, height int
		scale         float64
		offset        model.Point
	)
	if s.UseViewport {
		width, height = s.Width, s.Height
		scale = s.Viewport.Scale
		offset = s.Viewport.Pan
	} else {
		cw, ch := s.ContentSize()
		scale = 1
		if longest := math.Max(cw, ch); longest > MaxPNGDimension {
			scale = MaxPNGDimension / longest
		}
		width = int(math.Ceil(cw * scale))
		height = int(math.Ceil(ch * scale))
		offset = s.Min.Scale(-scale)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("empty image %dx%d", width, height)
	}
	toDevice := func(p model.Point) model.Point { return p.Scale(scale).Add(offset) }

	dc := gg.NewContext(width, height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	// Patterns are not transformed, so the gradient is in device space.
	left, right := toDevice(s.Min), toDevice(s.Max)
	grad := gg.NewLinearGradient(left.X, 0, right.X, 0)
	grad.AddColorStop(0, colorEdgeFrom)
	grad.AddColorStop(1, colorEdgeTo)

	dc.Translate(offset.X, offset.Y)
	dc.Scale(scale, scale)

	for _, conn := range s.Connections {
		c := conn.Curve
		dc.NewSubPath()
		dc.MoveTo(c.Start.X, c.Start.Y)
		dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
		switch {
		case conn.Active:
			dc.SetDash()
			dc.SetColor(colorActive)
			dc.SetLineWidth(3.5 * scale)
		case conn.Dashed:
			dc.SetDash(8*scale, 6*scale)
			dc.SetColor(colorEdgeDashed)
			dc.SetLineWidth(1.5 * scale)
		default:
			dc.SetDash()
			dc.SetStrokeStyle(grad)
			dc.SetLineWidth(2 * scale)
		}
		dc.Stroke()
	}
	dc.SetDash()

	for _, conn := range s.Connections {
		if !conn.Active {
			continue
		}
		mid := conn.Curve.At(0.5)
		dc.SetColor(colorSelected)
		dc.DrawCircle(mid.X, mid.Y, 5)
		dc.Fill()
	}

	for _, n := range s.Nodes() {
		pos := s.Positions[n.Key]
		size := s.Sizes[n.Key]

		dc.SetColor(LevelColor(n.Level))
		dc.DrawRoundedRectangle(pos.X, pos.Y, size.W, size.H, nodeRadius)
		dc.Fill()

		stroke, lw := colorNodeStroke, 1.2
		switch {
		case n.Key == s.Selected:
			stroke, lw = colorSelected, 3
		case s.Path.Contains(n.Key):
			stroke, lw = colorActive, 2
		}
		dc.SetColor(stroke)
		dc.SetLineWidth(lw * scale)
		dc.DrawRoundedRectangle(pos.X, pos.Y, size.W, size.H, nodeRadius)
		dc.Stroke()

		if scale >= minLabelScale {
			dc.SetColor(colorText)
			dc.DrawStringAnchored(truncate(n.Label, 40), pos.X+nodePadX, pos.Y+size.H/2, 0, 0.5)
		}
	}

	return dc.EncodePNG(out)
}
