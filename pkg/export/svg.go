package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"

	"github.com/vanderheijden86/conceptmap/pkg/metrics"
)

// pulseDuration is one trip of the pulse along an active edge, in seconds.
const pulseDuration = 1.8

// WriteSVG renders the scene as SVG. In fitted mode the viewBox covers all
// content, so edges spanning thousands of units are never clipped.
func WriteSVG(out io.Writer, s Scene) error {
	defer metrics.Timer(metrics.RenderSVG)()

	ew := &errWriter{w: out}
	c := svg.New(ew)

	vw, vh := s.ContentSize()
	if s.UseViewport {
		vw, vh = float64(s.Width), float64(s.Height)
		c.Startview(vw, vh, 0, 0, vw, vh)
	} else {
		c.Startview(vw, vh, s.Min.X, s.Min.Y, vw, vh)
	}
	if s.Title != "" {
		c.Title(s.Title)
	}

	c.Def()
	// userSpaceOnUse keeps the gradient valid on perfectly horizontal
	// curves, whose bounding box has zero height.
	fmt.Fprintf(c.Writer, `<linearGradient id="edge-gradient" gradientUnits="userSpaceOnUse" x1="%s" y1="0" x2="%s" y2="0">`+"\n",
		num(s.Min.X), num(s.Max.X))
	fmt.Fprintf(c.Writer, `<stop offset="0%%" stop-color="%s"/><stop offset="100%%" stop-color="%s"/>`+"\n",
		css(colorEdgeFrom), css(colorEdgeTo))
	fmt.Fprintln(c.Writer, `</linearGradient>`)
	c.DefEnd()

	if s.UseViewport {
		c.Rect(0, 0, vw, vh, "fill:"+css(colorBackdrop))
		c.Gtransform(fmt.Sprintf("translate(%s,%s) scale(%s)",
			num(s.Viewport.Pan.X), num(s.Viewport.Pan.Y), num(s.Viewport.Scale)))
	} else {
		c.Rect(s.Min.X, s.Min.Y, vw, vh, "fill:"+css(colorBackdrop))
	}

	c.Gid("connections")
	for i, conn := range s.Connections {
		id := fmt.Sprintf("edge-%d", i)
		d := conn.Curve.PathData()
		switch {
		case conn.Active:
			c.Path(d, attr("id", id), attr("class", "edge active"),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:3.5;stroke-linecap:round", css(colorActive)))
		case conn.Dashed:
			c.Path(d, attr("id", id), attr("class", "edge dashed"),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:1.5;stroke-dasharray:8 6;opacity:0.8", css(colorEdgeDashed)))
		default:
			c.Path(d, attr("id", id), attr("class", "edge"),
				"fill:none;stroke:url(#edge-gradient);stroke-width:2;opacity:0.85")
		}
	}
	// Pulses go after every path so they draw on top.
	for i, conn := range s.Connections {
		if !conn.Active {
			continue
		}
		pulse := fmt.Sprintf("pulse-%d", i)
		c.Circle(0, 0, 5, attr("id", pulse), attr("class", "pulse"), "fill:"+css(colorSelected))
		c.AnimateMotion("#"+pulse, fmt.Sprintf("#edge-%d", i), pulseDuration, 0)
	}
	c.Gend()

	c.Gid("nodes")
	for _, n := range s.Nodes() {
		pos := s.Positions[n.Key]
		size := s.Sizes[n.Key]

		stroke, width := colorNodeStroke, 1.2
		switch {
		case n.Key == s.Selected:
			stroke, width = colorSelected, 3
		case s.Path.Contains(n.Key):
			stroke, width = colorActive, 2
		}

		c.Group(attr("class", "node"), attr("data-key", n.Key), attr("data-level", string(n.Level)))
		c.Title(n.Label)
		c.Roundrect(pos.X, pos.Y, size.W, size.H, nodeRadius, nodeRadius,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%s", css(LevelColor(n.Level)), css(stroke), num(width)))
		c.Text(pos.X+nodePadX, pos.Y+size.H/2+5, truncate(n.Title(), 40),
			fmt.Sprintf("fill:%s;font-size:14px;font-family:sans-serif", css(colorText)))
		c.Gend()
	}
	c.Gend()

	if s.UseViewport {
		c.Gend()
	}
	c.End()
	return ew.err
}

// attr formats one escaped XML attribute for svgo's variadic style args;
// svgo treats any argument containing "=" as a raw attribute.
func attr(name, value string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(value))
	return name + `="` + b.String() + `"`
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// errWriter remembers the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}
