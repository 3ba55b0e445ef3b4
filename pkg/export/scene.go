// Package export renders the concept canvas to files: SVG via svgo, PNG via
// gg, and a JSON snapshot of positions and viewport. Every renderer reads a
// frozen Scene, so several formats can be rendered concurrently.
package export

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/connect"
	"github.com/vanderheijden86/conceptmap/pkg/highlight"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Format is an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// FormatFor infers the format from a file extension. An explicit format
// wins when non-empty.
func FormatFor(path, explicit string) (Format, error) {
	f := strings.ToLower(strings.TrimPrefix(explicit, "."))
	if f == "" {
		f = strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	}
	switch Format(f) {
	case FormatSVG, FormatPNG, FormatJSON:
		return Format(f), nil
	}
	return "", fmt.Errorf("unsupported format %q (want svg, png or json)", f)
}

// Margin is the padding around content in fitted output.
const Margin = 40.0

// Scene is an immutable copy of everything a renderer draws.
type Scene struct {
	Title       string
	DatasetID   string
	Graph       *model.Graph
	Positions   map[string]model.Point
	Sizes       map[string]model.Size
	Viewport    canvas.ViewportState
	Selected    string
	Path        highlight.Path
	Connections []connect.Connection

	// UseViewport renders the screen view (Width x Height, transformed by
	// Viewport) instead of fitting all content.
	UseViewport bool
	Width       int
	Height      int

	// Min and Max bound the content, padded by Margin.
	Min, Max model.Point
}

// SceneOptions configures NewScene.
type SceneOptions struct {
	Title       string
	DatasetID   string
	Selected    string
	Connect     connect.Options
	UseViewport bool
	Width       int
	Height      int
}

// NewScene freezes the live canvas state. Sizes for nodes that were never
// measured get the fallback.
func NewScene(g *model.Graph, positions *canvas.Positions, sizes *canvas.Sizes, vp canvas.ViewportState, opts SceneOptions) Scene {
	path := highlight.ActivePath(g, opts.Selected)
	s := Scene{
		Title:       opts.Title,
		DatasetID:   opts.DatasetID,
		Graph:       g,
		Positions:   positions.Snapshot(),
		Sizes:       make(map[string]model.Size, positions.Len()),
		Viewport:    vp,
		Selected:    opts.Selected,
		Path:        path,
		Connections: connect.Build(g, positions, sizes, path, opts.Connect),
		UseViewport: opts.UseViewport,
		Width:       opts.Width,
		Height:      opts.Height,
	}
	for _, k := range positions.Keys() {
		s.Sizes[k] = sizes.Get(k)
	}
	if s.Viewport.Scale <= 0 {
		s.Viewport.Scale = 1
	}
	if min, max, ok := canvas.Bounds(positions, sizes); ok {
		s.Min, s.Max = canvas.Pad(min, max, Margin)
	} else {
		s.Max = model.Point{X: 2 * Margin, Y: 2 * Margin}
	}
	if s.UseViewport && (s.Width <= 0 || s.Height <= 0) {
		s.Width, s.Height = 1280, 800
	}
	return s
}

// Nodes returns the positioned nodes in draw order.
func (s Scene) Nodes() []model.Node {
	out := make([]model.Node, 0, len(s.Graph.Nodes))
	for _, n := range s.Graph.Nodes {
		if _, ok := s.Positions[n.Key]; ok {
			out = append(out, n)
		}
	}
	return out
}

// ContentSize is the fitted output size in canvas units.
func (s Scene) ContentSize() (w, h float64) {
	return s.Max.X - s.Min.X, s.Max.Y - s.Min.Y
}

// MeasureSizes fills sizes from the label width in the PNG font, so
// connection anchors match the boxes the file renderers draw.
func MeasureSizes(g *model.Graph, sizes *canvas.Sizes) {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(basicfont.Face7x13)
	fb := sizes.Fallback()
	for _, n := range g.Nodes {
		w, _ := dc.MeasureString(n.Label)
		size := fb
		if need := w + 2*nodePadX; need > size.W {
			size.W = need
		}
		sizes.Measure(n.Key, size)
	}
}

// --- palette ---------------------------------------------------------------

const (
	nodePadX   = 14.0
	nodeRadius = 10.0
)

var (
	colorBackdrop    = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	colorNodeStroke  = color.RGBA{0x33, 0x41, 0x55, 0xff}
	colorText        = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	colorSubtle      = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	colorEdgeFrom    = color.RGBA{0x63, 0x66, 0xf1, 0xff}
	colorEdgeTo      = color.RGBA{0x06, 0xb6, 0xd4, 0xff}
	colorEdgeDashed  = color.RGBA{0x64, 0x74, 0x8b, 0xff}
	colorActive      = color.RGBA{0xfb, 0xbf, 0x24, 0xff}
	colorSelected    = color.RGBA{0xfd, 0xe6, 0x8a, 0xff}
	colorFundamental = color.RGBA{0x1e, 0x3a, 0x8a, 0xff}
	colorCore        = color.RGBA{0x14, 0x53, 0x2d, 0xff}
	colorAdvanced    = color.RGBA{0x7c, 0x2d, 0x12, 0xff}
	colorFrontier    = color.RGBA{0x58, 0x1c, 0x87, 0xff}
	colorNeutral     = color.RGBA{0x1f, 0x29, 0x37, 0xff}
)

// LevelColor returns the fill for a level; unknown levels are neutral.
func LevelColor(l model.Level) color.RGBA {
	switch l {
	case model.LevelFundamental:
		return colorFundamental
	case model.LevelCore:
		return colorCore
	case model.LevelAdvanced:
		return colorAdvanced
	case model.LevelFrontier:
		return colorFrontier
	default:
		return colorNeutral
	}
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
