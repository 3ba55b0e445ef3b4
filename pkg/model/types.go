// Package model defines the concept graph shared by every canvas component:
// nodes (topics), directed edges between them, and the 2D geometry types the
// layout, controllers and renderers exchange.
package model

import "strings"

// Level is the abstraction classification used for color-coding nodes.
type Level string

const (
	LevelFundamental Level = "fundamental"
	LevelCore        Level = "core"
	LevelAdvanced    Level = "advanced"
	LevelFrontier    Level = "frontier"
)

// IsValid reports whether l is one of the known levels.
func (l Level) IsValid() bool {
	switch l {
	case LevelFundamental, LevelCore, LevelAdvanced, LevelFrontier:
		return true
	}
	return false
}

// Levels returns all known levels in display order.
func Levels() []Level {
	return []Level{LevelFundamental, LevelCore, LevelAdvanced, LevelFrontier}
}

// Content is the educational payload shown in the detail panel. The canvas
// never interprets it.
type Content struct {
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	KeyPoints   []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Formula     string   `json:"formula,omitempty" yaml:"formula,omitempty"`
	Example     string   `json:"example,omitempty" yaml:"example,omitempty"`
}

// Markdown renders the payload as a markdown document.
func (c Content) Markdown(title string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("# " + title + "\n\n")
	}
	if c.Description != "" {
		sb.WriteString(c.Description + "\n\n")
	}
	if len(c.KeyPoints) > 0 {
		sb.WriteString("## Key points\n\n")
		for _, p := range c.KeyPoints {
			sb.WriteString("- " + p + "\n")
		}
		sb.WriteString("\n")
	}
	if c.Formula != "" {
		sb.WriteString("## Formula\n\n`" + c.Formula + "`\n\n")
	}
	if c.Example != "" {
		sb.WriteString("## Example\n\n" + c.Example + "\n")
	}
	return sb.String()
}

// Node is one topic in the concept graph.
type Node struct {
	Key     string  `json:"key" yaml:"key"`
	Label   string  `json:"label" yaml:"label"`
	Icon    string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Level   Level   `json:"level,omitempty" yaml:"level,omitempty"`
	Content Content `json:"content,omitempty" yaml:"content,omitempty"`
}

// Title returns the icon and label joined for display.
func (n Node) Title() string {
	if n.Icon == "" {
		return n.Label
	}
	return n.Icon + " " + n.Label
}

// Edge is a directed relationship From -> To. Dashed edges are auxiliary
// cross-links: they render but take no part in layout or highlighting.
type Edge struct {
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Dashed bool   `json:"dashed,omitempty" yaml:"dashed,omitempty"`
}

// IsPrimary reports whether the edge belongs to the hierarchy.
func (e Edge) IsPrimary() bool {
	return !e.Dashed
}

// Point is a coordinate in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by f.
func (p Point) Scale(f float64) Point { return Point{X: p.X * f, Y: p.Y * f} }

// Size is a measured width/height in canvas units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// IsZero reports whether the size has not been measured.
func (s Size) IsZero() bool {
	return s.W <= 0 || s.H <= 0
}
