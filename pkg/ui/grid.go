package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// cell is one terminal cell. A zero rune marks the trailing half of a wide
// rune to its left.
type cell struct {
	r     rune
	style int
}

// Grid is an off-screen cell raster. Style 0 is unstyled.
type Grid struct {
	W, H    int
	cells   []cell
	palette []lipgloss.Style
}

// NewGrid returns a blank grid. Negative sizes are treated as zero.
func NewGrid(w, h int) *Grid {
	w, h = max(w, 0), max(h, 0)
	g := &Grid{W: w, H: h, cells: make([]cell, w*h), palette: []lipgloss.Style{{}}}
	for i := range g.cells {
		g.cells[i] = cell{r: ' '}
	}
	return g
}

// Style registers s and returns its id for Set.
func (g *Grid) Style(s lipgloss.Style) int {
	g.palette = append(g.palette, s)
	return len(g.palette) - 1
}

func (g *Grid) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.W && y < g.H
}

// At returns the rune at (x, y), or 0 outside the grid.
func (g *Grid) At(x, y int) rune {
	if !g.in(x, y) {
		return 0
	}
	return g.cells[y*g.W+x].r
}

// Set writes one single-width rune. Writes outside the grid are dropped.
func (g *Grid) Set(x, y int, r rune, style int) {
	if !g.in(x, y) {
		return
	}
	g.clearWide(x, y)
	g.cells[y*g.W+x] = cell{r: r, style: style}
}

// clearWide blanks a wide rune whose half is about to be overwritten.
func (g *Grid) clearWide(x, y int) {
	i := y*g.W + x
	if g.cells[i].r == 0 && x > 0 {
		g.cells[i-1] = cell{r: ' '}
	}
	if x+1 < g.W && g.cells[i+1].r == 0 {
		g.cells[i+1] = cell{r: ' '}
	}
}

// Text writes s from (x, y), clipped to maxW cells and the grid. It
// returns the number of cells written.
func (g *Grid) Text(x, y int, s string, style, maxW int) int {
	written := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if written+rw > maxW {
			break
		}
		cx := x + written
		if cx >= g.W {
			break
		}
		if rw == 2 {
			if g.in(cx, y) && g.in(cx+1, y) {
				g.clearWide(cx, y)
				g.clearWide(cx+1, y)
				g.cells[y*g.W+cx] = cell{r: r, style: style}
				g.cells[y*g.W+cx+1] = cell{r: 0, style: style}
			}
		} else {
			g.Set(cx, y, r, style)
		}
		written += rw
	}
	return written
}

// Box draws a rounded border and blanks its interior.
func (g *Grid) Box(x, y, w, h, style int) {
	if w < 2 || h < 2 {
		return
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			var r rune
			switch {
			case row == y && col == x:
				r = '╭'
			case row == y && col == x+w-1:
				r = '╮'
			case row == y+h-1 && col == x:
				r = '╰'
			case row == y+h-1 && col == x+w-1:
				r = '╯'
			case row == y || row == y+h-1:
				r = '─'
			case col == x || col == x+w-1:
				r = '│'
			default:
				r = ' '
			}
			g.Set(col, row, r, style)
		}
	}
}

// String renders the grid, one styled run per style change.
func (g *Grid) String() string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < g.H; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		cur := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur <= 0 {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(g.palette[cur].Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < g.W; x++ {
			c := g.cells[y*g.W+x]
			if c.r == 0 {
				continue
			}
			if c.style != cur {
				flush()
				cur = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return sb.String()
}

// Plain renders the grid without styles, for tests and logs.
func (g *Grid) Plain() string {
	var sb strings.Builder
	for y := 0; y < g.H; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < g.W; x++ {
			if r := g.cells[y*g.W+x].r; r != 0 {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}
