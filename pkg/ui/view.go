package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/conceptmap/pkg/connect"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading concept map…"
	}
	if m.width < 10 || m.height < 4 {
		return "Terminal too small"
	}
	defer metrics.Timer(metrics.RenderTUI)()

	cw, ch := m.canvasSize()
	body := m.renderCanvas(cw, ch).String()
	if pw := m.panelWidth(); pw > 0 {
		panel := m.theme.Panel.
			Width(pw - 2).
			Height(max(ch-2, 1)).
			Render(m.detail.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteByte('\n')
	sb.WriteString(body)
	sb.WriteByte('\n')
	sb.WriteString(m.renderFooter())
	return sb.String()
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("cmap")
	info := fmt.Sprintf(" %d concepts · zoom %d%%", len(m.graph.Nodes), int(math.Round(m.ctrl.Viewport.Scale()*100)))
	if !m.path.Empty() {
		info += fmt.Sprintf(" · path %d", len(m.path.Nodes))
		if m.path.Broken {
			info += " (broken)"
		}
	}
	return title + m.theme.StatusBar.Render(truncateCells(info, max(m.width-5, 0)))
}

func (m Model) renderFooter() string {
	if m.status != "" && !m.help.ShowAll {
		return m.theme.Flash.Render(truncateCells(m.status, m.width))
	}
	return m.help.View(m.keys)
}

// renderCanvas rasterizes the map into a w x h grid: parallax stars, then
// connections, then nodes on top in draw order.
func (m Model) renderCanvas(w, h int) *Grid {
	g := NewGrid(w, h)
	if w == 0 || h == 0 {
		return g
	}

	if m.cfg.UI.Parallax {
		m.drawStars(g)
	}

	conns := connect.Build(m.graph, m.ctrl.Positions, m.ctrl.Sizes, m.path, connect.OptionsFrom(m.cfg.Canvas))
	edge := g.Style(m.theme.Edge)
	dashed := g.Style(m.theme.EdgeDashed)
	active := g.Style(m.theme.EdgeActive)
	pulse := g.Style(m.theme.Pulse)

	// Active edges last so they win shared cells.
	for _, pass := range []bool{false, true} {
		for _, c := range conns {
			if c.Active != pass {
				continue
			}
			switch {
			case c.Active:
				m.drawCurve(g, c.Curve, '•', active, false)
			case c.Dashed:
				m.drawCurve(g, c.Curve, '·', dashed, true)
			default:
				m.drawCurve(g, c.Curve, '·', edge, false)
			}
		}
	}
	for _, c := range conns {
		if c.Active {
			col, row := m.screenToCell(m.ctrl.Viewport.ToScreen(c.Curve.At(m.pulse)))
			g.Set(col, row, '◆', pulse)
		}
	}

	selected, _ := m.ctrl.Selection.Selected()
	for _, n := range m.graph.Nodes {
		m.drawNode(g, n, n.Key == selected)
	}
	return g
}

// drawCurve plots samples of c dense enough to leave no gaps at the
// current zoom. Dashed curves skip every other cell.
func (m Model) drawCurve(g *Grid, c connect.Curve, r rune, style int, dashed bool) {
	cs := m.cfg.UI.CellScale
	steps := int(c.Length() * m.ctrl.Viewport.Scale() / cs)
	steps = min(max(steps, 8), 2000)

	lastCol, lastRow, plotted := math.MinInt, math.MinInt, 0
	for _, p := range c.Sample(steps) {
		col, row := m.screenToCell(m.ctrl.Viewport.ToScreen(p))
		if col == lastCol && row == lastRow {
			continue
		}
		lastCol, lastRow = col, row
		plotted++
		if dashed && plotted%2 == 0 {
			continue
		}
		g.Set(col, row, r, style)
	}
}

// drawNode draws a bordered box with the label, or just the label when
// zoomed out too far for a box.
func (m Model) drawNode(g *Grid, n model.Node, selected bool) {
	pos, ok := m.ctrl.Positions.Get(n.Key)
	if !ok {
		return
	}
	size := m.ctrl.Sizes.Get(n.Key)
	cs := m.cfg.UI.CellScale
	scale := m.ctrl.Viewport.Scale()

	col, row := m.screenToCell(m.ctrl.Viewport.ToScreen(pos))
	w := max(int(math.Round(size.W*scale/cs)), 3)
	h := int(math.Round(size.H * scale / (2 * cs)))
	if col >= g.W || row >= g.H || col+w <= 0 || row+max(h, 1) <= 0 {
		return
	}

	style := g.Style(m.theme.NodeStyle(n.Level, selected, m.path.Contains(n.Key)))
	if h < 3 {
		g.Text(col, row, truncateCells(n.Title(), w), style, w)
		return
	}
	g.Box(col, row, w, h, style)
	label := truncateCells(n.Title(), w-2)
	g.Text(col+1+max((w-2-cellWidth(label))/2, 0), row+h/2, label, style, w-2)
}

// drawStars scatters a fixed star field shifted by the parallax offset.
func (m Model) drawStars(g *Grid) {
	off := m.parallax.Value()
	dx, dy := int(math.Round(off.X)), int(math.Round(off.Y))
	style := g.Style(m.theme.Star)
	n := g.W * g.H / 60
	for i := 0; i < n; i++ {
		// Knuth multiplicative hashing spreads indices over the grid.
		hx := uint32(i+1) * 2654435761
		hy := uint32(i+7) * 2246822519
		x := int(hx%uint32(g.W)) + dx
		y := int(hy%uint32(g.H)) + dy
		g.Set(x, y, '.', style)
	}
}
