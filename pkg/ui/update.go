package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/watcher"
)

// keyPanCells is how far one arrow press pans, in cells.
const keyPanCells = 4

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := !m.ready
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ready = true
		if first && !m.restored {
			m.fit()
			m.ctrl.Viewport.SetHome(m.ctrl.Viewport.State())
		}
		m.refreshDetail()

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case frameMsg:
		m.parallax.Step(msg.dt)
		m.pulse += float64(msg.dt) / float64(pulsePeriod)
		m.pulse -= float64(int(m.pulse))
		cmds = append(cmds, waitEvent(m.events))

	case flashDoneMsg:
		if msg.id == m.flashSeq {
			m.status = ""
			m.flashTimer = 0
		}
		cmds = append(cmds, waitEvent(m.events))

	case DatasetChangedMsg:
		if err := m.reload(msg.Path); err != nil {
			m.status = fmt.Sprintf("Reload error: %v", err)
			debug.Log("ui: reload %s: %v", msg.Path, err)
		}
		if m.watcher != nil {
			cmds = append(cmds, WatchDatasetCmd(m.watcher))
		}

	case WatchErrorMsg:
		if errors.Is(msg.Err, watcher.ErrFileRemoved) {
			m.status = "Dataset removed; keeping the last version"
		} else {
			m.status = fmt.Sprintf("Watch error: %v", msg.Err)
		}
		cmds = append(cmds, waitEvent(m.events))
	}

	m.applySelection()
	return m, tea.Batch(cmds...)
}

// WatchErrorMsg carries a watcher error into the program.
type WatchErrorMsg struct{ Err error }

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	cs := m.cfg.UI.CellScale
	vp := m.ctrl.Viewport

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.PanLeft):
		vp.PanBy(keyPanCells*cs, 0)
	case key.Matches(msg, m.keys.PanRight):
		vp.PanBy(-keyPanCells*cs, 0)
	case key.Matches(msg, m.keys.PanUp):
		vp.PanBy(0, keyPanCells*cs)
	case key.Matches(msg, m.keys.PanDown):
		vp.PanBy(0, -keyPanCells*cs)
	case key.Matches(msg, m.keys.ZoomIn):
		m.ctrl.Wheel(1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.ctrl.Wheel(-1)
	case key.Matches(msg, m.keys.Reset):
		vp.Reset()
	case key.Matches(msg, m.keys.Fit):
		m.fit()
	case key.Matches(msg, m.keys.Relayout):
		m.relayout()
		m.flash("Layout reset")
	case key.Matches(msg, m.keys.Next):
		m.cycle(1)
	case key.Matches(msg, m.keys.Prev):
		m.cycle(-1)
	case key.Matches(msg, m.keys.Deselect):
		m.ctrl.Selection.Clear()
	case key.Matches(msg, m.keys.CopyPath):
		m.copyPath()
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.refreshDetail()
	case key.Matches(msg, m.keys.ScrollUp):
		m.detail.HalfPageUp()
	case key.Matches(msg, m.keys.ScrollDn):
		m.detail.HalfPageDown()
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	cw, ch := m.canvasSize()
	col, row := msg.X, msg.Y-headerRows
	inCanvas := col >= 0 && col < cw && row >= 0 && row < ch
	sx, sy := m.cellToScreen(col, row)

	if cw > 0 && ch > 0 {
		// Parallax drifts up to two cells against the pointer.
		m.parallax.SetTarget(model.Point{
			X: -2 * (float64(col)/float64(cw) - 0.5),
			Y: -1 * (float64(row)/float64(ch) - 0.5),
		})
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if inCanvas {
				m.ctrl.Wheel(1)
			} else {
				m.detail.ScrollUp(3)
			}
		case tea.MouseButtonWheelDown:
			if inCanvas {
				m.ctrl.Wheel(-1)
			} else {
				m.detail.ScrollDown(3)
			}
		case tea.MouseButtonLeft:
			if inCanvas {
				m.ctrl.PointerDown(sx, sy)
			}
		}

	case tea.MouseActionMotion:
		if m.ctrl.Gesture() == canvas.GestureNone {
			return
		}
		if msg.Button == tea.MouseButtonNone {
			// The release happened where the terminal could not see it.
			debug.Log("ui: release lost, cancelling %v", m.ctrl.Gesture())
			m.ctrl.Cancel()
			return
		}
		m.ctrl.PointerMove(sx, sy)

	case tea.MouseActionRelease:
		if m.ctrl.Gesture() == canvas.GestureNone {
			return
		}
		rel := m.ctrl.PointerUp(sx, sy)
		if rel.Gesture == canvas.GestureDrag && rel.Moved {
			if n, ok := m.graph.Node(rel.Key); ok {
				m.flash("Moved " + n.Label)
			}
		}
	}
}

// copyPath copies the highlighted path, root first, to the clipboard.
func (m *Model) copyPath() {
	if m.path.Empty() {
		m.flash("Nothing selected")
		return
	}
	var labels []string
	for _, k := range m.path.Reversed() {
		if n, ok := m.graph.Node(k); ok {
			labels = append(labels, n.Label)
		} else {
			labels = append(labels, k)
		}
	}
	text := strings.Join(labels, " → ")
	if err := clipboard.WriteAll(text); err != nil {
		m.flash(fmt.Sprintf("Clipboard error: %v", err))
		return
	}
	m.flash("Copied path to clipboard")
}
