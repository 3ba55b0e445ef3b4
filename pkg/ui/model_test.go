package ui

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/content"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/store"
)

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.UI.Markdown = false
	return cfg
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Dataset == nil {
		ds, err := content.Sample()
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		opts.Dataset = ds
	}
	if opts.Config.UI.CellScale == 0 {
		opts.Config = testConfig()
	}
	opts.Renderer = lipgloss.NewRenderer(io.Discard)
	return NewModel(opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	um, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return um, cmd
}

// sized sends a window size and puts the viewport at scale 1 with no pan,
// so one column is CellScale canvas units and one row twice that.
func sized(t *testing.T, m Model, w, h int) Model {
	t.Helper()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: w, Height: h})
	m.Controller().Viewport.Restore(canvas.ViewportState{Scale: 1})
	return m
}

// cellOf returns the terminal cell one column and one row inside a node.
func cellOf(t *testing.T, m Model, key string) (x, y int) {
	t.Helper()
	pos, ok := m.Controller().Positions.Get(key)
	if !ok {
		t.Fatalf("no position for %s", key)
	}
	col, row := m.screenToCell(m.Controller().Viewport.ToScreen(pos))
	col, row = col+1, row+1
	cw, ch := m.canvasSize()
	if col < 0 || col >= cw || row < 0 || row >= ch {
		t.Fatalf("%s at cell (%d,%d) is outside the %dx%d canvas", key, col, row, cw, ch)
	}
	return col, row + headerRows
}

func mouse(x, y int, action tea.MouseAction, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func click(t *testing.T, m Model, x, y int) Model {
	t.Helper()
	m, _ = update(t, m, mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft))
	m, _ = update(t, m, mouse(x, y, tea.MouseActionRelease, tea.MouseButtonNone))
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewBeforeSize(t *testing.T) {
	m := newTestModel(t, Options{})
	if got := m.View(); !strings.Contains(got, "Loading") {
		t.Errorf("expected loading view, got %q", got)
	}
}

func TestTinyTerminalsDoNotPanic(t *testing.T) {
	sizes := [][2]int{{0, 0}, {1, 1}, {5, 3}, {10, 4}, {20, 6}, {59, 20}, {200, 60}}
	for _, sz := range sizes {
		m := newTestModel(t, Options{})
		m, _ = update(t, m, tea.WindowSizeMsg{Width: sz[0], Height: sz[1]})
		m, _ = update(t, m, mouse(0, 0, tea.MouseActionPress, tea.MouseButtonLeft))
		m, _ = update(t, m, mouse(3, 2, tea.MouseActionMotion, tea.MouseButtonLeft))
		m, _ = update(t, m, mouse(3, 2, tea.MouseActionRelease, tea.MouseButtonNone))
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		_ = m.View()
	}
}

func TestInitialFitShowsWholeMap(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	vp := m.Controller().Viewport
	cw, ch := m.canvasSize()
	cs := m.cfg.UI.CellScale
	for _, k := range m.Controller().Positions.Keys() {
		pos, _ := m.Controller().Positions.Get(k)
		p := vp.ToScreen(pos)
		if p.X < 0 || p.Y < 0 || p.X > float64(cw)*cs || p.Y > float64(ch)*2*cs {
			t.Errorf("%s at screen %v is outside the fitted canvas", k, p)
		}
	}
}

func TestClickSelectsNodeAndHighlightsPath(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	x, y := cellOf(t, m, "ml")
	m = click(t, m, x, y)

	key, ok := m.Controller().Selection.Selected()
	if !ok || key != "ml" {
		t.Fatalf("expected ml selected, got %q (%v)", key, ok)
	}
	p := m.Path()
	if len(p.Nodes) != 2 || p.Nodes[0] != "ml" || p.Nodes[1] != "ai" {
		t.Errorf("path = %v, want [ml ai]", p.Nodes)
	}
	if !strings.Contains(m.Status(), "Machine Learning") {
		t.Errorf("status = %q", m.Status())
	}
	if m.panelWidth() == 0 {
		t.Error("detail panel should open for a selection")
	}

	// Clicking the selected node again deselects it.
	m = click(t, m, x, y)
	if _, ok := m.Controller().Selection.Selected(); ok {
		t.Error("second click should deselect")
	}
	if !m.Path().Empty() {
		t.Errorf("path should clear, got %v", m.Path().Nodes)
	}
}

func TestBackgroundClickClearsSelection(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	x, y := cellOf(t, m, "ml")
	m = click(t, m, x, y)
	m = click(t, m, 0, headerRows)
	if _, ok := m.Controller().Selection.Selected(); ok {
		t.Error("background click should clear the selection")
	}
}

func TestDragMovesNodeWithoutSelecting(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	before, _ := m.Controller().Positions.Get("ai")
	x, y := cellOf(t, m, "ai")

	m, _ = update(t, m, mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.Controller().Gesture() != canvas.GestureDrag {
		t.Fatalf("press on a node should start a drag, got %v", m.Controller().Gesture())
	}
	m, _ = update(t, m, mouse(x+5, y+1, tea.MouseActionMotion, tea.MouseButtonLeft))
	m, _ = update(t, m, mouse(x+5, y+1, tea.MouseActionRelease, tea.MouseButtonNone))

	after, _ := m.Controller().Positions.Get("ai")
	cs := m.cfg.UI.CellScale
	want := model.Point{X: before.X + 5*cs, Y: before.Y + 2*cs}
	if math.Abs(after.X-want.X) > 1e-9 || math.Abs(after.Y-want.Y) > 1e-9 {
		t.Errorf("ai moved to %v, want %v", after, want)
	}
	if _, ok := m.Controller().Selection.Selected(); ok {
		t.Error("a drag beyond the threshold must not select")
	}
	if !strings.HasPrefix(m.Status(), "Moved") {
		t.Errorf("status = %q", m.Status())
	}
	if pan := m.Controller().Viewport.Pan(); pan != (model.Point{}) {
		t.Errorf("dragging a node must not pan, got %v", pan)
	}
}

func TestBackgroundDragPans(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	m, _ = update(t, m, mouse(0, headerRows, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.Controller().Gesture() != canvas.GesturePan {
		t.Fatalf("press on background should pan, got %v", m.Controller().Gesture())
	}
	m, _ = update(t, m, mouse(3, headerRows+2, tea.MouseActionMotion, tea.MouseButtonLeft))
	m, _ = update(t, m, mouse(3, headerRows+2, tea.MouseActionRelease, tea.MouseButtonNone))

	cs := m.cfg.UI.CellScale
	want := model.Point{X: 3 * cs, Y: 2 * 2 * cs}
	if pan := m.Controller().Viewport.Pan(); pan != want {
		t.Errorf("pan = %v, want %v", pan, want)
	}
	pos, _ := m.Controller().Positions.Get("ai")
	fresh := newTestModel(t, Options{})
	orig, _ := fresh.Controller().Positions.Get("ai")
	if pos != orig {
		t.Error("panning must not move node positions")
	}
}

func TestMotionWithoutPressIsIgnored(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	m, _ = update(t, m, mouse(10, 10, tea.MouseActionMotion, tea.MouseButtonNone))
	m, _ = update(t, m, mouse(10, 10, tea.MouseActionRelease, tea.MouseButtonNone))
	if pan := m.Controller().Viewport.Pan(); pan != (model.Point{}) {
		t.Errorf("hover must not pan, got %v", pan)
	}
}

func TestLostReleaseEndsGesture(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	x, y := cellOf(t, m, "ml")
	before, _ := m.Controller().Positions.Get("ml")

	m, _ = update(t, m, mouse(x, y, tea.MouseActionPress, tea.MouseButtonLeft))
	if m.Controller().Gesture() != canvas.GestureDrag {
		t.Fatalf("press on ml should start a drag, got %v", m.Controller().Gesture())
	}
	m, _ = update(t, m, mouse(x+10, y+5, tea.MouseActionMotion, tea.MouseButtonNone))
	if g := m.Controller().Gesture(); g != canvas.GestureNone {
		t.Fatalf("motion without a button should end the drag, got %v", g)
	}
	m, _ = update(t, m, mouse(x+20, y+8, tea.MouseActionMotion, tea.MouseButtonNone))

	after, _ := m.Controller().Positions.Get("ml")
	if after != before {
		t.Errorf("ml followed the hover: %v, want %v", after, before)
	}
	if !m.Path().Empty() {
		t.Error("a cancelled drag must not select")
	}
}

func TestWheelZooms(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	m, _ = update(t, m, mouse(5, 5, tea.MouseActionPress, tea.MouseButtonWheelUp))
	if s := m.Controller().Viewport.Scale(); math.Abs(s-1.1) > 1e-9 {
		t.Errorf("scale after wheel up = %v, want 1.1", s)
	}
	for i := 0; i < 30; i++ {
		m, _ = update(t, m, mouse(5, 5, tea.MouseActionPress, tea.MouseButtonWheelDown))
	}
	if s := m.Controller().Viewport.Scale(); math.Abs(s-m.cfg.Canvas.MinZoom) > 1e-9 {
		t.Errorf("scale should clamp to %v, got %v", m.cfg.Canvas.MinZoom, s)
	}
	if pan := m.Controller().Viewport.Pan(); pan != (model.Point{}) {
		t.Errorf("zoom is origin-anchored, pan changed to %v", pan)
	}
}

func TestKeyboardNavigation(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	keys := m.graph.Keys()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if key, _ := m.Controller().Selection.Selected(); key != keys[0] {
		t.Errorf("tab selected %q, want %q", key, keys[0])
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if key, _ := m.Controller().Selection.Selected(); key != keys[1] {
		t.Errorf("second tab selected %q, want %q", key, keys[1])
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := m.Controller().Selection.Selected(); ok {
		t.Error("esc should clear the selection")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if key, _ := m.Controller().Selection.Selected(); key != keys[len(keys)-1] {
		t.Errorf("shift+tab from nothing selected %q, want %q", key, keys[len(keys)-1])
	}
}

func TestZoomAndResetKeys(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	home := m.Controller().Viewport.State()

	m, _ = update(t, m, runes("+"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Controller().Viewport.State() == home {
		t.Fatal("zoom and pan keys should change the viewport")
	}
	m, _ = update(t, m, runes("0"))
	if got := m.Controller().Viewport.State(); got != home {
		t.Errorf("reset = %+v, want %+v", got, home)
	}
}

func TestRelayoutRestoresComputedPositions(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	orig, _ := m.Controller().Positions.Get("ml")
	m.Controller().Positions.Set("ml", model.Point{X: -500, Y: -500})

	m, _ = update(t, m, runes("r"))
	if got, _ := m.Controller().Positions.Get("ml"); got != orig {
		t.Errorf("relayout put ml at %v, want %v", got, orig)
	}
	if m.Status() != "Layout reset" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestQuitKey(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 80, 24)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestCopyPathWithoutSelection(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 80, 24)
	m, _ = update(t, m, runes("y"))
	if m.Status() != "Nothing selected" {
		t.Errorf("status = %q", m.Status())
	}
}

func TestHelpToggleShrinksCanvas(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 120, 40)
	_, before := m.canvasSize()
	m, _ = update(t, m, runes("?"))
	_, after := m.canvasSize()
	if after != before-(m.helpRows()-1) {
		t.Errorf("canvas height with help = %d, want %d", after, before-(m.helpRows()-1))
	}
}

func TestFrameAdvancesPulse(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 80, 24)
	m, cmd := update(t, m, frameMsg{dt: pulsePeriod / 4})
	if math.Abs(m.pulse-0.25) > 1e-9 {
		t.Errorf("pulse = %v, want 0.25", m.pulse)
	}
	if cmd == nil {
		t.Error("frame should re-arm the event wait")
	}
	m, _ = update(t, m, frameMsg{dt: pulsePeriod})
	if m.pulse < 0 || m.pulse >= 1 {
		t.Errorf("pulse should wrap into [0,1), got %v", m.pulse)
	}
}

func TestFlashDoneClearsOnlyCurrentMessage(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 80, 24)
	defer m.Stop()
	m, _ = update(t, m, runes("y"))
	stale := m.flashSeq
	m, _ = update(t, m, runes("y"))

	m, _ = update(t, m, flashDoneMsg{id: stale})
	if m.Status() == "" {
		t.Error("a stale flash timer must not clear a newer message")
	}
	m, _ = update(t, m, flashDoneMsg{id: m.flashSeq})
	if m.Status() != "" {
		t.Errorf("status should clear, got %q", m.Status())
	}
}

func TestViewRendersLabelsAndActivePath(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 240, 70)
	x, y := cellOf(t, m, "ml")
	m = click(t, m, x, y)

	cw, ch := m.canvasSize()
	plain := m.renderCanvas(cw, ch).Plain()
	for _, want := range []string{"Artificial Intelligence", "Machine Learning", "•"} {
		if !strings.Contains(plain, want) {
			t.Errorf("canvas missing %q", want)
		}
	}
	view := m.View()
	if !strings.Contains(view, "path 2") {
		t.Errorf("header should report the path length")
	}
	if lines := strings.Count(view, "\n") + 1; lines > 70 {
		t.Errorf("view has %d lines for a 70-row terminal", lines)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "canvas.sqlite3"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	m := sized(t, newTestModel(t, Options{Store: st}), 240, 70)
	m.Controller().Positions.Set("ml", model.Point{X: 1234, Y: 567})
	m.Controller().Viewport.Restore(canvas.ViewportState{Pan: model.Point{X: 7, Y: 9}, Scale: 1.5})
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again := newTestModel(t, Options{Store: st, Restore: true})
	if got, _ := again.Controller().Positions.Get("ml"); got != (model.Point{X: 1234, Y: 567}) {
		t.Errorf("restored ml = %v", got)
	}
	again, _ = update(t, again, tea.WindowSizeMsg{Width: 240, Height: 70})
	want := canvas.ViewportState{Pan: model.Point{X: 7, Y: 9}, Scale: 1.5}
	if got := again.Controller().Viewport.State(); got != want {
		t.Errorf("restored viewport = %+v, want %+v (first size must not refit)", got, want)
	}
	again, _ = update(t, again, tea.KeyMsg{Type: tea.KeyLeft})
	again, _ = update(t, again, runes("+"))
	again, _ = update(t, again, runes("0"))
	if got := again.Controller().Viewport.State(); got != want {
		t.Errorf("reset after restore = %+v, want the restored %+v", got, want)
	}

	fresh := newTestModel(t, Options{Store: st, Restore: false})
	if got, _ := fresh.Controller().Positions.Get("ml"); got == (model.Point{X: 1234, Y: 567}) {
		t.Error("Restore=false should ignore saved positions")
	}
}

const reloadBefore = `root: a
nodes:
  - {key: a, label: Alpha}
  - {key: b, label: Beta}
edges:
  - {from: a, to: b}
`

const reloadAfter = `root: a
nodes:
  - {key: a, label: Alpha}
  - {key: b, label: Beta}
  - {key: c, label: Gamma}
edges:
  - {from: a, to: b}
  - {from: b, to: c}
`

func TestDatasetReloadKeepsDraggedPositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := os.WriteFile(path, []byte(reloadBefore), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := content.Load(path, content.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := sized(t, newTestModel(t, Options{Dataset: ds}), 120, 40)
	dragged := model.Point{X: 900, Y: 900}
	m.Controller().Positions.Set("b", dragged)
	m.Controller().Selection.Select("b")

	if err := os.WriteFile(path, []byte(reloadAfter), 0o644); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, DatasetChangedMsg{Path: path})

	if got, _ := m.Controller().Positions.Get("b"); got != dragged {
		t.Errorf("b = %v, dragged position should survive reload", got)
	}
	if !m.Controller().Positions.Has("c") {
		t.Error("new node c should be positioned")
	}
	if !strings.HasPrefix(m.Status(), "Reloaded 3 nodes (1 new)") {
		t.Errorf("status = %q", m.Status())
	}
	if key, ok := m.Controller().Selection.Selected(); !ok || key != "b" {
		t.Errorf("selection of surviving node should be kept, got %q", key)
	}
}

func TestDatasetReloadErrorKeepsOldGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	if err := os.WriteFile(path, []byte(reloadBefore), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := content.Load(path, content.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m := sized(t, newTestModel(t, Options{Dataset: ds}), 120, 40)
	if err := os.WriteFile(path, []byte("nodes: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, DatasetChangedMsg{Path: path})
	if !strings.HasPrefix(m.Status(), "Reload error") {
		t.Errorf("status = %q", m.Status())
	}
	if len(m.graph.Nodes) != 2 {
		t.Errorf("old graph should stay, got %d nodes", len(m.graph.Nodes))
	}
}

func TestStartStop(t *testing.T) {
	m := sized(t, newTestModel(t, Options{}), 80, 24)
	if err := m.Start(t.Context()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case msg := <-m.events:
		if _, ok := msg.(frameMsg); !ok {
			t.Errorf("expected a frame, got %T", msg)
		}
	case <-time.After(2 * time.Second):
		t.Error("no frame within 2s")
	}
	m.Stop()
}
