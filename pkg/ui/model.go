// Package ui is the interactive terminal canvas: a bubbletea program that
// feeds real mouse input (press, motion, release, wheel) into the canvas
// controllers and rasterizes nodes and connection curves into the cell
// grid.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/conceptmap/pkg/anim"
	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/content"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/demo"
	"github.com/vanderheijden86/conceptmap/pkg/highlight"
	"github.com/vanderheijden86/conceptmap/pkg/layout"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/store"
	"github.com/vanderheijden86/conceptmap/pkg/watcher"
)

const (
	headerRows  = 1
	footerRows  = 1
	flashFor    = 2 * time.Second
	pulsePeriod = 1800 * time.Millisecond
	// minPanelWidth is the narrowest terminal that still gets a detail
	// panel next to the canvas.
	minPanelWidth = 60
)

// frameMsg is one animation frame from the loop.
type frameMsg struct{ dt time.Duration }

// flashDoneMsg clears a transient status message.
type flashDoneMsg struct{ id int }

// DatasetChangedMsg is sent when the watched dataset changes on disk.
type DatasetChangedMsg struct{ Path string }

// selectionState is shared by every copy of the Model so the Selection's
// OnChange callback can reach the detail layer.
type selectionState struct {
	key      string
	selected bool
	dirty    bool
}

// Options configures NewModel.
type Options struct {
	Config  config.Config
	Dataset *content.Dataset
	// Store, if set, restores positions on start (when Restore is set) and
	// saves them on quit.
	Store   *store.Store
	Restore bool
	// Watch reloads the dataset when its file changes. It is ignored for
	// the embedded sample.
	Watch bool
	// Renderer defaults to lipgloss.DefaultRenderer().
	Renderer *lipgloss.Renderer
}

// Model is the bubbletea model of the canvas.
type Model struct {
	cfg   config.Config
	theme Theme
	keys  KeyMap
	help  help.Model

	dataset *content.Dataset
	graph   *model.Graph
	ctrl    *canvas.Controller
	demos   *demo.Registry
	path    highlight.Path
	sel     *selectionState

	store   *store.Store
	watcher *watcher.Watcher
	events  chan tea.Msg

	loop     *anim.Loop
	timers   *anim.Timers
	parallax *anim.Smoother
	pulse    float64

	detail     viewport.Model
	md         *glamour.TermRenderer
	mdWidth    int
	showDetail bool

	width, height int
	ready         bool
	restored      bool
	status        string
	flashSeq      int
	flashTimer    int
}

// NewModel builds the canvas over a loaded dataset. It runs the initial
// layout and restores saved positions when asked. Nothing is started; see
// Start.
func NewModel(opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	cfg := opts.Config
	g := opts.Dataset.Graph

	res := layout.Compute(g, layout.FromConfig(cfg.Layout))
	positions := canvas.NewPositions(res.Positions)
	ctrl := canvas.NewController(cfg.Canvas, positions, g.Keys())

	m := Model{
		cfg:        cfg,
		theme:      DefaultTheme(r),
		keys:       DefaultKeyMap(),
		help:       help.New(),
		dataset:    opts.Dataset,
		graph:      g,
		ctrl:       ctrl,
		demos:      demo.ForGraph(g),
		sel:        &selectionState{},
		store:      opts.Store,
		events:     make(chan tea.Msg, 16),
		loop:       &anim.Loop{},
		timers:     &anim.Timers{},
		parallax:   anim.NewSmoother(0),
		showDetail: true,
	}
	sel := m.sel
	ctrl.Selection.OnChange = func(key string, selected bool) {
		sel.key, sel.selected, sel.dirty = key, selected, true
	}
	m.measure()
	if opts.Restore && opts.Store != nil {
		m.restored = m.restore()
	}
	if opts.Watch && opts.Dataset.Path != content.SampleName {
		events := m.events
		w, err := watcher.New(opts.Dataset.Path, watcher.WithOnError(func(err error) {
			select {
			case events <- WatchErrorMsg{Err: err}:
			default:
			}
		}))
		if err != nil {
			debug.Log("ui: cannot watch %s: %v", opts.Dataset.Path, err)
		} else {
			m.watcher = w
		}
	}
	return m
}

// Start launches the frame loop and the dataset watcher. Both push into
// the model's event channel; Stop tears them down.
func (m Model) Start(ctx context.Context) error {
	events := m.events
	err := m.loop.Start(ctx, anim.IntervalForFPS(m.cfg.UI.FPS), func(dt time.Duration) {
		select {
		case events <- frameMsg{dt: dt}:
		default:
		}
	})
	if err != nil {
		return err
	}
	if m.watcher != nil {
		if err := m.watcher.Start(ctx); err != nil {
			m.loop.Stop()
			return fmt.Errorf("starting watcher: %w", err)
		}
	}
	return nil
}

// Stop stops the loop, cancels pending effects and stops the watcher.
func (m Model) Stop() {
	m.loop.Stop()
	if n := m.timers.CancelAll(); n > 0 {
		debug.Log("ui: cancelled %d pending effects", n)
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// Controller exposes the canvas controllers, for tests and callers that
// script input.
func (m Model) Controller() *canvas.Controller { return m.ctrl }

// Path returns the highlighted path.
func (m Model) Path() highlight.Path { return m.path }

// Status returns the status line message.
func (m Model) Status() string { return m.status }

// measure sizes every node from its label width in cells.
func (m Model) measure() {
	cs := m.cfg.UI.CellScale
	m.ctrl.Sizes.Forget()
	for _, n := range m.graph.Nodes {
		w := runewidth.StringWidth(n.Title()) + 4
		m.ctrl.Sizes.Measure(n.Key, model.Size{W: float64(w) * cs, H: 3 * 2 * cs})
	}
}

// restore applies saved positions and viewport. It reports whether a
// viewport was restored.
func (m Model) restore() bool {
	ctx := context.Background()
	saved, err := m.store.LoadPositions(ctx, m.dataset.ID)
	if err == nil {
		restored := 0
		for k, p := range saved {
			if m.ctrl.Positions.Has(k) {
				m.ctrl.Positions.Set(k, p)
				restored++
			}
		}
		debug.Log("ui: restored %d positions for %s", restored, m.dataset.ID)
	}
	vp, err := m.store.LoadViewport(ctx, m.dataset.ID)
	if err != nil {
		return false
	}
	m.ctrl.Viewport.Restore(vp)
	m.ctrl.Viewport.SetHome(m.ctrl.Viewport.State())
	return true
}

// Save writes positions and viewport to the store, if any.
func (m Model) Save() error {
	if m.store == nil {
		return nil
	}
	ctx := context.Background()
	if err := m.store.SavePositions(ctx, m.dataset.ID, m.ctrl.Positions.Snapshot()); err != nil {
		return err
	}
	return m.store.SaveViewport(ctx, m.dataset.ID, m.ctrl.Viewport.State())
}

// waitEvent delivers the next loop, timer or watcher event.
func waitEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// WatchDatasetCmd waits for the next dataset change.
func WatchDatasetCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return DatasetChangedMsg{Path: w.Path()}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitEvent(m.events)}
	if m.watcher != nil {
		cmds = append(cmds, WatchDatasetCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

// flash shows msg until a timer clears it. A newer flash replaces the
// pending one.
func (m *Model) flash(msg string) {
	m.status = msg
	if m.flashTimer != 0 {
		m.timers.Cancel(m.flashTimer)
	}
	m.flashSeq++
	seq, events := m.flashSeq, m.events
	m.flashTimer = m.timers.After(flashFor, func() {
		select {
		case events <- flashDoneMsg{id: seq}:
		default:
		}
	})
}

// canvasSize returns the canvas area in cells.
func (m Model) canvasSize() (w, h int) {
	w = m.width - m.panelWidth()
	h = m.height - headerRows - footerRows
	if m.help.ShowAll {
		h -= m.helpRows() - 1
	}
	return max(w, 0), max(h, 0)
}

// helpRows is the height of the expanded help.
func (m Model) helpRows() int {
	rows := 1
	for _, group := range m.keys.FullHelp() {
		rows = max(rows, len(group))
	}
	return rows
}

// panelWidth is the detail panel width including its border, or 0 when
// hidden.
func (m Model) panelWidth() int {
	if !m.showDetail || !m.sel.selected || m.width < minPanelWidth {
		return 0
	}
	return min(m.width/3, 48)
}

// cellToScreen maps a canvas cell to the controllers' screen space, which
// is CellScale units per column and twice that per row (cells are about
// twice as tall as wide).
func (m Model) cellToScreen(col, row int) (float64, float64) {
	cs := m.cfg.UI.CellScale
	return (float64(col) + 0.5) * cs, (float64(row) + 0.5) * 2 * cs
}

// screenToCell is the inverse of cellToScreen, rounding down.
func (m Model) screenToCell(p model.Point) (int, int) {
	cs := m.cfg.UI.CellScale
	return floor(p.X / cs), floor(p.Y / (2 * cs))
}

// fit frames the whole map in the canvas area.
func (m Model) fit() {
	w, h := m.canvasSize()
	if w == 0 || h == 0 {
		return
	}
	lo, hi, ok := canvas.Bounds(m.ctrl.Positions, m.ctrl.Sizes)
	if !ok {
		return
	}
	cs := m.cfg.UI.CellScale
	m.ctrl.Viewport.Fit(lo, hi, float64(w)*cs, float64(h)*2*cs, 2*cs)
}

// applySelection pushes a pending selection change to the path and the
// detail panel.
func (m *Model) applySelection() {
	if !m.sel.dirty {
		return
	}
	m.sel.dirty = false
	m.path = highlight.ActivePath(m.graph, m.sel.key)
	m.refreshDetail()
	if m.sel.selected {
		if n, ok := m.graph.Node(m.sel.key); ok {
			m.flash("Selected " + n.Label)
		}
	}
}

// refreshDetail re-renders the panel content for the selected node.
func (m *Model) refreshDetail() {
	pw := m.panelWidth()
	if pw == 0 {
		m.detail.SetContent("")
		return
	}
	n, ok := m.graph.Node(m.sel.key)
	if !ok {
		return
	}
	inner := pw - 4
	_, ch := m.canvasSize()
	m.detail.Width = inner
	m.detail.Height = max(ch-2, 1)

	body := n.Content.Markdown(n.Title())
	if m.cfg.UI.Markdown {
		if m.md == nil || m.mdWidth != inner {
			r, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(inner),
			)
			if err == nil {
				m.md, m.mdWidth = r, inner
			}
		}
		if m.md != nil {
			if out, err := m.md.Render(body); err == nil {
				body = out
			}
		}
	}
	if card := m.demos.Lookup(n.Key).View(n, inner); card != "" {
		body += "\n" + card
	}
	m.detail.SetContent(body)
	m.detail.GotoTop()
}

// cycle moves the selection through the nodes in dataset order.
func (m *Model) cycle(step int) {
	keys := m.graph.Keys()
	if len(keys) == 0 {
		return
	}
	idx := -1
	if key, ok := m.ctrl.Selection.Selected(); ok {
		for i, k := range keys {
			if k == key {
				idx = i
				break
			}
		}
	}
	switch {
	case idx < 0 && step < 0:
		idx = len(keys) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + step + len(keys)) % len(keys)
	}
	m.ctrl.Selection.Select(keys[idx])
}

// relayout discards dragged positions and fits the fresh layout.
func (m *Model) relayout() {
	res := layout.Compute(m.graph, layout.FromConfig(m.cfg.Layout))
	m.ctrl.Positions.Replace(res.Positions)
	m.fit()
	m.ctrl.Viewport.SetHome(m.ctrl.Viewport.State())
}

// reload swaps in a changed dataset, keeping positions of surviving nodes.
func (m *Model) reload(path string) error {
	defer debug.LogEnterExit("ui.reload")()
	ds, err := content.Load(path, content.Options{})
	if err != nil {
		return err
	}
	m.dataset = ds
	m.graph = ds.Graph
	m.demos = demo.ForGraph(ds.Graph)

	res := layout.Compute(ds.Graph, layout.FromConfig(m.cfg.Layout))
	added := m.ctrl.Positions.Reconcile(res.Positions)
	m.ctrl.SetOrder(ds.Graph.Keys())
	m.measure()

	if key, ok := m.ctrl.Selection.Selected(); ok && !ds.Graph.Has(key) {
		m.ctrl.Selection.Clear()
	} else if ok {
		m.sel.dirty = true
	}
	m.applySelection()
	m.flash(fmt.Sprintf("Reloaded %d nodes (%d new)", len(ds.Graph.Nodes), len(added)))
	return nil
}

func floor(f float64) int {
	i := int(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return i
}
