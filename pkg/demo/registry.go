// Package demo maps node keys to optional per-node widgets shown beside the
// detail panel. Lookup never fails: nodes without a registered widget get
// None, which renders nothing.
package demo

import (
	"sort"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Demo is a per-node capability.
type Demo interface {
	// Name identifies the widget.
	Name() string
	// View renders the widget for node n within width terminal cells.
	View(n model.Node, width int) string
}

// None is the default: no special behavior.
var None Demo = none{}

type none struct{}

func (none) Name() string                 { return "none" }
func (none) View(model.Node, int) string { return "" }

// Registry is a keyed lookup table of demos. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	demos map[string]Demo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{demos: make(map[string]Demo)}
}

// Register binds d to key, replacing any previous binding. A nil d removes
// the binding.
func (r *Registry) Register(key string, d Demo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d == nil {
		delete(r.demos, key)
		return
	}
	r.demos[key] = d
}

// Lookup returns the demo for key, or None.
func (r *Registry) Lookup(key string) Demo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.demos[key]; ok {
		return d
	}
	return None
}

// Keys returns the keys with a registered demo, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.demos))
	for k := range r.demos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ForGraph builds the stock registry for g: every node carrying a formula
// gets a FormulaCard.
func ForGraph(g *model.Graph) *Registry {
	r := NewRegistry()
	for _, n := range g.Nodes {
		if n.Content.Formula != "" {
			r.Register(n.Key, FormulaCard{})
		}
	}
	return r
}

// FormulaCard boxes the node's formula.
type FormulaCard struct{}

// Name implements Demo.
func (FormulaCard) Name() string { return "formula" }

// View implements Demo.
func (FormulaCard) View(n model.Node, width int) string {
	f := n.Content.Formula
	if f == "" || width < 5 {
		return ""
	}
	inner := width - 4
	f = runewidth.Truncate(f, inner, "…")
	pad := inner - runewidth.StringWidth(f)

	var sb strings.Builder
	sb.WriteString("┌" + strings.Repeat("─", inner+2) + "┐\n")
	sb.WriteString("│ " + f + strings.Repeat(" ", pad) + " │\n")
	sb.WriteString("└" + strings.Repeat("─", inner+2) + "┘")
	return sb.String()
}
