// Package highlight computes the active path from the selected node back
// to the root and owns the selection state machine.
package highlight

import (
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Path is the ordered walk from a selected node up to the root.
type Path struct {
	// Nodes runs selected -> ... -> root. Empty when nothing is selected.
	Nodes []string
	// Broken is set when the walk stopped on a cycle, or on a parent that
	// is not a node, before reaching the root.
	Broken bool

	step map[string]string // child -> parent for every walked step
}

// ActivePath walks first-match primary parent links from selected. The walk
// tracks visited nodes, so it terminates on any input.
func ActivePath(g *model.Graph, selected string) Path {
	defer metrics.Timer(metrics.PathWalk)()

	if selected == "" || !g.Has(selected) {
		return Path{}
	}
	parents := g.Parents()

	p := Path{
		Nodes: []string{selected},
		step:  make(map[string]string),
	}
	visited := map[string]bool{selected: true}
	cur := selected
	for {
		parent, ok := parents[cur]
		if !ok {
			if cur != g.Root {
				p.Broken = true
				debug.Log("highlight: chain from %q ends at %q, which has no parent and is not the root %q", selected, cur, g.Root)
			}
			return p
		}
		if visited[parent] {
			p.Broken = true
			debug.Log("highlight: cycle at %q -> %q while walking from %q", parent, cur, selected)
			return p
		}
		if !g.Has(parent) {
			p.Broken = true
			debug.Log("highlight: %q has dangling parent %q", cur, parent)
			return p
		}
		visited[parent] = true
		p.step[cur] = parent
		p.Nodes = append(p.Nodes, parent)
		cur = parent
	}
}

// Empty reports whether nothing is highlighted.
func (p Path) Empty() bool { return len(p.Nodes) == 0 }

// Contains reports whether key lies on the path.
func (p Path) Contains(key string) bool {
	for _, k := range p.Nodes {
		if k == key {
			return true
		}
	}
	return false
}

// EdgeActive reports whether from -> to is literally a step of the walk.
// Both endpoints being on the path is not enough.
func (p Path) EdgeActive(from, to string) bool {
	parent, ok := p.step[to]
	return ok && parent == from
}

// Active reports whether e is highlighted. Dashed edges never are.
func (p Path) Active(e model.Edge) bool {
	return e.IsPrimary() && p.EdgeActive(e.From, e.To)
}

// ActiveEdges returns the highlighted edges of g in dataset order.
func (p Path) ActiveEdges(g *model.Graph) []model.Edge {
	if p.Empty() {
		return nil
	}
	var out []model.Edge
	for _, e := range g.Edges {
		if p.Active(e) {
			out = append(out, e)
		}
	}
	return out
}

// Reversed returns the path root-first, as a breadcrumb.
func (p Path) Reversed() []string {
	out := make([]string, len(p.Nodes))
	for i, k := range p.Nodes {
		out[len(p.Nodes)-1-i] = k
	}
	return out
}
