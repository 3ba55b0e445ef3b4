package model

import (
	"fmt"
	"strings"
)

// Graph is the static concept dataset: nodes, edges and the designated root.
// It is read-only once built; positions live elsewhere.
type Graph struct {
	Root  string `json:"root" yaml:"root"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`

	index map[string]int
}

// NewGraph builds a graph and its key index.
func NewGraph(root string, nodes []Node, edges []Edge) *Graph {
	g := &Graph{Root: root, Nodes: nodes, Edges: edges}
	g.Reindex()
	return g
}

// Reindex rebuilds the key lookup. Call after mutating Nodes directly
// (decoders fill the exported fields and then call this).
func (g *Graph) Reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, dup := g.index[n.Key]; !dup {
			g.index[n.Key] = i
		}
	}
}

// Node returns the node with the given key.
func (g *Graph) Node(key string) (Node, bool) {
	if g.index == nil {
		g.Reindex()
	}
	i, ok := g.index[key]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Has reports whether key names a node.
func (g *Graph) Has(key string) bool {
	_, ok := g.Node(key)
	return ok
}

// Keys returns node keys in dataset order.
func (g *Graph) Keys() []string {
	keys := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		keys[i] = n.Key
	}
	return keys
}

// PrimaryEdges returns the hierarchy edges in dataset order.
func (g *Graph) PrimaryEdges() []Edge {
	out := make([]Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if e.IsPrimary() {
			out = append(out, e)
		}
	}
	return out
}

// ParentOf returns the source of the first primary edge targeting key.
// Later primary edges into the same node are ignored for hierarchy purposes.
func (g *Graph) ParentOf(key string) (string, bool) {
	for _, e := range g.Edges {
		if e.IsPrimary() && e.To == key {
			return e.From, true
		}
	}
	return "", false
}

// Parents returns the first-match parent for every node that has one.
func (g *Graph) Parents() map[string]string {
	parents := make(map[string]string, len(g.Nodes))
	for _, e := range g.Edges {
		if !e.IsPrimary() {
			continue
		}
		if _, seen := parents[e.To]; !seen {
			parents[e.To] = e.From
		}
	}
	return parents
}

// Children returns primary children per node, in edge order.
func (g *Graph) Children() map[string][]string {
	children := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		if e.IsPrimary() {
			children[e.From] = append(children[e.From], e.To)
		}
	}
	return children
}

// ValidationError lists every structural problem found in a dataset.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid graph: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid graph (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks the invariants the canvas depends on: non-empty unique
// keys, an existing root, and edges that reference known nodes. Cycles are
// not checked here; see analysis.Check.
func (g *Graph) Validate() error {
	var problems []string
	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if strings.TrimSpace(n.Key) == "" {
			problems = append(problems, fmt.Sprintf("node %d has an empty key", i))
			continue
		}
		if seen[n.Key] {
			problems = append(problems, fmt.Sprintf("duplicate node key %q", n.Key))
		}
		seen[n.Key] = true
	}
	if g.Root == "" {
		problems = append(problems, "root is not set")
	} else if !seen[g.Root] {
		problems = append(problems, fmt.Sprintf("root %q is not a node", g.Root))
	}
	for i, e := range g.Edges {
		if !seen[e.From] {
			problems = append(problems, fmt.Sprintf("edge %d: unknown source %q", i, e.From))
		}
		if !seen[e.To] {
			problems = append(problems, fmt.Sprintf("edge %d: unknown target %q", i, e.To))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
