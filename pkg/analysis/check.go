// Package analysis runs structural checks over a concept graph: primary-edge
// cycles, nodes with several primary parents, orphans, dangling references
// and the concepts that hold the map together.
//
// None of these stop the canvas from rendering. They are content-authoring
// defects the canvas degrades around; Check reports them so they can be
// fixed in the dataset.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/conceptmap/pkg/layout"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Severity grades a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Kind names the kind of a finding.
type Kind string

const (
	KindInvalid      Kind = "invalid"      // dataset fails validation
	KindCycle        Kind = "cycle"        // primary edges form a loop
	KindSelfLoop     Kind = "self_loop"    // primary edge from a node to itself
	KindMultiParent  Kind = "multi_parent" // extra primary parents are ignored
	KindOrphan       Kind = "orphan"       // unreachable from the root
	KindUnknownLevel Kind = "unknown_level"
)

// Finding is one reported problem.
type Finding struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Nodes    []string `json:"nodes,omitempty"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%-7s %-13s %s", f.Severity, f.Kind, f.Message)
}

// Report is the result of Check.
type Report struct {
	Findings []Finding `json:"findings"`
	Nodes    int       `json:"nodes"`
	Edges    int       `json:"edges"`
	Dashed   int       `json:"dashed"`
	Depth    int       `json:"depth"` // deepest tier reachable from the root
}

// HasErrors reports whether any finding is an error.
func (r Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of findings with severity s.
func (r Report) Count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Check analyzes g. Validation failures are errors; cycles are errors too
// because they leave part of the hierarchy without a path to the root.
// Everything else is a warning.
func Check(g *model.Graph) Report {
	r := Report{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, e := range g.Edges {
		if e.Dashed {
			r.Dashed++
		}
	}

	if err := g.Validate(); err != nil {
		if ve, ok := err.(*model.ValidationError); ok {
			for _, p := range ve.Problems {
				r.Findings = append(r.Findings, Finding{Severity: SeverityError, Kind: KindInvalid, Message: p})
			}
		} else {
			r.Findings = append(r.Findings, Finding{Severity: SeverityError, Kind: KindInvalid, Message: err.Error()})
		}
	}

	r.Findings = append(r.Findings, cycles(g)...)
	r.Findings = append(r.Findings, multiParents(g)...)

	depths := layout.Tiers(g)
	for _, d := range depths {
		if d > r.Depth {
			r.Depth = d
		}
	}
	var orphans []string
	for _, k := range g.Keys() {
		if _, ok := depths[k]; !ok && k != "" {
			orphans = append(orphans, k)
		}
	}
	if len(orphans) > 0 {
		r.Findings = append(r.Findings, Finding{
			Severity: SeverityWarning,
			Kind:     KindOrphan,
			Nodes:    orphans,
			Message:  fmt.Sprintf("%d node(s) unreachable from root %q: %s", len(orphans), g.Root, strings.Join(orphans, ", ")),
		})
	}

	for _, n := range g.Nodes {
		if n.Level != "" && !n.Level.IsValid() {
			r.Findings = append(r.Findings, Finding{
				Severity: SeverityWarning,
				Kind:     KindUnknownLevel,
				Nodes:    []string{n.Key},
				Message:  fmt.Sprintf("%s has unknown level %q", n.Key, n.Level),
			})
		}
	}
	return r
}

// cycles reports strongly connected components of the primary graph and
// primary self loops.
func cycles(g *model.Graph) []Finding {
	var out []Finding
	for _, e := range g.PrimaryEdges() {
		if e.From == e.To {
			out = append(out, Finding{
				Severity: SeverityError,
				Kind:     KindSelfLoop,
				Nodes:    []string{e.From},
				Message:  fmt.Sprintf("%s is its own parent", e.From),
			})
		}
	}

	dg, keys := build(g, false)
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, len(scc))
		for i, n := range scc {
			members[i] = keys[n.ID()]
		}
		sort.Strings(members)
		out = append(out, Finding{
			Severity: SeverityError,
			Kind:     KindCycle,
			Nodes:    members,
			Message:  fmt.Sprintf("primary edges form a cycle through %s", strings.Join(members, ", ")),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Join(out[i].Nodes, ",") < strings.Join(out[j].Nodes, ",")
	})
	return out
}

func multiParents(g *model.Graph) []Finding {
	parents := make(map[string][]string)
	var order []string
	for _, e := range g.PrimaryEdges() {
		if _, seen := parents[e.To]; !seen {
			order = append(order, e.To)
		}
		parents[e.To] = append(parents[e.To], e.From)
	}
	var out []Finding
	for _, k := range order {
		ps := parents[k]
		if len(ps) < 2 {
			continue
		}
		out = append(out, Finding{
			Severity: SeverityWarning,
			Kind:     KindMultiParent,
			Nodes:    append([]string{k}, ps...),
			Message:  fmt.Sprintf("%s has %d primary parents; %s is used, %s ignored", k, len(ps), ps[0], strings.Join(ps[1:], ", ")),
		})
	}
	return out
}

// build converts g to a gonum directed graph. Dashed edges are included
// only when withDashed is set. Self loops and edges touching unknown nodes
// are dropped. The returned map translates node IDs back to keys.
func build(g *model.Graph, withDashed bool) (*simple.DirectedGraph, map[int64]string) {
	dg := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(g.Nodes))
	keys := make(map[int64]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := ids[n.Key]; dup || n.Key == "" {
			continue
		}
		node := dg.NewNode()
		dg.AddNode(node)
		ids[n.Key] = node.ID()
		keys[node.ID()] = n.Key
	}
	for _, e := range g.Edges {
		if e.Dashed && !withDashed {
			continue
		}
		u, okU := ids[e.From]
		v, okV := ids[e.To]
		if !okU || !okV || u == v {
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(u), dg.Node(v)))
	}
	return dg, keys
}
