// Package layout computes the initial left-to-right tiered tree placement of
// a concept graph. The computation is pure: it reads the static edge list and
// returns fresh coordinates, so it can be re-run at any time (for example on
// an explicit "reset layout").
package layout

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Config holds the spacing constants of the tiered layout.
type Config struct {
	LeftMargin    float64
	ColumnSpacing float64
	RowSpacing    float64
	CenterY       float64
	FallbackTier  int
}

// DefaultConfig returns the stock layout constants.
func DefaultConfig() Config {
	return FromConfig(config.DefaultConfig().Layout)
}

// FromConfig converts the file configuration.
func FromConfig(c config.LayoutConfig) Config {
	return Config{
		LeftMargin:    c.LeftMargin,
		ColumnSpacing: c.ColumnSpacing,
		RowSpacing:    c.RowSpacing,
		CenterY:       c.CenterY,
		FallbackTier:  c.FallbackTier,
	}
}

// Result is the output of Compute.
type Result struct {
	// Positions maps node key to its initial top-left corner.
	Positions map[string]model.Point
	// Tiers maps node key to its column index.
	Tiers map[string]int
	// Columns lists node keys per tier, in dataset order. Empty tiers
	// between the last reachable tier and the fallback tier are nil.
	Columns [][]string
	// Orphans are the nodes unreachable from the root via primary edges.
	Orphans []string
	// FallbackTier is the column used for orphans, or -1 if there are none.
	FallbackTier int
}

// Compute assigns every node an initial position. Reachable nodes sit in the
// column equal to their BFS distance from the root over primary edges;
// unreachable nodes go to the fallback column, which is always to the right
// of every reachable column. It never fails: a missing root simply makes
// every node an orphan.
func Compute(g *model.Graph, cfg Config) Result {
	defer metrics.Timer(metrics.Layout)()

	keys := g.Keys()
	tiers := Tiers(g)

	maxTier := -1
	for _, t := range tiers {
		if t > maxTier {
			maxTier = t
		}
	}

	res := Result{
		Positions:    make(map[string]model.Point, len(keys)),
		Tiers:        make(map[string]int, len(keys)),
		FallbackTier: -1,
	}

	var orphans []string
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if t, ok := tiers[k]; ok {
			res.Tiers[k] = t
		} else {
			orphans = append(orphans, k)
		}
	}
	if len(orphans) > 0 {
		fallback := cfg.FallbackTier
		if fallback <= maxTier {
			fallback = maxTier + 1
		}
		for _, k := range orphans {
			res.Tiers[k] = fallback
		}
		res.Orphans = orphans
		res.FallbackTier = fallback
		maxTier = fallback
		debug.Log("layout: %d orphan node(s) placed in tier %d: %v", len(orphans), fallback, orphans)
	}

	res.Columns = make([][]string, maxTier+1)
	placed := make(map[string]bool, len(keys))
	for _, k := range keys {
		if placed[k] {
			continue
		}
		placed[k] = true
		t := res.Tiers[k]
		res.Columns[t] = append(res.Columns[t], k)
	}

	for tier, column := range res.Columns {
		x := cfg.LeftMargin + float64(tier)*cfg.ColumnSpacing
		mid := float64(len(column)-1) / 2
		for i, k := range column {
			y := cfg.CenterY + (float64(i)-mid)*cfg.RowSpacing
			res.Positions[k] = model.Point{X: x, Y: y}
		}
	}
	return res
}

// Tiers returns the BFS distance from the root for every node reachable
// over primary edges. Unreachable nodes are absent from the map.
func Tiers(g *model.Graph) map[string]int {
	dg, ids := buildPrimary(g)
	tiers := make(map[string]int, len(ids))

	rootID, ok := ids[g.Root]
	if !ok {
		return tiers
	}
	byID := make(map[int64]string, len(ids))
	for k, id := range ids {
		byID[id] = k
	}

	var bf traverse.BreadthFirst
	bf.Walk(dg, dg.Node(rootID), func(n graph.Node, depth int) bool {
		tiers[byID[n.ID()]] = depth
		return false
	})
	return tiers
}

// buildPrimary loads the primary hierarchy into a gonum directed graph.
// Self loops and edges to unknown nodes are skipped; gonum's simple graph
// rejects the former and the latter cannot be placed anyway.
func buildPrimary(g *model.Graph) (*simple.DirectedGraph, map[string]int64) {
	dg := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := ids[n.Key]; dup {
			continue
		}
		node := dg.NewNode()
		dg.AddNode(node)
		ids[n.Key] = node.ID()
	}
	for _, e := range g.PrimaryEdges() {
		u, okU := ids[e.From]
		v, okV := ids[e.To]
		if !okU || !okV || u == v {
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(u), dg.Node(v)))
	}
	return dg, ids
}

// Bounds returns the number of columns and the height of the tallest one.
func (r Result) Bounds() (columns, maxRows int) {
	columns = len(r.Columns)
	for _, c := range r.Columns {
		if len(c) > maxRows {
			maxRows = len(c)
		}
	}
	return columns, maxRows
}

// SortedKeys returns the laid-out keys ordered by tier, then row.
func (r Result) SortedKeys() []string {
	keys := make([]string, 0, len(r.Positions))
	for k := range r.Positions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ti, tj := r.Tiers[keys[i]], r.Tiers[keys[j]]
		if ti != tj {
			return ti < tj
		}
		pi, pj := r.Positions[keys[i]], r.Positions[keys[j]]
		if pi.Y != pj.Y {
			return pi.Y < pj.Y
		}
		return keys[i] < keys[j]
	})
	return keys
}
