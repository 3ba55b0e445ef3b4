// Package testutil provides concept-graph fixtures for tests. All
// generators are deterministic for reproducible tests; GraphGen plugs the
// same shapes into rapid property tests.
package testutil

import (
	"fmt"
	"math/rand"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// GraphFixture is an abstract concept graph. Node 0 is the root unless
// Root says otherwise.
type GraphFixture struct {
	Description string
	Nodes       []string
	Edges       [][2]int // [from_idx, to_idx], primary
	Aux         [][2]int // dashed cross-links
	Root        int
	Properties  Properties
}

// Properties holds metadata about the fixture.
type Properties struct {
	HasCycles     bool
	Orphans       int
	ExpectedDepth int
}

// Graph converts the fixture into a model graph.
func (f GraphFixture) Graph() *model.Graph {
	nodes := make([]model.Node, len(f.Nodes))
	levels := model.Levels()
	for i, k := range f.Nodes {
		nodes[i] = model.Node{Key: k, Label: "Topic " + k, Level: levels[i%len(levels)]}
	}
	edges := make([]model.Edge, 0, len(f.Edges)+len(f.Aux))
	for _, e := range f.Edges {
		edges = append(edges, model.Edge{From: f.Nodes[e[0]], To: f.Nodes[e[1]]})
	}
	for _, e := range f.Aux {
		edges = append(edges, model.Edge{From: f.Nodes[e[0]], To: f.Nodes[e[1]], Dashed: true})
	}
	root := ""
	if f.Root >= 0 && f.Root < len(f.Nodes) {
		root = f.Nodes[f.Root]
	}
	return model.NewGraph(root, nodes, edges)
}

// Generator creates fixtures with various topologies.
type Generator struct {
	rng *rand.Rand
}

// New creates a Generator. A zero seed uses 42.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = 42
	}
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with the default seed.
func NewDefault() *Generator {
	return New(42)
}

// Chain creates root -> n1 -> n2 -> ... -> n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	nodes := make([]string, size)
	var edges [][2]int
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		if i > 0 {
			edges = append(edges, [2]int{i - 1, i})
		}
	}
	return GraphFixture{
		Description: fmt.Sprintf("chain of %d nodes", size),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: size - 1},
	}
}

// Star creates a root with `spokes` children.
func (g *Generator) Star(spokes int) GraphFixture {
	nodes := []string{"hub"}
	var edges [][2]int
	for i := 1; i <= spokes; i++ {
		nodes = append(nodes, fmt.Sprintf("spoke%d", i))
		edges = append(edges, [2]int{0, i})
	}
	return GraphFixture{
		Description: fmt.Sprintf("star with %d spokes", spokes),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: 1},
	}
}

// Diamond creates top -> mid1..midN -> bottom. bottom has N primary
// parents; only the first one counts for the hierarchy.
func (g *Generator) Diamond(width int) GraphFixture {
	if width < 1 {
		width = 1
	}
	size := width + 2
	nodes := make([]string, size)
	nodes[0] = "top"
	nodes[size-1] = "bottom"
	var edges [][2]int
	for i := 1; i <= width; i++ {
		nodes[i] = fmt.Sprintf("mid%d", i)
		edges = append(edges, [2]int{0, i}, [2]int{i, size - 1})
	}
	return GraphFixture{
		Description: fmt.Sprintf("diamond with %d middle nodes", width),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: 2},
	}
}

// Cycle creates root -> n1 -> ... -> n{size-1} -> n1, a loop hanging off
// the root.
func (g *Generator) Cycle(size int) GraphFixture {
	if size < 3 {
		size = 3
	}
	f := g.Chain(size)
	f.Edges = append(f.Edges, [2]int{size - 1, 1})
	f.Description = fmt.Sprintf("chain of %d nodes with a back edge", size)
	f.Properties.HasCycles = true
	return f
}

// Tree creates a tree with given depth and branching factor.
func (g *Generator) Tree(depth, breadth int) GraphFixture {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}
	nodes := []string{"n0"}
	var edges [][2]int
	current := []int{0}
	for d := 0; d < depth; d++ {
		var next []int
		for _, parent := range current {
			for b := 0; b < breadth; b++ {
				child := len(nodes)
				nodes = append(nodes, fmt.Sprintf("n%d", child))
				edges = append(edges, [2]int{parent, child})
				next = append(next, child)
			}
		}
		current = next
	}
	return GraphFixture{
		Description: fmt.Sprintf("tree depth=%d breadth=%d (%d nodes)", depth, breadth, len(nodes)),
		Nodes:       nodes,
		Edges:       edges,
		Properties:  Properties{ExpectedDepth: depth},
	}
}

// WithOrphans appends n nodes with no primary edge into them. Each orphan
// gets a dashed link from the root so it still renders connected.
func (g *Generator) WithOrphans(f GraphFixture, n int) GraphFixture {
	for i := 0; i < n; i++ {
		idx := len(f.Nodes)
		f.Nodes = append(f.Nodes, fmt.Sprintf("orphan%d", i))
		f.Aux = append(f.Aux, [2]int{f.Root, idx})
	}
	f.Properties.Orphans += n
	return f
}

// Random creates a random tree of `size` nodes rooted at node 0, plus
// `aux` dashed cross-links.
func (g *Generator) Random(size, aux int) GraphFixture {
	if size < 1 {
		size = 1
	}
	nodes := make([]string, size)
	var edges [][2]int
	depth := make([]int, size)
	maxDepth := 0
	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		if i > 0 {
			parent := g.rng.Intn(i)
			edges = append(edges, [2]int{parent, i})
			depth[i] = depth[parent] + 1
			if depth[i] > maxDepth {
				maxDepth = depth[i]
			}
		}
	}
	var auxEdges [][2]int
	for i := 0; i < aux && size > 1; i++ {
		auxEdges = append(auxEdges, [2]int{g.rng.Intn(size), g.rng.Intn(size)})
	}
	return GraphFixture{
		Description: fmt.Sprintf("random tree of %d nodes with %d cross-links", size, aux),
		Nodes:       nodes,
		Edges:       edges,
		Aux:         auxEdges,
		Properties:  Properties{ExpectedDepth: maxDepth},
	}
}

// GraphGen draws arbitrary concept graphs for rapid: a random tree, some
// orphans, dashed cross-links, and optionally extra primary edges that may
// create multiple parents or cycles.
func GraphGen(allowCycles bool) *rapid.Generator[GraphFixture] {
	return rapid.Custom(func(t *rapid.T) GraphFixture {
		size := rapid.IntRange(1, 40).Draw(t, "size")
		f := GraphFixture{Nodes: make([]string, size)}
		for i := 0; i < size; i++ {
			f.Nodes[i] = fmt.Sprintf("k%d", i)
			if i > 0 {
				if rapid.IntRange(0, 9).Draw(t, fmt.Sprintf("orphan%d", i)) == 0 {
					f.Properties.Orphans++
					continue
				}
				parent := rapid.IntRange(0, i-1).Draw(t, fmt.Sprintf("parent%d", i))
				f.Edges = append(f.Edges, [2]int{parent, i})
			}
		}
		extra := rapid.IntRange(0, 5).Draw(t, "aux")
		for i := 0; i < extra; i++ {
			from := rapid.IntRange(0, size-1).Draw(t, fmt.Sprintf("auxFrom%d", i))
			to := rapid.IntRange(0, size-1).Draw(t, fmt.Sprintf("auxTo%d", i))
			f.Aux = append(f.Aux, [2]int{from, to})
		}
		if allowCycles {
			back := rapid.IntRange(0, 3).Draw(t, "back")
			for i := 0; i < back; i++ {
				from := rapid.IntRange(0, size-1).Draw(t, fmt.Sprintf("backFrom%d", i))
				to := rapid.IntRange(0, size-1).Draw(t, fmt.Sprintf("backTo%d", i))
				f.Edges = append(f.Edges, [2]int{from, to})
				f.Properties.HasCycles = true
			}
		}
		return f
	})
}
