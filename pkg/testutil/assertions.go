package testutil

import (
	"math"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// TB is the subset of testing.TB the assertions need. Both *testing.T and
// *rapid.T satisfy it.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

// Epsilon is the tolerance used when comparing canvas coordinates.
const Epsilon = 1e-9

// AssertPoint verifies a coordinate within Epsilon.
func AssertPoint(t TB, name string, got, want model.Point) {
	t.Helper()
	if math.Abs(got.X-want.X) > Epsilon || math.Abs(got.Y-want.Y) > Epsilon {
		t.Errorf("%s: expected (%v, %v), got (%v, %v)", name, want.X, want.Y, got.X, got.Y)
	}
}

// AssertFloat verifies a scalar within Epsilon.
func AssertFloat(t TB, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > Epsilon {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

// AssertPathToRoot verifies that path starts at from, ends at the root,
// contains no duplicates, and that every consecutive pair is a primary edge
// (parent -> child, walking upwards).
func AssertPathToRoot(t TB, g *model.Graph, from string, path []string) {
	t.Helper()
	if len(path) == 0 {
		t.Errorf("expected non-empty path from %s", from)
		return
	}
	if path[0] != from {
		t.Errorf("path should start at %s, got %s", from, path[0])
	}
	if last := path[len(path)-1]; last != g.Root {
		t.Errorf("path should end at root %s, got %s", g.Root, last)
	}
	seen := make(map[string]bool, len(path))
	for i, k := range path {
		if seen[k] {
			t.Errorf("duplicate node %s in path %v", k, path)
		}
		seen[k] = true
		if i == 0 {
			continue
		}
		if !HasPrimaryEdge(g, k, path[i-1]) {
			t.Errorf("no primary edge %s -> %s for path step %d", k, path[i-1], i)
		}
	}
}

// HasPrimaryEdge reports whether g has a primary edge from -> to.
func HasPrimaryEdge(g *model.Graph, from, to string) bool {
	for _, e := range g.Edges {
		if e.IsPrimary() && e.From == from && e.To == to {
			return true
		}
	}
	return false
}
