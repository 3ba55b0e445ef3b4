package demo

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

type stub struct{ name string }

func (s stub) Name() string                { return s.name }
func (s stub) View(model.Node, int) string { return s.name }

func TestLookupDefaultsToNone(t *testing.T) {
	r := NewRegistry()
	if d := r.Lookup("anything"); d != None {
		t.Errorf("expected None, got %v", d.Name())
	}
	if None.View(model.Node{}, 80) != "" {
		t.Error("None should render nothing")
	}
}

func TestRegisterReplaceRemove(t *testing.T) {
	r := NewRegistry()
	r.Register("a", stub{"one"})
	r.Register("a", stub{"two"})
	if got := r.Lookup("a").Name(); got != "two" {
		t.Errorf("Lookup(a) = %s, want two", got)
	}
	r.Register("b", stub{"b"})
	if keys := r.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys = %v", keys)
	}
	r.Register("a", nil)
	if r.Lookup("a") != None {
		t.Error("nil registration should remove the binding")
	}
}

func TestForGraph(t *testing.T) {
	g := model.NewGraph("r", []model.Node{
		{Key: "r"},
		{Key: "f", Content: model.Content{Formula: "E = mc²"}},
	}, nil)
	r := ForGraph(g)
	if r.Lookup("r") != None {
		t.Error("node without formula should get None")
	}
	if r.Lookup("f").Name() != "formula" {
		t.Error("node with formula should get a FormulaCard")
	}
}

func TestFormulaCardWidth(t *testing.T) {
	n := model.Node{Content: model.Content{Formula: "softmax(QKᵀ/√d)V and a very long tail"}}
	for _, w := range []int{5, 12, 40} {
		out := FormulaCard{}.View(n, w)
		for i, line := range strings.Split(out, "\n") {
			if got := runewidth.StringWidth(line); got != w {
				t.Errorf("width %d line %d: %d cells: %q", w, i, got, line)
			}
		}
	}
	if (FormulaCard{}).View(n, 4) != "" {
		t.Error("too narrow should render nothing")
	}
}
