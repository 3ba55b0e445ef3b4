package analysis

import (
	"testing"

	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/testutil"
)

func kinds(r Report) map[Kind]int {
	out := make(map[Kind]int)
	for _, f := range r.Findings {
		out[f.Kind]++
	}
	return out
}

func TestCheckCleanTree(t *testing.T) {
	gen := testutil.NewDefault()
	r := Check(gen.Tree(3, 2).Graph())
	if len(r.Findings) != 0 {
		t.Fatalf("expected no findings, got %v", r.Findings)
	}
	if r.Depth != 3 {
		t.Errorf("depth = %d, want 3", r.Depth)
	}
	if r.Nodes != 15 || r.Edges != 14 {
		t.Errorf("counts = %d nodes, %d edges", r.Nodes, r.Edges)
	}
}

func TestCheckFindings(t *testing.T) {
	gen := testutil.NewDefault()
	tests := []struct {
		name      string
		graph     *model.Graph
		want      map[Kind]int
		wantError bool
	}{
		{
			name:      "cycle",
			graph:     gen.Cycle(4).Graph(),
			want:      map[Kind]int{KindCycle: 1, KindMultiParent: 1},
			wantError: true,
		},
		{
			name:  "diamond",
			graph: gen.Diamond(3).Graph(),
			want:  map[Kind]int{KindMultiParent: 1},
		},
		{
			name:  "orphans behind dashed links",
			graph: gen.WithOrphans(gen.Star(2), 2).Graph(),
			want:  map[Kind]int{KindOrphan: 1},
		},
		{
			name: "self loop",
			graph: model.NewGraph("r", []model.Node{{Key: "r"}, {Key: "a"}},
				[]model.Edge{{From: "r", To: "a"}, {From: "a", To: "a"}}),
			want:      map[Kind]int{KindSelfLoop: 1, KindMultiParent: 1},
			wantError: true,
		},
		{
			name: "dangling edge",
			graph: model.NewGraph("r", []model.Node{{Key: "r"}},
				[]model.Edge{{From: "r", To: "ghost"}}),
			want:      map[Kind]int{KindInvalid: 1},
			wantError: true,
		},
		{
			name: "unknown level",
			graph: model.NewGraph("r", []model.Node{{Key: "r", Level: "expert"}}, nil),
			want: map[Kind]int{KindUnknownLevel: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check(tt.graph)
			got := kinds(r)
			for k, n := range tt.want {
				if got[k] != n {
					t.Errorf("%s: got %d, want %d (findings %v)", k, got[k], n, r.Findings)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("unexpected finding kinds %v", got)
			}
			if r.HasErrors() != tt.wantError {
				t.Errorf("HasErrors = %v, want %v", r.HasErrors(), tt.wantError)
			}
		})
	}
}

func TestCycleMembers(t *testing.T) {
	r := Check(testutil.NewDefault().Cycle(4).Graph())
	for _, f := range r.Findings {
		if f.Kind != KindCycle {
			continue
		}
		want := []string{"n1", "n2", "n3"}
		if len(f.Nodes) != len(want) {
			t.Fatalf("cycle nodes = %v, want %v", f.Nodes, want)
		}
		for i := range want {
			if f.Nodes[i] != want[i] {
				t.Fatalf("cycle nodes = %v, want %v", f.Nodes, want)
			}
		}
		return
	}
	t.Fatal("no cycle finding")
}

func TestMultiParentNamesTheParentUsed(t *testing.T) {
	r := Check(testutil.NewDefault().Diamond(2).Graph())
	for _, f := range r.Findings {
		if f.Kind == KindMultiParent {
			if f.Nodes[0] != "bottom" || f.Nodes[1] != "mid1" {
				t.Errorf("nodes = %v, want bottom first then mid1", f.Nodes)
			}
			return
		}
	}
	t.Fatal("no multi-parent finding")
}

func TestCentral(t *testing.T) {
	g := testutil.NewDefault().Diamond(3).Graph()
	ranks := Central(g, 1)
	if len(ranks) != 1 || ranks[0].Key != "bottom" {
		t.Errorf("expected bottom to rank first, got %v", ranks)
	}
	if all := Central(g, 0); len(all) != len(g.Nodes) {
		t.Errorf("Central(0) should rank all %d nodes, got %d", len(g.Nodes), len(all))
	}
	if Central(model.NewGraph("", nil, nil), 3) != nil {
		t.Error("empty graph should rank nothing")
	}
}
