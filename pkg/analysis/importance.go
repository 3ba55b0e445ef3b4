package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// Rank is one node's centrality score.
type Rank struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Central ranks concepts by PageRank over every edge, dashed cross-links
// included, and returns the top n (all when n <= 0). Edges point from
// general to specific, so high scores mark the concepts many branches lead
// into.
func Central(g *model.Graph, n int) []Rank {
	dg, keys := build(g, true)
	if dg.Nodes().Len() == 0 {
		return nil
	}
	scores := network.PageRank(dg, 0.85, 1e-6)

	ranks := make([]Rank, 0, len(scores))
	for id, score := range scores {
		key := keys[id]
		node, _ := g.Node(key)
		ranks = append(ranks, Rank{Key: key, Label: node.Label, Score: score})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		return ranks[i].Key < ranks[j].Key
	})
	if n > 0 && len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}
