//go:build ignore

// generate_testdata.go writes large concept datasets for benchmarking the
// layout, connection and render paths.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/bench/small.yaml   (100 concepts)
//	testdata/bench/medium.yaml  (1000 concepts)
//	testdata/bench/large.yaml   (5000 concepts)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/conceptmap/pkg/content"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
	aux  int
}

var datasets = []datasetSpec{
	{"small", 100, 10},
	{"medium", 1000, 50},
	{"large", 5000, 200},
}

var topics = []string{
	"Gradient Descent",
	"Regularization",
	"Embeddings",
	"Tokenization",
	"Loss Functions",
	"Batch Normalization",
	"Dropout",
	"Beam Search",
	"Contrastive Learning",
	"Quantization",
}

func main() {
	outputDir := filepath.Join("testdata", "bench")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d concepts)...\n", ds.name, ds.size)

		f := testutil.New(int64(ds.size)).Random(ds.size, ds.aux)
		g := f.Graph()
		addContent(g)

		data, err := content.Encode(g, content.FormatYAML)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		outputPath := filepath.Join(outputDir, ds.name+".yaml")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d bytes, %d edges, depth %d)\n",
			outputPath, len(data), len(g.Edges), f.Properties.ExpectedDepth)
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

func addContent(g *model.Graph) {
	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.Label = fmt.Sprintf("%s %d", topics[i%len(topics)], i)
		n.Content = model.Content{
			Description: "Generated concept for benchmarks.",
			KeyPoints:   []string{"First point", "Second point"},
		}
	}
}
