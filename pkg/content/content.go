// Package content loads concept datasets: the static node and edge lists the
// canvas is built from. YAML, JSON and JSONL are supported, chosen by file
// extension, plus an embedded sample so the tool works without a file.
package content

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// ErrUnsupportedFormat is returned for files whose extension is not a
// known dataset format.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// SampleName is the Path reported for the embedded dataset.
const SampleName = "<sample>"

//go:embed sample.yaml
var sampleYAML []byte

// Format is a dataset encoding.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Dataset is a loaded graph plus where it came from.
type Dataset struct {
	Path  string
	ID    string // content hash; keys saved positions
	Graph *model.Graph
}

// Options configures parsing.
type Options struct {
	// Strict rejects datasets that fail model validation. Without it a
	// dataset only has to parse; the canvas degrades around bad references.
	Strict bool

	// WarningHandler receives recoverable problems (skipped JSONL lines).
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// BufferSize is the longest JSONL line accepted. 0 uses
	// DefaultMaxBufferSize.
	BufferSize int
}

func (o Options) warn(msg string) {
	if o.WarningHandler != nil {
		o.WarningHandler(msg)
		return
	}
	debug.Log("content: %s", msg)
}

// document is the YAML/JSON file layout.
type document struct {
	Root  string       `json:"root" yaml:"root"`
	Nodes []model.Node `json:"nodes" yaml:"nodes"`
	Edges []model.Edge `json:"edges" yaml:"edges"`
}

// Open loads path, or the embedded sample when path is empty.
func Open(path string, opts Options) (*Dataset, error) {
	if path == "" {
		return Sample()
	}
	return Load(path, opts)
}

// Load reads and parses a dataset file.
func Load(path string, opts Options) (*Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	g, err := Parse(data, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Dataset{Path: path, ID: Hash(data), Graph: g}, nil
}

// Sample returns the embedded AI/ML concept map.
func Sample() (*Dataset, error) {
	g, err := Parse(sampleYAML, FormatYAML, Options{Strict: true})
	if err != nil {
		return nil, fmt.Errorf("embedded sample: %w", err)
	}
	return &Dataset{Path: SampleName, ID: Hash(sampleYAML), Graph: g}, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format, opts Options) (*model.Graph, error) {
	data = stripBOM(data)

	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	case FormatJSONL:
		var err error
		doc, err = parseJSONL(bytes.NewReader(data), opts)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	g := model.NewGraph(strings.TrimSpace(doc.Root), doc.Nodes, doc.Edges)
	if opts.Strict {
		if err := g.Validate(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Encode writes g in the given format.
func Encode(g *model.Graph, format Format) ([]byte, error) {
	doc := document{Root: g.Root, Nodes: g.Nodes, Edges: g.Edges}
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatJSONL:
		return encodeJSONL(g)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Hash identifies dataset content.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}
