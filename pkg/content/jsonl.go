package content

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// DefaultMaxBufferSize is the default longest JSONL line (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// Record kinds in a JSONL dataset.
const (
	KindRoot = "root"
	KindNode = "node"
	KindEdge = "edge"
)

// record is one JSONL line. A root record names the root by key; node
// records carry node fields; edge records carry from/to/dashed.
type record struct {
	Kind string `json:"kind"`
	model.Node
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Dashed bool   `json:"dashed,omitempty"`
}

// parseJSONL reads one record per line. Malformed lines, unknown kinds and
// lines longer than the buffer are skipped with a warning rather than
// failing the whole dataset.
func parseJSONL(r io.Reader, opts Options) (document, error) {
	var doc document

	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return doc, fmt.Errorf("error reading dataset stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			opts.warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return doc, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			opts.warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}

		switch rec.Kind {
		case KindRoot:
			if doc.Root != "" && doc.Root != rec.Key {
				opts.warn(fmt.Sprintf("line %d: root %q replaces %q", lineNum, rec.Key, doc.Root))
			}
			doc.Root = rec.Key
		case KindNode, "":
			if rec.Key == "" {
				opts.warn(fmt.Sprintf("skipping node without key on line %d", lineNum))
				continue
			}
			doc.Nodes = append(doc.Nodes, rec.Node)
		case KindEdge:
			doc.Edges = append(doc.Edges, model.Edge{From: rec.From, To: rec.To, Dashed: rec.Dashed})
		default:
			opts.warn(fmt.Sprintf("skipping unknown record kind %q on line %d", rec.Kind, lineNum))
		}
	}
	return doc, nil
}

func encodeJSONL(g *model.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(record{Kind: KindRoot, Node: model.Node{Key: g.Root}}); err != nil {
		return nil, err
	}
	for _, n := range g.Nodes {
		if err := enc.Encode(record{Kind: KindNode, Node: n}); err != nil {
			return nil, err
		}
	}
	for _, e := range g.Edges {
		if err := enc.Encode(record{Kind: KindEdge, From: e.From, To: e.To, Dashed: e.Dashed}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
