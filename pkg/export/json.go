package export

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// SnapshotEdge is one routed connection in a snapshot.
type SnapshotEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Dashed bool   `json:"dashed,omitempty"`
	Active bool   `json:"active,omitempty"`
	D      string `json:"d"`
}

// Snapshot is the machine-readable form of a scene. Positions and Viewport
// use the same shape as the positions file, so a snapshot can be fed back
// with --positions.
type Snapshot struct {
	Title       string                 `json:"title,omitempty"`
	Dataset     string                 `json:"dataset,omitempty"`
	Root        string                 `json:"root"`
	Selected    string                 `json:"selected,omitempty"`
	Path        []string               `json:"path,omitempty"`
	PathBroken  bool                   `json:"path_broken,omitempty"`
	Positions   map[string]model.Point `json:"positions"`
	Sizes       map[string]model.Size  `json:"sizes,omitempty"`
	Viewport    canvas.ViewportState   `json:"viewport"`
	Connections []SnapshotEdge         `json:"connections"`
}

// NewSnapshot converts a scene.
func NewSnapshot(s Scene) Snapshot {
	snap := Snapshot{
		Title:       s.Title,
		Dataset:     s.DatasetID,
		Selected:    s.Selected,
		Path:        s.Path.Nodes,
		PathBroken:  s.Path.Broken,
		Positions:   s.Positions,
		Sizes:       s.Sizes,
		Viewport:    s.Viewport,
		Connections: make([]SnapshotEdge, 0, len(s.Connections)),
	}
	if s.Graph != nil {
		snap.Root = s.Graph.Root
	}
	for _, c := range s.Connections {
		snap.Connections = append(snap.Connections, SnapshotEdge{
			From:   c.Edge.From,
			To:     c.Edge.To,
			Dashed: c.Dashed,
			Active: c.Active,
			D:      c.Curve.PathData(),
		})
	}
	return snap
}

// WriteJSON writes the scene snapshot as indented JSON.
func WriteJSON(out io.Writer, s Scene) error {
	defer metrics.Timer(metrics.RenderJSON)()

	data, err := json.MarshalIndent(NewSnapshot(s), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	data = append(data, '\n')
	_, err = out.Write(data)
	return err
}

// ReadSnapshot decodes a snapshot written by WriteJSON.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}
