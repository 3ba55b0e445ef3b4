package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/connect"
	"github.com/vanderheijden86/conceptmap/pkg/export"
	"github.com/vanderheijden86/conceptmap/pkg/metrics"
	"github.com/vanderheijden86/conceptmap/pkg/store"
)

type renderOptions struct {
	outputs   []string
	format    string
	selected  string
	positions string
	saved     bool
	viewport  bool
	width     int
	height    int
	stats     bool
}

func newRenderCmd(a *app) *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render [dataset]",
		Short: "Render the concept map to SVG, PNG or JSON",
		Long: `Render the laid-out map to files. The format follows each output's
extension unless --format is given. Several -o flags render concurrently.
Without -o the map is written to stdout.

Examples:
  cmap render -o map.svg
  cmap render my.yaml -o map.svg -o map.png --select transformer
  cmap render --positions map.json -o moved.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, firstArg(args))
			if err != nil {
				return err
			}
			if o.selected != "" && !ds.Graph.Has(o.selected) {
				return fmt.Errorf("unknown node %q", o.selected)
			}
			b := a.newBoard(ds)
			vp := canvas.ViewportState{Scale: 1}

			if o.saved {
				if vp, err = applySaved(cmd.Context(), b, vp); err != nil {
					return err
				}
			}
			if o.positions != "" {
				if vp, err = applyPositionsFile(o.positions, b, vp); err != nil {
					return err
				}
			}

			scene := export.NewScene(ds.Graph, b.positions, b.sizes, vp, export.SceneOptions{
				Title:       title(ds),
				DatasetID:   ds.ID,
				Selected:    o.selected,
				Connect:     connect.OptionsFrom(a.cfg.Canvas),
				UseViewport: o.viewport,
				Width:       o.width,
				Height:      o.height,
			})

			if len(o.outputs) == 0 {
				f, err := export.FormatFor("", o.formatOr(export.FormatSVG))
				if err != nil {
					return err
				}
				w := bufio.NewWriter(cmd.OutOrStdout())
				if err := export.Write(w, scene, f); err != nil {
					return err
				}
				if err := w.Flush(); err != nil {
					return err
				}
			} else {
				targets := make([]export.Target, 0, len(o.outputs))
				for _, path := range o.outputs {
					f, err := export.FormatFor(path, o.format)
					if err != nil {
						return err
					}
					targets = append(targets, export.Target{Path: path, Format: f})
				}
				if err := export.RenderAll(cmd.Context(), scene, targets); err != nil {
					return err
				}
				for _, t := range targets {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s)\n", t.Path, t.Format)
				}
			}

			if o.stats {
				printStats(cmd.ErrOrStderr())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&o.outputs, "output", "o", nil, "output file; repeat for several formats")
	f.StringVar(&o.format, "format", "", "force the output format: svg, png or json")
	f.StringVar(&o.selected, "select", "", "highlight the path from this node to the root")
	f.StringVar(&o.positions, "positions", "", "JSON file with positions and viewport (as written by -o x.json)")
	f.BoolVar(&o.saved, "saved", false, "use the positions saved by 'cmap view'")
	f.BoolVar(&o.viewport, "viewport", false, "render the current viewport instead of fitting all content")
	f.IntVar(&o.width, "width", 1280, "viewport width with --viewport")
	f.IntVar(&o.height, "height", 800, "viewport height with --viewport")
	f.BoolVar(&o.stats, "stats", false, "print timing metrics to stderr")
	return cmd
}

func (o renderOptions) formatOr(def export.Format) string {
	if o.format != "" {
		return o.format
	}
	return string(def)
}

// applySaved overlays positions and viewport from the store. A dataset
// that was never saved renders from the computed layout.
func applySaved(ctx context.Context, b board, vp canvas.ViewportState) (canvas.ViewportState, error) {
	st, err := store.Open(config.StorePath())
	if err != nil {
		return vp, err
	}
	defer st.Close()

	saved, err := st.LoadPositions(ctx, b.ds.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return vp, err
	default:
		for k, p := range saved {
			if b.positions.Has(k) {
				b.positions.Set(k, p)
			}
		}
	}
	if state, err := st.LoadViewport(ctx, b.ds.ID); err == nil {
		vp = state
	} else if !errors.Is(err, store.ErrNotFound) {
		return vp, err
	}
	return vp, nil
}

// applyPositionsFile overlays a positions file. Keys not in the dataset are
// ignored.
func applyPositionsFile(path string, b board, vp canvas.ViewportState) (canvas.ViewportState, error) {
	f, err := os.Open(path)
	if err != nil {
		return vp, fmt.Errorf("opening positions: %w", err)
	}
	defer f.Close()
	snap, err := export.ReadSnapshot(f)
	if err != nil {
		return vp, err
	}
	for k, p := range snap.Positions {
		if b.positions.Has(k) {
			b.positions.Set(k, p)
		}
	}
	if snap.Viewport.Scale > 0 {
		vp = snap.Viewport
	}
	return vp, nil
}

func printStats(w io.Writer) {
	fmt.Fprintf(w, "%-14s %6s %10s %10s %10s\n", "metric", "count", "total_ms", "avg_ms", "max_ms")
	for _, s := range metrics.Snapshot() {
		if s.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%-14s %6d %10.2f %10.2f %10.2f\n", s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
	}
}
