package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptmap/pkg/canvas"
	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/content"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/export"
	"github.com/vanderheijden86/conceptmap/pkg/layout"
	"github.com/vanderheijden86/conceptmap/pkg/model"
	"github.com/vanderheijden86/conceptmap/pkg/version"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	debug      bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cmap",
		Short: "Interactive concept map on a pannable, zoomable canvas",
		Long: `cmap lays out a concept dataset as a tiered tree, left to right from the
root concept, and lets you explore it: drag nodes, pan and zoom the canvas,
and select a concept to highlight its path back to the root.

Without a dataset argument cmap uses the configured dataset, or the embedded
AI/ML sample.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.debug {
				_ = os.Setenv("CMAP_DEBUG", "1")
				debug.SetEnabled(true)
			}
			return a.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "write debug logs to stderr")

	root.AddCommand(
		newViewCmd(a),
		newRenderCmd(a),
		newLayoutCmd(a),
		newPathCmd(a),
		newCheckCmd(a),
		newConfigCmd(a),
		newSavedCmd(a),
	)
	return root
}

func (a *app) loadConfig() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	debug.Dump("config", a.cfg)
	return nil
}

// configFile is where config commands read and write.
func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}

// loadDataset opens the dataset named on the command line, falling back to
// the configured one and then to the embedded sample.
func (a *app) loadDataset(cmd *cobra.Command, arg string) (*content.Dataset, error) {
	path := arg
	if path == "" {
		path = a.cfg.Dataset
	}
	stderr := cmd.ErrOrStderr()
	return content.Open(path, content.Options{
		WarningHandler: func(msg string) {
			fmt.Fprintf(stderr, "warning: %s\n", msg)
		},
	})
}

// board is the canvas state the batch commands work on: the computed
// layout and file-renderer sizes.
type board struct {
	ds        *content.Dataset
	layout    layout.Result
	positions *canvas.Positions
	sizes     *canvas.Sizes
}

func (a *app) newBoard(ds *content.Dataset) board {
	start := time.Now()
	res := layout.Compute(ds.Graph, layout.FromConfig(a.cfg.Layout))
	sizes := canvas.NewSizes(model.Size{W: a.cfg.Canvas.NodeWidth, H: a.cfg.Canvas.NodeHeight})
	export.MeasureSizes(ds.Graph, sizes)
	debug.LogTiming(fmt.Sprintf("board (%d nodes)", len(ds.Graph.Nodes)), time.Since(start))
	return board{
		ds:        ds,
		layout:    res,
		positions: canvas.NewPositions(res.Positions),
		sizes:     sizes,
	}
}

// title is the display name of a dataset.
func title(ds *content.Dataset) string {
	if ds.Path == content.SampleName {
		return "AI/ML concept map"
	}
	if root, ok := ds.Graph.Node(ds.Graph.Root); ok && root.Label != "" {
		return root.Label
	}
	return ds.Path
}
