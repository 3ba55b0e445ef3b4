package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/debug"
	"github.com/vanderheijden86/conceptmap/pkg/store"
	"github.com/vanderheijden86/conceptmap/pkg/ui"
)

func newViewCmd(a *app) *cobra.Command {
	var watch, noRestore bool
	cmd := &cobra.Command{
		Use:   "view [dataset]",
		Short: "Explore the concept map in the terminal",
		Long: `Open the interactive terminal canvas.

Mouse: drag a node to move it, drag the background to pan, wheel to zoom,
click a node to highlight its path to the root. Press ? for keys.

Node positions and the viewport are saved per dataset when you quit and
restored next time unless --no-restore is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("view needs a terminal; use 'cmap render' for files")
			}
			ds, err := a.loadDataset(cmd, firstArg(args))
			if err != nil {
				return err
			}

			opts := ui.Options{
				Config:  a.cfg,
				Dataset: ds,
				Restore: a.cfg.Restore,
				Watch:   watch,
			}
			if !noRestore {
				st, err := store.Open(config.StorePath())
				if err != nil {
					// The canvas works without persistence.
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: positions will not be saved: %v\n", err)
				} else {
					defer st.Close()
					opts.Store = st
				}
			} else {
				opts.Restore = false
			}
			debug.Log("view: %s (%d nodes, watch=%v)", ds.Path, len(ds.Graph.Nodes), watch)
			return ui.Run(cmd.Context(), ui.NewModel(opts))
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the dataset when the file changes")
	cmd.Flags().BoolVar(&noRestore, "no-restore", false, "start from the computed layout and do not save positions")
	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
