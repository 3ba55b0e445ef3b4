package main

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptmap/pkg/highlight"
)

func newPathCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "path [dataset] <key>",
		Short: "Print the path from a concept back to the root",
		Long: `Print the active path of a concept: the concept, its first primary
parent, that parent's parent and so on up to the root. The path is printed
root first. A chain that never reaches the root is reported as broken.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dataset, key := "", args[0]
			if len(args) == 2 {
				dataset, key = args[0], args[1]
			}
			ds, err := a.loadDataset(cmd, dataset)
			if err != nil {
				return err
			}
			if !ds.Graph.Has(key) {
				return fmt.Errorf("unknown node %q", key)
			}
			p := highlight.ActivePath(ds.Graph, key)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Nodes  []string `json:"nodes"`
					Broken bool     `json:"broken,omitempty"`
				}{p.Nodes, p.Broken})
			}
			labels := make([]string, 0, len(p.Nodes))
			for _, k := range p.Reversed() {
				if n, ok := ds.Graph.Node(k); ok && n.Label != "" {
					labels = append(labels, n.Label)
				} else {
					labels = append(labels, k)
				}
			}
			fmt.Fprintln(out, strings.Join(labels, " → "))
			if p.Broken {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: path from %s does not reach root %q\n", key, ds.Graph.Root)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print node keys as JSON, selected node first")
	return cmd
}
