package main

import (
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptmap/pkg/model"
)

// layoutOutput is the JSON printed by `cmap layout`.
type layoutOutput struct {
	Root         string                 `json:"root"`
	Tiers        map[string]int         `json:"tiers"`
	Columns      [][]string             `json:"columns"`
	Orphans      []string               `json:"orphans,omitempty"`
	FallbackTier int                    `json:"fallback_tier"`
	Positions    map[string]model.Point `json:"positions"`
	Sizes        map[string]model.Size  `json:"sizes"`
}

func newLayoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Print the computed tiers and positions as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, firstArg(args))
			if err != nil {
				return err
			}
			b := a.newBoard(ds)
			out := layoutOutput{
				Root:         ds.Graph.Root,
				Tiers:        b.layout.Tiers,
				Columns:      b.layout.Columns,
				Orphans:      b.layout.Orphans,
				FallbackTier: b.layout.FallbackTier,
				Positions:    b.layout.Positions,
				Sizes:        make(map[string]model.Size, len(ds.Graph.Nodes)),
			}
			for _, k := range ds.Graph.Keys() {
				out.Sizes[k] = b.sizes.Get(k)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
