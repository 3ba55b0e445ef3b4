package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptmap/pkg/analysis"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		central int
	)
	cmd := &cobra.Command{
		Use:   "check [dataset]",
		Short: "Check a dataset for structural problems",
		Long: `Validate the dataset and report cycles, nodes with several primary
parents, nodes unreachable from the root and unknown levels. Exits 1 when
any error is found; warnings alone exit 0.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.loadDataset(cmd, firstArg(args))
			if err != nil {
				return err
			}
			report := analysis.Check(ds.Graph)
			var ranks []analysis.Rank
			if central > 0 {
				ranks = analysis.Central(ds.Graph, central)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(struct {
					analysis.Report
					Central []analysis.Rank `json:"central,omitempty"`
				}{report, ranks}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%s: %d nodes, %d edges (%d dashed), depth %d\n",
					ds.Path, report.Nodes, report.Edges, report.Dashed, report.Depth)
				for _, f := range report.Findings {
					fmt.Fprintln(out, f.String())
				}
				if len(ranks) > 0 {
					fmt.Fprintln(out, "most central:")
					for i, r := range ranks {
						fmt.Fprintf(out, "  %d. %s (%s) %.4f\n", i+1, r.Label, r.Key, r.Score)
					}
				}
				fmt.Fprintf(out, "%d error(s), %d warning(s)\n",
					report.Count(analysis.SeverityError), report.Count(analysis.SeverityWarning))
			}
			if report.HasErrors() {
				return exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().IntVar(&central, "central", 0, "also list the n most central concepts")
	return cmd
}
