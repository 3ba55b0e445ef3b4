package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/conceptmap/pkg/config"
	"github.com/vanderheijden86/conceptmap/pkg/store"
)

func newSavedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List or forget positions saved by 'cmap view'",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the id of every dataset with saved positions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := store.Open(config.StorePath())
				if err != nil {
					return err
				}
				defer st.Close()
				ids, err := st.Datasets(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			},
		},
		newSavedForgetCmd(a),
	)
	return cmd
}

func newSavedForgetCmd(a *app) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "forget [dataset]",
		Short: "Delete saved positions and viewport for a dataset",
		Long: `Delete what 'cmap view' saved for a dataset so the next view starts from
the computed layout. --id names a dataset by the id 'saved list' prints,
which also covers datasets whose file has since changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				ds, err := a.loadDataset(cmd, firstArg(args))
				if err != nil {
					return err
				}
				id = ds.ID
			}
			st, err := store.Open(config.StorePath())
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Forget(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "dataset id instead of a dataset file")
	return cmd
}
