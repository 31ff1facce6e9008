package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCreateIndexCommand(opts *rootOptions) *cobra.Command {
	var ensure bool

	cmd := &cobra.Command{
		Use:   "create-index NAME",
		Short: "Create an index from the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.setup(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			create := app.Schema.CreateIndex
			if ensure {
				create = app.Schema.EnsureIndex
			}
			info, err := create(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			verb := "exists"
			if info.Created {
				verb = "created"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "index %s %s (mapping version %s)\n", info.Name, verb, info.MappingVersion)
			return err
		},
	}

	cmd.Flags().BoolVar(&ensure, "ensure", false, "accept an existing index with the current mapping version")
	return cmd
}

func newDeleteIndexCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-index NAME",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.setup(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			if err = app.Schema.DeleteIndex(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "index %s deleted\n", args[0])
			return err
		},
	}
}
