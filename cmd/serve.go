package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/place-schema/internal/bootstrap"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.setup(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer app.Close()

			return bootstrap.Serve(cmd.Context(), app)
		},
	}
}
