package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/place-schema/internal/contract"
)

func newVerifyCommand(opts *rootOptions) *cobra.Command {
	var (
		offline   bool
		scenarios []string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the scoring contract scenarios",
		Long: `Each scenario creates a fresh index from the schema, indexes its
documents and checks that every matching document scores the same, on both
the exact and the ngram sub-field. Exits non-zero when any check fails.

With --offline the scenarios run against the local analyzer models instead
of a cluster.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.setup(cmd.Context(), offline)
			if err != nil {
				return err
			}
			defer app.Close()

			var report *contract.Report
			if offline {
				report, err = app.Verify.VerifyOffline(scenarios...)
			} else {
				report, err = app.Verify.Verify(cmd.Context(), scenarios...)
			}
			if err != nil {
				return err
			}

			if asJSON {
				if err = writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				renderReport(cmd.OutOrStdout(), report)
			}

			if !report.Passed() {
				return errVerificationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "use the local analyzer models instead of a cluster")
	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "scenario to run (repeatable, default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
