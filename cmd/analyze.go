package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/place-schema/internal/domain"
	"github.com/jonesrussell/north-cloud/place-schema/internal/service"
)

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var (
		req    service.AnalyzeRequest
		path   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze VALUE...",
		Short: "Show how values are tokenized on an abbreviation field",
		Long: `Runs the values through the local model of the field analyzer. With
--index the same values also go through that index's analyzer and any
difference between the two is reported.`,
		Example: `  place-schema analyze NZL NZ
  place-schema analyze --path ngram --index places U.S.A.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.setup(cmd.Context(), req.Index == "")
			if err != nil {
				return err
			}
			defer app.Close()

			req.Path = domain.Path(path)
			req.Values = args
			result, err := app.Schema.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			renderAnalysis(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Field, "field", "country_a", "abbreviation field")
	cmd.Flags().StringVar(&path, "path", string(domain.PathExact), "sub-field: exact or ngram")
	cmd.Flags().StringVar(&req.Index, "index", "", "also analyze on this index and report drift")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
