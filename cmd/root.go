// Package cmd implements the place-schema command line.
package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/place-schema/internal/bootstrap"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// errVerificationFailed makes the process exit non-zero after the report
// has been printed.
var errVerificationFailed = errors.New("contract verification failed")

type rootOptions struct {
	configPath string
	debug      bool
}

func (o *rootOptions) setup(ctx context.Context, offline bool) (*bootstrap.App, error) {
	return bootstrap.Setup(ctx, bootstrap.Options{
		ConfigPath: o.configPath,
		Offline:    offline,
		Debug:      o.debug,
	})
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "place-schema",
		Short: "Abbreviation field schema for place indexes",
		Long: `place-schema builds the Elasticsearch mapping for administrative
abbreviation fields, manages indexes created from it and verifies on a live
cluster that matching documents always score the same.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newSchemaCommand(opts),
		newCreateIndexCommand(opts),
		newDeleteIndexCommand(opts),
		newAnalyzeCommand(opts),
		newVerifyCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
