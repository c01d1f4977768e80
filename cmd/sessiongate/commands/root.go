package commands

import (
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/dmitrymomot/sessiongate/cmd/sessiongate/commands.version=..."
var version = "dev"

var envFiles []string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sessiongate",
		Short:         "Multi-tenant messaging session gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "load environment from these files (default ./.env when present)")

	root.AddCommand(serveCmd(), versionCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}
