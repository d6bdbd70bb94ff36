package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X SkinLens/internal/cli.version=...".
var version = "dev"

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "skinctl",
		Short:         "Derive skin analysis reports from detection results",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("skinctl version {{.Version}}\n")

	rootCmd.AddCommand(
		newDeriveCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the skinctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "skinctl version "+version+"\n")
			return err
		},
	}
}
