package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; left as a plain build-time
// default here since this CLI is a thin smoke-testing shell, not a
// distributed binary.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the conceptrag version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "conceptrag version %s\n", Version)
			return err
		},
	}
}
