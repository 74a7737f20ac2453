package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func NewRoot(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "freetrack",
		Short: "FreeTrack is a freelance business tracker with an AI assistant",
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
