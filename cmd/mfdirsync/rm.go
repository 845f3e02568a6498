package main

import (
	"github.com/spf13/cobra"

	"github.com/paulschiretz/mfdirsync/pkg/engine"
)

func init() {
	rootCmd.AddCommand(newRmCmd())
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <source> <destination>",
		Short: "Delete destination files that do not exist in source",
		Long:  "Deletes files in the destination directory that have no counterpart in the source directory, then removes directories left empty, deepest first.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubcommand(cmd, args, engine.Rm)
		},
	}
	addCommonFlags(cmd)
	return cmd
}
