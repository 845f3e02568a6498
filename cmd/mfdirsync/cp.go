package main

import (
	"github.com/spf13/cobra"

	"github.com/paulschiretz/mfdirsync/pkg/engine"
)

func init() {
	rootCmd.AddCommand(newCpCmd())
}

func newCpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cp <source> <destination>",
		Short: "Copy new and updated files from source to destination",
		Long:  "Copies files from the source directory to the destination directory, maintaining the directory structure. Existing files are overwritten only when the source file is newer, or unconditionally with --force.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubcommand(cmd, args, engine.Cp)
		},
	}
	addCommonFlags(cmd)
	addForceFlag(cmd)
	return cmd
}
