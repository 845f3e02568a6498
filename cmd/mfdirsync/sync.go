package main

import (
	"github.com/spf13/cobra"

	"github.com/paulschiretz/mfdirsync/pkg/engine"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <source> <destination>",
		Short: "Make destination match source (copy, then delete)",
		Long:  "Synchronizes the destination with the source: first copies new and updated files, then deletes destination files absent from the source and cleans up emptied directories.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubcommand(cmd, args, engine.Sync)
		},
	}
	addCommonFlags(cmd)
	addForceFlag(cmd)
	return cmd
}
