package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paulschiretz/mfdirsync/pkg/buildinfo"
	"github.com/paulschiretz/mfdirsync/pkg/plog"
)

var rootCmd = &cobra.Command{
	Use:           buildinfo.Name,
	Short:         "One-directional directory synchronization",
	Long:          "mfdirsync synchronizes a destination directory's file contents to match a source directory: copying new and updated files, and optionally deleting files and directories absent from the source.",
	Version:       buildinfo.Version,
	SilenceErrors: true,
	SilenceUsage:  false,
}

func main() {
	// The run is interrupted only by process termination; the context exists
	// so an interrupt between phases stops cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		plog.Error(buildinfo.Name+" exited with error", "error", err)
		os.Exit(1)
	}
}
