package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/paulschiretz/mfdirsync/pkg/engine"
	"github.com/paulschiretz/mfdirsync/pkg/plog"
	"github.com/paulschiretz/mfdirsync/pkg/runlog"
)

// addCommonFlags registers the flags shared by every subcommand. The force
// flag is copy-only and is registered separately by cp and sync.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().SortFlags = false
	cmd.Flags().StringArrayP("extensions", "e", nil,
		"File extension or regex pattern to process (e.g. 'cs', 'md|txt'). Repeatable. Default: all files.")
	cmd.Flags().BoolP("dry-run", "d", false,
		"List planned operations without touching the filesystem.")
	cmd.Flags().StringP("log-json", "l", "",
		"Write a JSON run log into the given directory (default: current directory). Cannot be combined with --dry-run.")
	cmd.Flags().Lookup("log-json").NoOptDefVal = "."
	cmd.Flags().String("log-format", "json",
		"Run log encoding: 'json', 'gzip' or 'zstd'.")
	cmd.Flags().BoolP("verbose", "v", false,
		"Report skipped (up to date) files individually.")
}

// addForceFlag registers the copy-only force flag.
func addForceFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing destination files regardless of modification time.")
}

// buildOptions translates parsed flags and positional arguments into engine
// options. Flag parse errors cannot occur here; cobra has already validated
// the flag set.
func buildOptions(cmd *cobra.Command, args []string) (engine.Options, error) {
	extensions, _ := cmd.Flags().GetStringArray("extensions")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	logDir, _ := cmd.Flags().GetString("log-json")
	logFormatStr, _ := cmd.Flags().GetString("log-format")
	verbose, _ := cmd.Flags().GetBool("verbose")

	force := false
	if cmd.Flags().Lookup("force") != nil {
		force, _ = cmd.Flags().GetBool("force")
	}

	logFormat, err := runlog.ParseFormat(logFormatStr)
	if err != nil {
		return engine.Options{}, &engine.ConfigError{Reason: err.Error()}
	}

	plog.SetVerbose(verbose)

	return engine.Options{
		Source:     args[0],
		Dest:       args[1],
		Extensions: extensions,
		Force:      force,
		DryRun:     dryRun,
		LogDir:     logDir,
		LogFormat:  logFormat,
		Cmd:        os.Args[1:],
	}, nil
}

// runSubcommand is the shared RunE body of cp, rm and sync.
func runSubcommand(cmd *cobra.Command, args []string, sub engine.Subcommand) error {
	opts, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}

	// Past this point errors are operational, not usage mistakes.
	cmd.SilenceUsage = true

	_, err = engine.New(opts).Run(cmd.Context(), sub)
	return err
}
