package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulschiretz/mfdirsync/pkg/engine"
	"github.com/paulschiretz/mfdirsync/pkg/runlog"
)

func TestBuildOptions_Defaults(t *testing.T) {
	cmd := newSyncCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	opts, err := buildOptions(cmd, []string{"/src", "/dst"})
	require.NoError(t, err)

	assert.Equal(t, "/src", opts.Source)
	assert.Equal(t, "/dst", opts.Dest)
	assert.Empty(t, opts.Extensions)
	assert.False(t, opts.Force)
	assert.False(t, opts.DryRun)
	assert.Empty(t, opts.LogDir)
	assert.Equal(t, runlog.FormatJSON, opts.LogFormat)
}

func TestBuildOptions_AllFlags(t *testing.T) {
	cmd := newSyncCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"-e", "cs", "-e", "md|txt", "--force", "--dry-run", "--log-format", "zstd",
	}))

	opts, err := buildOptions(cmd, []string{"/src", "/dst"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cs", "md|txt"}, opts.Extensions)
	assert.True(t, opts.Force)
	assert.True(t, opts.DryRun)
	assert.Equal(t, runlog.FormatZstd, opts.LogFormat)
}

func TestBuildOptions_LogDirDefaultsToCurrentDirectory(t *testing.T) {
	// Bare --log-json (no value) means "log into the current directory".
	cmd := newSyncCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-json"}))

	opts, err := buildOptions(cmd, []string{"/src", "/dst"})
	require.NoError(t, err)
	assert.Equal(t, ".", opts.LogDir)
}

func TestBuildOptions_InvalidLogFormat(t *testing.T) {
	cmd := newSyncCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--log-format", "tar"}))

	_, err := buildOptions(cmd, []string{"/src", "/dst"})

	var cfgErr *engine.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "mfdirsync version")
}

func TestRmHasNoForceFlag(t *testing.T) {
	assert.Nil(t, newRmCmd().Flags().Lookup("force"))
	assert.NotNil(t, newCpCmd().Flags().Lookup("force"))
	assert.NotNil(t, newSyncCmd().Flags().Lookup("force"))
}

func TestSubcommandsRequireTwoArgs(t *testing.T) {
	for _, newCmd := range []func() *cobra.Command{newCpCmd, newRmCmd, newSyncCmd} {
		cmd := newCmd()
		assert.Error(t, cmd.Args(cmd, []string{"/src"}), "%s should reject one argument", cmd.Name())
		assert.NoError(t, cmd.Args(cmd, []string{"/src", "/dst"}))
		assert.Error(t, cmd.Args(cmd, []string{"/src", "/dst", "/extra"}))
	}
}
