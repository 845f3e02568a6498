// Package engine orchestrates one synchronization run: preflight checks,
// tree walks, classification, plan execution and run logging. Phases run
// strictly one after another; there is no overlap between them.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/paulschiretz/mfdirsync/pkg/diffplan"
	"github.com/paulschiretz/mfdirsync/pkg/extfilter"
	"github.com/paulschiretz/mfdirsync/pkg/pathsync"
	"github.com/paulschiretz/mfdirsync/pkg/pathwalk"
	"github.com/paulschiretz/mfdirsync/pkg/plog"
	"github.com/paulschiretz/mfdirsync/pkg/preflight"
	"github.com/paulschiretz/mfdirsync/pkg/runlog"
	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// ConfigError reports an invalid option combination. It is fatal and is
// raised before any filesystem traversal.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// Options configures one run.
type Options struct {
	Source string
	Dest   string

	// Extensions holds the literal/regex extension patterns; empty means
	// every file is in scope.
	Extensions []string

	// Force overwrites existing destination files regardless of their
	// modification time. Copy phase only.
	Force bool

	// DryRun computes and reports the full plan without touching the
	// filesystem. Mutually exclusive with LogDir.
	DryRun bool

	// LogDir, when non-empty, is the directory the JSON run log is written
	// into after the run.
	LogDir    string
	LogFormat runlog.Format

	// Cmd is the literal argument vector of the invocation, recorded in the
	// run log.
	Cmd []string
}

// Engine executes runs for one validated option set.
type Engine struct {
	opts Options
}

// New creates an Engine for the given options.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Run performs one full run of the given subcommand and returns the final
// summary. The error is non-nil for fatal conditions (configuration, unsafe
// paths, inaccessible roots) and also when any individual action failed, so
// the caller can surface a non-zero exit status; in the latter case the
// summary still describes everything that was applied.
func (e *Engine) Run(ctx context.Context, sub Subcommand) (diffplan.Summary, error) {
	opts := e.opts

	// --- 1. Configuration validation, before any I/O ---
	if opts.DryRun && opts.LogDir != "" {
		return diffplan.Summary{}, &ConfigError{Reason: "dry-run and log output are mutually exclusive"}
	}
	filter, err := extfilter.New(opts.Extensions)
	if err != nil {
		return diffplan.Summary{}, &ConfigError{Reason: err.Error()}
	}

	// --- 2. Path safety, unconditional for every mode ---
	if err := preflight.CheckPathNesting(opts.Source, opts.Dest); err != nil {
		return diffplan.Summary{}, err
	}
	if err := preflight.CheckSourceAccessible(opts.Source); err != nil {
		return diffplan.Summary{}, err
	}

	if opts.DryRun {
		plog.Info("Dry run: no filesystem changes will be made")
	}
	plog.Info("Starting "+sub.String(), "source", opts.Source, "destination", opts.Dest, "patterns", filter.Patterns())

	startTime := time.Now()

	// --- 3. Tree walks ---
	srcSnap, err := pathwalk.Walk(opts.Source, filter)
	if err != nil {
		return diffplan.Summary{}, err
	}
	dstSnap, err := e.walkDest(sub, filter)
	if err != nil {
		return diffplan.Summary{}, err
	}

	// --- 4. Classification ---
	var res diffplan.Result
	switch sub {
	case Cp:
		res = diffplan.ClassifyCopy(srcSnap, dstSnap, opts.Force)
	case Rm:
		res = diffplan.ClassifyDelete(srcSnap, dstSnap)
	case Sync:
		res = diffplan.ClassifySync(srcSnap, dstSnap, opts.Force)
	default:
		return diffplan.Summary{}, fmt.Errorf("internal error: unknown subcommand %d", sub)
	}
	if sub != Rm {
		e.logSkipped(srcSnap, dstSnap, res.Plan)
	}

	// --- 5. Destination capacity, only when we will actually write ---
	if !opts.DryRun {
		if err := preflight.CheckDestinationFreeSpace(opts.Dest, res.CopyBytes); err != nil {
			return diffplan.Summary{}, err
		}
	}

	// --- 6. Execution ---
	executor := pathsync.NewExecutor(opts.Source, opts.Dest, opts.DryRun)
	execRes, err := executor.Execute(ctx, res.Plan)
	if err != nil {
		return diffplan.Summary{}, err
	}

	summary := diffplan.Summary{Skip: res.Summary.Skip}
	for _, a := range execRes.Executed {
		summary.Add(a.Kind)
	}

	// --- 7. Run log ---
	if opts.LogDir != "" {
		log := runlog.New(sub.String(), opts.Cmd)
		for _, a := range execRes.Executed {
			log.Append(a)
		}
		log.SetSummary(summary)
		logPath, err := log.Write(opts.LogDir, opts.LogFormat)
		if err != nil {
			return summary, err
		}
		plog.Info("Run log written", "path", logPath)
	}

	plog.Info("Finished "+sub.String(),
		"cp", summary.Cp,
		"cpu", summary.Cpu,
		"rm", summary.Rm,
		"rmdir", summary.Rmdir,
		"skip", summary.Skip,
		"bytes_written", util.ByteCountIEC(execRes.BytesWritten),
		"duration", time.Since(startTime).Round(time.Millisecond),
	)

	if n := len(execRes.Failed); n > 0 {
		return summary, fmt.Errorf("%d of %d actions failed", n, len(res.Plan))
	}
	return summary, nil
}

// walkDest snapshots the destination. A missing destination is acceptable
// for copy modes (it is created at execution time) but fatal for rm, which
// has nothing to operate on.
func (e *Engine) walkDest(sub Subcommand, filter *extfilter.Filter) (*pathwalk.Snapshot, error) {
	if sub == Rm {
		return pathwalk.Walk(e.opts.Dest, filter)
	}
	return pathwalk.WalkAllowMissing(e.opts.Dest, filter)
}

// logSkipped reports up-to-date files individually. Skips are not part of
// the plan, so they are re-derived here: a source file that exists in the
// destination and was not planned as an overwrite was skipped.
func (e *Engine) logSkipped(src, dst *pathwalk.Snapshot, plan diffplan.Plan) {
	if !plog.IsVerbose() {
		return
	}
	planned := make(map[string]bool)
	for _, a := range plan {
		if a.Kind == diffplan.CopyUpdate {
			planned[a.Path] = true
		}
	}
	for p := range src.Files {
		if _, ok := dst.Files[p]; ok && !planned[p] {
			plog.Debug("Skipped (up to date)", "path", p)
		}
	}
}
