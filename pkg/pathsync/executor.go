// Package pathsync applies a computed action plan against the real
// filesystem. It is the only package that mutates either tree.
package pathsync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/paulschiretz/mfdirsync/pkg/diffplan"
	"github.com/paulschiretz/mfdirsync/pkg/plog"
	"github.com/paulschiretz/mfdirsync/pkg/pool"
	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// defaultBufferSizeKB is the size of the I/O buffer used for file copies.
const defaultBufferSizeKB = 256

// ActionError records one action that could not be applied. The run
// continues past it; the error surfaces in the final exit status.
type ActionError struct {
	Action diffplan.Action
	Err    error
}

func (e ActionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action.Kind, e.Action.Path, e.Err)
}

// Result reports the outcome of executing one plan.
type Result struct {
	// Executed holds the actions that were applied successfully, in plan
	// order. In dry-run mode it holds every planned action.
	Executed []diffplan.Action
	// Failed holds the actions that could not be applied.
	Failed []ActionError
	// BytesWritten is the total number of file bytes copied.
	BytesWritten int64
}

// Executor applies plans for one source/destination pair. Execution is
// strictly sequential: actions run in plan order, one at a time.
type Executor struct {
	srcRoot string
	dstRoot string
	dryRun  bool
	bufPool *pool.FixedBufferPool
}

// NewExecutor creates an Executor. With dryRun set, Execute performs no
// filesystem mutation at all and reports every action as executed.
func NewExecutor(srcRoot, dstRoot string, dryRun bool) *Executor {
	return &Executor{
		srcRoot: srcRoot,
		dstRoot: dstRoot,
		dryRun:  dryRun,
		bufPool: pool.NewFixedBuffer(defaultBufferSizeKB * 1024),
	}
}

// Execute applies the plan in order. A failing action is recorded and
// skipped; the remaining plan continues. The returned error is non-nil only
// for failures that invalidate the whole run, not for per-action failures.
func (e *Executor) Execute(ctx context.Context, plan diffplan.Plan) (*Result, error) {
	// One cancellation point before the mutation phase starts. Mid-plan
	// interruption is by process termination only.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	res := &Result{}

	if e.dryRun {
		for _, a := range plan {
			plog.Info("Planned "+verb(a.Kind), "path", a.Path)
			res.Executed = append(res.Executed, a)
		}
		return res, nil
	}

	if err := os.MkdirAll(e.dstRoot, util.UserWritableDirPerms); err != nil {
		return nil, fmt.Errorf("failed to create destination directory %s: %w", e.dstRoot, err)
	}

	for _, a := range plan {
		if err := e.apply(a, res); err != nil {
			plog.Warn("Action failed, continuing", "action", a.Kind.String(), "path", a.Path, "error", err)
			res.Failed = append(res.Failed, ActionError{Action: a, Err: err})
			continue
		}
		plog.Info(verb(a.Kind), "path", a.Path)
		res.Executed = append(res.Executed, a)
	}
	return res, nil
}

func (e *Executor) apply(a diffplan.Action, res *Result) error {
	rel := util.DenormalizePath(a.Path)

	switch a.Kind {
	case diffplan.CopyNew, diffplan.CopyUpdate:
		n, err := e.copyFile(rel)
		res.BytesWritten += n
		return err
	case diffplan.Delete:
		return os.Remove(filepath.Join(e.dstRoot, rel))
	case diffplan.DeleteDir:
		return os.Remove(filepath.Join(e.dstRoot, rel))
	default:
		return fmt.Errorf("unexpected action kind in plan: %v", a.Kind)
	}
}

// copyFile copies one regular file from source to destination, creating
// parent directories as needed and preserving the source's permission bits
// and modification time.
func (e *Executor) copyFile(rel string) (int64, error) {
	srcPath := filepath.Join(e.srcRoot, rel)
	dstPath := filepath.Join(e.dstRoot, rel)

	srcInfo, err := os.Lstat(srcPath)
	if err != nil {
		return 0, fmt.Errorf("could not stat source file: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, fmt.Errorf("source is no longer a regular file")
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), util.UserWritableDirPerms); err != nil {
		return 0, fmt.Errorf("could not create parent directory: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("could not open source file: %w", err)
	}
	defer src.Close()

	// The user-write bit is forced so a read-only source file can still be
	// overwritten by a later run.
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, util.WithUserWritePermission(srcInfo.Mode().Perm()))
	if err != nil {
		return 0, fmt.Errorf("could not create destination file: %w", err)
	}

	bufPtr := e.bufPool.Get()
	written, copyErr := io.CopyBuffer(dst, src, *bufPtr)
	e.bufPool.Put(bufPtr)

	closeErr := dst.Close()
	if copyErr != nil {
		return written, fmt.Errorf("copy failed: %w", copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("could not finalize destination file: %w", closeErr)
	}

	// Preserve the modification time; it drives the next run's comparison.
	if err := os.Chtimes(dstPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return written, fmt.Errorf("could not preserve modification time: %w", err)
	}
	return written, nil
}

func verb(k diffplan.ActionKind) string {
	switch k {
	case diffplan.CopyNew:
		return "copy"
	case diffplan.CopyUpdate:
		return "overwrite"
	case diffplan.Delete:
		return "delete"
	case diffplan.DeleteDir:
		return "delete empty directory"
	default:
		return k.String()
	}
}
