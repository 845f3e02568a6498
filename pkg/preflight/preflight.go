// Package preflight provides validation checks that run before any tree
// traversal or mutation begins. The checks are stateless and perform no I/O
// beyond path resolution and stat calls.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// UnsafePathError reports that the source and destination roots are nested
// inside one another. Syncing such a pair risks infinite recursion or data
// loss, so it is rejected in every operating mode, dry-run included.
type UnsafePathError struct {
	Source string
	Dest   string
	Reason string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("unsafe path configuration: %s (source %s, destination %s)", e.Reason, e.Source, e.Dest)
}

// CheckPathNesting resolves both roots to absolute, canonical form (symlinks
// and ".." segments resolved) and fails with *UnsafePathError if either root
// is equal to or a descendant of the other.
func CheckPathNesting(source, dest string) error {
	srcAbs, err := canonicalize(source)
	if err != nil {
		return fmt.Errorf("cannot resolve source path %s: %w", source, err)
	}
	dstAbs, err := canonicalize(dest)
	if err != nil {
		return fmt.Errorf("cannot resolve destination path %s: %w", dest, err)
	}

	switch {
	case srcAbs == dstAbs:
		return &UnsafePathError{Source: source, Dest: dest, Reason: "source and destination are the same directory"}
	case contains(srcAbs, dstAbs):
		return &UnsafePathError{Source: source, Dest: dest, Reason: "destination is inside the source directory"}
	case contains(dstAbs, srcAbs):
		return &UnsafePathError{Source: source, Dest: dest, Reason: "source is inside the destination directory"}
	}
	return nil
}

// CheckSourceAccessible validates that the source path exists and is a
// directory. More user-friendly than letting the walk fail.
func CheckSourceAccessible(srcPath string) error {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source directory %s does not exist", srcPath)
		}
		return fmt.Errorf("cannot stat source directory %s: %w", srcPath, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source path %s is not a directory", srcPath)
	}
	return nil
}

// CheckDestinationFreeSpace verifies that the filesystem holding the
// destination has at least requiredBytes available. The destination itself
// may not exist yet; the check walks up to the deepest existing ancestor.
func CheckDestinationFreeSpace(destPath string, requiredBytes int64) error {
	if requiredBytes <= 0 {
		return nil
	}

	probe := deepestExistingAncestor(destPath)
	available, err := availableBytes(probe)
	if err != nil {
		return fmt.Errorf("cannot determine free space for %s: %w", destPath, err)
	}
	if available < uint64(requiredBytes) {
		return fmt.Errorf("not enough free space on %s: need %s, have %s",
			destPath, util.ByteCountIEC(requiredBytes), util.ByteCountIEC(int64(available)))
	}
	return nil
}

// canonicalize resolves a path to its absolute, symlink-free form. For paths
// that do not exist yet, the deepest existing ancestor is resolved and the
// remaining segments are rejoined.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}

	// Resolve the deepest existing ancestor and append the rest verbatim.
	ancestor := abs
	var tail []string
	for {
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		tail = append([]string{filepath.Base(ancestor)}, tail...)
		ancestor = parent
		if resolved, err = filepath.EvalSymlinks(ancestor); err == nil {
			return filepath.Join(append([]string{resolved}, tail...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
	}
	return abs, nil
}

// contains reports whether sub is strictly beneath root. Both paths must be
// absolute and canonical.
func contains(root, sub string) bool {
	rel, err := filepath.Rel(root, sub)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// deepestExistingAncestor walks up from p until it finds a path that exists.
func deepestExistingAncestor(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	for {
		if _, err := os.Stat(abs); err == nil {
			return abs
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return abs
		}
		abs = parent
	}
}
