// Package pathwalk produces point-in-time snapshots of a directory tree.
//
// Symbolic links are never followed: the walk uses lstat semantics, so a
// symlink is not a regular file and is not part of a snapshot. It still
// counts as an "unlisted entry" of its directory, which keeps that directory
// from ever being considered empty.
package pathwalk

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/paulschiretz/mfdirsync/pkg/extfilter"
	"github.com/paulschiretz/mfdirsync/pkg/plog"
	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// AccessError reports that a tree could not be enumerated. It is fatal for
// the invocation; the walk is never retried.
type AccessError struct {
	Root string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Root, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// FileInfo is the minimal per-file metadata the classifier needs. ModTime is
// stored as Unix nanoseconds so records stay flat and cheap to copy.
type FileInfo struct {
	ModTime int64 // Unix nanoseconds.
	Size    int64 // Size in bytes.
}

// DirInfo describes a directory strictly below the snapshot root.
type DirInfo struct {
	// UnlistedEntries counts direct children that are invisible to the sync:
	// files filtered out by extension, symlinks and other non-regular
	// entries. A directory with unlisted entries is never empty.
	UnlistedEntries int
}

// Snapshot is one tree's in-scope files and directories at one point in
// time. Keys are normalized relative paths (forward slashes). A snapshot is
// owned by the invocation that created it and is never persisted.
type Snapshot struct {
	Root  string
	Files map[string]FileInfo
	Dirs  map[string]DirInfo
}

// TotalSize returns the summed size of all in-scope files.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	for _, fi := range s.Files {
		total += fi.Size
	}
	return total
}

// Walk enumerates every regular file beneath root, applies the extension
// filter, and returns the resulting snapshot. The root's own metadata is not
// part of the snapshot. A missing or unreadable root (or subdirectory) fails
// with *AccessError.
func Walk(root string, filter *extfilter.Filter) (*Snapshot, error) {
	return walk(root, filter, false)
}

// WalkAllowMissing is Walk, except a nonexistent root yields an empty
// snapshot instead of an error. Used for copy destinations that are created
// at execution time.
func WalkAllowMissing(root string, filter *extfilter.Filter) (*Snapshot, error) {
	return walk(root, filter, true)
}

func walk(root string, filter *extfilter.Filter, allowMissing bool) (*Snapshot, error) {
	snap := &Snapshot{
		Root:  root,
		Files: make(map[string]FileInfo),
		Dirs:  make(map[string]DirInfo),
	}

	if allowMissing {
		if _, err := os.Lstat(root); os.IsNotExist(err) {
			return snap, nil
		}
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &AccessError{Root: p, Err: err}
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return &AccessError{Root: p, Err: err}
		}
		relKey := util.NormalizePath(rel)

		switch {
		case d.IsDir():
			if _, ok := snap.Dirs[relKey]; !ok {
				snap.Dirs[relKey] = DirInfo{}
			}
		case d.Type().IsRegular():
			if !filter.Matches(relKey) {
				snap.addUnlisted(relKey)
				return nil
			}
			info, err := d.Info()
			if err != nil {
				// The file vanished between ReadDir and Lstat. It is not part
				// of this snapshot.
				plog.Warn("File disappeared during walk", "path", p, "error", err)
				return nil
			}
			snap.Files[relKey] = FileInfo{
				ModTime: info.ModTime().UnixNano(),
				Size:    info.Size(),
			}
		default:
			// Symlinks, sockets, devices: out of scope, but they occupy
			// their directory.
			snap.addUnlisted(relKey)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// addUnlisted records an out-of-scope entry against its parent directory.
// Entries directly under the root are not tracked; the root itself is never
// a deletion candidate.
func (s *Snapshot) addUnlisted(relKey string) {
	parent := path.Dir(relKey)
	if parent == "." {
		return
	}
	info := s.Dirs[parent]
	info.UnlistedEntries++
	s.Dirs[parent] = info
}
