// Package diffplan turns two tree snapshots into an ordered action plan.
//
// The classifier is pure: it performs no I/O and cannot fail on well-formed
// snapshots. All ordering is deterministic so that two runs over identical
// trees produce byte-identical action logs.
package diffplan

import (
	"path"
	"sort"

	"github.com/paulschiretz/mfdirsync/pkg/pathwalk"
	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// ClassifyCopy computes the copy-phase plan: every source file is classified
// as CopyNew, CopyUpdate or Skip against the destination snapshot. Files
// present only in the destination are untouched.
//
// Equal modification times mean "up to date" and classify as Skip; force
// overrides that and every other staleness rule for existing files.
func ClassifyCopy(src, dst *pathwalk.Snapshot, force bool) Result {
	res := Result{}
	res.appendCopy(src, dst, force)
	return res
}

// ClassifyDelete computes the delete-phase plan: destination files absent
// from the source become Delete actions, followed by DeleteDir actions for
// every destination directory left without any entries, evaluated bottom-up.
func ClassifyDelete(src, dst *pathwalk.Snapshot) Result {
	res := Result{}
	res.appendDelete(src, dst, false)
	return res
}

// ClassifySync is the copy-phase plan followed by the delete-phase plan. The
// delete phase accounts for the copy phase's effects: a directory that
// receives a copied file is never a DeleteDir candidate.
func ClassifySync(src, dst *pathwalk.Snapshot, force bool) Result {
	res := Result{}
	res.appendCopy(src, dst, force)
	res.appendDelete(src, dst, true)
	return res
}

func (r *Result) appendCopy(src, dst *pathwalk.Snapshot, force bool) {
	paths := sortedKeys(src.Files)

	for _, p := range paths {
		srcInfo := src.Files[p]
		dstInfo, exists := dst.Files[p]

		switch {
		case !exists:
			r.Plan = append(r.Plan, Action{Kind: CopyNew, Path: p})
			r.Summary.Add(CopyNew)
			r.CopyBytes += srcInfo.Size
		case force || srcInfo.ModTime > dstInfo.ModTime:
			r.Plan = append(r.Plan, Action{Kind: CopyUpdate, Path: p})
			r.Summary.Add(CopyUpdate)
			r.CopyBytes += srcInfo.Size
		default:
			// Source is the same age or older: up to date. Counted, not listed.
			r.Summary.Add(Skip)
		}
	}
}

func (r *Result) appendDelete(src, dst *pathwalk.Snapshot, withCopies bool) {
	// Phase one: files present in the destination but absent from the source.
	var doomed []string
	for p := range dst.Files {
		if _, ok := src.Files[p]; !ok {
			doomed = append(doomed, p)
		}
	}
	sort.Strings(doomed)
	for _, p := range doomed {
		r.Plan = append(r.Plan, Action{Kind: Delete, Path: p})
		r.Summary.Add(Delete)
	}

	// Phase two: directories with nothing left beneath them. "Nothing" is
	// exact: unlisted (out-of-scope) entries keep a directory alive, as does
	// any surviving file, as does a file the copy phase will create there.
	occupied := make(map[string]bool)
	markAncestors := func(relKey string) {
		for dir := path.Dir(relKey); dir != "." && dir != "/"; dir = path.Dir(dir) {
			if occupied[dir] {
				return
			}
			occupied[dir] = true
		}
	}

	for p := range dst.Files {
		if _, ok := src.Files[p]; ok {
			markAncestors(p)
		}
	}
	if withCopies {
		for p := range src.Files {
			if _, ok := dst.Files[p]; !ok {
				markAncestors(p)
			}
		}
	}
	for d, info := range dst.Dirs {
		if info.UnlistedEntries > 0 {
			occupied[d] = true
			markAncestors(d)
		}
	}

	var removable []string
	for d := range dst.Dirs {
		if !occupied[d] {
			removable = append(removable, d)
		}
	}

	// Deepest directories first, so a parent is only evaluated once
	// everything beneath it is gone.
	sort.Slice(removable, func(i, j int) bool {
		di, dj := util.PathDepth(removable[i]), util.PathDepth(removable[j])
		if di != dj {
			return di > dj
		}
		return removable[i] < removable[j]
	})
	for _, d := range removable {
		r.Plan = append(r.Plan, Action{Kind: DeleteDir, Path: d})
		r.Summary.Add(DeleteDir)
	}
}

func sortedKeys(m map[string]pathwalk.FileInfo) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
