package diffplan

import (
	"path"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/paulschiretz/mfdirsync/pkg/pathwalk"
)

// genTree generates a random snapshot: a handful of relative paths (up to
// three segments deep) with small mtime offsets.
func genTree() gopter.Gen {
	segment := gen.OneConstOf("a", "b", "c", "d", "e")
	relPath := gen.SliceOfN(3, segment).Map(func(segs []string) string {
		return path.Join(segs...)
	})
	entry := gopter.CombineGens(relPath, gen.Int64Range(0, 5)).Map(func(vals []interface{}) fileEntry {
		return fileEntry{Path: vals[0].(string), Offset: vals[1].(int64)}
	})
	return gen.SliceOf(entry).Map(func(entries []fileEntry) *pathwalk.Snapshot {
		s := &pathwalk.Snapshot{
			Files: make(map[string]pathwalk.FileInfo),
			Dirs:  make(map[string]pathwalk.DirInfo),
		}
		for _, e := range entries {
			s.Files[e.Path] = pathwalk.FileInfo{ModTime: baseTime + e.Offset*1e9, Size: 1}
			for dir := path.Dir(e.Path); dir != "."; dir = path.Dir(dir) {
				s.Dirs[dir] = pathwalk.DirInfo{}
			}
		}
		return s
	})
}

type fileEntry struct {
	Path   string
	Offset int64
}

// applySync models a sync plan's effect on the destination snapshot.
func applySync(src, dst *pathwalk.Snapshot, plan Plan) *pathwalk.Snapshot {
	out := &pathwalk.Snapshot{
		Files: make(map[string]pathwalk.FileInfo),
		Dirs:  make(map[string]pathwalk.DirInfo),
	}
	for p, fi := range dst.Files {
		out.Files[p] = fi
	}
	for d, di := range dst.Dirs {
		out.Dirs[d] = di
	}
	for _, a := range plan {
		switch a.Kind {
		case CopyNew, CopyUpdate:
			out.Files[a.Path] = src.Files[a.Path]
			for dir := path.Dir(a.Path); dir != "."; dir = path.Dir(dir) {
				if _, ok := out.Dirs[dir]; !ok {
					out.Dirs[dir] = pathwalk.DirInfo{}
				}
			}
		case Delete:
			delete(out.Files, a.Path)
		case DeleteDir:
			delete(out.Dirs, a.Path)
		}
	}
	return out
}

func TestSyncProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("sync makes destination files equal source files", prop.ForAll(
		func(src, dst *pathwalk.Snapshot) bool {
			res := ClassifySync(src, dst, false)
			after := applySync(src, dst, res.Plan)
			if len(after.Files) != len(src.Files) {
				return false
			}
			for p := range src.Files {
				if _, ok := after.Files[p]; !ok {
					return false
				}
			}
			return true
		},
		genTree(), genTree(),
	))

	properties.Property("sync is idempotent: second pass only skips", prop.ForAll(
		func(src, dst *pathwalk.Snapshot) bool {
			first := ClassifySync(src, dst, false)
			after := applySync(src, dst, first.Plan)
			second := ClassifySync(src, after, false)
			return len(second.Plan) == 0 &&
				second.Summary.Cp == 0 && second.Summary.Cpu == 0 &&
				second.Summary.Rm == 0 && second.Summary.Rmdir == 0 &&
				second.Summary.Skip == len(src.Files)
		},
		genTree(), genTree(),
	))

	properties.Property("copy phase precedes delete phase", prop.ForAll(
		func(src, dst *pathwalk.Snapshot) bool {
			res := ClassifySync(src, dst, false)
			phase := 0
			for _, a := range res.Plan {
				var p int
				switch a.Kind {
				case CopyNew, CopyUpdate:
					p = 0
				case Delete:
					p = 1
				case DeleteDir:
					p = 2
				default:
					return false
				}
				if p < phase {
					return false
				}
				phase = p
			}
			return true
		},
		genTree(), genTree(),
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(src, dst *pathwalk.Snapshot) bool {
			a := ClassifySync(src, dst, false)
			b := ClassifySync(src, dst, false)
			if len(a.Plan) != len(b.Plan) {
				return false
			}
			for i := range a.Plan {
				if a.Plan[i] != b.Plan[i] {
					return false
				}
			}
			return a.Summary == b.Summary
		},
		genTree(), genTree(),
	))

	properties.TestingRun(t)
}
