package diffplan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulschiretz/mfdirsync/pkg/pathwalk"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixNano()

// snap builds an in-memory snapshot from file path → mtime offset (seconds
// relative to baseTime) and a list of directories.
func snap(files map[string]int64, dirs ...string) *pathwalk.Snapshot {
	s := &pathwalk.Snapshot{
		Files: make(map[string]pathwalk.FileInfo),
		Dirs:  make(map[string]pathwalk.DirInfo),
	}
	for p, offset := range files {
		s.Files[p] = pathwalk.FileInfo{ModTime: baseTime + offset*int64(time.Second), Size: 10}
	}
	for _, d := range dirs {
		s.Dirs[d] = pathwalk.DirInfo{}
	}
	return s
}

func kinds(plan Plan) []ActionKind {
	out := make([]ActionKind, len(plan))
	for i, a := range plan {
		out[i] = a.Kind
	}
	return out
}

func TestClassifyCopy(t *testing.T) {
	testCases := []struct {
		name     string
		src      map[string]int64
		dst      map[string]int64
		force    bool
		expected Plan
		skip     int
	}{
		{
			name:     "new file",
			src:      map[string]int64{"a.txt": 0},
			dst:      map[string]int64{},
			expected: Plan{{Kind: CopyNew, Path: "a.txt"}},
		},
		{
			name:     "source newer",
			src:      map[string]int64{"a.txt": 10},
			dst:      map[string]int64{"a.txt": 0},
			expected: Plan{{Kind: CopyUpdate, Path: "a.txt"}},
		},
		{
			name: "source older",
			src:  map[string]int64{"a.txt": 0},
			dst:  map[string]int64{"a.txt": 10},
			skip: 1,
		},
		{
			name: "equal mtime is up to date",
			src:  map[string]int64{"a.txt": 0},
			dst:  map[string]int64{"a.txt": 0},
			skip: 1,
		},
		{
			name:     "equal mtime with force overwrites",
			src:      map[string]int64{"a.txt": 0},
			dst:      map[string]int64{"a.txt": 0},
			force:    true,
			expected: Plan{{Kind: CopyUpdate, Path: "a.txt"}},
		},
		{
			name:     "force overwrites older source too",
			src:      map[string]int64{"a.txt": 0},
			dst:      map[string]int64{"a.txt": 10},
			force:    true,
			expected: Plan{{Kind: CopyUpdate, Path: "a.txt"}},
		},
		{
			name: "destination-only files are untouched",
			src:  map[string]int64{},
			dst:  map[string]int64{"stale.txt": 0},
		},
		{
			name: "deterministic path order",
			src:  map[string]int64{"b/x.txt": 0, "a.txt": 0, "c.txt": 0},
			dst:  map[string]int64{},
			expected: Plan{
				{Kind: CopyNew, Path: "a.txt"},
				{Kind: CopyNew, Path: "b/x.txt"},
				{Kind: CopyNew, Path: "c.txt"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := ClassifyCopy(snap(tc.src), snap(tc.dst), tc.force)
			if len(tc.expected) == 0 {
				assert.Empty(t, res.Plan)
			} else {
				assert.Equal(t, tc.expected, res.Plan)
			}
			assert.Equal(t, tc.skip, res.Summary.Skip)

			// Skip never appears as a listed action.
			for _, a := range res.Plan {
				assert.NotEqual(t, Skip, a.Kind)
			}
		})
	}
}

func TestClassifyCopy_CountsBytes(t *testing.T) {
	src := snap(map[string]int64{"a.txt": 0, "b.txt": 10})
	dst := snap(map[string]int64{"b.txt": 0})

	res := ClassifyCopy(src, dst, false)

	// One new file and one update, 10 bytes each (see snap helper).
	assert.Equal(t, int64(20), res.CopyBytes)
	assert.Equal(t, Summary{Cp: 1, Cpu: 1}, res.Summary)
}

func TestClassifyDelete_EmptyDirCleanupOrder(t *testing.T) {
	// Destination d/e/f.txt has no source counterpart; d/e and d become
	// empty after its removal and must be deleted bottom-up.
	src := snap(nil)
	dst := snap(map[string]int64{"d/e/f.txt": 0}, "d", "d/e")

	res := ClassifyDelete(src, dst)

	require.Equal(t, Plan{
		{Kind: Delete, Path: "d/e/f.txt"},
		{Kind: DeleteDir, Path: "d/e"},
		{Kind: DeleteDir, Path: "d"},
	}, res.Plan)
	assert.Equal(t, Summary{Rm: 1, Rmdir: 2}, res.Summary)
}

func TestClassifyDelete(t *testing.T) {
	testCases := []struct {
		name     string
		src      *pathwalk.Snapshot
		dst      *pathwalk.Snapshot
		expected Plan
	}{
		{
			name: "surviving sibling keeps directory",
			src:  snap(map[string]int64{"d/keep.txt": 0}),
			dst:  snap(map[string]int64{"d/keep.txt": 0, "d/gone.txt": 0}, "d"),
			expected: Plan{
				{Kind: Delete, Path: "d/gone.txt"},
			},
		},
		{
			name:     "directory empty before any deletion is still removed",
			src:      snap(nil),
			dst:      snap(nil, "empty", "empty/nested"),
			expected: Plan{{Kind: DeleteDir, Path: "empty/nested"}, {Kind: DeleteDir, Path: "empty"}},
		},
		{
			name: "unlisted entries keep a directory and its ancestors alive",
			src:  snap(nil),
			dst: func() *pathwalk.Snapshot {
				s := snap(map[string]int64{"d/e/gone.txt": 0}, "d", "d/e")
				s.Dirs["d/e"] = pathwalk.DirInfo{UnlistedEntries: 1}
				return s
			}(),
			expected: Plan{{Kind: Delete, Path: "d/e/gone.txt"}},
		},
		{
			name:     "deletions are sorted for reproducible logs",
			src:      snap(nil),
			dst:      snap(map[string]int64{"z.txt": 0, "a.txt": 0, "m.txt": 0}),
			expected: Plan{{Kind: Delete, Path: "a.txt"}, {Kind: Delete, Path: "m.txt"}, {Kind: Delete, Path: "z.txt"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := ClassifyDelete(tc.src, tc.dst)
			assert.Equal(t, tc.expected, res.Plan)
		})
	}
}

func TestClassifySync_PhaseOrdering(t *testing.T) {
	src := snap(map[string]int64{"new.txt": 0, "newer.txt": 10})
	dst := snap(map[string]int64{"newer.txt": 0, "stale/gone.txt": 0}, "stale")

	res := ClassifySync(src, dst, false)

	require.Equal(t, Plan{
		{Kind: CopyNew, Path: "new.txt"},
		{Kind: CopyUpdate, Path: "newer.txt"},
		{Kind: Delete, Path: "stale/gone.txt"},
		{Kind: DeleteDir, Path: "stale"},
	}, res.Plan)
	assert.Equal(t, Summary{Cp: 1, Cpu: 1, Rm: 1, Rmdir: 1}, res.Summary)
}

func TestClassifySync_CopyTargetKeepsDirectory(t *testing.T) {
	// The delete phase must see the copy phase's effects: "d" receives a
	// copied file, so it is not empty even though the destination's only
	// file in it is deleted.
	src := snap(map[string]int64{"d/new.txt": 0})
	dst := snap(map[string]int64{"d/gone.txt": 0}, "d")

	res := ClassifySync(src, dst, false)

	assert.Equal(t, Plan{
		{Kind: CopyNew, Path: "d/new.txt"},
		{Kind: Delete, Path: "d/gone.txt"},
	}, res.Plan)
}

func TestClassifySync_Idempotent(t *testing.T) {
	// Identical trees: nothing but skips.
	files := map[string]int64{"a.txt": 0, "d/b.txt": 5}
	res := ClassifySync(snap(files, "d"), snap(files, "d"), false)

	assert.Empty(t, res.Plan)
	assert.Equal(t, Summary{Skip: 2}, res.Summary)
}

func TestClassifySync_ComposesFromCpAndRm(t *testing.T) {
	// sync == cp actions ++ rm actions, with rm evaluated against the
	// post-copy destination (the two phases run sequentially).
	src := snap(map[string]int64{"a.txt": 10, "d/new.txt": 0}, "d")
	dst := snap(map[string]int64{"a.txt": 0, "old/gone.txt": 0}, "old")

	syncRes := ClassifySync(src, dst, false)
	cpRes := ClassifyCopy(src, dst, false)

	// Model the copy phase's effect on the destination snapshot.
	postCopy := snap(nil)
	for p, fi := range dst.Files {
		postCopy.Files[p] = fi
	}
	for d, di := range dst.Dirs {
		postCopy.Dirs[d] = di
	}
	for _, a := range cpRes.Plan {
		postCopy.Files[a.Path] = src.Files[a.Path]
	}
	rmRes := ClassifyDelete(src, postCopy)

	assert.Equal(t, append(cpRes.Plan, rmRes.Plan...), syncRes.Plan)
}

func TestActionKindRoundtrip(t *testing.T) {
	for kind, str := range map[ActionKind]string{
		CopyNew: "cp", CopyUpdate: "cpu", Delete: "rm", DeleteDir: "rmdir", Skip: "skip",
	} {
		assert.Equal(t, str, kind.String())
		parsed, err := ParseActionKind(str)
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseActionKind("move")
	assert.Error(t, err)
}

func TestSummaryAddAndTotal(t *testing.T) {
	var s Summary
	for _, k := range []ActionKind{CopyNew, CopyNew, CopyUpdate, Delete, DeleteDir, Skip} {
		s.Add(k)
	}
	assert.Equal(t, Summary{Cp: 2, Cpu: 1, Rm: 1, Rmdir: 1, Skip: 1}, s)
	assert.Equal(t, 6, s.Total())
}

func TestKindsHelper(t *testing.T) {
	// Guards the plan ordering invariant generically: copy phase strictly
	// before delete phase, DeleteDir strictly after Delete.
	src := snap(map[string]int64{"a.txt": 0, "b.txt": 10})
	dst := snap(map[string]int64{"b.txt": 0, "x/y.txt": 0}, "x")

	res := ClassifySync(src, dst, false)

	phase := 0 // 0 = copy, 1 = rm, 2 = rmdir
	for _, k := range kinds(res.Plan) {
		var p int
		switch k {
		case CopyNew, CopyUpdate:
			p = 0
		case Delete:
			p = 1
		case DeleteDir:
			p = 2
		}
		require.GreaterOrEqual(t, p, phase, "plan phases out of order")
		phase = p
	}
}
