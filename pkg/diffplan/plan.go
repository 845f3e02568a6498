package diffplan

// Plan is the ordered sequence of actions computed for one run. Invariants:
// all copy actions precede all Delete actions, DeleteDir actions come after
// all Delete actions and are ordered deepest-first, and Skip never appears.
type Plan []Action

// Summary maps every action kind to its count for one classification pass.
// Skip has a count here even though skips are never listed as actions.
type Summary struct {
	Cp    int `json:"cp"`
	Cpu   int `json:"cpu"`
	Rm    int `json:"rm"`
	Rmdir int `json:"rmdir"`
	Skip  int `json:"skip"`
}

// Add increments the counter for the given kind.
func (s *Summary) Add(kind ActionKind) {
	switch kind {
	case CopyNew:
		s.Cp++
	case CopyUpdate:
		s.Cpu++
	case Delete:
		s.Rm++
	case DeleteDir:
		s.Rmdir++
	case Skip:
		s.Skip++
	}
}

// Total returns the number of classified entries, skips included.
func (s Summary) Total() int {
	return s.Cp + s.Cpu + s.Rm + s.Rmdir + s.Skip
}

// Result is the complete, immutable output of one classification pass.
type Result struct {
	Plan    Plan
	Summary Summary

	// CopyBytes is the total size of all files the plan copies, used by the
	// preflight free-space check.
	CopyBytes int64
}
