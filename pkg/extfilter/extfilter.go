// Package extfilter decides whether a file is in scope for a sync run based
// on its extension.
//
// Each configured pattern is either a literal extension ("cs", "txt") or a
// regular expression ("cs|md", "tx?t"). A pattern counts as a regular
// expression if and only if it contains RE2 metacharacters; everything else
// is a literal. Literals match the file's extension exactly and
// case-sensitively, without the leading dot. Regular expressions use Go's
// RE2 syntax and are implicitly anchored: the pattern must match the entire
// extension (again without the leading dot), not a substring of it.
//
// A file matches the filter if its extension matches at least one pattern.
// A filter with zero patterns matches every file.
package extfilter

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Filter holds the pre-compiled extension patterns for a run.
type Filter struct {
	patterns []string
	literals map[string]struct{}
	regexes  []*regexp.Regexp
}

// New analyzes and compiles the given patterns. A pattern containing RE2
// metacharacters is compiled as an anchored regular expression; compilation
// failure is a configuration error and aborts the run before any traversal.
func New(patterns []string) (*Filter, error) {
	f := &Filter{
		patterns: patterns,
		literals: make(map[string]struct{}),
	}

	for _, p := range patterns {
		if p == "" {
			return nil, fmt.Errorf("empty extension pattern")
		}
		if regexp.QuoteMeta(p) == p {
			f.literals[p] = struct{}{}
			continue
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, fmt.Errorf("invalid extension pattern %q: %w", p, err)
		}
		f.regexes = append(f.regexes, re)
	}
	return f, nil
}

// MatchAll returns true if the filter was configured without patterns and
// therefore admits every file.
func (f *Filter) MatchAll() bool {
	return len(f.patterns) == 0
}

// Patterns returns the original pattern strings, for logging.
func (f *Filter) Patterns() []string {
	return f.patterns
}

// Matches reports whether the file at the given normalized relative path is
// in scope. Matching is evaluated against the extension of the path's final
// element, without the leading dot. Files without an extension only match a
// regex pattern that accepts the empty string.
func (f *Filter) Matches(relPathKey string) bool {
	if f.MatchAll() {
		return true
	}

	ext := strings.TrimPrefix(path.Ext(path.Base(relPathKey)), ".")
	if _, ok := f.literals[ext]; ok {
		return true
	}
	for _, re := range f.regexes {
		if re.MatchString(ext) {
			return true
		}
	}
	return false
}
