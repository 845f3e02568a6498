package diffplan

import (
	"encoding/json"
	"fmt"

	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// ActionKind represents the kind of a planned filesystem action.
type ActionKind int

const (
	// CopyNew copies a source file that has no destination counterpart.
	CopyNew ActionKind = iota
	// CopyUpdate overwrites an existing destination file.
	CopyUpdate
	// Delete removes a destination file absent from the source.
	Delete
	// DeleteDir removes a destination directory left empty by the plan.
	DeleteDir
	// Skip marks an up-to-date file. Skips are counted in the summary but
	// never appear in a plan's action list.
	Skip
)

var kindToString = map[ActionKind]string{
	CopyNew:    "cp",
	CopyUpdate: "cpu",
	Delete:     "rm",
	DeleteDir:  "rmdir",
	Skip:       "skip",
}

var stringToKind map[string]ActionKind

func init() {
	stringToKind = util.InvertMap(kindToString)
}

// String returns the string representation of an ActionKind.
func (k ActionKind) String() string {
	if str, ok := kindToString[k]; ok {
		return str
	}
	return fmt.Sprintf("unknown_action_kind(%d)", k)
}

// ParseActionKind parses a string and returns the corresponding ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	if kind, ok := stringToKind[s]; ok {
		return kind, nil
	}
	return 0, fmt.Errorf("invalid action kind: %q. Must be 'cp', 'cpu', 'rm', 'rmdir' or 'skip'", s)
}

// MarshalJSON implements the json.Marshaler interface for ActionKind.
func (k ActionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for ActionKind.
func (k *ActionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("ActionKind should be a string, got %s", data)
	}

	kind, err := ParseActionKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Action is one planned operation: a kind plus the normalized relative path
// it applies to. Deliberately a flat record, not an interface hierarchy; the
// plan stays a simple ordered sequence.
type Action struct {
	Kind ActionKind `json:"type"`
	Path string     `json:"path"`
}

func (a Action) String() string {
	return fmt.Sprintf("%s %s", a.Kind, a.Path)
}
