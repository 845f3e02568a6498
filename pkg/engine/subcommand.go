package engine

import (
	"encoding/json"
	"fmt"

	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// Subcommand represents the operating mode of a run.
type Subcommand int

const (
	// Cp copies new and updated files from source to destination.
	Cp Subcommand = iota
	// Rm deletes destination files (and emptied directories) absent from the source.
	Rm
	// Sync is Cp followed by Rm.
	Sync
)

var subcommandToString = map[Subcommand]string{
	Cp:   "cp",
	Rm:   "rm",
	Sync: "sync",
}

var stringToSubcommand map[string]Subcommand

func init() {
	stringToSubcommand = util.InvertMap(subcommandToString)
}

// String returns the string representation of a Subcommand.
func (s Subcommand) String() string {
	if str, ok := subcommandToString[s]; ok {
		return str
	}
	return fmt.Sprintf("unknown_subcommand(%d)", s)
}

// ParseSubcommand parses a string and returns the corresponding Subcommand.
func ParseSubcommand(s string) (Subcommand, error) {
	if sub, ok := stringToSubcommand[s]; ok {
		return sub, nil
	}
	return 0, fmt.Errorf("invalid subcommand: %q. Must be 'cp', 'rm' or 'sync'", s)
}

// MarshalJSON implements the json.Marshaler interface for Subcommand.
func (s Subcommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Subcommand.
func (s *Subcommand) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("Subcommand should be a string, got %s", data)
	}
	sub, err := ParseSubcommand(str)
	if err != nil {
		return err
	}
	*s = sub
	return nil
}
