package runlog

import (
	"encoding/json"
	"fmt"

	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// Format represents the on-disk encoding of a run log file.
type Format int

const (
	// FormatJSON writes the record as plain JSON.
	FormatJSON Format = iota
	// FormatGzip writes gzip-compressed JSON.
	FormatGzip
	// FormatZstd writes zstd-compressed JSON.
	FormatZstd
)

var formatToString = map[Format]string{
	FormatJSON: "json",
	FormatGzip: "gzip",
	FormatZstd: "zstd",
}

var stringToFormat map[string]Format

func init() {
	stringToFormat = util.InvertMap(formatToString)
}

// String returns the string representation of a Format.
func (f Format) String() string {
	if str, ok := formatToString[f]; ok {
		return str
	}
	return fmt.Sprintf("unknown_log_format(%d)", f)
}

// ParseFormat parses a string and returns the corresponding Format.
func ParseFormat(s string) (Format, error) {
	if format, ok := stringToFormat[s]; ok {
		return format, nil
	}
	return 0, fmt.Errorf("invalid log format: %q. Must be 'json', 'gzip' or 'zstd'", s)
}

// Ext returns the file extension for the format, including the leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatGzip:
		return ".json.gz"
	case FormatZstd:
		return ".json.zst"
	default:
		return ".json"
	}
}

// MarshalJSON implements the json.Marshaler interface for Format.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Format.
func (f *Format) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("Format should be a string, got %s", data)
	}
	format, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = format
	return nil
}
