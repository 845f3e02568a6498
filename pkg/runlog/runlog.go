// Package runlog accumulates the actions of one run and persists them as a
// timestamped JSON record. The record is the sole persisted artifact of a
// run and is only produced when logging was requested.
package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"github.com/paulschiretz/mfdirsync/pkg/buildinfo"
	"github.com/paulschiretz/mfdirsync/pkg/diffplan"
	"github.com/paulschiretz/mfdirsync/pkg/util"
)

// fileNamePrefix is the historical prefix of run log files.
const fileNamePrefix = "dirsync_"

// timestampLayout is ISO-8601 with microseconds and a time-zone offset.
const timestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Record is the JSON structure written to disk.
type Record struct {
	App       string            `json:"app"`
	Version   int               `json:"version"`
	Timestamp string            `json:"timestamp"`
	Cmd       []string          `json:"cmd"`
	Subcmd    string            `json:"subcmd"`
	Summary   diffplan.Summary  `json:"summary"`
	Actions   []diffplan.Action `json:"actions"`
}

// Log collects the executed actions and summary of one run.
type Log struct {
	timestamp time.Time
	cmd       []string
	subcmd    string
	summary   diffplan.Summary
	actions   []diffplan.Action
}

// New creates a Log for the given subcommand and the literal argument
// vector the process was invoked with. The run timestamp is fixed at
// creation, in the local time zone.
func New(subcmd string, cmd []string) *Log {
	return &Log{
		timestamp: time.Now(),
		cmd:       cmd,
		subcmd:    subcmd,
	}
}

// Append records one processed action. Skip is a count, never an entry, and
// is silently ignored here.
func (l *Log) Append(a diffplan.Action) {
	if a.Kind == diffplan.Skip {
		return
	}
	l.actions = append(l.actions, a)
}

// SetSummary stores the run's final counts, including the skip count.
func (l *Log) SetSummary(s diffplan.Summary) {
	l.summary = s
}

// Record builds the serializable record for this run.
func (l *Log) Record() Record {
	actions := l.actions
	if actions == nil {
		actions = []diffplan.Action{}
	}
	return Record{
		App:       buildinfo.Name,
		Version:   buildinfo.LogFormatVersion,
		Timestamp: l.timestamp.Format(timestampLayout),
		Cmd:       l.cmd,
		Subcmd:    l.subcmd,
		Summary:   l.summary,
		Actions:   actions,
	}
}

// FileName returns the log's collision-free file name: the run timestamp
// down to the microsecond plus the UTC offset, so concurrent runs in the
// same directory never clash.
func (l *Log) FileName(format Format) string {
	t := l.timestamp
	return fmt.Sprintf("%s%s_%06d%s%s",
		fileNamePrefix,
		t.Format("20060102_150405"),
		t.Nanosecond()/1000,
		t.Format("-0700"),
		format.Ext(),
	)
}

// Write persists the record into dir, creating the directory if needed, and
// returns the full path of the written file.
func (l *Log) Write(dir string, format Format) (string, error) {
	if err := os.MkdirAll(dir, util.UserWritableDirPerms); err != nil {
		return "", fmt.Errorf("could not create log directory %s: %w", dir, err)
	}

	logPath := filepath.Join(dir, l.FileName(format))
	f, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, util.UserWritableFilePerms)
	if err != nil {
		return "", fmt.Errorf("could not create log file %s: %w", logPath, err)
	}
	defer f.Close()

	if err := l.encode(f, format); err != nil {
		return "", fmt.Errorf("could not write log file %s: %w", logPath, err)
	}
	return logPath, nil
}

func (l *Log) encode(w io.Writer, format Format) error {
	var (
		target io.Writer = w
		closer io.Closer
	)

	switch format {
	case FormatGzip:
		zw := pgzip.NewWriter(w)
		target, closer = zw, zw
	case FormatZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		target, closer = zw, zw
	}

	enc := json.NewEncoder(target)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.Record()); err != nil {
		return err
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}
