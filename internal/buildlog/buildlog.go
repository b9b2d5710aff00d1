// Package buildlog records asset build runs in a local SQLite
// database so past runs (sizes, failures, durations) can be inspected
// with `assetgen history`.
package buildlog

import (
	"time"
)

// FileRecord is one generated asset within a run.
type FileRecord struct {
	Output     string // file name relative to the output directory
	Width      int
	Height     int
	BytesRaw   int64 // size after rasterization
	BytesFinal int64 // size after quantization
}

// Run is one invocation of the build pipeline, successful or not.
type Run struct {
	ID         int64
	Timestamp  time.Time
	OutDir     string
	Duration   time.Duration
	OK         bool
	FailedPath string // file or directory the run failed on, "" on success
	Error      string // error text, "" on success
	Files      []FileRecord
}

// Store abstracts build-history storage.
type Store interface {
	// LogRun appends a run and its file records.
	LogRun(run Run) error

	// Entries returns runs newest-first; days limits to the last N
	// days, 0 = all.
	Entries(days int) ([]Run, error)

	// Clean removes runs older than the given number of days and
	// returns the removed count.
	Clean(days int) (int, error)

	// Clear deletes all history.
	Clear() error

	Path() string
	Close() error
}
