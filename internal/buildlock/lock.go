// Package buildlock guards an output directory against concurrent
// assetgen runs with an advisory file lock.
package buildlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgekit/assetgen/internal/paths"
)

// Lock is an acquired exclusive lock on an output directory. The lock
// file stays on disk after release; only the lock itself is dropped.
type Lock struct {
	f *os.File
}

// Acquire takes a non-blocking exclusive lock on dir's lock file.
// Fails immediately if another process holds it. The directory must
// already exist.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, paths.LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, paths.FilePerm)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	if err := flock(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("output directory %s is locked by another assetgen run: %w", dir, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock and closes the lock file.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := funlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

// Path returns the lock file path inside the locked directory.
func (l *Lock) Path() string {
	if l == nil || l.f == nil {
		return ""
	}
	return l.f.Name()
}
