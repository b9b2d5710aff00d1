// Package quantize wraps pngquant for in-place lossy PNG compression.
package quantize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgekit/assetgen/internal/toolrun"
)

// Tool is the external quantizer binary.
const Tool = "pngquant"

// Range is a pngquant quality window, 0-100 inclusive.
type Range struct {
	Min, Max int
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Valid reports whether the window is ordered and within 0-100.
func (r Range) Valid() bool {
	return r.Min >= 0 && r.Max <= 100 && r.Min <= r.Max
}

// Quantizer compresses PNG files in place.
type Quantizer struct {
	Quality Range
	run     toolrun.Runner
}

// New checks that pngquant is available and returns a Quantizer.
func New(r toolrun.Runner, quality Range) (*Quantizer, error) {
	if !quality.Valid() {
		return nil, fmt.Errorf("invalid quality window %s", quality)
	}
	if _, err := r.LookPath(Tool); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", Tool, err)
	}
	return &Quantizer{Quality: quality, run: r}, nil
}

// Args builds the pngquant argument list for one file: quality window,
// metadata stripping, in-place overwrite.
func Args(quality Range, path string) []string {
	return []string{
		"--quality=" + quality.String(),
		"--strip",
		"--ext", ".png",
		"--force",
		"--", path,
	}
}

// File compresses a single PNG in place.
func (q *Quantizer) File(path string) error {
	if out, err := q.run.Run(Tool, Args(q.Quality, path)...); err != nil {
		return fmt.Errorf("%s %s: %w\n%s", Tool, path, err, out)
	}
	return nil
}

// List returns the paths of every .png directly inside dir, in name
// order. Files with other extensions and subdirectories are excluded.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var pngs []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		pngs = append(pngs, filepath.Join(dir, e.Name()))
	}
	return pngs, nil
}
