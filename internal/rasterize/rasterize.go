// Package rasterize wraps an external SVG rasterizer. Several tools
// are supported because build machines differ in what they ship;
// invocations are normalized to (source, width, height, background).
package rasterize

import (
	"fmt"
	"os"
	"strconv"

	"github.com/forgekit/assetgen/internal/manifest"
	"github.com/forgekit/assetgen/internal/toolrun"
)

// tools in detection order. resvg is preferred: it is the fastest and
// renders transparent backgrounds by default.
var tools = []string{"resvg", "rsvg-convert", "inkscape"}

// Tools returns the supported tool names in detection order.
func Tools() []string {
	return append([]string(nil), tools...)
}

// Rasterizer renders vector sources to PNG via one external tool.
type Rasterizer struct {
	Tool string
	run  toolrun.Runner
}

// New returns a Rasterizer pinned to the named tool, or autodetects
// the first supported tool on PATH when preferred is empty.
func New(r toolrun.Runner, preferred string) (*Rasterizer, error) {
	if preferred != "" {
		if !supported(preferred) {
			return nil, fmt.Errorf("unsupported rasterizer %q (supported: resvg, rsvg-convert, inkscape)", preferred)
		}
		if _, err := r.LookPath(preferred); err != nil {
			return nil, fmt.Errorf("rasterizer %s not found on PATH: %w", preferred, err)
		}
		return &Rasterizer{Tool: preferred, run: r}, nil
	}
	for _, tool := range tools {
		if _, err := r.LookPath(tool); err == nil {
			return &Rasterizer{Tool: tool, run: r}, nil
		}
	}
	return nil, fmt.Errorf("no SVG rasterizer found on PATH (looked for resvg, rsvg-convert, inkscape)")
}

func supported(name string) bool {
	for _, t := range tools {
		if t == name {
			return true
		}
	}
	return false
}

// Render rasterizes job.Source to outPath at the job's pixel size.
// The source file must exist; the tool's combined output is included
// in the error on failure.
func (r *Rasterizer) Render(job manifest.Job, outPath string) error {
	if _, err := os.Stat(job.Source); err != nil {
		return fmt.Errorf("source %s: %w", job.Source, err)
	}
	args := Args(r.Tool, job, outPath)
	if out, err := r.run.Run(r.Tool, args...); err != nil {
		return fmt.Errorf("%s render %s: %w\n%s", r.Tool, job.Source, err, out)
	}
	return nil
}

// Args builds the argument list for the given tool. Exposed so tests
// and dry runs can inspect exact invocations.
func Args(tool string, job manifest.Job, outPath string) []string {
	w := strconv.Itoa(job.Width)
	h := strconv.Itoa(job.Height)
	bg := job.Background

	switch tool {
	case "resvg":
		args := []string{"--width", w, "--height", h}
		if bg != "" && bg != manifest.BackgroundTransparent {
			args = append(args, "--background", bg)
		}
		return append(args, job.Source, outPath)
	case "rsvg-convert":
		args := []string{"--width", w, "--height", h}
		if bg != "" && bg != manifest.BackgroundTransparent {
			args = append(args, "--background-color", bg)
		}
		return append(args, "--output", outPath, job.Source)
	case "inkscape":
		args := []string{
			"--export-type=png",
			"--export-filename=" + outPath,
			"--export-width=" + w,
			"--export-height=" + h,
		}
		if bg != "" && bg != manifest.BackgroundTransparent {
			args = append(args, "--export-background="+bg, "--export-background-opacity=1")
		} else {
			args = append(args, "--export-background-opacity=0")
		}
		return append(args, job.Source)
	}
	return nil
}
