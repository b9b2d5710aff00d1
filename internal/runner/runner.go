// Package runner executes the asset manifest: output directory setup,
// one rasterization per job in manifest order, then an in-place
// compression pass over the produced files. Strictly sequential; the
// first failure aborts the rest.
package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgekit/assetgen/internal/buildlock"
	"github.com/forgekit/assetgen/internal/imginfo"
	"github.com/forgekit/assetgen/internal/manifest"
	"github.com/forgekit/assetgen/internal/paths"
	"github.com/forgekit/assetgen/internal/quantize"
	"github.com/forgekit/assetgen/internal/rasterize"
)

// FileResult describes one produced asset.
type FileResult struct {
	Output     string // relative to OutDir
	Width      int
	Height     int
	BytesRaw   int64
	BytesFinal int64
}

// Result summarizes a run. On failure it holds the files produced
// before the failing step.
type Result struct {
	OutDir   string
	Files    []FileResult
	Duration time.Duration
}

// Runner drives one build of the manifest.
type Runner struct {
	Jobs   []manifest.Job
	OutDir string
	Rast   *rasterize.Rasterizer
	Quant  *quantize.Quantizer

	// Progress receives one line per step before the step executes.
	// nil discards progress.
	Progress io.Writer

	// DryRun skips all side effects: no directory is created, no lock
	// taken, no verification done. The injected tool runner is still
	// called for every step so a DryRunner can print the commands.
	DryRun bool

	// NoLock disables the output-directory lock (used by tests that
	// exercise the sequence in isolation).
	NoLock bool
}

// Run executes the full sequence. The returned Result is never nil.
func (r *Runner) Run() (*Result, error) {
	start := time.Now()
	res := &Result{OutDir: r.OutDir}
	err := r.run(res)
	res.Duration = time.Since(start)
	return res, err
}

func (r *Runner) run(res *Result) error {
	w := r.Progress
	if w == nil {
		w = io.Discard
	}

	fmt.Fprintf(w, "output directory %s\n", r.OutDir)
	if !r.DryRun {
		if err := EnsureOutputDir(r.OutDir); err != nil {
			return err
		}
		if !r.NoLock {
			lock, err := buildlock.Acquire(r.OutDir)
			if err != nil {
				return &FilesystemError{Path: r.OutDir, Err: err}
			}
			defer lock.Release()
		}
	}

	for i, job := range r.Jobs {
		fmt.Fprintf(w, "[%d/%d] render %s (%dx%d)\n", i+1, len(r.Jobs), job.Output, job.Width, job.Height)
		fr, err := r.renderJob(job)
		if err != nil {
			return err
		}
		res.Files = append(res.Files, fr)
	}

	files, err := r.compressTargets()
	if err != nil {
		return err
	}
	for i, path := range files {
		fmt.Fprintf(w, "[%d/%d] compress %s (quality %s)\n", i+1, len(files), filepath.Base(path), r.Quant.Quality)
		if err := r.Quant.File(path); err != nil {
			return &CompressionError{Path: path, Err: err}
		}
	}

	if !r.DryRun {
		for i := range res.Files {
			if fi, err := os.Stat(filepath.Join(r.OutDir, res.Files[i].Output)); err == nil {
				res.Files[i].BytesFinal = fi.Size()
			}
		}
	}
	return nil
}

func (r *Runner) renderJob(job manifest.Job) (FileResult, error) {
	fr := FileResult{Output: job.Output, Width: job.Width, Height: job.Height}
	outPath := filepath.Join(r.OutDir, job.Output)

	if err := r.Rast.Render(job, outPath); err != nil {
		return fr, &RasterizationError{Source: job.Source, Output: job.Output, Err: err}
	}

	if r.DryRun {
		return fr, nil
	}

	info, err := imginfo.Stat(outPath)
	if err != nil {
		return fr, &RasterizationError{Source: job.Source, Output: job.Output, Err: err}
	}
	if info.Width != job.Width || info.Height != job.Height {
		return fr, &RasterizationError{
			Source: job.Source,
			Output: job.Output,
			Err:    fmt.Errorf("rendered %dx%d, want %dx%d", info.Width, info.Height, job.Width, job.Height),
		}
	}
	if fi, err := os.Stat(outPath); err == nil {
		fr.BytesRaw = fi.Size()
	}
	return fr, nil
}

// compressTargets lists the files the compression pass will touch. In
// a real run that is every .png in the output directory; in a dry run
// the directory may not exist, so the manifest's .png outputs stand in.
func (r *Runner) compressTargets() ([]string, error) {
	if r.DryRun {
		var files []string
		for _, job := range r.Jobs {
			if strings.EqualFold(filepath.Ext(job.Output), ".png") {
				files = append(files, filepath.Join(r.OutDir, job.Output))
			}
		}
		return files, nil
	}
	files, err := quantize.List(r.OutDir)
	if err != nil {
		return nil, &CompressionError{Path: r.OutDir, Err: err}
	}
	return files, nil
}

// EnsureOutputDir creates the directory (and parents) if absent and
// verifies it is a writable directory.
func EnsureOutputDir(dir string) error {
	if err := os.MkdirAll(dir, paths.DirPerm); err != nil {
		return &FilesystemError{Path: dir, Err: err}
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return &FilesystemError{Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return &FilesystemError{Path: dir, Err: fmt.Errorf("exists but is not a directory")}
	}
	// MkdirAll succeeds on an existing unwritable directory, so probe.
	probe, err := os.CreateTemp(dir, ".assetgen-probe-*")
	if err != nil {
		return &FilesystemError{Path: dir, Err: fmt.Errorf("not writable: %w", err)}
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
