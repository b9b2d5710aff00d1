package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/forgekit/assetgen/internal/buildlog"
	"github.com/forgekit/assetgen/internal/manifest"
	"github.com/forgekit/assetgen/internal/paths"
	"github.com/forgekit/assetgen/internal/quantize"
	"github.com/forgekit/assetgen/internal/rasterize"
	"github.com/forgekit/assetgen/internal/runner"
	"github.com/forgekit/assetgen/internal/toolrun"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

type buildOpts struct {
	configPath string
	outDir     string // --out override, "" = config/default
	quality    string // --quality override "min-max", "" = config/default
	dryRun     bool
}

func main() {
	args := os.Args[1:]
	var opts buildOpts

	// Parse flags
	filtered := args[:0]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config", "-c":
			if i+1 >= len(args) {
				fatal("--config requires a file path")
			}
			opts.configPath = args[i+1]
			i++
		case "--out", "-o":
			if i+1 >= len(args) {
				fatal("--out requires a directory path")
			}
			opts.outDir = args[i+1]
			i++
		case "--quality", "-q":
			if i+1 >= len(args) {
				fatal("--quality requires a min-max range, e.g. 65-80")
			}
			opts.quality = args[i+1]
			i++
		case "--dry-run", "-n":
			opts.dryRun = true
		default:
			filtered = append(filtered, args[i])
		}
	}

	cmd := "build"
	if len(filtered) > 0 {
		cmd = filtered[0]
	}

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
	case "version", "-V", "--version":
		printVersion()
	case "build":
		buildCmd(opts)
	case "init":
		initCmd(opts.configPath)
	case "list", "-l", "--list":
		listCmd(opts.configPath)
	case "doctor":
		doctorCmd(opts.configPath)
	case "history":
		historyCmd(filtered[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		fmt.Fprintf(os.Stderr, "Run 'assetgen help' for usage.\n")
		os.Exit(1)
	}
}

func buildCmd(opts buildOpts) {
	cfg, err := manifest.Load(opts.configPath)
	if err != nil {
		fatal("%v", err)
	}
	outDir := resolveOutDir(opts.outDir, cfg)
	quality, err := resolveQuality(opts.quality, cfg)
	if err != nil {
		fatal("%v", err)
	}

	var tools toolrun.Runner = toolrun.ExecRunner{}
	if opts.dryRun {
		tools = toolrun.DryRunner{W: os.Stdout}
	}

	rast, err := rasterize.New(tools, cfg.Options.Rasterizer)
	if err != nil {
		fatal("%v", err)
	}
	quant, err := setupQuantizer(tools, quality)
	if err != nil {
		if cfg.Options.Log && !opts.dryRun {
			logRun(&runner.Result{OutDir: outDir}, err, time.Now())
		}
		fatal("%v", err)
	}

	var progress io.Writer = os.Stderr
	interactive := term.IsTerminal(int(os.Stdout.Fd())) && !opts.dryRun
	if interactive {
		progress = ttyProgress{w: os.Stderr}
	}

	r := &runner.Runner{
		Jobs:     cfg.EffectiveJobs(),
		OutDir:   outDir,
		Rast:     rast,
		Quant:    quant,
		Progress: progress,
		DryRun:   opts.dryRun,
	}

	start := time.Now()
	res, runErr := r.Run()
	if interactive {
		fmt.Fprintln(os.Stderr)
	}

	if cfg.Options.Log && !opts.dryRun {
		logRun(res, runErr, start)
	}

	if runErr != nil {
		fatal("%v", runErr)
	}
	if !opts.dryRun {
		printSummary(res)
	}
}

// setupQuantizer builds the Quantizer, classifying an unavailable
// pngquant as a compression failure like any other quantizer error.
func setupQuantizer(tools toolrun.Runner, quality quantize.Range) (*quantize.Quantizer, error) {
	quant, err := quantize.New(tools, quality)
	if err != nil {
		return nil, &runner.CompressionError{Path: quantize.Tool, Err: err}
	}
	return quant, nil
}

// ttyProgress rewrites the current progress line in place instead of
// scrolling, for interactive terminals.
type ttyProgress struct {
	w io.Writer
}

func (t ttyProgress) Write(p []byte) (int, error) {
	line := bytes.TrimSuffix(p, []byte("\n"))
	if _, err := fmt.Fprintf(t.w, "\r\x1b[2K%s", line); err != nil {
		return 0, err
	}
	return len(p), nil
}

// logRun appends the run to the build history; failures here are
// best-effort and only warned about.
func logRun(res *runner.Result, runErr error, start time.Time) {
	store, err := buildlog.NewSQLiteStore(filepath.Join(paths.DataDir(), paths.BuildLogName))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: build log unavailable: %v\n", err)
		return
	}
	defer store.Close()

	run := buildlog.Run{
		Timestamp: start,
		OutDir:    res.OutDir,
		Duration:  res.Duration,
		OK:        runErr == nil,
	}
	if runErr != nil {
		run.Error = runErr.Error()
		run.FailedPath = failedPath(runErr)
	}
	for _, f := range res.Files {
		run.Files = append(run.Files, buildlog.FileRecord{
			Output:     f.Output,
			Width:      f.Width,
			Height:     f.Height,
			BytesRaw:   f.BytesRaw,
			BytesFinal: f.BytesFinal,
		})
	}
	if err := store.LogRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: build log write: %v\n", err)
	}
}

// failedPath extracts the file the run failed on from a typed error.
func failedPath(err error) string {
	switch e := err.(type) {
	case *runner.FilesystemError:
		return e.Path
	case *runner.RasterizationError:
		return e.Output
	case *runner.CompressionError:
		return e.Path
	}
	return ""
}

func printSummary(res *runner.Result) {
	mark := "ok"
	if term.IsTerminal(int(os.Stdout.Fd())) {
		mark = "\x1b[32m✓\x1b[0m"
	}
	var raw, final int64
	for _, f := range res.Files {
		fmt.Printf("%s %-24s %5dx%-5d %9s -> %s\n",
			mark, f.Output, f.Width, f.Height,
			humanize.IBytes(uint64(f.BytesRaw)), humanize.IBytes(uint64(f.BytesFinal)))
		raw += f.BytesRaw
		final += f.BytesFinal
	}
	fmt.Printf("%d assets in %s, %s -> %s\n",
		len(res.Files), res.Duration.Round(time.Millisecond),
		humanize.IBytes(uint64(raw)), humanize.IBytes(uint64(final)))
}

// resolveOutDir applies the CLI override over the config value.
func resolveOutDir(flag string, cfg manifest.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.Options.OutDir
}

// resolveQuality parses the --quality flag, falling back to the
// config window.
func resolveQuality(flag string, cfg manifest.Config) (quantize.Range, error) {
	if flag == "" {
		return quantize.Range{Min: cfg.Options.QualityMin, Max: cfg.Options.QualityMax}, nil
	}
	return parseQuality(flag)
}

// parseQuality parses "min-max" into a validated Range.
func parseQuality(s string) (quantize.Range, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return quantize.Range{}, fmt.Errorf("invalid quality %q, expected min-max (e.g. 65-80)", s)
	}
	min, err1 := strconv.Atoi(parts[0])
	max, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return quantize.Range{}, fmt.Errorf("invalid quality %q, expected min-max (e.g. 65-80)", s)
	}
	r := quantize.Range{Min: min, Max: max}
	if !r.Valid() {
		return quantize.Range{}, fmt.Errorf("quality %q out of range, need 0 <= min <= max <= 100", s)
	}
	return r, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
