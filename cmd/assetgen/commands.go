package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/forgekit/assetgen/internal/buildlog"
	"github.com/forgekit/assetgen/internal/manifest"
	"github.com/forgekit/assetgen/internal/paths"
	"github.com/forgekit/assetgen/internal/quantize"
	"github.com/forgekit/assetgen/internal/rasterize"
	"github.com/forgekit/assetgen/internal/toolrun"
)

// initCmd writes a starter config with the built-in manifest spelled
// out so individual jobs can be edited.
func initCmd(configPath string) {
	path := configPath
	if path == "" {
		path = paths.ConfigFileName
	}
	if _, err := os.Stat(path); err == nil {
		fatal("%s already exists", path)
	}
	if err := writeDefaultConfig(path); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("wrote %s\n", path)
}

func writeDefaultConfig(path string) error {
	cfg := manifest.DefaultConfig()
	cfg.Jobs = manifest.Default()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return paths.AtomicWrite(path, append(data, '\n'))
}

func listCmd(configPath string) {
	cfg, err := manifest.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}

	jobs := cfg.EffectiveJobs()
	fmt.Printf("output directory: %s\n", cfg.Options.OutDir)
	fmt.Printf("quality window:   %d-%d\n", cfg.Options.QualityMin, cfg.Options.QualityMax)
	for _, j := range jobs {
		fmt.Printf("  %-28s %5dx%-5d  from %s\n", j.Output, j.Width, j.Height, j.Source)
	}
	fmt.Printf("%d jobs\n", len(jobs))
}

func doctorCmd(configPath string) {
	cfg, err := manifest.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}

	tools := toolrun.ExecRunner{}
	ok := true

	var selected string
	for _, tool := range rasterize.Tools() {
		path, err := tools.LookPath(tool)
		if err != nil {
			fmt.Printf("rasterizer %-14s not found\n", tool)
			continue
		}
		fmt.Printf("rasterizer %-14s %s\n", tool, path)
		if selected == "" {
			selected = tool
		}
	}
	switch {
	case cfg.Options.Rasterizer != "":
		if _, err := tools.LookPath(cfg.Options.Rasterizer); err != nil {
			fmt.Printf("configured rasterizer %s is not installed\n", cfg.Options.Rasterizer)
			ok = false
		} else {
			fmt.Printf("would use: %s (pinned by config)\n", cfg.Options.Rasterizer)
		}
	case selected != "":
		fmt.Printf("would use: %s\n", selected)
	default:
		fmt.Println("no rasterizer available")
		ok = false
	}

	if path, err := tools.LookPath(quantize.Tool); err != nil {
		fmt.Printf("quantizer  %-14s not found\n", quantize.Tool)
		ok = false
	} else {
		fmt.Printf("quantizer  %-14s %s\n", quantize.Tool, path)
	}

	if !ok {
		os.Exit(1)
	}
}

func historyCmd(args []string) {
	store, err := buildlog.NewSQLiteStore(filepath.Join(paths.DataDir(), paths.BuildLogName))
	if err != nil {
		fatal("open build log: %v", err)
	}
	defer store.Close()

	if len(args) > 0 {
		switch args[0] {
		case "clean":
			if len(args) < 2 {
				fatal("history clean requires a day count")
			}
			days, err := strconv.Atoi(args[1])
			if err != nil || days < 1 {
				fatal("history clean: invalid day count %q", args[1])
			}
			n, err := store.Clean(days)
			if err != nil {
				fatal("history clean: %v", err)
			}
			fmt.Printf("removed %d runs older than %d days\n", n, days)
			return
		case "clear":
			if err := store.Clear(); err != nil {
				fatal("history clear: %v", err)
			}
			fmt.Println("build history cleared")
			return
		}
	}

	days := 0
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 0 {
			fatal("history: invalid day count %q", args[0])
		}
		days = d
	}

	runs, err := store.Entries(days)
	if err != nil {
		fatal("history: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("no recorded builds")
		return
	}
	for _, r := range runs {
		status := "ok"
		if !r.OK {
			status = "FAILED " + r.FailedPath
		}
		var final int64
		for _, f := range r.Files {
			final += f.BytesFinal
		}
		fmt.Printf("%s  %-30s %2d files %9s  %6s  %s\n",
			r.Timestamp.Format(time.DateTime), r.OutDir, len(r.Files),
			humanize.IBytes(uint64(final)), r.Duration.Round(time.Millisecond), status)
	}
}

func printUsage() {
	fmt.Print(`assetgen - generate and compress mobile app image assets

Usage:
  assetgen [build] [flags]      render the manifest and compress outputs
  assetgen init                 write a starter assetgen.json
  assetgen list                 show the effective manifest
  assetgen doctor               check external tools
  assetgen history [days]       show recorded builds
  assetgen history clean <days> remove runs older than <days>
  assetgen history clear        delete all recorded builds
  assetgen version              print version

Flags:
  -c, --config <path>    config file (default: assetgen.json beside the
                         binary, then the user config directory)
  -o, --out <dir>        output directory override
  -q, --quality <m-M>    pngquant quality window override (default 65-80)
  -n, --dry-run          print external commands without running them

External tools: one of resvg, rsvg-convert or inkscape, plus pngquant.
`)
}

func printVersion() {
	fmt.Printf("assetgen %s (built %s)\n", version, buildDate)
}
