package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgekit/assetgen/internal/paths"
)

// DefaultOutDir is where generated assets land unless overridden.
const DefaultOutDir = "assets/generated"

// Default pngquant quality window.
const (
	DefaultQualityMin = 65
	DefaultQualityMax = 80
)

// BackgroundTransparent is the only background mode the default manifest
// uses; jobs may override it with a CSS-style color accepted by the
// rasterizer.
const BackgroundTransparent = "transparent"

// Job is one rasterization unit: a vector source rendered to a raster
// file at a fixed pixel size. Output is a plain file name inside the
// output directory.
type Job struct {
	Source     string `json:"source"`
	Output     string `json:"output"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background,omitempty"` // "" = transparent
}

// Validate checks a single job for internally consistent values.
// Output must be a bare file name: the compression pass covers only
// files directly inside the output directory, so nested or escaping
// paths are rejected.
func (j Job) Validate() error {
	if j.Source == "" {
		return fmt.Errorf("job for %q: empty source", j.Output)
	}
	if j.Output == "" {
		return fmt.Errorf("job for %q: empty output", j.Source)
	}
	if strings.ContainsAny(j.Output, `/\`) || j.Output == ".." {
		return fmt.Errorf("job %q: output must be a plain file name inside the output directory", j.Output)
	}
	if j.Width <= 0 || j.Height <= 0 {
		return fmt.Errorf("job %q: size %dx%d is not positive", j.Output, j.Width, j.Height)
	}
	return nil
}

// Options holds global settings parsed from the "config" key.
type Options struct {
	OutDir     string `json:"out_dir,omitempty"`
	QualityMin int    `json:"quality_min,omitempty"`
	QualityMax int    `json:"quality_max,omitempty"`
	Rasterizer string `json:"rasterizer,omitempty"` // pin a tool; "" = autodetect
	Log        bool   `json:"log,omitempty"`
}

// Config holds the top-level configuration: global options and an
// optional job list replacing the built-in manifest.
type Config struct {
	Options Options `json:"config"`
	Jobs    []Job   `json:"jobs,omitempty"`
}

// UnmarshalJSON sets defaults then decodes the JSON structure.
// Go's json.Unmarshal merges into existing struct fields, so only
// values present in JSON override the defaults.
func (c *Config) UnmarshalJSON(data []byte) error {
	c.Options = defaultOptions()
	type Alias Config
	return json.Unmarshal(data, (*Alias)(c))
}

func defaultOptions() Options {
	return Options{
		OutDir:     DefaultOutDir,
		QualityMin: DefaultQualityMin,
		QualityMax: DefaultQualityMax,
		Log:        true,
	}
}

// DefaultConfig returns the configuration used when no config file is
// found: built-in options and the built-in manifest.
func DefaultConfig() Config {
	return Config{Options: defaultOptions()}
}

// iconSizes are the square app-icon resolutions, largest first so the
// most expensive render fails earliest if the source is broken.
var iconSizes = []int{1024, 512, 192, 144, 96, 72, 48}

// adaptiveSizes are the adaptive-icon layer resolutions.
var adaptiveSizes = []int{1024, 512}

// Default returns the built-in manifest: 7 app icons, 2 adaptive icon
// layers, one splash screen and one favicon, in execution order.
func Default() []Job {
	jobs := make([]Job, 0, len(iconSizes)+len(adaptiveSizes)+2)
	for _, s := range iconSizes {
		jobs = append(jobs, Job{
			Source: "assets/icon.svg",
			Output: fmt.Sprintf("icon-%d.png", s),
			Width:  s,
			Height: s,
		})
	}
	for _, s := range adaptiveSizes {
		jobs = append(jobs, Job{
			Source: "assets/adaptive-icon.svg",
			Output: fmt.Sprintf("adaptive-icon-%d.png", s),
			Width:  s,
			Height: s,
		})
	}
	jobs = append(jobs,
		Job{Source: "assets/splash.svg", Output: "splash.png", Width: 1242, Height: 2436},
		Job{Source: "assets/favicon.svg", Output: "favicon.png", Width: 48, Height: 48},
	)
	return jobs
}

// EffectiveJobs returns the config's job list, falling back to the
// built-in manifest when the config defines none.
func (c Config) EffectiveJobs() []Job {
	if len(c.Jobs) > 0 {
		return c.Jobs
	}
	return Default()
}

// Validate checks options and every effective job.
func (c Config) Validate() error {
	o := c.Options
	if o.OutDir == "" {
		return fmt.Errorf("config: empty out_dir")
	}
	if o.QualityMin < 0 || o.QualityMax > 100 || o.QualityMin > o.QualityMax {
		return fmt.Errorf("config: invalid quality window %d-%d", o.QualityMin, o.QualityMax)
	}
	for _, j := range c.EffectiveJobs() {
		if err := j.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Load reads and parses a config file. It tries, in order:
//  1. explicitPath (if non-empty)
//  2. assetgen.json next to the running binary
//  3. ~/.config/assetgen/assetgen.json (or %APPDATA%\assetgen)
//
// If no file is found in the fallback chain, the built-in defaults are
// returned without error. An explicit path that cannot be read is an
// error.
func Load(explicitPath string) (Config, error) {
	if explicitPath != "" {
		return readConfig(explicitPath)
	}

	exe, err := os.Executable()
	if err == nil {
		p := filepath.Join(filepath.Dir(exe), paths.ConfigFileName)
		if _, err := os.Stat(p); err == nil {
			return readConfig(p)
		}
	}

	p := filepath.Join(paths.DataDir(), paths.ConfigFileName)
	if _, err := os.Stat(p); err == nil {
		return readConfig(p)
	}

	return DefaultConfig(), nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
