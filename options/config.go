package options

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig is the TOML config file. Absent keys leave the flag default.
type FileConfig struct {
	Mode    *string  `toml:"mode"`
	Images  []string `toml:"images"`
	Watch   *bool    `toml:"watch"`
	Verbose *bool    `toml:"verbose"`

	Window struct {
		Width          *int    `toml:"width"`
		Height         *int    `toml:"height"`
		Background     *string `toml:"background"`
		DarkBackground *string `toml:"dark_background"`
		Dark           *bool   `toml:"dark"`
	} `toml:"window"`

	Reveal struct {
		BaseUnit   *float64 `toml:"base_unit"`
		Fullscreen *bool    `toml:"fullscreen"`
		Revealed   *bool    `toml:"revealed"`
		Duration   *string  `toml:"duration"`
		Edge       *float64 `toml:"edge"`
	} `toml:"reveal"`

	Record struct {
		FPS        *int     `toml:"fps"`
		Duration   *float64 `toml:"duration"`
		Output     *string  `toml:"output"`
		FFMPEGPath *string  `toml:"ffmpeg"`
		Codec      *string  `toml:"codec"`
		Software   *bool    `toml:"software"`
		Headless   *bool    `toml:"headless"`
	} `toml:"record"`

	Snapshot struct {
		Progress *float64 `toml:"progress"`
		Time     *float64 `toml:"time"`
		Output   *string  `toml:"output"`
	} `toml:"snapshot"`

	dir string
}

// LoadFile reads a config file. Unknown keys are an error. Relative image
// paths are resolved against the file's directory.
func LoadFile(path string) (*FileConfig, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path %q: %w", path, err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := &FileConfig{dir: filepath.Dir(expanded)}
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ImagePaths returns the configured images with ~ expanded and relative
// paths made relative to the config file.
func (c *FileConfig) ImagePaths() ([]string, error) {
	paths := make([]string, 0, len(c.Images))
	for _, img := range c.Images {
		p, err := homedir.Expand(img)
		if err != nil {
			return nil, fmt.Errorf("failed to expand image path %q: %w", img, err)
		}
		if !filepath.IsAbs(p) && c.dir != "" {
			p = filepath.Join(c.dir, p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Apply copies every value present in c into o unless the flag of the same
// setting was set on the command line. Positional arguments count as set
// images.
func (o *RevealOptions) Apply(c *FileConfig, fs *flag.FlagSet) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	assign(set, "mode", o.Mode, c.Mode)
	assign(set, "watch", o.Watch, c.Watch)
	assign(set, "verbose", o.Verbose, c.Verbose)

	assign(set, "width", o.Width, c.Window.Width)
	assign(set, "height", o.Height, c.Window.Height)
	assign(set, "background", o.Background, c.Window.Background)
	assign(set, "dark-background", o.DarkBackground, c.Window.DarkBackground)
	assign(set, "dark", o.Dark, c.Window.Dark)

	assign(set, "base-unit", o.BaseUnit, c.Reveal.BaseUnit)
	assign(set, "fullscreen", o.Fullscreen, c.Reveal.Fullscreen)
	assign(set, "revealed", o.Revealed, c.Reveal.Revealed)
	assign(set, "edge", o.Edge, c.Reveal.Edge)
	if c.Reveal.Duration != nil && !set["duration"] {
		d, err := time.ParseDuration(*c.Reveal.Duration)
		if err != nil {
			return fmt.Errorf("reveal.duration: %w", err)
		}
		*o.Duration = d
	}

	assign(set, "fps", o.FPS, c.Record.FPS)
	assign(set, "record-duration", o.RecordDuration, c.Record.Duration)
	assign(set, "ffmpeg", o.FFMPEGPath, c.Record.FFMPEGPath)
	assign(set, "codec", o.Codec, c.Record.Codec)
	assign(set, "software", o.Software, c.Record.Software)
	assign(set, "headless", o.Headless, c.Record.Headless)

	assign(set, "progress", o.SnapshotProgress, c.Snapshot.Progress)
	assign(set, "time", o.SnapshotTime, c.Snapshot.Time)

	if !set["output"] {
		mode := *o.Mode
		switch {
		case mode == ModeSnapshot && c.Snapshot.Output != nil:
			*o.OutputFile = *c.Snapshot.Output
		case mode == ModeRecord && c.Record.Output != nil:
			*o.OutputFile = *c.Record.Output
		}
	}

	if !set["image"] && fs.NArg() == 0 && len(c.Images) > 0 {
		paths, err := c.ImagePaths()
		if err != nil {
			return err
		}
		*o.Images = paths
	}
	return nil
}

func assign[T any](set map[string]bool, name string, dst *T, src *T) {
	if src == nil || set[name] {
		return
	}
	*dst = *src
}
