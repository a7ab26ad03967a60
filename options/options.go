package options

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

const (
	ModeInteractive = "interactive"
	ModeRecord      = "record"
	ModeSnapshot    = "snapshot"
)

// RevealOptions holds every setting of the viewer. Fields are pointers so
// they can be bound directly to flags.
type RevealOptions struct {
	Config *string
	Help   *bool
	Mode   *string

	Images     *StringList
	Width      *int
	Height     *int
	BaseUnit   *float64
	Fullscreen *bool
	Revealed   *bool
	Duration   *time.Duration
	Edge       *float64

	Background     *string
	DarkBackground *string
	Dark           *bool

	FPS            *int
	RecordDuration *float64
	OutputFile     *string
	FFMPEGPath     *string
	Codec          *string
	Software       *bool
	Headless       *bool

	SnapshotProgress *float64
	SnapshotTime     *float64

	Watch   *bool
	Verbose *bool
}

// StringList is a repeatable string flag.
type StringList []string

func (l *StringList) String() string { return strings.Join(*l, ",") }

func (l *StringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// AddArgs appends positional image arguments after any -image flags.
func (o *RevealOptions) AddArgs(args []string) error {
	for _, arg := range args {
		if err := o.Images.Set(arg); err != nil {
			return fmt.Errorf("image %q: %w", arg, err)
		}
	}
	return nil
}

// BindFlags registers every option on fs with its default.
func BindFlags(fs *flag.FlagSet) *RevealOptions {
	o := &RevealOptions{Images: &StringList{}}
	o.Config = fs.String("config", "", "Path to a TOML config file")
	o.Help = fs.Bool("help", false, "Show help message")
	o.Mode = fs.String("mode", ModeInteractive, "Run mode: interactive, record or snapshot")

	fs.Var(o.Images, "image", "Image to reveal (repeatable; N cycles through them)")
	o.Width = fs.Int("width", 1280, "Width of the window or output")
	o.Height = fs.Int("height", 720, "Height of the window or output")
	o.BaseUnit = fs.Float64("base-unit", 0.3, "Size of the image's longer side in view heights")
	o.Fullscreen = fs.Bool("fullscreen", false, "Stretch the image over the whole view")
	o.Revealed = fs.Bool("revealed", true, "Start with the image revealed")
	o.Duration = fs.Duration("duration", 1500*time.Millisecond, "Length of one reveal or hide animation")
	o.Edge = fs.Float64("edge", 0.12, "Width of the soft reveal edge")

	o.Background = fs.String("background", "#F9FAF7", "Light background color")
	o.DarkBackground = fs.String("dark-background", "#000000", "Dark background color")
	o.Dark = fs.Bool("dark", false, "Start with the dark background")

	o.FPS = fs.Int("fps", 60, "Frames per second for recording")
	o.RecordDuration = fs.Float64("record-duration", 3.0, "Seconds to record")
	o.OutputFile = fs.String("output", "", "Output file (video in record mode, PNG in snapshot mode)")
	o.FFMPEGPath = fs.String("ffmpeg", "", "Path to ffmpeg executable")
	o.Codec = fs.String("codec", "h264", "Video codec: h264 or hevc")
	o.Software = fs.Bool("software", false, "Record with the software rasterizer instead of OpenGL")
	o.Headless = fs.Bool("headless", false, "Record through an EGL pbuffer instead of a hidden window (Linux)")

	o.SnapshotProgress = fs.Float64("progress", 0.5, "Reveal progress of the snapshot")
	o.SnapshotTime = fs.Float64("time", 0, "Elapsed seconds of the snapshot")

	o.Watch = fs.Bool("watch", false, "Reload the image when the file changes")
	o.Verbose = fs.Bool("verbose", false, "Enable debug logging")
	return o
}

// OutputPath returns the output file, defaulting by mode.
func (o *RevealOptions) OutputPath() string {
	if *o.OutputFile != "" {
		return *o.OutputFile
	}
	if *o.Mode == ModeSnapshot {
		return "snapshot.png"
	}
	return "reveal.mp4"
}

// Validate rejects settings that cannot run.
func (o *RevealOptions) Validate() error {
	var errs []error
	switch *o.Mode {
	case ModeInteractive, ModeRecord, ModeSnapshot:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", *o.Mode))
	}
	if len(*o.Images) == 0 {
		errs = append(errs, errors.New("no images given"))
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", *o.Width, *o.Height))
	}
	if !(*o.BaseUnit > 0) {
		errs = append(errs, fmt.Errorf("base unit must be positive, got %v", *o.BaseUnit))
	}
	if *o.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %v", *o.Duration))
	}
	if !(*o.Edge > 0) || *o.Edge > 1 {
		errs = append(errs, fmt.Errorf("edge must be in (0, 1], got %v", *o.Edge))
	}
	if _, err := ParseColor(*o.Background); err != nil {
		errs = append(errs, fmt.Errorf("background: %w", err))
	}
	if _, err := ParseColor(*o.DarkBackground); err != nil {
		errs = append(errs, fmt.Errorf("dark background: %w", err))
	}
	if *o.Mode == ModeRecord {
		if *o.FPS <= 0 {
			errs = append(errs, fmt.Errorf("fps must be positive, got %d", *o.FPS))
		}
		if !(*o.RecordDuration > 0) {
			errs = append(errs, fmt.Errorf("record duration must be positive, got %v", *o.RecordDuration))
		}
		if *o.Software && *o.Headless {
			errs = append(errs, errors.New("-software and -headless are mutually exclusive"))
		}
		if *o.Codec != "h264" && *o.Codec != "hevc" {
			errs = append(errs, fmt.Errorf("unsupported codec %q", *o.Codec))
		}
	}
	if *o.Mode == ModeSnapshot && (*o.SnapshotProgress < 0 || *o.SnapshotProgress > 1) {
		errs = append(errs, fmt.Errorf("snapshot progress must be in [0, 1], got %v", *o.SnapshotProgress))
	}
	return errors.Join(errs...)
}

// ParseColor parses #RGB, #RRGGBB or #RRGGBBAA. The leading # is optional.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
