package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goreveal/encoder"
	"github.com/richinsley/goreveal/glfwcontext"
	"github.com/richinsley/goreveal/graphics"
	"github.com/richinsley/goreveal/headless"
	"github.com/richinsley/goreveal/logging"
	"github.com/richinsley/goreveal/options"
	"github.com/richinsley/goreveal/raster"
	"github.com/richinsley/goreveal/renderer"
	"github.com/richinsley/goreveal/scene"
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/texture"
)

const title = "goreveal"

func init() {
	runtime.LockOSThread()
}

// backgrounds cycles between the light and dark clear colors.
type backgrounds struct {
	light, dark color.NRGBA
	isDark      bool
}

func (b *backgrounds) current() color.NRGBA {
	if b.isDark {
		return b.dark
	}
	return b.light
}

func sceneConfig(opts *options.RevealOptions) scene.Config {
	return scene.Config{
		Title:      title,
		Images:     *opts.Images,
		BaseUnit:   float32(*opts.BaseUnit),
		Fullscreen: *opts.Fullscreen,
		Revealed:   *opts.Revealed,
		Duration:   *opts.Duration,
		Edge:       float32(*opts.Edge),
		Camera:     scene.Camera{ViewHeight: scene.DefaultViewHeight},
	}
}

func newRaster(opts *options.RevealOptions, bg *backgrounds) *raster.Renderer {
	return raster.New(*opts.Width, *opts.Height,
		raster.WithBackground(bg.current()),
		raster.WithProgram(shader.NewProgram(float32(*opts.Edge))),
	)
}

func runInteractive(opts *options.RevealOptions, bg *backgrounds) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	glctx, err := glfwcontext.New(*opts.Width, *opts.Height, title, true)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	r, err := renderer.NewRenderer(glctx, *opts.Width, *opts.Height, false)
	if err != nil {
		glctx.Shutdown()
		return err
	}
	defer r.Shutdown()
	r.SetBackground(bg.current())

	var sceneOpts []scene.Option
	if *opts.Watch {
		w, err := texture.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
		defer w.Close()
		sceneOpts = append(sceneOpts, scene.WithWatcher(w))
	}
	s, err := scene.New(sceneConfig(opts), r, r, sceneOpts...)
	if err != nil {
		return err
	}
	defer s.Destroy()

	if err := r.InitScene(context.Background(), s.Mesh.Geometry(), s.Mesh.Material()); err != nil {
		return fmt.Errorf("failed to initialize scene: %w", err)
	}

	glctx.RegisterKeyCallback(glfw.KeySpace, s.Toggle)
	glctx.RegisterKeyCallback(glfw.KeyF, s.ToggleFullscreen)
	glctx.RegisterKeyCallback(glfw.KeyN, func() {
		path := s.NextImage()
		glctx.SetTitle(fmt.Sprintf("%s - %s", title, path))
	})
	glctx.RegisterKeyCallback(glfw.KeyD, func() {
		bg.isDark = !bg.isDark
		r.SetBackground(bg.current())
	})

	r.Run(s)
	return nil
}

func runRecord(opts *options.RevealOptions, bg *backgrounds) error {
	encCfg := encoder.Config{
		Width:      *opts.Width,
		Height:     *opts.Height,
		FPS:        *opts.FPS,
		OutputFile: opts.OutputPath(),
		FFmpegPath: *opts.FFMPEGPath,
		Codec:      *opts.Codec,
		Bitrate:    "25M",
	}
	frames := encoder.FrameCount(*opts.RecordDuration, *opts.FPS)

	if *opts.Software {
		rr := newRaster(opts, bg)
		s, err := scene.New(sceneConfig(opts), raster.Uploader{}, rr)
		if err != nil {
			return err
		}
		defer s.Destroy()
		if err := s.Preload(); err != nil {
			return err
		}
		s.Toggle()
		enc, err := encoder.Start(encCfg, 3)
		if err != nil {
			return err
		}
		return encoder.Record(enc, &raster.Source{Scene: s, Renderer: rr}, frames)
	}

	var glctx graphics.Context
	if *opts.Headless {
		hctx, err := headless.New(*opts.Width, *opts.Height)
		if err != nil {
			return fmt.Errorf("failed to create headless context: %w", err)
		}
		glctx = hctx
	} else {
		if err := glfwcontext.InitGraphics(); err != nil {
			return fmt.Errorf("failed to initialize graphics: %w", err)
		}
		defer glfwcontext.TerminateGraphics()

		wctx, err := glfwcontext.New(*opts.Width, *opts.Height, title, false)
		if err != nil {
			return fmt.Errorf("failed to create hidden window: %w", err)
		}
		glctx = wctx
	}
	r, err := renderer.NewRenderer(glctx, *opts.Width, *opts.Height, true)
	if err != nil {
		glctx.Shutdown()
		return err
	}
	defer r.Shutdown()
	r.SetBackground(bg.current())

	s, err := scene.New(sceneConfig(opts), r, r)
	if err != nil {
		return err
	}
	defer s.Destroy()
	if err := r.InitScene(context.Background(), s.Mesh.Geometry(), s.Mesh.Material()); err != nil {
		return fmt.Errorf("failed to initialize scene: %w", err)
	}
	if err := s.Preload(); err != nil {
		return err
	}
	src, err := r.Source(s)
	if err != nil {
		return err
	}

	s.Toggle()
	encCfg.FlipVertical = true
	enc, err := encoder.Start(encCfg, 3)
	if err != nil {
		return err
	}
	return encoder.Record(enc, src, frames)
}

func runSnapshot(opts *options.RevealOptions, bg *backgrounds) error {
	rr := newRaster(opts, bg)
	s, err := scene.New(sceneConfig(opts), raster.Uploader{}, rr)
	if err != nil {
		return err
	}
	defer s.Destroy()
	if err := s.Preload(); err != nil {
		return err
	}
	img := raster.Snapshot(s, rr, *opts.SnapshotTime, float32(*opts.SnapshotProgress))
	return raster.WritePNG(opts.OutputPath(), img)
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := options.BindFlags(fs)
	fs.Parse(os.Args[1:])

	if *opts.Help {
		fmt.Println("Image reveal viewer/recorder")
		fmt.Println("Usage: goreveal [flags] [image ...]")
		fs.PrintDefaults()
		return
	}

	if *opts.Config != "" {
		cfg, err := options.LoadFile(*opts.Config)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		if err := opts.Apply(cfg, fs); err != nil {
			log.Fatalf("Error applying config: %v", err)
		}
	}
	if err := opts.AddArgs(fs.Args()); err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	level := slog.LevelInfo
	if *opts.Verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	light, _ := options.ParseColor(*opts.Background)
	dark, _ := options.ParseColor(*opts.DarkBackground)
	bg := &backgrounds{light: light, dark: dark, isDark: *opts.Dark}

	var err error
	switch *opts.Mode {
	case options.ModeRecord:
		err = runRecord(opts, bg)
		if err == nil {
			log.Printf("Successfully rendered to %s", opts.OutputPath())
		}
	case options.ModeSnapshot:
		err = runSnapshot(opts, bg)
		if err == nil {
			log.Printf("Successfully wrote snapshot to %s", opts.OutputPath())
		}
	default:
		err = runInteractive(opts, bg)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *opts.Mode, err)
	}
}
